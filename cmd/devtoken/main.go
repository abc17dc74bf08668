// Command devtoken prints an access token for local testing:
//
//	devtoken -user 7 -role teacher
//	devtoken -user 20 -role delegate -class 3
//
// The secret is read from JWT_SECRET (or the dotenv file).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/classroom-seating/internal/auth"
	"github.com/iliyamo/classroom-seating/internal/model"
)

func main() {
	user := flag.Uint64("user", 1, "user id (token subject)")
	role := flag.String("role", "admin", "admin | teacher | delegate | eco_delegate")
	class := flag.Uint64("class", 0, "class represented by a delegate")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}
	tok, exp, err := auth.Issue(secret, model.Actor{ID: *user, Role: *role, ClassID: *class}, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
}
