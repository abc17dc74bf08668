// Package auth mints and verifies the HS256 access tokens issued by the
// school's identity provider.  The token subject is the numeric user id
// and the "role" claim one of admin, teacher, delegate or eco_delegate.
// Delegate tokens also carry the "class_id" they represent.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/classroom-seating/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the registered JWT claims plus the caller's role and class.
type Claims struct {
	Role    string `json:"role"`
	ClassID uint64 `json:"class_id,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a token for actor valid for ttl and returns it with its
// expiry.
func Issue(secret string, actor model.Actor, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Role:    actor.Role,
		ClassID: actor.ClassID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies raw and returns the actor it names.  Only HMAC-signed
// tokens with a numeric subject and a known role are accepted.
func Parse(secret, raw string) (model.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return model.Actor{}, fmt.Errorf("%w: subject %q", ErrInvalidToken, claims.Subject)
	}
	switch claims.Role {
	case model.RoleAdmin, model.RoleTeacher, model.RoleDelegate, model.RoleEcoDelegate:
	default:
		return model.Actor{}, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	}
	actor := model.Actor{ID: id, Role: claims.Role}
	if actor.IsDelegate() {
		actor.ClassID = claims.ClassID
	}
	return actor, nil
}
