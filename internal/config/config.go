// Package config loads runtime settings from the environment.  A dotenv
// file is loaded first when present so local runs need no exported vars.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable of the same name in upper snake case.
type Config struct {
	Env  string // APP_ENV (dev, test, prod)
	Port string // APP_PORT

	DBUser    string
	DBPass    string // optional
	DBHost    string
	DBPort    string
	DBName    string
	DBMigrate bool // apply the embedded schema on start

	StorageDriver string // mysql | memory
	JWTSecret     string

	MaxRoomSeats          int           // administrative cap on seats per room
	TemporaryValidityDays int           // window given to restored temporary sub-rooms
	SweepInterval         time.Duration // expiry sweep period; 0 disables the ticker
	SweepLockTTL          time.Duration

	AMQPURL     string
	NotifyQueue string

	Redis     RedisConfig
	RateLimit RateLimitConfig

	LogLevel  string
	LogFormat string // text | json
}

// Driver names accepted by STORAGE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Load reads the dotenv file (ENV_FILE or .env) if it exists and then the
// environment.  Missing required keys produce an error naming all of them.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: stat %s: %w", envFile, err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("STORAGE_DRIVER", DriverMySQL)
	v.SetDefault("MAX_ROOM_SEATS", 200)
	v.SetDefault("TEMPORARY_VALIDITY_DAYS", 30)
	v.SetDefault("SWEEP_INTERVAL", time.Hour)
	v.SetDefault("SWEEP_LOCK_TTL", 5*time.Minute)
	v.SetDefault("NOTIFY_QUEUE", "seatplan.notifications")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	setRedisDefaults(v)
	setRateLimitDefaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	c := Config{
		Env:                   v.GetString("APP_ENV"),
		Port:                  v.GetString("APP_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPass:                v.GetString("DB_PASS"),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBName:                v.GetString("DB_NAME"),
		DBMigrate:             v.GetBool("DB_MIGRATE"),
		StorageDriver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
		JWTSecret:             v.GetString("JWT_SECRET"),
		MaxRoomSeats:          v.GetInt("MAX_ROOM_SEATS"),
		TemporaryValidityDays: v.GetInt("TEMPORARY_VALIDITY_DAYS"),
		SweepInterval:         v.GetDuration("SWEEP_INTERVAL"),
		SweepLockTTL:          v.GetDuration("SWEEP_LOCK_TTL"),
		AMQPURL:               v.GetString("RABBITMQ_URL"),
		NotifyQueue:           v.GetString("NOTIFY_QUEUE"),
		Redis:                 loadRedis(v),
		RateLimit:             loadRateLimit(v),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
	}
	if c.AMQPURL == "" {
		c.AMQPURL = v.GetString("AMQP_URL")
	}
	return c, c.validate()
}

func (c Config) validate() error {
	var missing []string
	req := func(key, val string) {
		if val == "" {
			missing = append(missing, key)
		}
	}
	req("JWT_SECRET", c.JWTSecret)
	switch c.StorageDriver {
	case DriverMySQL:
		req("DB_USER", c.DBUser)
		req("DB_HOST", c.DBHost)
		req("DB_NAME", c.DBName)
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.TemporaryValidityDays < 1 {
		return errors.New("config: TEMPORARY_VALIDITY_DAYS must be positive")
	}
	return nil
}
