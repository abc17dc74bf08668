package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriverDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 200, c.MaxRoomSeats)
	assert.Equal(t, 30, c.TemporaryValidityDays)
	assert.Equal(t, time.Hour, c.SweepInterval)
	assert.Equal(t, "seatplan.notifications", c.NotifyQueue)
	assert.Equal(t, 60, c.RateLimit.Capacity)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("STORAGE_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestFromViper_AMQPFallbackAndRedisHost(t *testing.T) {
	v := newViper()
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("JWT_SECRET", "x")
	v.Set("AMQP_URL", "amqp://guest:guest@mq:5672/")
	v.Set("REDIS_HOST", "cache")
	v.Set("REDIS_PORT", "6380")
	v.Set("RATE_LIMIT_BURST", 5)

	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", c.AMQPURL)
	assert.Equal(t, "cache:6380", c.Redis.Addr)
	assert.Equal(t, 5, c.RateLimit.Capacity)
}

func TestFromViper_UnknownDriver(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "sqlite")
	v.Set("JWT_SECRET", "x")
	_, err := FromViper(v)
	require.Error(t, err)
}
