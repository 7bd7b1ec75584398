package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "postgres://postgres:@localhost:5432/catalogo?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("CACHE_TTL_SECONDS", "30")
	v.Set("DATABASE_URL", "postgres://u:p@db:5432/x")
	v.Set("DB_PASSWORD", "p@ss")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString())
	assert.Contains(t, cfg.DB.DSN(), "p%40ss")
}

func TestFromViper_RejectsInvalidValues(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", 70000)
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("DB_MAX_CONNS", 0)
	_, err = fromViper(v)
	assert.Error(t, err)
}
