package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/pkg/config"
)

func TestLoad_SinSecret_RetornaError(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_AliasDeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("DATABASE_PATH", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("SWEEP_INTERVAL_MINUTES", "15")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.DB.InMemory(), "DATABASE_PATH debe actuar como alias de DATABASE_URL")
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxImageBytes())
	assert.Equal(t, int64(40_000_000), cfg.Storage.MaxPixels)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.True(t, cfg.DB.ForceIPv4)
	assert.Equal(t, 500*time.Millisecond, cfg.DB.SlowQuery)
}

func TestLoad_PoolDesdeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("DB_FORCE_IPV4", "false")
	t.Setenv("DB_SLOW_QUERY_MS", "0")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.DB.MaxConns)
	assert.False(t, cfg.DB.ForceIPv4)
	assert.Zero(t, cfg.DB.SlowQuery)
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "pedidos", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/pedidos?sslmode=disable", c.ConnectionString())
}
