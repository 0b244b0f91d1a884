package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("FAVCART_INT", "42")
	t.Setenv("FAVCART_BAD_INT", "x")
	t.Setenv("FAVCART_BOOL", "false")
	t.Setenv("FAVCART_DUR", "90s")

	assert.Equal(t, 42, EnvIntDefault("FAVCART_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("FAVCART_BAD_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("FAVCART_UNSET_INT", 7))
	assert.False(t, EnvBoolDefault("FAVCART_BOOL", true))
	assert.True(t, EnvBoolDefault("FAVCART_UNSET_BOOL", true))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("FAVCART_DUR", time.Second))
	assert.Equal(t, "def", EnvDefault("FAVCART_UNSET_STR", "def"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("SERVER_PORT", "")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestValidate_ReportsAllMissing(t *testing.T) {
	t.Parallel()

	cfg := Config{DBDriver: "mysql", ImageBackend: "s3"}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"DATABASE_URL", "DB_DRIVER", "JWT_SECRET", "JWT_REFRESH_SECRET", "S3_BUCKET"} {
		assert.Contains(t, err.Error(), want)
	}
}
