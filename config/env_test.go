package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	require.NoError(t, Load())
	t.Cleanup(func() {
		mu.Lock()
		v = newViper()
		mu.Unlock()
	})
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "8000", AppPort())
	assert.Equal(t, "", GRPCPort())
	assert.Equal(t, 0, RateLimit())
	assert.Equal(t, int64(4<<20), MaxBodyBytes())
	assert.Equal(t, 5*time.Minute, CacheTTL())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9001")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("CACHE_TTL", "30s")

	assert.Equal(t, "9001", AppPort())
	assert.Equal(t, 10, RateLimit())
	assert.Equal(t, 30*time.Second, CacheTTL())
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	assert.Empty(t, TrustedProxies())

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7,bogus, ::1")
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
		netip.MustParsePrefix("::1/128"),
	}, TrustedProxies())
}

func TestDatabaseDriverFallsBackToSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("DATABASE_DSN", "")

	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, "products.db", DatabaseDSN())
}

func TestDatabaseDSNPerDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "")
	assert.Equal(t, "postgres", DatabaseDriver())
	assert.Contains(t, DatabaseDSN(), "dbname=inventory")

	t.Setenv("DATABASE_DSN", "host=db")
	assert.Equal(t, "host=db", DatabaseDSN())
}

func TestCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())

	t.Setenv("CORS_ORIGINS", " , ")
	assert.Equal(t, []string{"*"}, CORSOrigins())
}

func TestInvalidNumbersUseFallback(t *testing.T) {
	t.Setenv("RATE_LIMIT", "-3")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("CACHE_TTL", "soon")

	assert.Equal(t, 0, RateLimit())
	assert.Equal(t, 0, RedisDB())
	assert.Equal(t, 5*time.Minute, CacheTTL())
}

func TestLoadFromFiles(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"INVENTORY_TEST_JSON":"from-json"}`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("INVENTORY_TEST_DOTENV=\"from-dotenv\"\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("INVENTORY_TEST_DOTENV") })

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "from-json", Get("INVENTORY_TEST_JSON", ""))
	assert.Equal(t, "from-dotenv", Get("INVENTORY_TEST_DOTENV", ""))
}

func TestLoadFromFilesIgnoresMissingFiles(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()

	err := loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env"))
	assert.NoError(t, err)
	assert.Equal(t, "fallback", Get("INVENTORY_TEST_MISSING", "fallback"))
}
