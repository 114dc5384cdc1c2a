package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesPrecedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"9000","db_driver":"sqlite","rate_limit":50}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nDB_DRIVER=memory\nMONGO_DATABASE=\"dash\"\n"), 0o644))
	t.Setenv("MONGO_COLLECTION", "products")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "9000", get("APP_PORT", ""))
	assert.Equal(t, "memory", get("DB_DRIVER", ""))
	assert.Equal(t, "dash", get("MONGO_DATABASE", ""))
	assert.Equal(t, "products", get("MONGO_COLLECTION", ""))
	assert.Equal(t, "50", get("RATE_LIMIT", ""))
}

func TestLoadFromFilesMissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "")

	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.env")))

	assert.Equal(t, defaultDatabaseDriver, get("DB_DRIVER", defaultDatabaseDriver))
	assert.Equal(t, defaultMongoCollection, get("MONGO_COLLECTION", ""))
}

func TestDatabaseDriverFallsBackToMongo(t *testing.T) {
	Set("DB_DRIVER", "cassandra")
	t.Cleanup(func() { Set("DB_DRIVER", defaultDatabaseDriver) })

	assert.Equal(t, "mongo", DatabaseDriver())
}

func TestCORSOriginsSplits(t *testing.T) {
	Set("CORS_ORIGINS", " https://a.example , https://b.example ,")
	t.Cleanup(func() { Set("CORS_ORIGINS", "*") })

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())
}

func TestTrustedProxiesDefaultsEmpty(t *testing.T) {
	assert.Empty(t, TrustedProxies())

	Set("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.4")
	t.Cleanup(func() { Set("TRUSTED_PROXIES", "") })
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.4"}, TrustedProxies())
}
