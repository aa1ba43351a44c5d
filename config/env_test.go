package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func loadTemp(t *testing.T, appJSON, dotEnv string) {
	t.Helper()
	// Consume the one-time load so it cannot overwrite the temp values.
	_ = Load()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "app.json", appJSON)
	env := writeFile(t, dir, ".env", dotEnv)
	require.NoError(t, loadFromFiles(cfg, env))
	t.Cleanup(func() { _ = loadFromFiles(filepath.Join(dir, "none.json"), filepath.Join(dir, "none.env")) })
}

func TestDotEnvOverridesJSON(t *testing.T) {
	loadTemp(t,
		`{"db_driver": "postgres", "sync_concurrency": 4, "app_port": "9000"}`,
		"# local\nDB_DRIVER=\"sqlite\"\nSYNC_BATCH_SIZE=25\n")

	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, "9000", AppPort())

	s := Sync()
	assert.Equal(t, 4, s.Concurrency)
	assert.Equal(t, 25, s.BatchSize)
	assert.Equal(t, 2, s.MaxAttempts)
}

func TestEnvironmentWinsOverFiles(t *testing.T) {
	loadTemp(t, `{}`, "SYNC_RETRY_BACKOFF=2s\n")
	t.Setenv("SYNC_RETRY_BACKOFF", "50ms")
	t.Setenv("LOOKUP_CACHE_TTL", "0s")

	s := Sync()
	assert.Equal(t, 50*time.Millisecond, s.RetryBackoff)
	assert.Equal(t, time.Duration(0), s.LookupTTL)
}

func TestInvalidNumbersFallBack(t *testing.T) {
	loadTemp(t, `{}`, "SYNC_CONCURRENCY=-3\nSYNC_RETRY_BACKOFF=soon\n")

	s := Sync()
	assert.Equal(t, 10, s.Concurrency)
	assert.Equal(t, 500*time.Millisecond, s.RetryBackoff)
}

func TestUnknownDriverFallsBackToSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())
}

func TestSchemaOverrides(t *testing.T) {
	t.Setenv("ORDERS_TABLE", "job_orders")
	t.Setenv("ORDERS_COL_PLATE_NO", "plate_number")

	s := Schema()
	assert.Equal(t, "job_orders", s.Orders.Name)
	assert.Equal(t, "id", s.Orders.Key)
	assert.Equal(t, "plate_number", s.Orders.Col("plate_no"))
	assert.Equal(t, "ink", s.Orders.Col("ink"))
	assert.Equal(t, "products", s.Products.Name)
	assert.Equal(t, "gsm", s.GSM.Name)
}

func TestColDefaultsToLogicalName(t *testing.T) {
	ts := TableSchema{Columns: map[string]string{"ups": ""}}
	assert.Equal(t, "ups", ts.Col("ups"))
	assert.Equal(t, "anything", ts.Col("anything"))
}

func TestCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())
}
