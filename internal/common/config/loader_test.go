package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, VocabularySourceConfig, cfg.Vocabulary.Source)
	assert.Equal(t, DefaultEntities, cfg.Vocabulary.Entities)
	assert.Equal(t, DefaultMetrics, cfg.Vocabulary.Metrics)
	assert.Equal(t, 80, cfg.Query.FuzzyThreshold)
	assert.Equal(t, 6, cfg.Query.HistorySize)
	assert.False(t, cfg.Query.NormalizeAbsoluteDates)
	assert.Equal(t, 3600, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
}

func TestLoadFromFile_VocabularyAndQuery(t *testing.T) {
	path := writeConfig(t, `
vocabulary:
  entities: [Zomato, Swiggy]
  metrics: [orders]
query:
  fuzzy_threshold: 90
  history_size: 3
  timezone: UTC
  normalize_absolute_dates: true
workers:
  build-query-result:
    enabled: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zomato", "Swiggy"}, cfg.Vocabulary.Entities)
	assert.Equal(t, []string{"orders"}, cfg.Vocabulary.Metrics)
	assert.Equal(t, 90, cfg.Query.FuzzyThreshold)
	assert.Equal(t, 3, cfg.Query.HistorySize)
	assert.True(t, cfg.Query.NormalizeAbsoluteDates)
	assert.Equal(t, time.UTC, cfg.Query.Location())

	assert.False(t, IsWorkerEnabled(cfg, "build-query-result"))
	assert.True(t, IsWorkerEnabled(cfg, "extract-query-components"))
	assert.Equal(t, 3, GetWorkerConfig(cfg, "build-query-result").MaxRetries)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("QUERY_FUZZY_THRESHOLD", "85")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("TEST_REDIS_ADDR", "redis:6379")
	t.Setenv("TEST_REDIS_PASSWORD", "")

	path := writeConfig(t, `
query:
  fuzzy_threshold: 70
database:
  redis:
    address: ${TEST_REDIS_ADDR}
    password: ${TEST_REDIS_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 85, cfg.Query.FuzzyThreshold)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis:6379", cfg.Database.Redis.Address)
	assert.Equal(t, "", cfg.Database.Redis.Password)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown vocabulary source", "vocabulary:\n  source: csv\n", "vocabulary.source"},
		{"postgres source without host", "vocabulary:\n  source: postgres\n", "database.postgres.host"},
		{"threshold out of range", "query:\n  fuzzy_threshold: 150\n", "query.fuzzy_threshold"},
		{"negative history", "query:\n  history_size: -1\n", "query.history_size"},
		{"bad timezone", "query:\n  timezone: Mars/Olympus\n", "query.timezone"},
		{"cache without redis", "cache:\n  enabled: true\n", "database.redis.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateForWorkers(t *testing.T) {
	assert.Error(t, ValidateForWorkers(&Config{}))
	assert.NoError(t, ValidateForWorkers(&Config{Camunda: CamundaConfig{BrokerAddress: "localhost:26500"}}))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "vocab", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=vocab sslmode=disable", p.GetDSN())
}

func TestQueryConfig_LocationFallsBackToLocal(t *testing.T) {
	assert.Equal(t, time.Local, QueryConfig{}.Location())
	assert.Equal(t, time.Local, QueryConfig{Timezone: "Nowhere/Land"}.Location())
}
