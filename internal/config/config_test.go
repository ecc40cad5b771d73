package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every variable the loader reads and restores them after the test
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OMDB_API_KEY",
		"MOVIE_ETL_OMDB_API_KEY",
		"MOVIE_ETL_DEBUG",
		"MOVIE_ETL_DATABASE_DRIVER",
		"MOVIE_ETL_DATABASE_PATH",
		"MOVIE_ETL_DATABASE_HOST",
		"MOVIE_ETL_DATABASE_PORT",
		"MOVIE_ETL_DATABASE_DBNAME",
		"MOVIE_ETL_OMDB_MAX_CALLS",
		"MOVIE_ETL_OMDB_CALL_DELAY",
		"MOVIE_ETL_INPUT_MOVIES_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadETLConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *ETLConfig)
	}{
		{
			name: "valid postgres config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  driver: postgres
  host: localhost
  port: 5433
  user: etl
  password: secret
  dbname: movies
  sslmode: require
  max_open_conns: 4
input:
  movies_path: /data/ml/movies.csv
  ratings_path: /data/ml/ratings.csv
omdb:
  url: "https://omdb.example.com/"
  api_key: "abc123"
  timeout: 3s
  max_calls: 10
  call_delay: 250ms
metrics:
  pushgateway_url: "http://pushgateway:9091"
  job_name: nightly-movies
`,
			validate: func(t *testing.T, cfg *ETLConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, DriverPostgres, cfg.Database.Driver)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "movies", cfg.Database.DBName)
				assert.Equal(t, 4, cfg.Database.MaxOpenConns)
				assert.Equal(t, "/data/ml/movies.csv", cfg.Input.MoviesPath)
				assert.Equal(t, "/data/ml/ratings.csv", cfg.Input.RatingsPath)
				assert.Equal(t, "https://omdb.example.com/", cfg.OMDb.URL)
				assert.Equal(t, "abc123", cfg.OMDb.APIKey)
				assert.Equal(t, 3*time.Second, cfg.OMDb.Timeout)
				assert.Equal(t, 10, cfg.OMDb.MaxCalls)
				assert.Equal(t, 250*time.Millisecond, cfg.OMDb.CallDelay)
				assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.PushgatewayURL)
				assert.Equal(t, "nightly-movies", cfg.Metrics.JobName)
			},
		},
		{
			name:       "defaults",
			configFile: `debug: false`,
			validate: func(t *testing.T, cfg *ETLConfig) {
				assert.Equal(t, DriverSQLite, cfg.Database.Driver)
				assert.Equal(t, "movies.db", cfg.Database.Path)
				assert.Equal(t, "data/movies.csv", cfg.Input.MoviesPath)
				assert.Equal(t, "data/ratings.csv", cfg.Input.RatingsPath)
				assert.Equal(t, "http://www.omdbapi.com/", cfg.OMDb.URL)
				assert.Empty(t, cfg.OMDb.APIKey)
				assert.Equal(t, 10*time.Second, cfg.OMDb.Timeout)
				assert.Equal(t, 50, cfg.OMDb.MaxCalls)
				assert.Equal(t, 500*time.Millisecond, cfg.OMDb.CallDelay)
				assert.Equal(t, "movie-etl", cfg.Metrics.JobName)
				assert.Empty(t, cfg.Metrics.PushgatewayURL)
			},
		},
		{
			name:       "missing config file falls back to defaults",
			configFile: "",
			validate: func(t *testing.T, cfg *ETLConfig) {
				assert.Equal(t, DriverSQLite, cfg.Database.Driver)
				assert.Equal(t, 50, cfg.OMDb.MaxCalls)
			},
		},
		{
			name: "unsupported driver",
			configFile: `
database:
  driver: mysql
`,
			expectError: "unsupported database.driver",
		},
		{
			name: "postgres without host",
			configFile: `
database:
  driver: postgres
  dbname: movies
`,
			expectError: "database.host is required",
		},
		{
			name: "negative budget",
			configFile: `
omdb:
  max_calls: -1
`,
			expectError: "omdb.max_calls must not be negative",
		},
		{
			name: "invalid duration",
			configFile: `
omdb:
  call_delay: soon
`,
			expectError: "failed to unmarshal config",
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  driver: sqlite
			`,
			expectError: "failed to read config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			tmpDir := t.TempDir()

			configFile := filepath.Join(tmpDir, "nonexistent.yaml")
			if tt.configFile != "" {
				configFile = filepath.Join(tmpDir, "config.yaml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.configFile), 0600))
			}

			cfg, err := LoadETLConfig(configFile, tmpDir)

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
		redacted string
	}{
		{
			name: "postgres",
			config: DatabaseConfig{
				Driver:   DriverPostgres,
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
			redacted: "host=localhost port=5432 user=testuser dbname=testdb sslmode=disable",
		},
		{
			name: "sqlite",
			config: DatabaseConfig{
				Driver: DriverSQLite,
				Path:   "/var/lib/movies.db",
			},
			expected: "/var/lib/movies.db",
			redacted: "/var/lib/movies.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
			assert.Equal(t, tt.redacted, tt.config.RedactedDSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	isolateEnv(t)
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// .env values are loaded into the process environment and override the config file
	envContent := `MOVIE_ETL_DEBUG=true
MOVIE_ETL_DATABASE_PATH=/tmp/env.db
MOVIE_ETL_OMDB_MAX_CALLS=7
MOVIE_ETL_OMDB_CALL_DELAY=2s
OMDB_API_KEY=from-plain-env
`
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))

	configPath := filepath.Join(tmpDir, "config.yaml")
	configFile := `
debug: false
database:
  driver: sqlite
  path: /tmp/file.db
omdb:
  max_calls: 50
`
	require.NoError(t, os.WriteFile(configPath, []byte(configFile), 0600))

	cfg, err := LoadETLConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.OMDb.MaxCalls)
	assert.Equal(t, 2*time.Second, cfg.OMDb.CallDelay)
	assert.Equal(t, "from-plain-env", cfg.OMDb.APIKey)
}

func TestConfigPrefixedAPIKeyWins(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MOVIE_ETL_OMDB_API_KEY", "prefixed")
	t.Setenv("OMDB_API_KEY", "plain")

	cfg, err := LoadETLConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.OMDb.APIKey)
}
