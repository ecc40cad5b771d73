package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DriverPostgres selects gorm.io/driver/postgres
	DriverPostgres = "postgres"
	// DriverSQLite selects gorm.io/driver/sqlite
	DriverSQLite = "sqlite"

	serviceName = "movie-etl"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Path            string        `mapstructure:"path"`   // sqlite database file
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// InputConfig holds the locations of the flat files to ingest
type InputConfig struct {
	MoviesPath  string `mapstructure:"movies_path"`
	RatingsPath string `mapstructure:"ratings_path"`
}

// OMDbConfig holds the metadata service configuration.
// An empty APIKey disables enrichment.
type OMDbConfig struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxCalls  int           `mapstructure:"max_calls"`  // call budget per run
	CallDelay time.Duration `mapstructure:"call_delay"` // pause between consecutive calls
}

// MetricsConfig holds Prometheus Pushgateway configuration.
// An empty PushgatewayURL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	JobName        string `mapstructure:"job_name"`
}

// ETLConfig holds configuration for the movie-etl command
type ETLConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Input      InputConfig    `mapstructure:"input"`
	OMDb       OMDbConfig     `mapstructure:"omdb"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`
}

// LoadETLConfig loads configuration for movie-etl
func LoadETLConfig(configFile string, envPath string) (*ETLConfig, error) {
	v := configureViper(serviceName, configFile, envPath)

	// Set defaults
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "movies.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("input.movies_path", "data/movies.csv")
	v.SetDefault("input.ratings_path", "data/ratings.csv")
	v.SetDefault("omdb.url", "http://www.omdbapi.com/")
	v.SetDefault("omdb.timeout", "10s")
	v.SetDefault("omdb.max_calls", 50)
	v.SetDefault("omdb.call_delay", "500ms")
	v.SetDefault("metrics.job_name", serviceName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var cfg ETLConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *ETLConfig) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return errors.New("database.host is required for postgres")
		}
		if c.Database.DBName == "" {
			return errors.New("database.dbname is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if c.Input.MoviesPath == "" || c.Input.RatingsPath == "" {
		return errors.New("input.movies_path and input.ratings_path are required")
	}
	if c.OMDb.MaxCalls < 0 {
		return errors.New("omdb.max_calls must not be negative")
	}
	if c.OMDb.CallDelay < 0 {
		return errors.New("omdb.call_delay must not be negative")
	}
	if c.OMDb.APIKey != "" && c.OMDb.URL == "" {
		return errors.New("omdb.url is required when omdb.api_key is set")
	}

	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("MOVIE_ETL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.driver",
		"database.path",
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Input
		"input.movies_path",
		"input.ratings_path",
		// OMDb
		"omdb.url",
		"omdb.timeout",
		"omdb.max_calls",
		"omdb.call_delay",
		// Metrics
		"metrics.pushgateway_url",
		"metrics.job_name",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	// The bare OMDB_API_KEY variable is accepted as well
	_ = v.BindEnv("omdb.api_key", "MOVIE_ETL_OMDB_API_KEY", "OMDB_API_KEY")
}

// loadEnv loads environment variables from the env directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string for the configured driver
func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedactedDSN returns the connection string without the password, for logging
func (c *DatabaseConfig) RedactedDSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}

	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.DBName, c.SSLMode)
}
