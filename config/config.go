package config

import (
	"fmt"
	"log"
	"net"

	"github.com/spf13/viper"
)

// Result store backends selectable through RESULTS_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV:
//
//	SERVER_HOST=
//	SERVER_PORT=34567
//	HTTP_PORT=8080
//	MAX_FRAME_BYTES=1048576
//	RESULTS_BACKEND=file
//	RESULTS_FILE=./data/datasource.txt
//	SQLITE_PATH=./data/results.db
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=admin
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=profitpulse
//	POSTGRES_SSLMODE=disable
type Config struct {
	Server   ServerConfig   // TCP listener and ops HTTP API
	Results  ResultsConfig  // where analysis results are persisted
	Postgres PostgresConfig // PostgreSQL connection settings (postgres backend only)
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Host          string // interface to bind; empty means all
	Port          string // TCP analysis protocol port (e.g., "34567")
	HTTPPort      string // ops HTTP API port (e.g., "8080")
	MaxFrameBytes int    // upper bound for one request frame
}

// Addr returns the host:port the TCP listener binds to.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ResultsConfig selects and locates the result store.
type ResultsConfig struct {
	Backend    string // file | postgres | sqlite
	File       string // path of the text log (file backend)
	SQLitePath string // database path (sqlite backend)
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_HOST", "")
	viper.SetDefault("SERVER_PORT", "34567")
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("MAX_FRAME_BYTES", 1<<20)

	viper.SetDefault("RESULTS_BACKEND", BackendFile)
	viper.SetDefault("RESULTS_FILE", "./data/datasource.txt")
	viper.SetDefault("SQLITE_PATH", "./data/results.db")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "profitpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Host:          viper.GetString("SERVER_HOST"),
			Port:          viper.GetString("SERVER_PORT"),
			HTTPPort:      viper.GetString("HTTP_PORT"),
			MaxFrameBytes: viper.GetInt("MAX_FRAME_BYTES"),
		},
		Results: ResultsConfig{
			Backend:    viper.GetString("RESULTS_BACKEND"),
			File:       viper.GetString("RESULTS_FILE"),
			SQLitePath: viper.GetString("SQLITE_PATH"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// missingFields lists every required variable that is unset for the
// selected backend.
func missingFields(c Config) []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Server.HTTPPort == "" {
		missing = append(missing, "HTTP_PORT")
	}
	if c.Server.MaxFrameBytes <= 0 {
		missing = append(missing, "MAX_FRAME_BYTES")
	}

	switch c.Results.Backend {
	case BackendFile:
		if c.Results.File == "" {
			missing = append(missing, "RESULTS_FILE")
		}
	case BackendSQLite:
		if c.Results.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	case BackendPostgres:
		if c.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if c.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if c.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	default:
		missing = append(missing, "RESULTS_BACKEND")
	}

	return missing
}

// validateConfig terminates the application when required variables are missing.
func validateConfig() {
	if missing := missingFields(AppConfig); len(missing) > 0 {
		log.Fatalf("missing or invalid required environment variables: %v\n", missing)
	}
}
