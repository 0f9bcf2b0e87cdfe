// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Vocabulary VocabularyConfig        `mapstructure:"vocabulary"`
	Query      QueryConfig             `mapstructure:"query"`
	Cache      CacheConfig             `mapstructure:"cache"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Server     ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Query Pipeline Configuration ---

const (
	VocabularySourceConfig   = "config"
	VocabularySourcePostgres = "postgres"
)

// VocabularyConfig selects where entity and metric names come from. With
// source "config" the lists below are used as-is; with "postgres" they are
// read from the query_vocabulary table.
type VocabularyConfig struct {
	Source   string   `mapstructure:"source"`
	Entities []string `mapstructure:"entities"`
	Metrics  []string `mapstructure:"metrics"`
}

type QueryConfig struct {
	FuzzyThreshold         int    `mapstructure:"fuzzy_threshold"`
	HistorySize            int    `mapstructure:"history_size"`
	Timezone               string `mapstructure:"timezone"`
	NormalizeAbsoluteDates bool   `mapstructure:"normalize_absolute_dates"`
}

// Location resolves Timezone, falling back to the local zone.
func (q QueryConfig) Location() *time.Location {
	if q.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // seconds
}

// Stock vocabularies used when none are configured.
var (
	DefaultEntities = []string{"Flipkart", "Amazon", "Walmart", "Apple", "Microsoft"}
	DefaultMetrics  = []string{"GMV", "revenue", "profit", "sales", "loss"}
)
