// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Crawler, Query, Tokenizer, Report, Output, Postgres, Kafka,
// Redis, Server, etc.).
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Query     QueryConfig     `yaml:"query"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Report    ReportConfig    `yaml:"report"`
	Output    OutputConfig    `yaml:"output"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// CrawlerConfig bounds a crawl session and controls how politely pages are
// requested.
type CrawlerConfig struct {
	SeedURL           string        `yaml:"seedUrl"`
	MaxPages          int           `yaml:"maxPages"`
	Workers           int           `yaml:"workers"`
	PolitenessDelay   time.Duration `yaml:"politenessDelay"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	FetchTimeout      time.Duration `yaml:"fetchTimeout"`
	FetchAttempts     int           `yaml:"fetchAttempts"`
	MaxBodyBytes      int64         `yaml:"maxBodyBytes"`
	UserAgent         string        `yaml:"userAgent"`
}

// QueryConfig holds the free-text query scored after the crawl.
type QueryConfig struct {
	Text string `yaml:"text"`
}

// TokenizerConfig selects the stemming rule set.
type TokenizerConfig struct {
	Stemmer string `yaml:"stemmer"`
}

// ReportConfig controls the derived report tables.
type ReportConfig struct {
	TopTerms int `yaml:"topTerms"`
}

// OutputConfig lists the file-based result sinks. Empty paths disable them.
type OutputConfig struct {
	XLSXPath   string `yaml:"xlsxPath"`
	SQLitePath string `yaml:"sqlitePath"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers"`
	ScoresTopic string   `yaml:"scoresTopic"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// ServerConfig holds HTTP server settings for the search service.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values. Validation is left to the caller so flags can be applied first.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the built-in configuration: twenty pages, one second
// between requests, a ten second fetch timeout.
func Default() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			MaxPages:        20,
			Workers:         1,
			PolitenessDelay: time.Second,
			FetchTimeout:    10 * time.Second,
			FetchAttempts:   1,
			MaxBodyBytes:    10 << 20,
			UserAgent:       "rank-rangers-crawler/1.0",
		},
		Tokenizer: TokenizerConfig{
			Stemmer: "porter",
		},
		Report: ReportConfig{
			TopTerms: 15,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "rankrangers",
			User:            "rankrangers",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:     []string{"localhost:9092"},
			ScoresTopic: "tfidf-scores",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate reports every problem in cfg at once.
func (c *Config) Validate() error {
	var err error
	if c.Crawler.SeedURL == "" {
		err = multierror.Append(err, fmt.Errorf("%w: crawler seed URL is required", apperrors.ErrInvalidConfig))
	} else if u, perr := url.Parse(c.Crawler.SeedURL); perr != nil || u.Scheme == "" || u.Host == "" {
		err = multierror.Append(err, fmt.Errorf("%w: crawler seed URL %q is not absolute", apperrors.ErrInvalidConfig, c.Crawler.SeedURL))
	}
	if c.Crawler.MaxPages <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: crawler max pages must be positive, got %d", apperrors.ErrInvalidConfig, c.Crawler.MaxPages))
	}
	if c.Crawler.Workers <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: crawler workers must be positive, got %d", apperrors.ErrInvalidConfig, c.Crawler.Workers))
	}
	if c.Crawler.PolitenessDelay < 0 {
		err = multierror.Append(err, fmt.Errorf("%w: politeness delay must not be negative", apperrors.ErrInvalidConfig))
	}
	if c.Crawler.RequestsPerSecond < 0 {
		err = multierror.Append(err, fmt.Errorf("%w: requests per second must not be negative", apperrors.ErrInvalidConfig))
	}
	switch c.Tokenizer.Stemmer {
	case "porter", "suffix":
	default:
		err = multierror.Append(err, fmt.Errorf("%w: unknown stemmer %q (want porter or suffix)", apperrors.ErrInvalidConfig, c.Tokenizer.Stemmer))
	}
	if c.Report.TopTerms < 0 {
		err = multierror.Append(err, fmt.Errorf("%w: report top terms must not be negative", apperrors.ErrInvalidConfig))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		err = multierror.Append(err, fmt.Errorf("%w: kafka enabled without brokers", apperrors.ErrInvalidConfig))
	}
	return err
}

// applyEnvOverrides reads RR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RR_CRAWLER_SEED_URL"); v != "" {
		cfg.Crawler.SeedURL = v
	}
	if v := os.Getenv("RR_CRAWLER_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Crawler.MaxPages = n
		}
	}
	if v := os.Getenv("RR_CRAWLER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Crawler.Workers = n
		}
	}
	if v := os.Getenv("RR_CRAWLER_POLITENESS_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Crawler.PolitenessDelay = d
		}
	}
	if v := os.Getenv("RR_QUERY"); v != "" {
		cfg.Query.Text = v
	}
	if v := os.Getenv("RR_TOKENIZER_STEMMER"); v != "" {
		cfg.Tokenizer.Stemmer = v
	}
	if v := os.Getenv("RR_OUTPUT_XLSX"); v != "" {
		cfg.Output.XLSXPath = v
	}
	if v := os.Getenv("RR_OUTPUT_SQLITE"); v != "" {
		cfg.Output.SQLitePath = v
	}
	if v := os.Getenv("RR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("RR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("RR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("RR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RR_SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("RR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
