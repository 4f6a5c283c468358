package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dshills/unisearch/internal/searcher"
)

// EnvPrefix prefixes environment overrides, e.g. UNISEARCH_DATABASE_DSN
const EnvPrefix = "UNISEARCH"

// ErrInvalidConfig is returned when a loaded configuration cannot be used
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the configuration of the CLI and the MCP server
type Config struct {
	Database *Database
	Search   *Search
	Sources  []Source
	Cache    *Cache
	Logger   *Logger
	Viper    *viper.Viper
}

// Database configures the connection
type Database struct {
	Engine          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// Search holds the defaults applied to every search
type Search struct {
	Order            string
	OrderByModel     []string
	BeginWildcard    bool
	EndWildcard      bool
	IgnoreCase       bool
	SoundsLike       bool
	ParseTerm        bool
	AllowEmpty       bool
	PhoneticFallback bool
	PerPage          int
	PageName         string
	TypeKey          string
}

// Source registers one model of the catalog
type Source struct {
	Model       string   `mapstructure:"model"`
	Columns     []string `mapstructure:"columns"`
	OrderColumn string   `mapstructure:"order_column"`
	FullText    bool     `mapstructure:"full_text"`
	Mode        string   `mapstructure:"mode"`
	Language    string   `mapstructure:"language"`
	Relation    string   `mapstructure:"relation"`
}

// Cache configures the MCP response cache
type Cache struct {
	Enabled bool
	Size    int
	TTL     time.Duration
}

// Logger configures zap
type Logger struct {
	Level       string
	Development bool
}

// Load reads the configuration file at path. With an empty path it looks for
// unisearch.yaml in the working directory and $HOME/.unisearch, and falls back
// to defaults when none exists. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("unisearch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".unisearch"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	sources, err := getSources(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: getDatabaseConfig(v),
		Search:   getSearchConfig(v),
		Sources:  sources,
		Cache:    getCacheConfig(v),
		Logger:   getLoggerConfig(v),
		Viper:    v,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := searcher.DefaultConfiguration()

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.dsn", "unisearch.db")
	v.SetDefault("database.migrate", true)

	v.SetDefault("search.order", defaults.Direction.String())
	v.SetDefault("search.begin_wildcard", defaults.BeginWildcard)
	v.SetDefault("search.end_wildcard", defaults.EndWildcard)
	v.SetDefault("search.ignore_case", defaults.IgnoreCase)
	v.SetDefault("search.sounds_like", defaults.SoundsLike)
	v.SetDefault("search.parse_term", defaults.ParseTerm)
	v.SetDefault("search.allow_empty", defaults.AllowEmpty)
	v.SetDefault("search.phonetic_fallback", defaults.PhoneticFallback)
	v.SetDefault("search.per_page", searcher.DefaultPerPage)
	v.SetDefault("search.page_name", searcher.DefaultPageName)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", time.Minute)

	v.SetDefault("logger.level", "info")
}

func getDatabaseConfig(v *viper.Viper) *Database {
	return &Database{
		Engine:          v.GetString("database.engine"),
		DSN:             v.GetString("database.dsn"),
		MaxOpenConns:    getIntOrDefault(v, "database.max_open_conns", 10),
		MaxIdleConns:    getIntOrDefault(v, "database.max_idle_conns", 5),
		ConnMaxLifetime: getDurationOrDefault(v, "database.conn_max_lifetime", 30*time.Minute),
		Migrate:         v.GetBool("database.migrate"),
	}
}

func getSearchConfig(v *viper.Viper) *Search {
	return &Search{
		Order:            v.GetString("search.order"),
		OrderByModel:     v.GetStringSlice("search.order_by_model"),
		BeginWildcard:    v.GetBool("search.begin_wildcard"),
		EndWildcard:      v.GetBool("search.end_wildcard"),
		IgnoreCase:       v.GetBool("search.ignore_case"),
		SoundsLike:       v.GetBool("search.sounds_like"),
		ParseTerm:        v.GetBool("search.parse_term"),
		AllowEmpty:       v.GetBool("search.allow_empty"),
		PhoneticFallback: v.GetBool("search.phonetic_fallback"),
		PerPage:          v.GetInt("search.per_page"),
		PageName:         v.GetString("search.page_name"),
		TypeKey:          getStringOrDefault(v, "search.type_key", ""),
	}
}

func getSources(v *viper.Viper) ([]Source, error) {
	var sources []Source
	if err := v.UnmarshalKey("sources", &sources); err != nil {
		return nil, fmt.Errorf("failed to decode sources: %w", err)
	}
	return sources, nil
}

func getCacheConfig(v *viper.Viper) *Cache {
	return &Cache{
		Enabled: v.GetBool("cache.enabled"),
		Size:    v.GetInt("cache.size"),
		TTL:     v.GetDuration("cache.ttl"),
	}
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:       v.GetString("logger.level"),
		Development: getBoolOrDefault(v, "logger.development", false),
	}
}

// Validate checks the values a search cannot run without
func (c *Config) Validate() error {
	if _, err := searcher.ParseDirection(c.Search.Order); err != nil {
		return fmt.Errorf("%w: search.order: %v", ErrInvalidConfig, err)
	}
	if c.Search.PerPage < 1 {
		return fmt.Errorf("%w: search.per_page must be positive", ErrInvalidConfig)
	}
	if c.Cache.Enabled && c.Cache.Size < 1 {
		return fmt.Errorf("%w: cache.size must be positive", ErrInvalidConfig)
	}
	for i, src := range c.Sources {
		if src.Model == "" {
			return fmt.Errorf("%w: sources[%d] has no model", ErrInvalidConfig, i)
		}
		if len(src.Columns) == 0 {
			return fmt.Errorf("%w: sources[%d] (%s) has no columns", ErrInvalidConfig, i, src.Model)
		}
	}
	return nil
}
