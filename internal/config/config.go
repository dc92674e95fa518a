package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
}

// StoreConfig configures the database backend. Driver is sqlite, postgres, or none.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the upload API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	RatePerSec     float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst          int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ImportConfig tunes the import pipeline. Empty paths use the built-in tables.
type ImportConfig struct {
	PreviewRows               int     `yaml:"preview_rows" mapstructure:"preview_rows"`
	RulesPath                 string  `yaml:"rules_path" mapstructure:"rules_path"`
	AliasesPath               string  `yaml:"aliases_path" mapstructure:"aliases_path"`
	RelevanceWarningThreshold float64 `yaml:"relevance_warning_threshold" mapstructure:"relevance_warning_threshold"`
	Concurrency               int     `yaml:"concurrency" mapstructure:"concurrency"`
	MaxFetchMB                int     `yaml:"max_fetch_mb" mapstructure:"max_fetch_mb"`
	FetchRatePerSec           float64 `yaml:"fetch_rate_per_sec" mapstructure:"fetch_rate_per_sec"`
	// CSVDelimiter is a single character; empty means comma.
	CSVDelimiter  string        `yaml:"csv_delimiter" mapstructure:"csv_delimiter"`
	CSVLazyQuotes bool          `yaml:"csv_lazy_quotes" mapstructure:"csv_lazy_quotes"`
	Scoring       ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
}

// ScoringConfig overrides contact quality weights. Unset fields keep the
// built-in weights; seniority entries replace the matching level only.
type ScoringConfig struct {
	RelevanceFactor *float64           `yaml:"relevance_factor" mapstructure:"relevance_factor"`
	Email           *float64           `yaml:"email" mapstructure:"email"`
	Phone           *float64           `yaml:"phone" mapstructure:"phone"`
	LinkedIn        *float64           `yaml:"linkedin" mapstructure:"linkedin"`
	DecisionMaking  *float64           `yaml:"decision_making" mapstructure:"decision_making"`
	Seniority       map[string]float64 `yaml:"seniority" mapstructure:"seniority"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MEDIA_IMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "media-import.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.rate_per_sec", 5.0)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("import.preview_rows", 5)
	v.SetDefault("import.relevance_warning_threshold", 30.0)
	v.SetDefault("import.concurrency", 4)
	v.SetDefault("import.max_fetch_mb", 50)
	v.SetDefault("import.fetch_rate_per_sec", 2.0)
	v.SetDefault("import.csv_delimiter", "")
	v.SetDefault("import.csv_lazy_quotes", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is the command name:
// "import", "contacts", "rules", or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres", "none":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite, postgres, or none", c.Store.Driver))
	}
	if c.Store.Driver != "none" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	if c.Import.PreviewRows < 0 {
		errs = append(errs, "import.preview_rows must be >= 0")
	}
	if c.Import.RelevanceWarningThreshold < 0 || c.Import.RelevanceWarningThreshold > 100 {
		errs = append(errs, "import.relevance_warning_threshold must be between 0 and 100")
	}
	if d := c.Import.CSVDelimiter; d != "" {
		if r, n := utf8.DecodeRuneInString(d); n != len(d) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			errs = append(errs, fmt.Sprintf("import.csv_delimiter %q must be a single character other than a quote or newline", d))
		}
	}

	switch mode {
	case "import":
		if c.Import.Concurrency < 1 {
			errs = append(errs, "import.concurrency must be >= 1")
		}
		if c.Import.MaxFetchMB < 1 {
			errs = append(errs, "import.max_fetch_mb must be >= 1")
		}
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Server.MaxUploadMB < 1 {
			errs = append(errs, "server.max_upload_mb must be >= 1")
		}
		if c.Server.RatePerSec <= 0 || c.Server.Burst < 1 {
			errs = append(errs, "server.rate_per_sec and server.burst must be positive")
		}
	case "contacts", "rules":
	default:
		errs = append(errs, fmt.Sprintf("unknown mode %q", mode))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
