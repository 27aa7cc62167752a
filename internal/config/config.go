package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	AddressBook AddressBookConfig `yaml:"address_book" mapstructure:"address_book"`
	Parser      ParserConfig      `yaml:"parser" mapstructure:"parser"`
	Resolver    ResolverConfig    `yaml:"resolver" mapstructure:"resolver"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the recipient spreadsheet and its columns.
type InputConfig struct {
	Path       string        `yaml:"path" mapstructure:"path"`
	Sheet      string        `yaml:"sheet" mapstructure:"sheet"`
	SheetIndex int           `yaml:"sheet_index" mapstructure:"sheet_index"`
	SkipRows   int           `yaml:"skip_rows" mapstructure:"skip_rows"`
	Columns    ColumnsConfig `yaml:"columns" mapstructure:"columns"`
}

// ColumnsConfig names the spreadsheet columns.
type ColumnsConfig struct {
	ManagementNo  string `yaml:"management_no" mapstructure:"management_no"`
	Name          string `yaml:"name" mapstructure:"name"`
	PickupAddress string `yaml:"pickup_address" mapstructure:"pickup_address"`
	Phone         string `yaml:"phone" mapstructure:"phone"`
}

// AddressBookConfig locates the address-book CSV snapshot.
type AddressBookConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ParserConfig points at an optional YAML rules override.
type ParserConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// ResolverConfig orders the disambiguation tie-break signals.
type ResolverConfig struct {
	Signals []string `yaml:"signals" mapstructure:"signals"`
}

// BatchConfig tunes concurrent row processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ExportConfig configures the audit CSV export.
type ExportConfig struct {
	ProgressDir string `yaml:"progress_dir" mapstructure:"progress_dir"`
}

// StoreConfig configures the run database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port       int     `yaml:"port" mapstructure:"port"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst      int     `yaml:"burst" mapstructure:"burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PICKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.sheet_index", 0)
	v.SetDefault("input.skip_rows", 0)
	v.SetDefault("input.columns.management_no", "관리번호")
	v.SetDefault("input.columns.name", "성명")
	v.SetDefault("input.columns.pickup_address", "수거지주소")
	v.SetDefault("input.columns.phone", "연락처")
	v.SetDefault("resolver.signals", []string{"management_no", "phone_suffix", "address_overlap"})
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("export.progress_dir", "progress")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "pickup.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_sec", 10)
	v.SetDefault("server.burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
