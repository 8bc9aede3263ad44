package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"port"`
	DBDSN     string `mapstructure:"db_dsn"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogOutput string `mapstructure:"log_output"`
	SeedDemo  bool   `mapstructure:"seed_demo"`

	RateLimitMax    int           `mapstructure:"rate_limit_max"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`

	ImportTimeout  time.Duration `mapstructure:"import_timeout"`
	ImportMaxBytes int64         `mapstructure:"import_max_bytes"`
}

var defaults = map[string]any{
	"port":              "8080",
	"db_dsn":            "marketplace.db", // sqlite file in project root
	"log_level":         "info",
	"log_format":        "json",
	"log_output":        "stdout",
	"seed_demo":         false,
	"rate_limit_max":    120,
	"rate_limit_window": time.Minute,
	"import_timeout":    15 * time.Second,
	"import_max_bytes":  int64(8 << 20),
}

// Load reads defaults, then an optional config.yaml (./ or ./config), then
// MARKET_* environment variables.
func Load() (Config, error) {
	vp := viper.New()
	for k, v := range defaults {
		vp.SetDefault(k, v)
	}

	vp.SetConfigName("config")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	vp.AddConfigPath("config")

	vp.SetEnvPrefix("MARKET")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
