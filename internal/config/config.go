// Package config loads service configuration from a toml file with
// environment-variable overrides (LUMALETTER_* keys).
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jpineda/lumaletter/internal/ingest"
	"github.com/jpineda/lumaletter/internal/newsletter"
)

// Config is the top-level service configuration.
type Config struct {
	Server ServerConfig      `mapstructure:"server"`
	Ingest ingest.Config     `mapstructure:"ingest"`
	AI     newsletter.Config `mapstructure:"ai"`
	Log    LogConfig         `mapstructure:"log"`
}

// ServerConfig holds HTTP boundary settings.
type ServerConfig struct {
	Listen         string   `mapstructure:"listen"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// FetchRetries bounds the boundary-level retry of transient source
	// failures. The adapters themselves never retry.
	FetchRetries uint64 `mapstructure:"fetch_retries"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and environment.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.listen", "127.0.0.1:8000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.fetch_retries", 2)

	v.SetDefault("ingest.source", "scrape")
	v.SetDefault("ingest.luma.base_url", ingest.DefaultAPIBaseURL)
	v.SetDefault("ingest.luma.timeout", 30*time.Second)
	v.SetDefault("ingest.scrape.base_url", ingest.DefaultScrapeBaseURL)
	v.SetDefault("ingest.scrape.timeout", 30*time.Second)

	v.SetDefault("ai.model", "gpt-4")
	v.SetDefault("ai.max_tokens", 1000)
	v.SetDefault("ai.temperature", 0.7)

	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("lumaletter")
		v.AddConfigPath("/etc/lumaletter")
		v.AddConfigPath("$HOME/.config/lumaletter")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LUMALETTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
