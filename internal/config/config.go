// Package config loads application configuration from a YAML file and
// environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jobhive/jobhive/internal/logging/logger"
)

// Config aggregates all configuration sections.
type Config struct {
	AppName string         `json:"app_name" yaml:"app_name"`
	RunMode string         `json:"run_mode" yaml:"run_mode"`
	Server  *Server        `json:"server" yaml:"server"`
	Logger  *logger.Config `json:"logger" yaml:"logger"`
	Data    *Data          `json:"data" yaml:"data"`
	Auth    *Auth          `json:"auth" yaml:"auth"`
	Payment *Payment       `json:"payment" yaml:"payment"`
	Email   *Email         `json:"email" yaml:"email"`
	Storage *Storage       `json:"storage" yaml:"storage"`
}

// Server holds the HTTP listener configuration.
type Server struct {
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from the given path. When the path is empty it
// searches for config.yaml in the working directory. Environment variables
// prefixed with JOBHIVE_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("jobhive")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, yamlTags); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// yamlTags makes Unmarshal match the yaml field tags, so file keys and the
// JOBHIVE_ environment overrides share one naming scheme.
func yamlTags(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
}

// Watch re-reads configuration on file change and invokes onChange with the
// freshly parsed config.
func Watch(path string, onChange func(*Config)) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	v.OnConfigChange(func(fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg, yamlTags); err == nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "jobhive")
	v.SetDefault("run_mode", "release")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("logger.level", 4)
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("data.driver", "postgres")
	v.SetDefault("payment.currency", "eur")
}
