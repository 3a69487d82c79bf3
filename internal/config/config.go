package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	// EnvPrefix marks the environment variables read as config. Nested keys
	// use "__", e.g. HELLO_DAG_AWS__ENDPOINT sets aws.endpoint.
	EnvPrefix       string = "HELLO_DAG_"
	EnvDelimiter    string = "__"
	ConfigDelimiter string = "."
)

type Config struct {
	Log     LogConfig     `koanf:"log"`
	AWS     AWSConfig     `koanf:"aws"`
	Server  ServerConfig  `koanf:"server"`
	Breaker BreakerConfig `koanf:"breaker"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type AWSConfig struct {
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	UsePathStyle    bool   `koanf:"use_path_style"`
	MaxAttempts     int    `koanf:"max_attempts"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":             "info",
		"log.format":            "json",
		"aws.region":            "",
		"aws.endpoint":          "",
		"aws.use_path_style":    false,
		"aws.max_attempts":      0,
		"server.port":           8080,
		"breaker.max_requests":  3,
		"breaker.interval":      "10s",
		"breaker.timeout":       "30s",
		"breaker.min_requests":  3,
		"breaker.failure_ratio": 0.6,
	}
}

// Load reads defaults, then the optional YAML file at path, then environment
// variables. Later sources win.
func Load(path string) (*Config, error) {
	k := koanf.New(ConfigDelimiter)

	if err := k.Load(confmap.Provider(defaults(), ConfigDelimiter), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ConfigDelimiter, envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, strings.ToLower(EnvDelimiter), ConfigDelimiter)
}
