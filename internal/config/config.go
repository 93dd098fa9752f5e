// Package config loads application configuration from an optional
// config.yaml with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the provider API.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Store  StoreConfig  `mapstructure:"store"`
	Search SearchConfig `mapstructure:"search"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type KafkaConfig struct {
	Broker string `mapstructure:"broker"`
}

type StoreConfig struct {
	CatalogFile   string `mapstructure:"catalog_file"`
	RejectionsDir string `mapstructure:"rejections_dir"`
}

type SearchConfig struct {
	// MinThreshold is the result count below which the next locality tier
	// is pulled into the candidate set.
	MinThreshold int `mapstructure:"min_threshold"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml from the working directory when present and
// applies PROVIDERHUB_* environment overrides on top of the defaults.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("providerhub")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No file is fine: defaults plus environment.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":5004")

	viper.SetDefault("redis.addr", "redis:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)

	viper.SetDefault("kafka.broker", "kafka:9092")

	viper.SetDefault("store.catalog_file", "./data/catalog.json")
	viper.SetDefault("store.rejections_dir", "./data/rejections")

	viper.SetDefault("search.min_threshold", 5)

	viper.SetDefault("log.level", "info")
}
