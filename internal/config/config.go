package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Scheduler SchedulerConfig
	Public    PublicConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// SessionConfig holds the shared secret the storefront platform signs
// admin session tokens with.
type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

type SchedulerConfig struct {
	IntervalMinutes int  `mapstructure:"interval_minutes"`
	RunOnStart      bool `mapstructure:"run_on_start"`
}

// Interval returns the sweep interval as a duration.
func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// PublicConfig tunes the storefront-facing resolve endpoint.
type PublicConfig struct {
	RateLimitRPS        float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst      int     `mapstructure:"rate_limit_burst"`
	CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds"`
	CacheMaxAgeSeconds  int     `mapstructure:"cache_max_age_seconds"`
	ImpressionQueueSize int     `mapstructure:"impression_queue_size"`
}

func (c PublicConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("scheduler.interval_minutes", 5)
	viper.SetDefault("scheduler.run_on_start", true)
	viper.SetDefault("public.rate_limit_rps", 50)
	viper.SetDefault("public.rate_limit_burst", 100)
	viper.SetDefault("public.cache_ttl_seconds", 30)
	viper.SetDefault("public.cache_max_age_seconds", 300)
	viper.SetDefault("public.impression_queue_size", 1024)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
