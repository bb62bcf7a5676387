package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database       DatabaseConfig `mapstructure:"database"`
	Redis          RedisConfig    `mapstructure:"redis"`
	Logging        LoggingConfig  `mapstructure:"logging"`
	Recommendation Params         `mapstructure:"recommendation"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections" validate:"min=1"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Params carries every tunable the ranking path reads. It is passed into the
// recommender by value on each call, so admin-side edits to the config store
// never mutate state shared with in-flight requests.
type Params struct {
	ContentWeight         float64 `mapstructure:"content_weight" validate:"gte=0,lte=1"`
	CollaborativeWeight   float64 `mapstructure:"collaborative_weight" validate:"gte=0,lte=1"`
	ColdContentWeight     float64 `mapstructure:"cold_content_weight" validate:"gte=0,lte=1"`
	ColdCollabWeight      float64 `mapstructure:"cold_collaborative_weight" validate:"gte=0,lte=1"`
	ColdStartThreshold    int     `mapstructure:"cold_start_threshold" validate:"min=1"`
	PopularityDecay       float64 `mapstructure:"popularity_decay" validate:"gt=0,lt=1"`
	OverlapWeight         float64 `mapstructure:"overlap_weight" validate:"gte=0,lte=1"`
	PopularityWeight      float64 `mapstructure:"popularity_weight" validate:"gte=0,lte=1"`
	TopPopular            int     `mapstructure:"top_popular" validate:"min=1"`
	JitterBlend           float64 `mapstructure:"jitter_blend" validate:"gte=0,lte=1"`
	MaxPeers              int     `mapstructure:"max_peers" validate:"min=0"`
	PreferenceWeightDecay float64 `mapstructure:"preference_weight_decay" validate:"gt=0,lte=1"`
	PreferenceWeightCap   float64 `mapstructure:"preference_weight_cap" validate:"gt=0"`
}

// DefaultParams mirrors the documented defaults; tests and the example rely on
// these exact values.
func DefaultParams() Params {
	return Params{
		ContentWeight:         0.6,
		CollaborativeWeight:   0.4,
		ColdContentWeight:     0.9,
		ColdCollabWeight:      0.1,
		ColdStartThreshold:    5,
		PopularityDecay:       0.95,
		OverlapWeight:         0.7,
		PopularityWeight:      0.3,
		TopPopular:            100,
		JitterBlend:           0.2,
		MaxPeers:              50,
		PreferenceWeightDecay: 0.9,
		PreferenceWeightCap:   5.0,
	}
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.url", "localhost:6379")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")
	viper.SetDefault("redis.cache_ttl", "5m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Recommendation defaults
	defaults := DefaultParams()
	viper.SetDefault("recommendation.content_weight", defaults.ContentWeight)
	viper.SetDefault("recommendation.collaborative_weight", defaults.CollaborativeWeight)
	viper.SetDefault("recommendation.cold_content_weight", defaults.ColdContentWeight)
	viper.SetDefault("recommendation.cold_collaborative_weight", defaults.ColdCollabWeight)
	viper.SetDefault("recommendation.cold_start_threshold", defaults.ColdStartThreshold)
	viper.SetDefault("recommendation.popularity_decay", defaults.PopularityDecay)
	viper.SetDefault("recommendation.overlap_weight", defaults.OverlapWeight)
	viper.SetDefault("recommendation.popularity_weight", defaults.PopularityWeight)
	viper.SetDefault("recommendation.top_popular", defaults.TopPopular)
	viper.SetDefault("recommendation.jitter_blend", defaults.JitterBlend)
	viper.SetDefault("recommendation.max_peers", defaults.MaxPeers)
	viper.SetDefault("recommendation.preference_weight_decay", defaults.PreferenceWeightDecay)
	viper.SetDefault("recommendation.preference_weight_cap", defaults.PreferenceWeightCap)
}
