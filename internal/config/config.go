package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr         string `mapstructure:"HTTP_ADDR"`
	RedisConnString  string `mapstructure:"REDIS_CONNSTRING"`
	SQLitePath       string `mapstructure:"SQLITE_PATH"`
	OtelCollector    string `mapstructure:"OTEL_COLLECTOR"`
	OtelEnabled      bool   `mapstructure:"OTEL_ENABLED"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	DefaultBoardSize int    `mapstructure:"DEFAULT_BOARD_SIZE"`
	MaxBoardSize     int    `mapstructure:"MAX_BOARD_SIZE"`
	// MoveTimeout ends a game when the player to move stays idle this long.
	// Zero disables it.
	MoveTimeout time.Duration `mapstructure:"MOVE_TIMEOUT"`
}

var defaults = map[string]any{
	"HTTP_ADDR":          ":8080",
	"REDIS_CONNSTRING":   "localhost:6379",
	"SQLITE_PATH":        "./hex.db",
	"OTEL_COLLECTOR":     "otel-collector:4317",
	"OTEL_ENABLED":       true,
	"LOG_LEVEL":          "debug",
	"DEFAULT_BOARD_SIZE": 11,
	"MAX_BOARD_SIZE":     19,
	"MOVE_TIMEOUT":       "5m",
}

// Load reads cfgPath if it is not empty, then lets environment variables
// override any key.
func Load(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the board size limits and the move timeout.
func (c *Config) Validate() error {
	if c.MaxBoardSize < 1 || c.MaxBoardSize > 26 {
		return errors.New("MAX_BOARD_SIZE must be between 1 and 26")
	}
	if c.DefaultBoardSize < 1 || c.DefaultBoardSize > c.MaxBoardSize {
		return fmt.Errorf("DEFAULT_BOARD_SIZE must be between 1 and %d", c.MaxBoardSize)
	}
	if c.MoveTimeout < 0 {
		return errors.New("MOVE_TIMEOUT must not be negative")
	}
	return nil
}
