package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable, e.g. MAFIA_REDIS_ADDR
const EnvPrefix = "MAFIA"

// Storage backends
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config is the process configuration shared by every entry point
type Config struct {
	// ListenAddr is where the HTTP server binds
	ListenAddr string `mapstructure:"listen_addr"`

	// PublicURL prefixes join links encoded in QR codes
	PublicURL string `mapstructure:"public_url"`

	Storage       string        `mapstructure:"storage"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RoomTTL       time.Duration `mapstructure:"room_ttl"`

	MaxPlayers   int           `mapstructure:"max_players"`
	AdvanceEarly bool          `mapstructure:"advance_early"`
	ActorDelay   time.Duration `mapstructure:"actor_delay"`
	TickInterval time.Duration `mapstructure:"tick_interval"`

	DiscordToken  string `mapstructure:"discord_token"`
	ApplicationID string `mapstructure:"application_id"`
	GuildID       string `mapstructure:"guild_id"`
}

// LoadInput selects the optional files read before the environment
type LoadInput struct {
	// EnvFile is loaded with godotenv; a missing file is not an error
	EnvFile string

	// ConfigFile is read by viper when set (yaml, json, toml)
	ConfigFile string
}

var defaults = map[string]any{
	"listen_addr":    ":8080",
	"public_url":     "http://localhost:8080",
	"storage":        StorageRedis,
	"redis_addr":     "localhost:6379",
	"redis_password": "",
	"redis_db":       0,
	"room_ttl":       24 * time.Hour,
	"max_players":    16,
	"advance_early":  false,
	"actor_delay":    time.Duration(0),
	"tick_interval":  time.Second,
	"discord_token":  "",
	"application_id": "",
	"guild_id":       "",
}

// Load reads defaults, then the config file, then the environment
func Load(input *LoadInput) (*Config, error) {
	if input == nil {
		input = &LoadInput{}
	}

	if input.EnvFile != "" {
		if err := godotenv.Load(input.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if input.ConfigFile != "" {
		v.SetConfigFile(input.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.MaxPlayers < 4 {
		return fmt.Errorf("max_players must be at least 4, got %d", c.MaxPlayers)
	}
	if c.TickInterval <= 0 {
		return errors.New("tick_interval must be positive")
	}
	if c.RoomTTL < 0 || c.ActorDelay < 0 {
		return errors.New("durations cannot be negative")
	}
	return nil
}
