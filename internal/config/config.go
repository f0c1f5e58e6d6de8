package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/benbeisheim/chessclock/internal/model"
)

type Config struct {
	Port               string
	AllowOrigins       []string
	LogLevel           zerolog.Level
	SessionIdleTimeout time.Duration
	Clock              model.Settings
}

// fileConfig is the YAML layout; every field is optional.
type fileConfig struct {
	Server struct {
		Port               string   `yaml:"port"`
		AllowOrigins       []string `yaml:"allow_origins"`
		LogLevel           string   `yaml:"log_level"`
		SessionIdleTimeout string   `yaml:"session_idle_timeout"`
	} `yaml:"server"`
	Clock struct {
		MinutesPerPlayer []int `yaml:"minutes_per_player"`
		IncrementSeconds *int  `yaml:"increment_seconds"`
		SameTimeForBoth  *bool `yaml:"same_time_for_both"`
		SoundEnabled     *bool `yaml:"sound_enabled"`
	} `yaml:"clock"`
}

func Default() *Config {
	return &Config{
		Port:               "3000",
		AllowOrigins:       []string{"http://localhost:5173"},
		LogLevel:           zerolog.InfoLevel,
		SessionIdleTimeout: 30 * time.Minute,
		Clock:              model.DefaultSettings(),
	}
}

// Load reads .env, then the YAML file named by CLOCK_CONFIG (if any), then
// environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	cfg := Default()
	if path := getEnv("CLOCK_CONFIG", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.Clock = cfg.Clock.Normalize()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrap(err, "failed to parse config")
	}

	if fc.Server.Port != "" {
		c.Port = fc.Server.Port
	}
	if len(fc.Server.AllowOrigins) > 0 {
		c.AllowOrigins = fc.Server.AllowOrigins
	}
	if fc.Server.LogLevel != "" {
		c.LogLevel = parseLevel(fc.Server.LogLevel, c.LogLevel)
	}
	if fc.Server.SessionIdleTimeout != "" {
		c.SessionIdleTimeout = parseDuration(fc.Server.SessionIdleTimeout, c.SessionIdleTimeout)
	}

	switch len(fc.Clock.MinutesPerPlayer) {
	case 0:
	case 1:
		c.Clock.MinutesPerPlayer = [2]int{fc.Clock.MinutesPerPlayer[0], fc.Clock.MinutesPerPlayer[0]}
	case 2:
		c.Clock.MinutesPerPlayer = [2]int{fc.Clock.MinutesPerPlayer[0], fc.Clock.MinutesPerPlayer[1]}
	default:
		return errors.Errorf("minutes_per_player takes one or two values, got %d", len(fc.Clock.MinutesPerPlayer))
	}
	if fc.Clock.IncrementSeconds != nil {
		c.Clock.IncrementSeconds = *fc.Clock.IncrementSeconds
	}
	if fc.Clock.SameTimeForBoth != nil {
		c.Clock.SameTimeForBoth = *fc.Clock.SameTimeForBoth
	}
	if fc.Clock.SoundEnabled != nil {
		c.Clock.SoundEnabled = *fc.Clock.SoundEnabled
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	if origins := getEnv("ALLOW_ORIGINS", ""); origins != "" {
		c.AllowOrigins = strings.Split(origins, ",")
	}
	c.LogLevel = parseLevel(getEnv("LOG_LEVEL", ""), c.LogLevel)
	c.SessionIdleTimeout = parseDuration(getEnv("SESSION_IDLE_TIMEOUT", ""), c.SessionIdleTimeout)

	if minutes := getEnvAsInt("DEFAULT_MINUTES", 0); minutes > 0 {
		c.Clock.MinutesPerPlayer = [2]int{minutes, minutes}
	}
	c.Clock.IncrementSeconds = getEnvAsInt("DEFAULT_INCREMENT_SECONDS", c.Clock.IncrementSeconds)
	c.Clock.SoundEnabled = getEnvAsBool("DEFAULT_SOUND", c.Clock.SoundEnabled)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-numeric env value")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-boolean env value")
	}
	return defaultValue
}

func parseLevel(s string, fallback zerolog.Level) zerolog.Level {
	if s == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		log.Warn().Str("level", s).Msg("unknown log level")
		return fallback
	}
	return level
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Str("duration", s).Msg("invalid duration")
		return fallback
	}
	return d
}
