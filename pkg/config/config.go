package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"arena-service/pkg/arena"
)

// Config is the service configuration, read from the environment.
type Config struct {
	Port           string  `env:"PORT" envDefault:"8080"`
	ArenaWidth     float64 `env:"ARENA_WIDTH" envDefault:"800"`
	ArenaHeight    float64 `env:"ARENA_HEIGHT" envDefault:"500"`
	AssetsDir      string  `env:"ASSETS_DIR" envDefault:"assets"`
	CardsFile      string  `env:"CARDS_FILE"`
	DefendStacking string  `env:"DEFEND_STACKING" envDefault:"additive"`
	GinMode        string  `env:"GIN_MODE" envDefault:"release"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads optional dotenv files, then the environment. Variables already
// set in the environment win over dotenv values.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ArenaWidth <= 0 || c.ArenaHeight <= 0 {
		return fmt.Errorf("arena size must be positive, got %vx%v", c.ArenaWidth, c.ArenaHeight)
	}
	if _, err := c.EffectPolicy(); err != nil {
		return err
	}
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("unknown gin mode %q (want debug, release or test)", c.GinMode)
	}
	return nil
}

func (c Config) Bounds() arena.Bounds {
	return arena.Bounds{Width: c.ArenaWidth, Height: c.ArenaHeight}
}

func (c Config) EffectPolicy() (arena.EffectPolicy, error) {
	return arena.ParseEffectPolicy(c.DefendStacking)
}
