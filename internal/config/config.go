package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL  string `env:"DATABASE_URL,required"`
	InferenceURL string `env:"INFERENCE_BACKEND_URL,required"`
	JWTSecret    string `env:"JWT_SECRET" envDefault:"dev-secret-key"`

	// Server
	Port int `env:"PORT" envDefault:"3000"`

	// Chat behavior
	// Number of prior turns forwarded to the inference backend alongside
	// the latest question. 1 keeps conversational memory at a single turn.
	ContextWindow int `env:"CHAT_CONTEXT_WINDOW" envDefault:"1"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
