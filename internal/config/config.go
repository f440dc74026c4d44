// Package config loads client configuration from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// UI names accepted by Config.UI.
const (
	UITerminal = "tui"
	UILine     = "line"
)

// Config holds chat client configuration.
type Config struct {
	Endpoint       string        `env:"ROSTER_CHAT_ENDPOINT"        envDefault:"ws://localhost:8000/ws"`
	Username       string        `env:"ROSTER_CHAT_USERNAME"`
	Transport      string        `env:"ROSTER_CHAT_TRANSPORT"       envDefault:"nhooyr"`
	HandshakeDelay time.Duration `env:"ROSTER_CHAT_HANDSHAKE_DELAY" envDefault:"1s"`
	UI             string        `env:"ROSTER_CHAT_UI"              envDefault:"tui"`
	LogFile        string        `env:"ROSTER_CHAT_LOG_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse loads environment defaults into a Config and then applies flags.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Endpoint, "server", cfg.Endpoint, "WebSocket server address (e.g., ws://localhost:8000/ws)")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "Username for chat")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "WebSocket implementation: nhooyr, gorilla or gobwas")
	fs.DurationVar(&cfg.HandshakeDelay, "handshake-delay", cfg.HandshakeDelay, "how long a message typed while disconnected waits for the connection")
	fs.StringVar(&cfg.UI, "ui", cfg.UI, "user interface: tui or line")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file instead of stderr")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags and env tags cannot.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("server address is required")
	}
	if c.HandshakeDelay <= 0 {
		return fmt.Errorf("handshake delay must be positive, got %s", c.HandshakeDelay)
	}
	switch c.UI {
	case UITerminal, UILine:
	default:
		return fmt.Errorf("unknown ui %q (want %s or %s)", c.UI, UITerminal, UILine)
	}
	return nil
}
