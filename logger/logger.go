package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   string
	Output  io.Writer
	Service string
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the base logger. Only the first call has an effect.
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
			level = parsed
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}
		service := cfg.Service
		if service == "" {
			service = "wellness"
		}

		base = zerolog.New(out).With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
