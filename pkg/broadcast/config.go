package broadcast

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds environment-driven broadcaster settings.
type Config struct {
	// BufferSize is the per-subscriber delivery buffer. A full buffer never
	// drops messages; it only parks that subscriber's delivery goroutine.
	BufferSize int `env:"BROADCAST_BUFFER_SIZE" envDefault:"100"`
}

// LoadConfig reads Config from the environment, loading a .env file first if
// one is present. A missing .env file is not an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("broadcast: parse config: %w", err)
	}
	return cfg, nil
}
