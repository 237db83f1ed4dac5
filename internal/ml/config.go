package ml

import (
	"os"
	"time"
)

// Recognizer backend types
const (
	TypeSample    = "sample"
	TypeTesseract = "tesseract"
	TypeGoogle    = "google"
)

// Config selects and configures the text recognition backend
type Config struct {
	Type        string        `mapstructure:"type" validate:"omitempty,oneof=sample tesseract google"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	SampleDelay time.Duration `mapstructure:"sample_delay" validate:"gte=0"`

	Google    GoogleConfig `mapstructure:"google"`
	Tesseract LocalConfig  `mapstructure:"tesseract"`
}

// ApplyEnv fills unset backend settings from the environment
func (c *Config) ApplyEnv() {
	c.Google.applyEnv()
	c.Tesseract.applyEnv()
}

func envFallback(current *string, key string) {
	if *current == "" {
		*current = os.Getenv(key)
	}
}
