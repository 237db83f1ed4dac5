package ml

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// LocalConfig holds configuration for the local tesseract recognizer
type LocalConfig struct {
	Binary string `mapstructure:"binary"`
	Lang   string `mapstructure:"lang"`
}

func (c *LocalConfig) applyEnv() {
	envFallback(&c.Binary, "TESSERACT_BINARY")
	envFallback(&c.Lang, "TESSERACT_LANG")
	if c.Binary == "" {
		c.Binary = "tesseract"
	}
}

// CommandRunner runs an external program and returns its standard output
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// LocalRecognizer extracts text by running tesseract on the image
type LocalRecognizer struct {
	config LocalConfig
	run    CommandRunner
}

// LocalRecognizerFactory implements RecognizerFactory for tesseract
type LocalRecognizerFactory struct {
	config LocalConfig
}

// NewLocalRecognizerFactory creates a new local recognizer factory
func NewLocalRecognizerFactory(config LocalConfig) *LocalRecognizerFactory {
	config.applyEnv()
	return &LocalRecognizerFactory{config: config}
}

// CreateRecognizer creates a new local recognizer instance
func (f *LocalRecognizerFactory) CreateRecognizer() (Recognizer, error) {
	return NewLocalRecognizer(f.config, nil), nil
}

// NewLocalRecognizer returns a tesseract recognizer. A nil runner executes
// the real binary.
func NewLocalRecognizer(config LocalConfig, run CommandRunner) *LocalRecognizer {
	if run == nil {
		run = execRunner
	}
	if config.Binary == "" {
		config.Binary = "tesseract"
	}
	return &LocalRecognizer{config: config, run: run}
}

// Load checks that the tesseract binary is installed
func (r *LocalRecognizer) Load(ctx context.Context) error {
	if _, err := exec.LookPath(r.config.Binary); err != nil {
		return fmt.Errorf("%w: required binary missing: %s", ErrRecognition, r.config.Binary)
	}
	return nil
}

// RecognizeText writes the image to a temp file and runs tesseract on it
func (r *LocalRecognizer) RecognizeText(ctx context.Context, imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrRecognition)
	}

	tmpFile, err := os.CreateTemp("", "label-*.img")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create temp file: %w", ErrRecognition, err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(imageData); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("%w: failed to write temp image: %w", ErrRecognition, err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to write temp image: %w", ErrRecognition, err)
	}

	args := []string{tmpFile.Name(), "stdout"}
	if r.config.Lang != "" {
		args = append(args, "-l", r.config.Lang)
	}

	out, err := r.run(ctx, r.config.Binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", cancelled(ctx)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrRecognition, r.config.Binary, err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("%w: no text found in image", ErrRecognition)
	}
	return text, nil
}
