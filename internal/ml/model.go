package ml

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRecognition is returned when no text could be extracted from an image
	ErrRecognition = errors.New("text recognition failed")
	// ErrCancelled is returned when recognition was cancelled or timed out
	ErrCancelled = errors.New("text recognition cancelled")
)

// Recognizer extracts the text printed on a product label
type Recognizer interface {
	// Load prepares the backend (clients, binaries) before first use
	Load(ctx context.Context) error
	// RecognizeText returns the text found in the image
	RecognizeText(ctx context.Context, imageData []byte) (string, error)
}

// RecognizerFactory creates a recognizer for one backend
type RecognizerFactory interface {
	CreateRecognizer() (Recognizer, error)
}

// NewRecognizer creates a recognizer for the configured backend type
func NewRecognizer(config Config) (Recognizer, error) {
	var factory RecognizerFactory

	switch config.Type {
	case TypeSample, "":
		factory = NewSampleRecognizerFactory(config.SampleDelay, nil)
	case TypeTesseract:
		factory = NewLocalRecognizerFactory(config.Tesseract)
	case TypeGoogle:
		factory = NewGoogleRecognizerFactory(config.Google)
	default:
		return nil, fmt.Errorf("unsupported recognizer type: %s", config.Type)
	}
	return factory.CreateRecognizer()
}

// Recognize runs r under timeout and normalizes its failures into
// ErrCancelled or ErrRecognition. A zero timeout leaves ctx untouched.
func Recognize(ctx context.Context, r Recognizer, timeout time.Duration, imageData []byte) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := r.RecognizeText(ctx, imageData)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, ErrRecognition) {
		return "", err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
	}
	return "", fmt.Errorf("%w: %w", ErrRecognition, err)
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
}
