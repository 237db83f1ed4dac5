package ml

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultSampleDelay is how long the sample recognizer pretends to work
const DefaultSampleDelay = 2 * time.Second

// SampleTexts are the ingredient lists returned by the sample recognizer
var SampleTexts = []string{
	"دقيق، سكر، زيت نباتي، ملح، خميرة",
	"دقيق، سكر، جيلاتين، نكهة طبيعية، ملح",
	"دقيق، سكر، شحم الخنزير، ملح، بيكون",
	"دقيق، سكر، زيت نباتي، إي 471، ملح، كحول",
	"ماء، سكر، حليب، فانيليا، إي 476",
}

// SampleRecognizer ignores the image and returns one of SampleTexts after a
// fixed delay. It stands in for a real recognizer during development.
type SampleRecognizer struct {
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// SampleRecognizerFactory implements RecognizerFactory for the sample backend
type SampleRecognizerFactory struct {
	delay  time.Duration
	source rand.Source
}

// NewSampleRecognizerFactory creates a sample recognizer factory. A nil
// source seeds from the clock.
func NewSampleRecognizerFactory(delay time.Duration, source rand.Source) *SampleRecognizerFactory {
	return &SampleRecognizerFactory{delay: delay, source: source}
}

// CreateRecognizer creates a new sample recognizer
func (f *SampleRecognizerFactory) CreateRecognizer() (Recognizer, error) {
	return NewSampleRecognizer(f.delay, f.source), nil
}

// NewSampleRecognizer returns a recognizer picking texts from source
func NewSampleRecognizer(delay time.Duration, source rand.Source) *SampleRecognizer {
	if source == nil {
		source = rand.NewSource(time.Now().UnixNano())
	}
	return &SampleRecognizer{
		delay: delay,
		rnd:   rand.New(source),
	}
}

// Load is a no-op
func (r *SampleRecognizer) Load(ctx context.Context) error {
	return nil
}

// RecognizeText waits for the configured delay and returns a sample text
func (r *SampleRecognizer) RecognizeText(ctx context.Context, imageData []byte) (string, error) {
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", cancelled(ctx)
		case <-timer.C:
		}
	} else if ctx.Err() != nil {
		return "", cancelled(ctx)
	}

	r.mu.Lock()
	idx := r.rnd.Intn(len(SampleTexts))
	r.mu.Unlock()

	return SampleTexts[idx], nil
}
