package ml

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSampleRecognizerReturnsSampleText(t *testing.T) {
	r := NewSampleRecognizer(0, rand.NewSource(1))

	for i := 0; i < 20; i++ {
		text, err := r.RecognizeText(context.Background(), nil)
		require.NoError(t, err)
		assert.Contains(t, SampleTexts, text)
	}
}

func TestSampleRecognizerIsSeedDeterministic(t *testing.T) {
	a := NewSampleRecognizer(0, rand.NewSource(42))
	b := NewSampleRecognizer(0, rand.NewSource(42))

	for i := 0; i < 10; i++ {
		ta, err := a.RecognizeText(context.Background(), nil)
		require.NoError(t, err)
		tb, err := b.RecognizeText(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, ta, tb)
	}
}

func TestSampleRecognizerWaitsForDelay(t *testing.T) {
	r := NewSampleRecognizer(30*time.Millisecond, rand.NewSource(1))

	start := time.Now()
	_, err := r.RecognizeText(context.Background(), nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSampleRecognizerHonoursCancellation(t *testing.T) {
	r := NewSampleRecognizer(time.Hour, rand.NewSource(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RecognizeText(ctx, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognizeTimeout(t *testing.T) {
	r := NewSampleRecognizer(time.Hour, rand.NewSource(1))

	_, err := Recognize(context.Background(), r, 10*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type failingRecognizer struct{ err error }

func (f failingRecognizer) Load(context.Context) error { return nil }

func (f failingRecognizer) RecognizeText(context.Context, []byte) (string, error) {
	return "", f.err
}

func TestRecognizeWrapsBackendErrors(t *testing.T) {
	backendErr := errors.New("quota exceeded")

	_, err := Recognize(context.Background(), failingRecognizer{err: backendErr}, time.Second, nil)
	assert.ErrorIs(t, err, ErrRecognition)
	assert.ErrorIs(t, err, backendErr)

	_, err = Recognize(context.Background(), failingRecognizer{err: ErrCancelled}, 0, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.NotErrorIs(t, err, ErrRecognition)
}

func TestNewRecognizer(t *testing.T) {
	r, err := NewRecognizer(Config{Type: TypeSample})
	require.NoError(t, err)
	assert.IsType(t, &SampleRecognizer{}, r)

	r, err = NewRecognizer(Config{})
	require.NoError(t, err)
	assert.IsType(t, &SampleRecognizer{}, r)

	r, err = NewRecognizer(Config{Type: TypeTesseract})
	require.NoError(t, err)
	assert.IsType(t, &LocalRecognizer{}, r)

	r, err = NewRecognizer(Config{Type: TypeGoogle, Google: GoogleConfig{ProjectID: "halal-test"}})
	require.NoError(t, err)
	assert.IsType(t, &GoogleRecognizer{}, r)

	_, err = NewRecognizer(Config{Type: "crystal-ball"})
	assert.Error(t, err)
}

func TestLocalRecognizer(t *testing.T) {
	var gotArgs []string
	var gotImage []byte
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		data, err := os.ReadFile(args[0])
		require.NoError(t, err)
		gotImage = data
		return []byte("  سكر، ملح \n"), nil
	}

	r := NewLocalRecognizer(LocalConfig{Binary: "tesseract", Lang: "ara"}, runner)
	text, err := r.RecognizeText(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "سكر، ملح", text)
	assert.Equal(t, []byte("jpeg-bytes"), gotImage)
	require.Len(t, gotArgs, 5)
	assert.Equal(t, "tesseract", gotArgs[0])
	assert.Equal(t, []string{"stdout", "-l", "ara"}, gotArgs[2:])

	_, statErr := os.Stat(gotArgs[1])
	assert.True(t, os.IsNotExist(statErr), "temp image should be removed")
}

func TestLocalRecognizerFailures(t *testing.T) {
	empty := func(context.Context, string, ...string) ([]byte, error) { return []byte("\n"), nil }
	broken := func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("exit status 1") }

	_, err := NewLocalRecognizer(LocalConfig{}, empty).RecognizeText(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrRecognition)

	_, err = NewLocalRecognizer(LocalConfig{}, broken).RecognizeText(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrRecognition)

	_, err = NewLocalRecognizer(LocalConfig{}, empty).RecognizeText(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRecognition)
}

func TestGoogleRecognizerRequiresLoad(t *testing.T) {
	r := &GoogleRecognizer{}
	_, err := r.RecognizeText(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrRecognition)
	assert.NoError(t, r.Close())
}

func TestImageFormat(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	jpeg := []byte("\xff\xd8\xff\xe0")

	assert.Equal(t, "png", imageFormat(png))
	assert.Equal(t, "jpeg", imageFormat(jpeg))
	assert.Equal(t, "jpeg", imageFormat([]byte("unknown")))
}
