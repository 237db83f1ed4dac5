// Package capture is the image acquisition boundary: it turns a camera shot
// or a gallery pick into an image reference the scanner can analyze.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrCapture is returned when an image could not be acquired
	ErrCapture = errors.New("image capture failed")
	// ErrPermissionDenied is returned when access to a source was not granted
	ErrPermissionDenied = errors.New("permission denied")
)

// Source is where an image comes from
type Source string

const (
	SourceCamera  Source = "camera"
	SourceGallery Source = "gallery"
)

// ParseSource validates a source name
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceCamera:
		return SourceCamera, nil
	case SourceGallery, "":
		return SourceGallery, nil
	default:
		return "", fmt.Errorf("unknown image source %q", s)
	}
}

// Config controls image acquisition and normalization
type Config struct {
	AllowCamera  bool   `mapstructure:"allow_camera"`
	AllowGallery bool   `mapstructure:"allow_gallery"`
	CaptureDir   string `mapstructure:"capture_dir"` // where camera shots land
	MaxDimension int    `mapstructure:"max_dimension" validate:"gte=0"`
	Quality      int    `mapstructure:"quality" validate:"gte=0,lte=100"`
}

// Capturer acquires an image and returns it as a data URL
type Capturer interface {
	Capture(ctx context.Context, source Source, path string) (string, error)
}

// FileCapturer reads images from the filesystem. Gallery picks name a file
// directly; camera shots default to the newest file in the capture directory.
type FileCapturer struct {
	config Config
}

// NewFileCapturer creates a file based capturer
func NewFileCapturer(config Config) *FileCapturer {
	if config.MaxDimension == 0 {
		config.MaxDimension = 1920
	}
	if config.Quality == 0 {
		config.Quality = 90
	}
	return &FileCapturer{config: config}
}

// Capture reads, normalizes and encodes the image
func (c *FileCapturer) Capture(ctx context.Context, source Source, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCapture, err)
	}

	if path == "" {
		if source != SourceCamera {
			return "", fmt.Errorf("%w: no image selected", ErrCapture)
		}
		latest, err := newestFile(c.config.CaptureDir)
		if err != nil {
			return "", err
		}
		path = latest
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read image: %w", ErrCapture, err)
	}

	normalized, err := Normalize(data, c.config.MaxDimension, c.config.Quality)
	if err != nil {
		return "", err
	}
	return ToDataURL("image/jpeg", normalized), nil
}

func newestFile(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: no capture directory configured", ErrCapture)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read capture directory: %w", ErrCapture, err)
	}

	var newest string
	var newestMod int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = filepath.Join(dir, e.Name())
			newestMod = mod
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: no image in capture directory", ErrCapture)
	}
	return newest, nil
}

// Normalize decodes an image, applies EXIF orientation, fits it within
// maxDimension on both sides and re-encodes it as JPEG.
func Normalize(data []byte, maxDimension, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", ErrCapture, err)
	}

	b := img.Bounds()
	if maxDimension > 0 && (b.Dx() > maxDimension || b.Dy() > maxDimension) {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("%w: failed to encode image: %w", ErrCapture, err)
	}
	return buf.Bytes(), nil
}

// ToDataURL encodes image bytes as a base64 data URL
func ToDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FromDataURL decodes a data URL, or a bare base64 string, to image bytes
func FromDataURL(ref string) ([]byte, error) {
	payload := strings.TrimSpace(ref)
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.HasSuffix(payload[:idx], ";base64") {
			return nil, fmt.Errorf("%w: unsupported data url", ErrCapture)
		}
		payload = payload[idx+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty image", ErrCapture)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image encoding: %w", ErrCapture, err)
	}
	return data, nil
}
