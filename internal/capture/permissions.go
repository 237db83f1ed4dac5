package capture

import (
	"context"
	"fmt"
)

// PermissionStatus is the answer of the platform to an access request
type PermissionStatus string

const (
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

// Permissions reports whether a source may be used
type Permissions interface {
	Status(ctx context.Context, source Source) (PermissionStatus, error)
}

// StaticPermissions grants access according to configuration
type StaticPermissions struct {
	camera  bool
	gallery bool
}

// NewStaticPermissions builds permissions from the capture config
func NewStaticPermissions(config Config) *StaticPermissions {
	return &StaticPermissions{camera: config.AllowCamera, gallery: config.AllowGallery}
}

// Status returns granted when the source is allowed
func (p *StaticPermissions) Status(ctx context.Context, source Source) (PermissionStatus, error) {
	allowed := false
	switch source {
	case SourceCamera:
		allowed = p.camera
	case SourceGallery:
		allowed = p.gallery
	}
	if allowed {
		return PermissionGranted, nil
	}
	return PermissionDenied, nil
}

// Require fails with ErrPermissionDenied unless source is granted
func Require(ctx context.Context, p Permissions, source Source) error {
	status, err := p.Status(ctx, source)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, source, err)
	}
	if status != PermissionGranted {
		return fmt.Errorf("%w: %s access not granted", ErrPermissionDenied, source)
	}
	return nil
}
