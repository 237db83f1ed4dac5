// Package scanner runs the scan flow: acquire an image, recognize its text,
// classify it and keep the result in the history.
package scanner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/franckalain/halalscan/internal/analysis"
	"github.com/franckalain/halalscan/internal/capture"
	"github.com/franckalain/halalscan/internal/history"
	"github.com/franckalain/halalscan/internal/logging"
	"github.com/franckalain/halalscan/internal/ml"
	"github.com/franckalain/halalscan/internal/models"
)

// Service wires the scan collaborators together
type Service struct {
	capturer    capture.Capturer
	permissions capture.Permissions
	recognizer  ml.Recognizer
	engine      *analysis.Engine
	history     *history.Store
	timeout     time.Duration

	now   func() time.Time
	newID func() string
	log   *logrus.Entry
}

// Options configures a Service. Capturer and Permissions are only needed
// for Scan.
type Options struct {
	Capturer    capture.Capturer
	Permissions capture.Permissions
	Recognizer  ml.Recognizer
	Engine      *analysis.Engine
	History     *history.Store
	Timeout     time.Duration // recognition timeout, zero for none
	Logger      logrus.FieldLogger

	Now   func() time.Time
	NewID func() string
}

// NewService creates a scanner service
func NewService(opts Options) *Service {
	s := &Service{
		capturer:    opts.Capturer,
		permissions: opts.Permissions,
		recognizer:  opts.Recognizer,
		engine:      opts.Engine,
		history:     opts.History,
		timeout:     opts.Timeout,
		now:         opts.Now,
		newID:       opts.NewID,
		log:         logging.Component(opts.Logger, "scanner"),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	return s
}

// Scan acquires an image from source and scans it. path names the image
// file; it may be empty for the camera source.
func (s *Service) Scan(ctx context.Context, source capture.Source, path string) (models.ScanHistoryRecord, error) {
	if s.permissions != nil {
		if err := capture.Require(ctx, s.permissions, source); err != nil {
			return models.ScanHistoryRecord{}, err
		}
	}

	imageRef, err := s.capturer.Capture(ctx, source, path)
	if err != nil {
		return models.ScanHistoryRecord{}, err
	}
	return s.ScanImage(ctx, imageRef)
}

// ScanImage recognizes and classifies an already captured image and stores
// the result. A failure to store the record is logged, not returned.
func (s *Service) ScanImage(ctx context.Context, imageRef string) (models.ScanHistoryRecord, error) {
	imageData, err := capture.FromDataURL(imageRef)
	if err != nil {
		return models.ScanHistoryRecord{}, err
	}

	text, err := ml.Recognize(ctx, s.recognizer, s.timeout, imageData)
	if err != nil {
		return models.ScanHistoryRecord{}, err
	}

	result := s.engine.Analyze(text)
	record := models.ScanHistoryRecord{
		ID:        s.newID(),
		Timestamp: s.now().UnixMilli(),
		Image:     imageRef,
		Result:    result,
	}

	log := s.log.WithFields(logrus.Fields{
		"id":          record.ID,
		"status":      result.Status,
		"confidence":  result.Confidence,
		"ingredients": len(result.Ingredients),
	})
	if err := s.history.Append(ctx, record); err != nil {
		log.WithError(err).Error("error saving to history")
	} else {
		log.Info("scan completed")
	}

	return record, nil
}

// Analyze classifies text without an image or history entry
func (s *Service) Analyze(text string) models.AnalysisResult {
	return s.engine.Analyze(text)
}

// History returns the history store
func (s *Service) History() *history.Store {
	return s.history
}
