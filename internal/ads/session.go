// Package ads paces interstitial ads across scans. State lives in a Session
// owned by whoever owns the user session, never in package variables.
package ads

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/franckalain/halalscan/internal/logging"
)

// ScansPerInterstitial is how many scans pass between two interstitials
const ScansPerInterstitial = 3

// Network is the ad provider
type Network interface {
	PrepareInterstitial(ctx context.Context) error
	ShowInterstitial(ctx context.Context) error
	ShowBanner(ctx context.Context) error
	HideBanner(ctx context.Context) error
}

// NoopNetwork is used where no ads can be displayed
type NoopNetwork struct{}

func (NoopNetwork) PrepareInterstitial(context.Context) error { return nil }
func (NoopNetwork) ShowInterstitial(context.Context) error    { return nil }
func (NoopNetwork) ShowBanner(context.Context) error          { return nil }
func (NoopNetwork) HideBanner(context.Context) error          { return nil }

// Session tracks the scans of one user session
type Session struct {
	network Network
	log     *logrus.Entry

	mu        sync.Mutex
	scanCount int
	loaded    bool
}

// NewSession creates a session on network
func NewSession(network Network, logger logrus.FieldLogger) *Session {
	if network == nil {
		network = NoopNetwork{}
	}
	return &Session{network: network, log: logging.Component(logger, "ads")}
}

// Start prepares the first interstitial
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepare(ctx)
}

// ShowBanner displays the banner. Failures are logged.
func (s *Session) ShowBanner(ctx context.Context) {
	if err := s.network.ShowBanner(ctx); err != nil {
		s.log.WithError(err).Warn("error showing banner ad")
	}
}

// HideBanner hides the banner. Failures are logged.
func (s *Session) HideBanner(ctx context.Context) {
	if err := s.network.HideBanner(ctx); err != nil {
		s.log.WithError(err).Warn("error hiding banner ad")
	}
}

// RecordScan counts a completed scan and shows an interstitial every
// ScansPerInterstitial scans when one is loaded. It reports whether an
// interstitial was shown.
func (s *Session) RecordScan(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanCount++
	if s.scanCount < ScansPerInterstitial || !s.loaded {
		return false
	}

	if err := s.network.ShowInterstitial(ctx); err != nil {
		s.log.WithError(err).Warn("error showing interstitial ad")
		return false
	}
	s.scanCount = 0
	s.loaded = false
	s.prepare(ctx)
	return true
}

// ScanCount returns the scans counted since the last interstitial
func (s *Session) ScanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanCount
}

func (s *Session) prepare(ctx context.Context) {
	if err := s.network.PrepareInterstitial(ctx); err != nil {
		s.log.WithError(err).Warn("error loading interstitial ad")
		s.loaded = false
		return
	}
	s.loaded = true
}
