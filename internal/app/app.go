// Package app builds the scanner and its collaborators from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/franckalain/halalscan/internal/analysis"
	"github.com/franckalain/halalscan/internal/capture"
	"github.com/franckalain/halalscan/internal/config"
	"github.com/franckalain/halalscan/internal/database"
	"github.com/franckalain/halalscan/internal/history"
	"github.com/franckalain/halalscan/internal/ingredients"
	"github.com/franckalain/halalscan/internal/logging"
	"github.com/franckalain/halalscan/internal/ml"
	"github.com/franckalain/halalscan/internal/scanner"
)

// App holds the wired application
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Scanner *scanner.Service

	kv         database.KV
	recognizer ml.Recognizer
}

// New loads the configuration at configPath and wires the application
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.JSON, cfg.Server.Debug)
	return NewWithConfig(ctx, cfg, logger)
}

// NewWithConfig wires the application from an already loaded configuration
func NewWithConfig(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	log := logging.Component(logger, "app")

	table, err := ingredients.LoadFile(cfg.Ingredients.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient table: %w", err)
	}
	log.WithField("entries", table.Len()).Debug("ingredient table loaded")

	recognizer, err := ml.NewRecognizer(cfg.ML)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}
	if err := recognizer.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load recognizer: %w", err)
	}

	kv, err := database.Open(ctx, database.Options{
		Driver:    cfg.Database.Driver,
		Path:      cfg.Database.Path,
		RedisAddr: cfg.Database.RedisAddr,
		RedisDB:   cfg.Database.RedisDB,
	}, logger)
	if err != nil {
		closeRecognizer(recognizer)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	svc := scanner.NewService(scanner.Options{
		Capturer:    capture.NewFileCapturer(cfg.Camera),
		Permissions: capture.NewStaticPermissions(cfg.Camera),
		Recognizer:  recognizer,
		Engine:      analysis.NewEngine(table),
		History:     history.NewStore(kv, logger),
		Timeout:     cfg.ML.Timeout,
		Logger:      logger,
	})

	log.WithFields(logrus.Fields{
		"recognizer": cfg.ML.Type,
		"database":   cfg.Database.Driver,
	}).Info("application ready")

	return &App{
		Config:     cfg,
		Logger:     logger,
		Scanner:    svc,
		kv:         kv,
		recognizer: recognizer,
	}, nil
}

// Close releases the database and recognizer
func (a *App) Close() error {
	return errors.Join(a.kv.Close(), closeRecognizer(a.recognizer))
}

func closeRecognizer(r ml.Recognizer) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
