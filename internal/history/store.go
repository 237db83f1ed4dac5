// Package history keeps the most recent scans as one serialized blob in a
// key-value store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/franckalain/halalscan/internal/database"
	"github.com/franckalain/halalscan/internal/logging"
	"github.com/franckalain/halalscan/internal/models"
)

const (
	// StorageKey is the key holding the whole history
	StorageKey = "halal_scan_history"
	// MaxRecords is the number of scans kept; older ones are discarded
	MaxRecords = 50
)

// ErrStorage is returned when the history could not be written
var ErrStorage = errors.New("history storage failed")

// Stats summarizes the stored scans by verdict
type Stats struct {
	Total  int                   `json:"total"`
	Counts map[models.Status]int `json:"counts"`
}

// Store is the scan history. Records are immutable once stored; every
// mutation rewrites the whole collection.
type Store struct {
	kv  database.KV
	log *logrus.Entry

	mu sync.Mutex
}

// NewStore creates a history store on kv
func NewStore(kv database.KV, logger logrus.FieldLogger) *Store {
	return &Store{
		kv:  kv,
		log: logging.Component(logger, "history"),
	}
}

// Append inserts record at the head of the history, dropping the oldest
// records beyond MaxRecords.
func (s *Store) Append(ctx context.Context, record models.ScanHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return err
	}
	records := append([]models.ScanHistoryRecord{record}, existing...)
	if len(records) > MaxRecords {
		records = records[:MaxRecords]
	}
	return s.save(ctx, records)
}

// List returns all records, most recent first. Missing or unreadable data
// yields an empty history.
func (s *Store) List(ctx context.Context) []models.ScanHistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		s.log.WithError(err).Warn("error loading history")
		return []models.ScanHistoryRecord{}
	}
	return records
}

// Get returns the record with id
func (s *Store) Get(ctx context.Context, id string) (models.ScanHistoryRecord, bool) {
	for _, r := range s.List(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return models.ScanHistoryRecord{}, false
}

// DeleteByID removes the first record with id. Unknown ids are ignored.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID == id {
			records = append(records[:i], records[i+1:]...)
			return s.save(ctx, records)
		}
	}
	return nil
}

// Clear removes every record
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// Stats counts the stored records per status
func (s *Store) Stats(ctx context.Context) Stats {
	records := s.List(ctx)
	stats := Stats{Total: len(records), Counts: make(map[models.Status]int, len(models.Statuses))}
	for _, status := range models.Statuses {
		stats.Counts[status] = 0
	}
	for _, r := range records {
		stats.Counts[r.Result.Status]++
	}
	return stats
}

// load reads the stored history. A read failure is returned so callers never
// overwrite records they could not see; a corrupted blob reads as empty.
func (s *Store) load(ctx context.Context) ([]models.ScanHistoryRecord, error) {
	data, found, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !found || data == "" {
		return []models.ScanHistoryRecord{}, nil
	}

	var records []models.ScanHistoryRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		s.log.WithError(err).Warn("history is corrupted, treating it as empty")
		return []models.ScanHistoryRecord{}, nil
	}
	if records == nil {
		records = []models.ScanHistoryRecord{}
	}
	return records, nil
}

func (s *Store) save(ctx context.Context, records []models.ScanHistoryRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
