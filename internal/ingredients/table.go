// Package ingredients holds the ingredient reference table used to classify
// recognized label text. A table is validated once when loaded and is never
// mutated afterwards, so it can be shared freely between goroutines.
package ingredients

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/franckalain/halalscan/internal/models"
)

//go:embed ingredients.yaml
var defaultTable []byte

var validate = validator.New()

// Table is an immutable list of reference entries
type Table struct {
	entries []models.IngredientEntry
}

// New builds a table from entries after validating each of them.
// The slice is copied.
func New(entries []models.IngredientEntry) (*Table, error) {
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("invalid ingredient at index %d (%q): %w", i, e.Name, err)
		}
	}
	cp := make([]models.IngredientEntry, len(entries))
	copy(cp, entries)
	return &Table{entries: cp}, nil
}

// Default returns the table embedded in the binary
func Default() (*Table, error) {
	return Load(bytes.NewReader(defaultTable))
}

// MustDefault is Default for package initialization and tests
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Load decodes a YAML (or JSON) sequence of entries
func Load(r io.Reader) (*Table, error) {
	var entries []models.IngredientEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ingredient table is empty")
		}
		return nil, fmt.Errorf("failed to decode ingredient table: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("ingredient table is empty")
	}
	return New(entries)
}

// LoadFile loads a table from disk, falling back to the embedded table when
// path is empty.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingredient table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Entries returns a copy of the entries in table order
func (t *Table) Entries() []models.IngredientEntry {
	cp := make([]models.IngredientEntry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Each calls fn for every entry in table order without copying the table
func (t *Table) Each(fn func(models.IngredientEntry)) {
	for _, e := range t.entries {
		fn(e)
	}
}
