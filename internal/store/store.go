// Package store persists presentations as one JSON document per id under a
// data directory, plus a single JSON document for the global design
// preference. There is no index: listing is a full directory scan. Writes
// go through a temp file and rename, so a crash cannot leave a truncated
// document, but concurrent writers of the same id still race (last write
// wins).
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"slideclaw/internal/logging"
	"slideclaw/internal/types"
)

// ErrNotFound is returned when a presentation does not exist or its stored
// content cannot be parsed. Malformed content is deliberately
// indistinguishable from absence.
var ErrNotFound = errors.New("presentation not found")

const designConfigFile = "design-config.json"

// Store reads and writes presentation documents on local disk.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on
// first write; a missing directory reads as an empty store.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the storage root.
func (s *Store) Dir() string { return s.dir }

// NewID returns a fresh opaque identifier. Ids are assigned once at
// creation and never reused.
func NewID() string { return uuid.NewString() }

// timeLayout is RFC3339 with a fixed-width fractional second. The fixed
// width keeps lexical order equal to chronological order, which List's
// string sort depends on; whole-second precision would tie records
// created in the same second.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Now returns the current UTC time in the timestamp format used
// throughout stored documents.
func Now() string { return time.Now().UTC().Format(timeLayout) }

func (s *Store) presentationsDir() string {
	return filepath.Join(s.dir, "presentations")
}

func (s *Store) presentationPath(id string) string {
	return filepath.Join(s.presentationsDir(), id+".json")
}

// List returns all presentations ordered by creation timestamp ascending.
// A missing storage directory yields an empty list. Files that fail to
// parse are skipped; the count of skipped entries is returned so callers
// can surface the data loss instead of hiding it.
func (s *Store) List() ([]types.Presentation, int, error) {
	entries, err := os.ReadDir(s.presentationsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Presentation{}, 0, nil
		}
		return nil, 0, fmt.Errorf("read storage dir: %w", err)
	}

	presentations := make([]types.Presentation, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.presentationsDir(), entry.Name()))
		if err != nil {
			skipped++
			logging.StoreWarn("skipping unreadable file %s: %v", entry.Name(), err)
			continue
		}
		var p types.Presentation
		if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
			skipped++
			logging.StoreWarn("skipping corrupt file %s", entry.Name())
			continue
		}
		presentations = append(presentations, p)
	}

	sort.SliceStable(presentations, func(i, j int) bool {
		return presentations[i].CreatedAt < presentations[j].CreatedAt
	})
	return presentations, skipped, nil
}

// Get returns the presentation by id, or ErrNotFound when the file is
// missing or malformed.
func (s *Store) Get(id string) (*types.Presentation, error) {
	data, err := os.ReadFile(s.presentationPath(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	var p types.Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		logging.StoreWarn("corrupt presentation %s: %v", id, err)
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return &p, nil
}

// Save persists the full presentation record, overwriting any prior
// version. Idempotent; last writer wins.
func (s *Store) Save(p *types.Presentation) error {
	if p == nil || p.ID == "" {
		return errors.New("presentation id required")
	}
	if p.Slides == nil {
		p.Slides = []types.Slide{}
	}
	if err := s.writeAtomic(s.presentationPath(p.ID), p); err != nil {
		return fmt.Errorf("save presentation %s: %w", p.ID, err)
	}
	logging.StoreDebug("saved presentation %s (%d slides)", p.ID, len(p.Slides))
	return nil
}

// Delete removes the stored record, reporting whether one existed.
// Deletion is permanent; there is no trash.
func (s *Store) Delete(id string) (bool, error) {
	err := os.Remove(s.presentationPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete presentation %s: %w", id, err)
	}
	logging.Store("deleted presentation %s", id)
	return true, nil
}

// DesignConfig reads the global design preference, returning the default
// ("auto") when no record has been saved or the record is unreadable.
func (s *Store) DesignConfig() (types.DesignConfig, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, designConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return types.DefaultDesignConfig(), nil
		}
		return types.DefaultDesignConfig(), fmt.Errorf("read design config: %w", err)
	}
	var cfg types.DesignConfig
	if err := json.Unmarshal(data, &cfg); err != nil || cfg.Library == "" {
		logging.StoreWarn("corrupt design config, using default")
		return types.DefaultDesignConfig(), nil
	}
	return cfg, nil
}

// SaveDesignConfig overwrites the global design preference wholesale.
func (s *Store) SaveDesignConfig(cfg types.DesignConfig) error {
	if err := s.writeAtomic(filepath.Join(s.dir, designConfigFile), cfg); err != nil {
		return fmt.Errorf("save design config: %w", err)
	}
	return nil
}

// writeAtomic writes v as indented JSON to a temp file then renames it
// over path.
func (s *Store) writeAtomic(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
