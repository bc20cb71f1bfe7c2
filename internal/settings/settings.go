// Package settings persists the club's court configuration. The game
// state resizes its courts from it on every change.
package settings

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nmdr-club/courtsync/internal/kv"
)

const storageKey = "app_settings"

// DefaultCourtsCount matches a standard club night hall.
const DefaultCourtsCount = 4

// Layout selects how the court overview is rendered.
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

// CourtPosition places one court in the grid layout.
type CourtPosition struct {
	CourtID int  `json:"court_id" msgpack:"court_id"`
	Active  bool `json:"active" msgpack:"active"`
	Row     int  `json:"row" msgpack:"row"`
	Col     int  `json:"col" msgpack:"col"`
}

// Settings is the persisted app configuration.
type Settings struct {
	CourtsCount    int             `json:"courts_count" msgpack:"courts_count"`
	Layout         Layout          `json:"layout" msgpack:"layout"`
	Location       string          `json:"location,omitempty" msgpack:"location,omitempty"`
	GridRows       int             `json:"grid_rows" msgpack:"grid_rows"`
	GridCols       int             `json:"grid_cols" msgpack:"grid_cols"`
	CourtPositions []CourtPosition `json:"court_positions,omitempty" msgpack:"court_positions,omitempty"`
}

// Store loads and saves the settings.
type Store interface {
	Get() (Settings, error)
	Set(settings Settings) error
}

// Defaults returns the configuration used before anything is saved: a
// four-court grid, two by two.
func Defaults() Settings {
	return Settings{
		CourtsCount: DefaultCourtsCount,
		Layout:      LayoutGrid,
		GridRows:    2,
		GridCols:    2,
	}
}

type store struct {
	kv kv.Store
}

// New creates a Store over the local key-value layer.
func New(kvStore kv.Store) Store {
	return &store{kv: kvStore}
}

func (s *store) Get() (Settings, error) {
	payload, ok, err := s.kv.Get(storageKey)
	if err != nil {
		return Defaults(), err
	}
	if !ok {
		return Defaults(), nil
	}
	var settings Settings
	if err := msgpack.Unmarshal(payload, &settings); err != nil {
		log.Warn("Discarding unreadable settings, falling back to defaults", "error", err)
		return Defaults(), nil
	}
	if settings.CourtsCount <= 0 {
		settings.CourtsCount = DefaultCourtsCount
	}
	if settings.Layout == "" {
		settings.Layout = LayoutGrid
	}
	return settings, nil
}

func (s *store) Set(settings Settings) error {
	if settings.CourtsCount <= 0 {
		return fmt.Errorf("courts count must be positive, got %d", settings.CourtsCount)
	}
	if settings.Layout != LayoutGrid && settings.Layout != LayoutList {
		return fmt.Errorf("unknown layout %q", settings.Layout)
	}
	payload, err := msgpack.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := s.kv.Set(storageKey, payload); err != nil {
		return fmt.Errorf("persisting settings: %w", err)
	}
	log.Info("Settings saved", "courts", settings.CourtsCount, "layout", settings.Layout)
	return nil
}
