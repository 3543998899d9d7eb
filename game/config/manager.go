package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

var (
	ErrPresetNotFound = errors.New("time control preset not found")
	ErrInvalidPreset  = errors.New("invalid time control preset")
)

// Preset is a named time-control configuration. InitialSeconds of zero
// means untimed: matches created from the preset carry no clock at all.
type Preset struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	InitialSeconds   int    `json:"initial_seconds"`
	IncrementSeconds int    `json:"increment_seconds"`
}

// TimeControl converts the preset into a match time control, or nil for an
// untimed preset.
func (p *Preset) TimeControl() *match.TimeControl {
	if p.InitialSeconds == 0 {
		return nil
	}
	return &match.TimeControl{
		Initial:   time.Duration(p.InitialSeconds) * time.Second,
		Increment: time.Duration(p.IncrementSeconds) * time.Second,
	}
}

// ValidatePreset checks a preset's fields.
func ValidatePreset(p *Preset) error {
	if p == nil {
		return fmt.Errorf("%w: preset is nil", ErrInvalidPreset)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if p.InitialSeconds < 0 {
		return fmt.Errorf("%w: initial_seconds cannot be negative", ErrInvalidPreset)
	}
	if p.IncrementSeconds < 0 {
		return fmt.Errorf("%w: increment_seconds cannot be negative", ErrInvalidPreset)
	}
	if p.InitialSeconds == 0 && p.IncrementSeconds > 0 {
		return fmt.Errorf("%w: an untimed preset cannot have an increment", ErrInvalidPreset)
	}
	return nil
}

// builtinPresets are always available, even with no presets directory.
var builtinPresets = map[string]*Preset{
	"untimed":   {Name: "untimed", Description: "No clocks"},
	"bullet":    {Name: "bullet", Description: "1 minute, no increment", InitialSeconds: 60},
	"blitz":     {Name: "blitz", Description: "3 minutes + 2 seconds", InitialSeconds: 180, IncrementSeconds: 2},
	"rapid":     {Name: "rapid", Description: "10 minutes + 5 seconds", InitialSeconds: 600, IncrementSeconds: 5},
	"classical": {Name: "classical", Description: "90 minutes + 30 seconds", InitialSeconds: 5400, IncrementSeconds: 30},
}

// DefaultPresetName is used when match creation names no preset.
const DefaultPresetName = "untimed"

// Manager loads time-control presets, caching file-backed ones. Files in
// the presets directory shadow the built-in preset of the same name.
type Manager struct {
	presetsDir string
	presets    map[string]*Preset
	mu         sync.RWMutex
}

// NewManager creates a preset manager. An empty presetsDir serves only the
// built-in presets; a non-empty one must exist.
func NewManager(presetsDir string) (*Manager, error) {
	if presetsDir != "" {
		if _, err := os.Stat(presetsDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("presets directory does not exist: %s", presetsDir)
		}
	}
	return &Manager{
		presetsDir: presetsDir,
		presets:    make(map[string]*Preset),
	}, nil
}

// LoadPreset loads a preset by name: cache first, then the presets
// directory, then the built-ins.
func (m *Manager) LoadPreset(name string) (*Preset, error) {
	m.mu.RLock()
	if preset, ok := m.presets[name]; ok {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if preset, ok := m.presets[name]; ok {
		return preset, nil
	}

	if m.presetsDir != "" {
		preset, err := m.loadFromFile(name)
		if err == nil {
			m.presets[name] = preset
			return preset, nil
		}
		if !errors.Is(err, ErrPresetNotFound) {
			return nil, err
		}
	}

	if preset, ok := builtinPresets[name]; ok {
		return preset, nil
	}
	return nil, ErrPresetNotFound
}

// GetDefault returns the preset used when none is named.
func (m *Manager) GetDefault() *Preset {
	preset, err := m.LoadPreset(DefaultPresetName)
	if err != nil {
		return builtinPresets[DefaultPresetName]
	}
	return preset
}

// ListPresets returns every available preset, built-ins included, sorted by
// name. File presets shadow built-ins of the same name.
func (m *Manager) ListPresets() ([]*Preset, error) {
	byName := make(map[string]*Preset, len(builtinPresets))
	for name, preset := range builtinPresets {
		byName[name] = preset
	}

	if m.presetsDir != "" {
		entries, err := os.ReadDir(m.presetsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read presets directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".json")
			preset, err := m.LoadPreset(name)
			if err != nil {
				// Skip unreadable presets rather than failing the listing.
				continue
			}
			byName[name] = preset
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	presets := make([]*Preset, 0, len(names))
	for _, name := range names {
		presets = append(presets, byName[name])
	}
	return presets, nil
}

// SavePreset validates and writes a preset to the presets directory.
func (m *Manager) SavePreset(name string, preset *Preset) error {
	if m.presetsDir == "" {
		return fmt.Errorf("no presets directory configured")
	}
	if err := ValidatePreset(preset); err != nil {
		return err
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}
	if err := os.WriteFile(m.filePath(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	m.mu.Lock()
	m.presets[name] = preset
	m.mu.Unlock()
	return nil
}

// RefreshCache drops every cached file preset so the next load re-reads
// from disk.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.presets = make(map[string]*Preset)
	m.mu.Unlock()
}

func (m *Manager) loadFromFile(name string) (*Preset, error) {
	data, err := os.ReadFile(m.filePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", name, err)
	}
	if err := ValidatePreset(&preset); err != nil {
		return nil, err
	}
	return &preset, nil
}

func (m *Manager) filePath(name string) string {
	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}
	return filepath.Join(m.presetsDir, filename)
}
