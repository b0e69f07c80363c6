// Package profile provides persistence for saved debug targets
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rokuterm/pkg/transport"
)

// TargetConfig describes a saved debug target: the device address plus
// the per-target session options.
type TargetConfig struct {
	Transport  transport.Config `json:"transport"`
	FontHeight int              `json:"font_height,omitempty"`
	LogFile    string           `json:"log_file,omitempty"`
}

// Validate checks if the target configuration is valid
func (t TargetConfig) Validate() error {
	if err := t.Transport.Validate(); err != nil {
		return fmt.Errorf("invalid transport config: %w", err)
	}

	if t.FontHeight < 0 {
		return fmt.Errorf("font height cannot be negative")
	}

	return nil
}

// DefaultTarget returns a target pointing at the default debugger
// address.
func DefaultTarget() TargetConfig {
	return TargetConfig{
		Transport: transport.DefaultConfig(),
	}
}

// Manager interface defines the contract for profile operations
type Manager interface {
	SaveProfile(name string, target TargetConfig) error
	LoadProfile(name string) (TargetConfig, error)
	ListProfiles() ([]ProfileInfo, error)
	DeleteProfile(name string) error
	ProfileExists(name string) bool
}

// ProfileInfo contains metadata about a saved profile
type ProfileInfo struct {
	Name       string       `json:"name"`
	Target     TargetConfig `json:"target"`
	CreatedAt  time.Time    `json:"created_at"`
	LastUsedAt time.Time    `json:"last_used_at"`
}

// Validate checks if the profile info is valid
func (p ProfileInfo) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if err := p.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	if p.CreatedAt.IsZero() {
		return fmt.Errorf("created_at timestamp cannot be zero")
	}

	return nil
}

// profileStorage is the on-disk format
type profileStorage struct {
	Profiles map[string]ProfileInfo `json:"profiles"`
	Version  string                 `json:"version"`
}

// FileManager implements Manager using a JSON file
type FileManager struct {
	configDir   string
	profileFile string
}

// NewFileManager creates a file-based profile manager. An empty
// configDir resolves to the user's configuration directory.
func NewFileManager(configDir string) *FileManager {
	if configDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			configDir = filepath.Join(base, "rokuterm")
		} else {
			configDir = "."
		}
	}

	return &FileManager{
		configDir:   configDir,
		profileFile: "profiles.json",
	}
}

// SaveProfile saves a target under the given name, preserving the
// creation time of an existing profile.
func (fm *FileManager) SaveProfile(name string, target TargetConfig) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if err := target.Validate(); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return fmt.Errorf("failed to load existing profiles: %w", err)
	}

	now := time.Now()
	info := ProfileInfo{
		Name:       name,
		Target:     target,
		CreatedAt:  now,
		LastUsedAt: now,
	}

	if existing, exists := storage.Profiles[name]; exists {
		info.CreatedAt = existing.CreatedAt
	}

	storage.Profiles[name] = info

	return fm.saveStorage(storage)
}

// LoadProfile loads a target by name and updates its last-used time.
func (fm *FileManager) LoadProfile(name string) (TargetConfig, error) {
	if name == "" {
		return TargetConfig{}, fmt.Errorf("profile name cannot be empty")
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return TargetConfig{}, fmt.Errorf("failed to load profiles: %w", err)
	}

	info, exists := storage.Profiles[name]
	if !exists {
		return TargetConfig{}, fmt.Errorf("profile '%s' not found", name)
	}

	info.LastUsedAt = time.Now()
	storage.Profiles[name] = info

	// Non-critical bookkeeping; ignore a save failure here.
	fm.saveStorage(storage)

	return info.Target, nil
}

// ListProfiles returns all saved profiles.
func (fm *FileManager) ListProfiles() ([]ProfileInfo, error) {
	storage, err := fm.loadStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	profiles := make([]ProfileInfo, 0, len(storage.Profiles))
	for _, info := range storage.Profiles {
		profiles = append(profiles, info)
	}

	return profiles, nil
}

// DeleteProfile deletes a profile by name.
func (fm *FileManager) DeleteProfile(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if _, exists := storage.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(storage.Profiles, name)

	return fm.saveStorage(storage)
}

// ProfileExists checks if a profile with the given name exists.
func (fm *FileManager) ProfileExists(name string) bool {
	if name == "" {
		return false
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return false
	}

	_, exists := storage.Profiles[name]
	return exists
}

// profilePath returns the full path to the profile file
func (fm *FileManager) profilePath() string {
	return filepath.Join(fm.configDir, fm.profileFile)
}

// loadStorage loads the profile storage from file
func (fm *FileManager) loadStorage() (profileStorage, error) {
	data, err := os.ReadFile(fm.profilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return profileStorage{
				Profiles: make(map[string]ProfileInfo),
				Version:  "1.0",
			}, nil
		}
		return profileStorage{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	var storage profileStorage
	if err := json.Unmarshal(data, &storage); err != nil {
		return profileStorage{}, fmt.Errorf("failed to parse profile file: %w", err)
	}

	if storage.Profiles == nil {
		storage.Profiles = make(map[string]ProfileInfo)
	}

	return storage, nil
}

// saveStorage saves the profiles, writing to a temporary file first and
// renaming for an atomic replace.
func (fm *FileManager) saveStorage(storage profileStorage) error {
	if err := os.MkdirAll(fm.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(storage, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile data: %w", err)
	}

	path := fm.profilePath()
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary profile file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary profile file: %w", err)
	}

	return nil
}
