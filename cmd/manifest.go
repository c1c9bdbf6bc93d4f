package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/detect"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/v4l2"
)

// CameraEntry is one usable video node as handed to the camera service.
type CameraEntry struct {
	Identity     detect.Identity              `yaml:"identity"`
	Capabilities *v4l2.DeviceCapabilityReport `yaml:"capabilities"`
}

type manifestFile struct {
	Cameras []CameraEntry `yaml:"cameras"`
}

// Manifest holds the last known capabilities of every usable video node.
type Manifest struct {
	path    string
	cameras map[string]CameraEntry
	mu      sync.RWMutex
}

func NewManifest(path string) *Manifest {
	return &Manifest{
		path:    path,
		cameras: make(map[string]CameraEntry),
	}
}

func (m *Manifest) Add(entry CameraEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cameras[entry.Capabilities.Path] = entry
}

// Remove drops a node and reports whether it was known.
func (m *Manifest) Remove(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.cameras[path]
	delete(m.cameras, path)
	return exists
}

func (m *Manifest) Replace(entries []CameraEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cameras = make(map[string]CameraEntry, len(entries))
	for _, entry := range entries {
		m.cameras[entry.Capabilities.Path] = entry
	}
}

func (m *Manifest) Get(path string) (CameraEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, exists := m.cameras[path]; exists {
		return entry, nil
	}
	return CameraEntry{}, fmt.Errorf("%s is not a known camera", path)
}

// Cameras returns the entries sorted by device path.
func (m *Manifest) Cameras() []CameraEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]CameraEntry, 0, len(m.cameras))
	for _, entry := range m.cameras {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Capabilities.Path < entries[j].Capabilities.Path
	})
	return entries
}

// Write replaces the manifest file, going through a temporary file so
// readers never see a partial manifest.
func (m *Manifest) Write() error {
	data, err := yaml.Marshal(manifestFile{Cameras: m.Cameras()})
	if err != nil {
		return fmt.Errorf("failed to encode camera manifest: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create camera manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write camera manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write camera manifest: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write camera manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("failed to install camera manifest %s: %w", m.path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) ([]CameraEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read camera manifest: %w", err)
	}
	var f manifestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode camera manifest %s: %w", path, err)
	}
	return f.Cameras, nil
}
