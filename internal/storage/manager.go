// Package storage provides the top-level StorageManager that coordinates
// the simulation database and the raw file area.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/interfaces"
	"github.com/mbarros/simvest/internal/storage/simdb"
)

// Manager implements interfaces.StorageManager.
type Manager struct {
	sims     *simdb.Store
	filePath string
	logger   *common.Logger
}

// NewManager creates a new StorageManager.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	simStore, err := simdb.NewStore(logger, config.Storage.Simulations.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation store: %w", err)
	}

	filePath := config.Storage.Files.Path
	if err := os.MkdirAll(filePath, 0755); err != nil {
		simStore.Close()
		return nil, fmt.Errorf("failed to create file area %s: %w", filePath, err)
	}

	logger.Info().
		Str("simulations", config.Storage.Simulations.Path).
		Str("files", filePath).
		Msg("Storage manager initialized")

	return &Manager{
		sims:     simStore,
		filePath: filePath,
		logger:   logger,
	}, nil
}

func (m *Manager) Simulations() interfaces.SimulationStore {
	return m.sims
}

func (m *Manager) DataPath() string {
	return m.filePath
}

// WriteRaw writes arbitrary binary data to a subdirectory atomically.
func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(m.filePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, sanitizeKey(key))

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Close releases all storage resources.
func (m *Manager) Close() error {
	return m.sims.Close()
}

// sanitizeKey makes a key safe for use as a filename.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "-")
	return replacer.Replace(key)
}
