package interfaces

import (
	"context"

	"github.com/mbarros/simvest/internal/models"
)

// StorageManager coordinates the storage areas.
type StorageManager interface {
	Simulations() SimulationStore

	// WriteRaw writes arbitrary binary data (e.g. rendered charts) to a
	// subdirectory atomically. Key is sanitized for safe filenames.
	WriteRaw(subdir, key string, data []byte) error

	// DataPath returns the base file-area path.
	DataPath() string

	Close() error
}

// SimulationStore persists simulation records. A simulation owns its
// portfolio and assets; deleting the record cascades to them.
type SimulationStore interface {
	Get(ctx context.Context, id string) (*models.Simulation, error)
	Save(ctx context.Context, sim *models.Simulation) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Simulation, error)
	Close() error
}
