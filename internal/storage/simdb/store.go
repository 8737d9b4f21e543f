// Package simdb implements SimulationStore using BadgerHold.
// Each simulation record embeds its portfolio, assets, price history, and
// valuation history, so deleting the record cascades to all of them.
package simdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

// Store implements interfaces.SimulationStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new SimulationStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create simdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open simdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("SimDB opened")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(_ context.Context, id string) (*models.Simulation, error) {
	var sim models.Simulation
	if err := s.db.Get(id, &sim); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.NewFault(models.FaultNotFound, "simulation '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get simulation '%s': %w", id, err)
	}
	return &sim, nil
}

func (s *Store) Save(_ context.Context, sim *models.Simulation) error {
	now := time.Now()
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = now
	}
	sim.UpdatedAt = now

	if err := s.db.Upsert(sim.ID, sim); err != nil {
		return fmt.Errorf("failed to save simulation '%s': %w", sim.ID, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	if err := s.db.Delete(id, models.Simulation{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return models.NewFault(models.FaultNotFound, "simulation '%s' not found", id)
		}
		return fmt.Errorf("failed to delete simulation '%s': %w", id, err)
	}
	return nil
}

func (s *Store) List(_ context.Context) ([]*models.Simulation, error) {
	var all []models.Simulation
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	result := make([]*models.Simulation, 0, len(all))
	for i := range all {
		sim := all[i]
		result = append(result, &sim)
	}
	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
