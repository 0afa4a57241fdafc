package interfaces

import (
	"context"

	"github.com/sheikh-saqib/captable-simulator/internal/models"
)

// SimulationStore keeps the record of every simulation run.
type SimulationStore interface {
	SaveSimulation(ctx context.Context, sim models.Simulation) error
	GetSimulation(ctx context.Context, id string) (models.Simulation, error)
	GetByIdempotencyKey(ctx context.Context, key string) (models.Simulation, bool, error)
	ListSimulations(ctx context.Context, limit int) ([]models.Simulation, error)
}
