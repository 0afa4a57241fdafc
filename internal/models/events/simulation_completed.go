package events

import (
	"time"

	"github.com/sheikh-saqib/captable-simulator/internal/models"
)

const SimulationCompletedTopic = "simulation_completed"

// SimulationCompleted is published after a simulation ran to the last round.
type SimulationCompleted struct {
	SimulationID string           `json:"simulation_id"`
	Rounds       int              `json:"rounds"`
	Stakeholders int              `json:"stakeholders"`
	Final        []models.Holding `json:"final"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// NewSimulationCompleted builds the event for a completed simulation.
func NewSimulationCompleted(sim models.Simulation) SimulationCompleted {
	final, _ := sim.History.Final()
	return SimulationCompleted{
		SimulationID: sim.ID,
		Rounds:       len(sim.History.Rounds),
		Stakeholders: len(sim.History.Stakeholders),
		Final:        final.Holdings,
		OccurredAt:   sim.CreatedAt,
	}
}

// EventKey partitions events by simulation.
func (e SimulationCompleted) EventKey() string {
	return e.SimulationID
}
