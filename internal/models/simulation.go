package models

import "time"

// SimulationRequest is a what-if scenario submitted for simulation.
type SimulationRequest struct {
	Initial []Holder       `json:"initial,omitempty"`
	Rounds  []FundingRound `json:"rounds"`
	// Locale and Currency drive formatted output only.
	Locale   string `json:"locale,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// SimulationStatus is the outcome of a run.
type SimulationStatus string

const (
	SimulationCompleted SimulationStatus = "completed"
	SimulationFailed    SimulationStatus = "failed"
)

// SimulationError describes which round failed and why.
type SimulationError struct {
	Kind    string `json:"kind"`
	Round   int    `json:"round"`
	Message string `json:"message"`
}

// Simulation is the recorded run of a SimulationRequest. A failed run keeps
// the snapshots computed before the failing round.
type Simulation struct {
	ID             string            `json:"id"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Status         SimulationStatus  `json:"status"`
	Request        SimulationRequest `json:"request"`
	History        History           `json:"history"`
	Error          *SimulationError  `json:"error,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
