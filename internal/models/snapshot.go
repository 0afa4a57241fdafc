package models

import "github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"

// Holding is one stakeholder's position in a snapshot.
type Holding struct {
	StakeholderID string         `json:"stakeholder_id"`
	Bps           fixedpoint.Bps `json:"bps"`
	Shares        int64          `json:"shares"`
}

// Snapshot is the cap table right after a round. Holdings follow the order
// in which stakeholders were introduced.
type Snapshot struct {
	Round    int       `json:"round"`
	Holdings []Holding `json:"holdings"`
}

// TotalBps sums every holding.
func (s Snapshot) TotalBps() fixedpoint.Bps {
	var total fixedpoint.Bps
	for _, h := range s.Holdings {
		total += h.Bps
	}
	return total
}

// TotalShares sums every holding's share count.
func (s Snapshot) TotalShares() int64 {
	var total int64
	for _, h := range s.Holdings {
		total += h.Shares
	}
	return total
}

// Bps returns the ownership of stakeholder id in this snapshot.
func (s Snapshot) Bps(id string) (fixedpoint.Bps, bool) {
	for _, h := range s.Holdings {
		if h.StakeholderID == id {
			return h.Bps, true
		}
	}
	return 0, false
}

// History is the output of a simulation: one snapshot for the initial
// distribution plus one per applied round.
type History struct {
	Stakeholders []Stakeholder `json:"stakeholders"`
	Snapshots    []Snapshot    `json:"snapshots"`
	Rounds       []RoundResult `json:"rounds"`
}

// Final returns the last snapshot, or false if there is none.
func (h History) Final() (Snapshot, bool) {
	if len(h.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.Snapshots[len(h.Snapshots)-1], true
}

// Stakeholder looks up a stakeholder by id.
func (h History) Stakeholder(id string) (Stakeholder, bool) {
	for _, s := range h.Stakeholders {
		if s.ID == id {
			return s, true
		}
	}
	return Stakeholder{}, false
}

// Trajectory returns stakeholder id's bps in every snapshot, 0 before the
// stakeholder was introduced.
func (h History) Trajectory(id string) []fixedpoint.Bps {
	out := make([]fixedpoint.Bps, len(h.Snapshots))
	for i, s := range h.Snapshots {
		out[i], _ = s.Bps(id)
	}
	return out
}
