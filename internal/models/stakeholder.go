package models

import "github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"

// Category classifies a stakeholder on the cap table.
type Category string

const (
	CategoryFounder      Category = "FOUNDER"
	CategoryEmployeePool Category = "EMPLOYEE_POOL"
	CategoryInvestor     Category = "INVESTOR"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFounder, CategoryEmployeePool, CategoryInvestor:
		return true
	}
	return false
}

// Stakeholder is anyone who owns part of the company. Stakeholders are never
// removed; their ownership at a point in time lives in a Snapshot.
type Stakeholder struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	// IntroducedAt is the round index that created the stakeholder, 0 for
	// the initial distribution.
	IntroducedAt int `json:"introduced_at"`
}

// Holder is one entry of the initial distribution. Either Bps or Shares may
// be given; when every holder omits Bps the split is derived from Shares.
type Holder struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string         `json:"name" yaml:"name"`
	Category Category       `json:"category,omitempty" yaml:"category,omitempty"`
	Bps      fixedpoint.Bps `json:"bps,omitempty" yaml:"bps,omitempty"`
	Shares   int64          `json:"shares,omitempty" yaml:"shares,omitempty"`
}
