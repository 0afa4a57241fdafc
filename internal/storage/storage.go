// Package storage holds what the simulation stores have in common.
package storage

import "errors"

var (
	ErrNotFound  = errors.New("simulation not found")
	ErrDuplicate = errors.New("simulation already recorded")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// NormalizeLimit clamps a list limit to (0, MaxListLimit], using
// DefaultListLimit for non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
