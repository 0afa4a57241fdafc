package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultListLimit, NormalizeLimit(-3))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, MaxListLimit, NormalizeLimit(10_000))
}
