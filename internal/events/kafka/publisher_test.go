package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/captable-simulator/internal/models"
	"github.com/sheikh-saqib/captable-simulator/internal/models/events"
)

func TestNewMessageKeyedEvent(t *testing.T) {
	event := events.SimulationCompleted{
		SimulationID: "sim-1",
		Rounds:       2,
		Stakeholders: 3,
		Final:        []models.Holding{{StakeholderID: "f", Bps: 7273}},
		OccurredAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	msg, err := newMessage(events.SimulationCompletedTopic, event)
	require.NoError(t, err)
	assert.Equal(t, "simulation_completed", msg.Topic)
	assert.Equal(t, "sim-1", string(msg.Key))

	var decoded events.SimulationCompleted
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestNewMessageUnkeyedEvent(t *testing.T) {
	msg, err := newMessage("other", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Nil(t, msg.Key)
	assert.JSONEq(t, `{"n":1}`, string(msg.Value))
}

func TestNewMessageEncodeError(t *testing.T) {
	_, err := newMessage("other", make(chan int))
	assert.Error(t, err)
}
