// Package scenario runs simulation requests on behalf of the transport
// layers: it calls the simulator, records each run and announces completed
// ones.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/captable-simulator/internal/captable"
	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
	interfaces "github.com/sheikh-saqib/captable-simulator/internal/interfaces"
	"github.com/sheikh-saqib/captable-simulator/internal/models"
	"github.com/sheikh-saqib/captable-simulator/internal/models/events"
	"github.com/sheikh-saqib/captable-simulator/internal/storage"
)

// Service records simulation runs in a store and optionally publishes a
// SimulationCompleted event for each successful one.
type Service struct {
	store     interfaces.SimulationStore
	publisher interfaces.EventPublisher // nil disables events
	topic     string
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string

	muMap map[string]*keyLock // one lock per idempotency key in use
	mapMu sync.Mutex          // protects muMap
}

// keyLock is dropped from muMap once nobody holds or waits for it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher publishes completion events to topic.
func WithPublisher(p interfaces.EventPublisher, topic string) Option {
	return func(s *Service) {
		s.publisher = p
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the run id generator, for tests.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store interfaces.SimulationStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		topic: events.SimulationCompletedTopic,
		log:   zerolog.Nop(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
		muMap: make(map[string]*keyLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockKey blocks until the caller holds key and returns the unlock func.
func (s *Service) lockKey(key string) func() {
	s.mapMu.Lock()
	l, exists := s.muMap[key]
	if !exists {
		l = &keyLock{}
		s.muMap[key] = l
	}
	l.refs++
	s.mapMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mapMu.Lock()
		defer s.mapMu.Unlock()
		if l.refs--; l.refs == 0 {
			delete(s.muMap, key)
		}
	}
}

// Run simulates req and records the outcome. A failed simulation is still
// recorded, with the snapshots computed before the failing round, and its
// *captable.Error is returned alongside the record.
//
// A non-empty idempotencyKey that was already used returns the recorded run
// without simulating again. replayed reports that case.
func (s *Service) Run(ctx context.Context, idempotencyKey string, req models.SimulationRequest) (sim models.Simulation, replayed bool, err error) {
	if idempotencyKey != "" {
		unlock := s.lockKey(idempotencyKey)
		defer unlock()

		prior, found, err := s.store.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return models.Simulation{}, false, fmt.Errorf("look up idempotency key: %w", err)
		}
		if found {
			s.log.Debug().Str("simulation_id", prior.ID).Str("idempotency_key", idempotencyKey).Msg("replaying recorded simulation")
			return prior, true, replayError(prior)
		}
	}

	history, simErr := captable.Simulate(req.Initial, req.Rounds)
	sim = models.Simulation{
		ID:             s.newID(),
		IdempotencyKey: idempotencyKey,
		Status:         models.SimulationCompleted,
		Request:        req,
		History:        history,
		CreatedAt:      s.now(),
	}

	var capErr *captable.Error
	if simErr != nil {
		if !errors.As(simErr, &capErr) {
			return models.Simulation{}, false, fmt.Errorf("simulate: %w", simErr)
		}
		sim.Status = models.SimulationFailed
		sim.Error = &models.SimulationError{Kind: string(capErr.Kind), Round: capErr.Round, Message: capErr.Err.Error()}
	}

	if err := s.store.SaveSimulation(ctx, sim); err != nil {
		return models.Simulation{}, false, fmt.Errorf("save simulation: %w", err)
	}

	logger := s.log.With().Str("simulation_id", sim.ID).Int("rounds", len(req.Rounds)).Logger()
	switch {
	case capErr == nil:
		logger.Info().Int("stakeholders", len(history.Stakeholders)).Msg("simulation completed")
		s.publish(ctx, logger, sim)
	case capErr.Kind == captable.KindInvalidState:
		// a broken invariant is a defect, not bad input
		logger.Error().Err(capErr.Err).Int("round", capErr.Round).Str("kind", string(capErr.Kind)).Msg("simulation invariant violated")
	default:
		logger.Warn().Err(capErr.Err).Int("round", capErr.Round).Str("kind", string(capErr.Kind)).Msg("simulation rejected")
	}

	if capErr != nil {
		return sim, false, capErr
	}
	return sim, false, nil
}

// publish is best effort: the run is already recorded.
func (s *Service) publish(ctx context.Context, logger zerolog.Logger, sim models.Simulation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, events.NewSimulationCompleted(sim)); err != nil {
		logger.Error().Err(err).Str("topic", s.topic).Msg("publish simulation_completed")
	}
}

// Get returns a recorded run.
func (s *Service) Get(ctx context.Context, id string) (models.Simulation, error) {
	sim, err := s.store.GetSimulation(ctx, id)
	if err != nil {
		return models.Simulation{}, fmt.Errorf("get simulation %s: %w", id, err)
	}
	return sim, nil
}

// List returns recorded runs, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]models.Simulation, error) {
	sims, err := s.store.ListSimulations(ctx, storage.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	return sims, nil
}

// replayError rebuilds the error of a recorded failed run.
func replayError(sim models.Simulation) error {
	if sim.Error == nil {
		return nil
	}
	return RecordedError(*sim.Error)
}

// RecordedError turns a stored failure back into a *captable.Error that
// unwraps to the sentinel of its kind.
func RecordedError(e models.SimulationError) *captable.Error {
	kind := captable.Kind(e.Kind)
	sentinel := fixedpoint.ErrInvalidArgument
	if kind == captable.KindInvalidState {
		sentinel = fixedpoint.ErrInvalidState
	}
	return &captable.Error{Kind: kind, Round: e.Round, Err: recordedError{msg: e.Message, sentinel: sentinel}}
}

type recordedError struct {
	msg      string
	sentinel error
}

func (e recordedError) Error() string { return e.msg }
func (e recordedError) Unwrap() error { return e.sentinel }
