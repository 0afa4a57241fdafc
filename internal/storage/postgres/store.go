package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	interfaces "github.com/sheikh-saqib/captable-simulator/internal/interfaces"
	"github.com/sheikh-saqib/captable-simulator/internal/models"
	"github.com/sheikh-saqib/captable-simulator/internal/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS simulations (
	id              TEXT PRIMARY KEY,
	idempotency_key TEXT UNIQUE,
	status          TEXT NOT NULL,
	request         JSONB NOT NULL,
	history         JSONB NOT NULL,
	error           JSONB,
	created_at      TIMESTAMPTZ NOT NULL
)`

const selectColumns = `SELECT id, idempotency_key, status, request, history, error, created_at FROM simulations`

type PostgresSimulationStore struct {
	db *sql.DB
}

func NewPostgresSimulationStore(db *sql.DB) *PostgresSimulationStore {
	return &PostgresSimulationStore{
		db: db,
	}
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the simulations table if it does not exist.
func (p *PostgresSimulationStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresSimulationStore) SaveSimulation(ctx context.Context, sim models.Simulation) error {
	const query = `INSERT INTO simulations (id, idempotency_key, status, request, history, error, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	request, err := json.Marshal(sim.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	history, err := json.Marshal(sim.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	// lib/pq sends []byte as bytea, so JSON goes over the wire as text
	simErr := sql.NullString{}
	if sim.Error != nil {
		b, err := json.Marshal(sim.Error)
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
		simErr = sql.NullString{String: string(b), Valid: true}
	}
	key := sql.NullString{String: sim.IdempotencyKey, Valid: sim.IdempotencyKey != ""}

	_, err = p.db.ExecContext(ctx, query, sim.ID, key, string(sim.Status), string(request), string(history), simErr, sim.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return storage.ErrDuplicate
	}
	return err
}

func (p *PostgresSimulationStore) GetSimulation(ctx context.Context, id string) (models.Simulation, error) {
	row := p.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	sim, err := scanSimulation(row)
	if err == sql.ErrNoRows {
		return models.Simulation{}, storage.ErrNotFound
	}
	return sim, err
}

func (p *PostgresSimulationStore) GetByIdempotencyKey(ctx context.Context, key string) (models.Simulation, bool, error) {
	row := p.db.QueryRowContext(ctx, selectColumns+` WHERE idempotency_key = $1 LIMIT 1`, key)
	sim, err := scanSimulation(row)
	if err == sql.ErrNoRows {
		return models.Simulation{}, false, nil
	}
	if err != nil {
		return models.Simulation{}, false, err
	}
	return sim, true, nil
}

func (p *PostgresSimulationStore) ListSimulations(ctx context.Context, limit int) ([]models.Simulation, error) {
	rows, err := p.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT $1`, storage.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sims []models.Simulation
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		sims = append(sims, sim)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sims, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSimulation(s scanner) (models.Simulation, error) {
	var (
		sim                      models.Simulation
		key                      sql.NullString
		status                   string
		request, history, simErr []byte
	)
	if err := s.Scan(&sim.ID, &key, &status, &request, &history, &simErr, &sim.CreatedAt); err != nil {
		return models.Simulation{}, err
	}
	sim.IdempotencyKey = key.String
	sim.Status = models.SimulationStatus(status)
	if err := json.Unmarshal(request, &sim.Request); err != nil {
		return models.Simulation{}, fmt.Errorf("decode request of %s: %w", sim.ID, err)
	}
	if err := json.Unmarshal(history, &sim.History); err != nil {
		return models.Simulation{}, fmt.Errorf("decode history of %s: %w", sim.ID, err)
	}
	if len(simErr) > 0 {
		sim.Error = &models.SimulationError{}
		if err := json.Unmarshal(simErr, sim.Error); err != nil {
			return models.Simulation{}, fmt.Errorf("decode error of %s: %w", sim.ID, err)
		}
	}
	return sim, nil
}

var _ interfaces.SimulationStore = (*PostgresSimulationStore)(nil)
