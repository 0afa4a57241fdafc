// Package api exposes the simulator over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/captable-simulator/internal/captable"
	"github.com/sheikh-saqib/captable-simulator/internal/format"
	"github.com/sheikh-saqib/captable-simulator/internal/models"
	"github.com/sheikh-saqib/captable-simulator/internal/scenario"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service         *scenario.Service
	log             zerolog.Logger
	defaultLocale   string
	defaultCurrency string
}

// NewHandler serves simulations from service. Responses are formatted with
// locale and currency unless a request names its own.
func NewHandler(service *scenario.Service, log zerolog.Logger, locale, currency string) *Handler {
	return &Handler{service: service, log: log, defaultLocale: locale, defaultCurrency: currency}
}

// simulationResponse carries a run, failed or not. A failed run keeps the
// snapshots computed before the failing round.
type simulationResponse struct {
	ID        string                  `json:"id"`
	Status    models.SimulationStatus `json:"status"`
	Replayed  bool                    `json:"replayed,omitempty"`
	Error     *errorPayload           `json:"error,omitempty"`
	History   models.History          `json:"history"`
	Report    format.Report           `json:"report"`
	CreatedAt time.Time               `json:"created_at"`
}

type listResponse struct {
	Simulations []simulationSummary `json:"simulations"`
}

type simulationSummary struct {
	ID        string                  `json:"id"`
	Status    models.SimulationStatus `json:"status"`
	Rounds    int                     `json:"rounds"`
	CreatedAt time.Time               `json:"created_at"`
}

func (h *Handler) createSimulation(w http.ResponseWriter, r *http.Request) {
	var req models.SimulationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	f, err := h.formatter(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(captable.KindInvalidArgument), err.Error())
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	sim, replayed, err := h.service.Run(r.Context(), key, req)
	var capErr *captable.Error
	if err != nil && !errors.As(err, &capErr) {
		h.log.Error().Err(err).Msg("run simulation")
		writeError(w, http.StatusInternalServerError, "internal_error", "simulation could not be recorded")
		return
	}

	status := simulationStatus(err)
	if replayed && err == nil {
		status = http.StatusOK
	}
	writeJSON(w, status, toResponse(sim, f, replayed))
}

func (h *Handler) getSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status, kind := lookupStatus(err)
		writeError(w, status, kind, err.Error())
		return
	}
	f, err := h.formatter(sim.Request)
	if err != nil {
		// stored requests were validated when they ran
		f, _ = format.New(h.defaultLocale, h.defaultCurrency)
	}
	writeJSON(w, http.StatusOK, toResponse(sim, f, false))
}

func (h *Handler) listSimulations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, string(captable.KindInvalidArgument), "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sims, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list simulations")
		writeError(w, http.StatusInternalServerError, "internal_error", "simulations could not be listed")
		return
	}
	resp := listResponse{Simulations: make([]simulationSummary, 0, len(sims))}
	for _, s := range sims {
		resp.Simulations = append(resp.Simulations, simulationSummary{
			ID:        s.ID,
			Status:    s.Status,
			Rounds:    len(s.Request.Rounds),
			CreatedAt: s.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) formatter(req models.SimulationRequest) (*format.Formatter, error) {
	locale, currency := req.Locale, req.Currency
	if locale == "" {
		locale = h.defaultLocale
	}
	if currency == "" {
		currency = h.defaultCurrency
	}
	return format.New(locale, currency)
}

func toResponse(sim models.Simulation, f *format.Formatter, replayed bool) simulationResponse {
	resp := simulationResponse{
		ID:        sim.ID,
		Status:    sim.Status,
		Replayed:  replayed,
		History:   sim.History,
		Report:    f.Report(sim.History),
		CreatedAt: sim.CreatedAt,
	}
	if sim.Error != nil {
		round := sim.Error.Round
		resp.Error = &errorPayload{Kind: sim.Error.Kind, Round: &round, Message: sim.Error.Message}
	}
	return resp
}
