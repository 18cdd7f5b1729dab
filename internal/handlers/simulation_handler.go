package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/molsimcloud/backend/internal/services"
)

// 2x the per-file cap plus headroom for the rest of the payload.
const maxCreateBodyBytes = 12 * 1024 * 1024

type SimulationHandler struct {
	service *services.SimulationService
}

func NewSimulationHandler(service *services.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

// CreateSimulation creates a new simulation job
// @Summary Create a simulation
// @Description Validate the job definition, debit the account and register the job
// @Tags simulations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateSimulationRequest true "Job definition"
// @Success 201 {object} map[string]any
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse "Insufficient credits"
// @Failure 401 {object} services.ErrorResponse
// @Router /simulations [post]
func (h *SimulationHandler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value("userID").(string)
	if !ok || accountID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req services.CreateSimulationRequest
	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	simulationID, err := h.service.CreateSimulation(r.Context(), accountID, &req)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success":      true,
		"simulationId": simulationID,
	})
}

// ListSimulations lists the caller's jobs
// @Summary List simulations
// @Description All jobs owned by the caller, most recently created first
// @Tags simulations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} services.ErrorResponse
// @Router /simulations [get]
func (h *SimulationHandler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value("userID").(string)
	if !ok || accountID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	simulations, err := h.service.ListSimulations(r.Context(), accountID)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"simulations": simulations,
		"count":       len(simulations),
	})
}

// GetSimulation returns a single job
// @Summary Get simulation by ID
// @Tags simulations
// @Produce json
// @Security BearerAuth
// @Param simulationId path string true "Simulation ID"
// @Success 200 {object} models.Simulation
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /simulations/{simulationId} [get]
func (h *SimulationHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value("userID").(string)
	if !ok || accountID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	simulationID := chi.URLParam(r, "simulationId")

	sim, err := h.service.GetSimulation(r.Context(), accountID, simulationID)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sim)
}

// DeleteSimulation removes a job the caller owns
// @Summary Delete simulation
// @Description Remove a job record; charged credits are not refunded
// @Tags simulations
// @Produce json
// @Security BearerAuth
// @Param simulationId path string true "Simulation ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /simulations/{simulationId} [delete]
func (h *SimulationHandler) DeleteSimulation(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value("userID").(string)
	if !ok || accountID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	simulationID := chi.URLParam(r, "simulationId")

	if err := h.service.DeleteSimulation(r.Context(), accountID, simulationID); err != nil {
		services.SendServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// UpdateStatus applies a worker status report
// @Summary Update simulation status
// @Description Worker-only endpoint; gated by the service token, not user auth
// @Tags simulations
// @Accept json
// @Produce json
// @Param simulationId path string true "Simulation ID"
// @Param request body services.UpdateStatusRequest true "Status report"
// @Success 200 {object} map[string]any
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /internal/simulations/{simulationId}/status [put]
func (h *SimulationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	simulationID := chi.URLParam(r, "simulationId")

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req services.UpdateStatusRequest
	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), simulationID, &req); err != nil {
		services.SendServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}
