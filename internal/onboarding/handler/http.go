// Package handler exposes onboarding sessions over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quickfy/backend/internal/onboarding/service"
)

const maxBodyBytes = 64 << 10

// Flow is implemented by *service.Service.
type Flow interface {
	Start(ctx context.Context) (service.View, error)
	Get(ctx context.Context, sessionID string) (service.View, error)
	Dispatch(ctx context.Context, sessionID string, in service.Input) (service.View, error)
}

// Handler serves the onboarding session routes.
type Handler struct {
	flow Flow
}

// NewHandler returns an onboarding handler backed by flow.
func NewHandler(flow Flow) *Handler {
	return &Handler{flow: flow}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register mounts the onboarding routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/onboarding", h.start)
	mux.HandleFunc("GET /api/onboarding/{id}", h.get)
	mux.HandleFunc("POST /api/onboarding/{id}/events", h.dispatch)

	// Method-less patterns only match what the routes above reject.
	mux.HandleFunc("/api/onboarding", methodNotAllowed(http.MethodPost))
	mux.HandleFunc("/api/onboarding/{id}", methodNotAllowed(http.MethodGet))
	mux.HandleFunc("/api/onboarding/{id}/events", methodNotAllowed(http.MethodPost))
}

func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	view, err := h.flow.Start(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.flow.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// dispatch applies one wizard event. Field errors come back as 422 with the unchanged session.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	var in service.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if in.Type == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "event type is required"})
		return
	}
	view, err := h.flow.Dispatch(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(view.FieldErrors) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrProvisioningFailed):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		log.Printf("onboarding: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("onboarding: write response: %v", err)
	}
}
