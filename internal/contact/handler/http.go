// Package handler exposes the contact gate over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quickfy/backend/internal/contact/domain"
	"quickfy/backend/internal/contact/service"
	"quickfy/backend/internal/server/middleware"
)

const maxBodyBytes = 64 << 10

// Submitter is implemented by *service.Gate.
type Submitter interface {
	Submit(ctx context.Context, clientKey string, in domain.Input) (service.Result, error)
}

// Handler serves POST /api/contact.
type Handler struct {
	gate Submitter
}

// NewHandler returns a contact handler backed by gate.
func NewHandler(gate Submitter) *Handler {
	return &Handler{gate: gate}
}

type response struct {
	Success    bool   `json:"success"`
	ID         string `json:"id,omitempty"`
	Error      string `json:"error,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// ServeHTTP accepts only POST. The client key comes from the forwarding headers or the remote address.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, response{Error: "Method not allowed"})
		return
	}

	var in domain.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "Invalid request body"})
		return
	}

	res, err := h.gate.Submit(r.Context(), middleware.ClientIP(r), in)
	if err != nil {
		if !errors.Is(err, service.ErrDownstream) {
			log.Printf("contact: submit: %v", err)
		}
		writeJSON(w, http.StatusInternalServerError, response{Error: service.ErrDownstream.Error()})
		return
	}

	switch res.Status {
	case service.StatusRateLimited:
		w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfterSeconds))
		writeJSON(w, http.StatusTooManyRequests, response{Error: res.Error, RetryAfter: res.RetryAfterSeconds})
	case service.StatusInvalid:
		writeJSON(w, http.StatusBadRequest, response{Error: res.Error})
	default:
		writeJSON(w, http.StatusOK, response{Success: true, ID: res.ID})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("contact: write response: %v", err)
	}
}
