// Package server assembles the public HTTP API and the gRPC server.
package server

import (
	"net/http"

	"quickfy/backend/internal/health"
	"quickfy/backend/internal/server/middleware"
)

// RouteRegistrar mounts its routes on a mux. *onboarding/handler.Handler implements it.
type RouteRegistrar interface {
	Register(mux *http.ServeMux)
}

// Routes are the HTTP surfaces. Nil entries are not mounted.
type Routes struct {
	Contact    http.Handler
	Onboarding RouteRegistrar
	Health     *health.Checker
}

// NewHTTPHandler builds the mux and wraps it in the shared middleware chain.
func NewHTTPHandler(routes Routes) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Liveness)
	if routes.Health != nil {
		mux.HandleFunc("GET /readyz", routes.Health.Readiness)
	}
	if routes.Contact != nil {
		// The contact handler answers 405 itself, so it takes every method.
		mux.Handle("/api/contact", routes.Contact)
	}
	if routes.Onboarding != nil {
		routes.Onboarding.Register(mux)
	}
	return middleware.Chain(mux,
		middleware.Recover,
		middleware.RequestID,
		middleware.ClientIPMiddleware,
		middleware.Tracing,
		middleware.AccessLog,
	)
}
