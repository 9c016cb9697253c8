package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"healthreg/internal/patient/handler"
	"healthreg/internal/platform/metrics"
	"healthreg/pkg/platform/httputil"
	"healthreg/pkg/platform/middleware/logging"
	"healthreg/pkg/platform/middleware/requesttime"
)

// newRouter mounts the patient API plus health and metrics endpoints.
func newRouter(h *handler.Handler, reg *prometheus.Registry, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(logging.Recovery(logger))
	r.Use(logging.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if reg != nil {
		r.Handle("/metrics", metrics.Handler(reg))
	}
	h.Register(r)
	return r
}
