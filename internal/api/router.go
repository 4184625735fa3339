package api

import (
	"lane-posting-service/internal/api/handlers"
	"lane-posting-service/internal/ports"
	"lane-posting-service/internal/services/generation"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies of the HTTP surface. Source and Gatherer are optional.
type Deps struct {
	Generator handlers.LaneGenerator
	Source    ports.LaneSource
	Defaults  generation.Options
	Logger    *zap.Logger
	Gatherer  prometheus.Gatherer
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	laneHandler := &handlers.LaneHandler{
		Generator: deps.Generator,
		Source:    deps.Source,
		Defaults:  deps.Defaults,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/lanes/validate", laneHandler.Validate)
	mux.HandleFunc("/lanes/generate", laneHandler.Generate)
	if deps.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return requestContext(logger, loggingMiddleware(mux))
}
