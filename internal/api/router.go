// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/rankengine/internal/config"
	"github.com/tomtom215/rankengine/internal/logging"
	"github.com/tomtom215/rankengine/internal/middleware"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend"
	"github.com/tomtom215/rankengine/internal/recommend/algorithms"
)

// Engine is the recommendation engine surface the API serves. It is
// satisfied by *recommend.Engine.
type Engine interface {
	AddUser(ctx context.Context, u *models.User) error
	AddProduct(ctx context.Context, p *models.Product) error
	IngestInteraction(ctx context.Context, in models.Interaction) error
	IngestInteractions(ctx context.Context, interactions []models.Interaction) (int, error)

	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	TrendingInCategory(ctx context.Context, category string, k int) ([]*models.Recommendation, error)
	Popular(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error)

	User(id int64) (*models.User, error)
	Product(id int64) (*models.Product, error)

	Neighborhood(userID int64) (*recommend.Neighborhood, error)
	ShortestPath(userID, productID int64) ([]recommend.PathStep, error)
	Communities() [][]int64
	PeerAffinities(userID int64, k int) ([]recommend.PeerAffinity, error)

	Weights() recommend.Weights
	SetWeights(collaborative, content, popularity, trending float64) (recommend.Weights, error)
	Stats() recommend.Stats
	Train(ctx context.Context) error
	TrainingStatus() algorithms.FactorizationStatus
	ClearCaches()
}

var _ Engine = (*recommend.Engine)(nil)

// Router wires handlers and middleware for the engine.
type Router struct {
	engine        Engine
	http          config.HTTPConfig
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger

	// baseCtx outlives requests; background training runs under it.
	baseCtx context.Context
}

// Option customizes a Router.
type Option func(*Router)

// WithBaseContext sets the context background work started by requests
// runs under. Canceling it stops nothing already in the SGD loop but
// prevents new runs from starting.
func WithBaseContext(ctx context.Context) Option {
	return func(r *Router) { r.baseCtx = ctx }
}

// NewRouter creates the router.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewRouter(engine Engine, httpCfg config.HTTPConfig, logger zerolog.Logger, opts ...Option) *Router {
	r := &Router{
		engine:        engine,
		http:          httpCfg,
		chiMiddleware: NewChiMiddleware(NewChiMiddlewareConfig(&httpCfg)),
		logger:        logger.With().Str("component", "api").Logger(),
		baseCtx:       context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handler builds the chi handler.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	// ========== Global Middleware ==========
	r.Use(middleware.RequestID)
	r.Use(router.withLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, &APIError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	// ========== Operational Endpoints ==========
	r.Get("/healthz", router.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ========== API v1 ==========
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		if router.http.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(router.http.RequestTimeout))
		}

		r.Post("/users", router.CreateUser)
		r.Get("/users/{id}", router.GetUser)
		r.Get("/users/{id}/recommendations", router.Recommendations)
		r.Get("/users/{id}/peers", router.Peers)

		r.Post("/products", router.CreateProduct)
		r.Get("/products/popular", router.Popular)
		r.Get("/products/{id}", router.GetProduct)

		r.Post("/interactions", router.CreateInteraction)
		r.Post("/interactions/batch", router.CreateInteractions)

		r.Get("/categories/{category}/trending", router.TrendingInCategory)

		r.Route("/graph", func(r chi.Router) {
			r.Get("/communities", router.Communities)
			r.Get("/users/{id}", router.Neighborhood)
			r.Get("/users/{id}/path/{product}", router.ShortestPath)
		})

		r.Get("/weights", router.GetWeights)
		r.Put("/weights", router.PutWeights)
		r.Get("/stats", router.Stats)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/train", router.Train)
			r.Post("/cache/clear", router.ClearCaches)
		})
	})

	return r
}

// withLogger stores the component logger in the request context so
// logging.Ctx picks it up along with the request ID.
func (router *Router) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithLogger(r.Context(), router.logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
