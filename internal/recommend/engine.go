// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/journal"
	"github.com/tomtom215/rankengine/internal/metrics"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend/algorithms"
	"github.com/tomtom215/rankengine/internal/recommend/reranking"
	"github.com/tomtom215/rankengine/internal/validation"
)

// Request outcomes recorded in metrics.
const (
	outcomeOK       = "ok"
	outcomeEmpty    = "empty"
	outcomeFallback = "fallback"
	outcomeError    = "error"
)

// filterOverFetch widens the candidate pool when a filter may drop items.
const filterOverFetch = 3

// topProducts is the number of popular product ids reported by Stats.
const topProducts = 10

// Cache names. They label metrics and prefix remote keys.
const (
	CacheUserSimilarity = "user_similarity"
	CacheItemSimilarity = "item_similarity"
	CacheProfiles       = "content_profiles"
)

// Engine ties the catalog, the scoring strategies and their caches
// together. It is safe for concurrent use: ingestion takes the write lock,
// scoring holds the read lock for the duration of a request.
type Engine struct {
	config *Config
	logger zerolog.Logger

	// mu guards data. Writers hold it exclusively, scoring shares it.
	mu   sync.RWMutex
	data *catalog.Catalog

	weightsMu sync.RWMutex
	weights   Weights

	userSims *cache.Memo[cache.Pair, float64]
	itemSims *cache.Memo[cache.Pair, float64]
	profiles *cache.Memo[cache.ID, algorithms.Profile]
	filters  *reranking.Filters

	users         *algorithms.UserBased
	items         *algorithms.ItemBased
	collaborative *algorithms.Collaborative
	content       *algorithms.ContentBased
	popularity    *algorithms.Popularity
	neighbors     *algorithms.GraphNeighbors
	factorization *algorithms.MatrixFactorization
	hybrid        *Hybrid
	reranker      reranking.Reranker

	journal *journal.Journal
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	journal *journal.Journal
	remote  cache.Remote
}

// WithJournal appends every accepted ingestion to j.
func WithJournal(j *journal.Journal) Option {
	return func(o *engineOptions) { o.journal = j }
}

// WithRemoteCache backs the similarity caches with a shared store.
func WithRemoteCache(r cache.Remote) Option {
	return func(o *engineOptions) { o.remote = r }
}

// NewEngine creates an engine with an empty catalog.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewEngine(cfg *Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	weights, err := cfg.Weights.Normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger = logger.With().Str("component", "recommend").Logger()

	simOpts := []cache.MemoOption{cache.WithShards(cfg.Cache.Shards), cache.WithLogger(logger)}
	if o.remote != nil {
		simOpts = append(simOpts, cache.WithRemote(o.remote, cfg.Cache.RemoteTTL))
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger,
		data:     catalog.New(),
		weights:  weights,
		userSims: cache.NewMemo[cache.Pair, float64](CacheUserSimilarity, simOpts...),
		itemSims: cache.NewMemo[cache.Pair, float64](CacheItemSimilarity, simOpts...),
		profiles: cache.NewMemo[cache.ID, algorithms.Profile](CacheProfiles,
			cache.WithShards(cfg.Cache.Shards), cache.WithLogger(logger)),
		filters: reranking.NewFilters(),
		journal: o.journal,
	}

	e.users = algorithms.NewUserBased(cfg.Collaborative.toAlgorithms(), e.userSims)
	e.items = algorithms.NewItemBased(e.itemSims)
	e.collaborative = algorithms.NewCollaborative(e.users, e.items)
	e.content = algorithms.NewContentBased(cfg.Content.toAlgorithms(), e.profiles)
	e.popularity = algorithms.NewPopularity()
	e.neighbors = algorithms.NewGraphNeighbors(e.popularity)
	e.factorization = algorithms.NewMatrixFactorization(cfg.Factorization.toAlgorithms())
	e.hybrid = NewHybrid(e.collaborative, e.content, e.popularity, logger)

	e.reranker, err = reranking.New(cfg.Diversity.Reranker, e.data.Product, cfg.Diversity.MMRLambda)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// ========== Ingestion ==========

// AddUser validates and stores a user. Re-adding a user replaces the
// profile fields and keeps the interaction history.
func (e *Engine) AddUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("%w: nil user", ErrInvalidArgument)
	}
	if err := validateInput(u); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.appendJournal(ctx, journal.UserRecord(u)); err != nil {
		return err
	}
	e.data.AddUser(u.Clone())
	e.profiles.Invalidate(cache.ID(u.ID))
	metrics.RecordEntity("user")
	return nil
}

// AddProduct validates and stores a product. Re-adding a product replaces
// its attributes and keeps its counters.
func (e *Engine) AddProduct(ctx context.Context, p *models.Product) error {
	if p == nil {
		return fmt.Errorf("%w: nil product", ErrInvalidArgument)
	}
	if err := validateInput(p); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.appendJournal(ctx, journal.ProductRecord(p)); err != nil {
		return err
	}
	e.data.AddProduct(p.Clone())
	// Profiles of users who touched the product are built from its old
	// attributes.
	for _, userID := range e.data.Graph().ProductUsers(p.ID) {
		e.profiles.Invalidate(cache.ID(userID))
	}
	metrics.RecordEntity("product")
	return nil
}

// IngestInteraction validates and logs an interaction. A zero timestamp is
// set to the current time. Unknown users and products get graph nodes but
// no entity records.
func (e *Engine) IngestInteraction(ctx context.Context, in models.Interaction) error {
	if err := validateInput(&in); err != nil {
		return err
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.appendJournal(ctx, journal.InteractionRecord(in)); err != nil {
		return err
	}
	e.applyInteraction(in)
	metrics.RecordInteraction(in.Type.String())
	metrics.GraphEdges.Set(float64(e.data.Graph().NumEdges()))
	return nil
}

// applyInteraction updates the catalog and drops every cached value the
// interaction makes stale. The caller holds the write lock.
func (e *Engine) applyInteraction(in models.Interaction) {
	e.data.Ingest(in)
	e.profiles.Invalidate(cache.ID(in.UserID))
	e.userSims.InvalidateFunc(func(p cache.Pair) bool { return p.Touches(in.UserID) })
	e.itemSims.InvalidateFunc(func(p cache.Pair) bool { return p.Touches(in.ProductID) })
}

// AddUsers adds users in order and stops at the first error. It returns
// the number added.
func (e *Engine) AddUsers(ctx context.Context, users []*models.User) (int, error) {
	for i, u := range users {
		if err := e.AddUser(ctx, u); err != nil {
			return i, fmt.Errorf("user %d: %w", i, err)
		}
	}
	return len(users), nil
}

// AddProducts adds products in order and stops at the first error. It
// returns the number added.
func (e *Engine) AddProducts(ctx context.Context, products []*models.Product) (int, error) {
	for i, p := range products {
		if err := e.AddProduct(ctx, p); err != nil {
			return i, fmt.Errorf("product %d: %w", i, err)
		}
	}
	return len(products), nil
}

// IngestInteractions ingests interactions in order and stops at the first
// error. It returns the number ingested.
func (e *Engine) IngestInteractions(ctx context.Context, interactions []models.Interaction) (int, error) {
	for i := range interactions {
		if err := e.IngestInteraction(ctx, interactions[i]); err != nil {
			return i, fmt.Errorf("interaction %d: %w", i, err)
		}
	}
	return len(interactions), nil
}

func validateInput(v any) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, verr)
	}
	return nil
}

// appendJournal writes rec ahead of applying it. The caller holds the write
// lock so journal order matches apply order.
func (e *Engine) appendJournal(ctx context.Context, rec journal.Record) error {
	if e.journal == nil {
		return nil
	}
	if _, err := e.journal.Append(ctx, rec); err != nil {
		e.logger.Error().Err(err).Str("kind", string(rec.Kind)).Msg("journal append failed")
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// Replay rebuilds the catalog from j, in journal order, without appending
// to the attached journal. Caches are cleared afterwards. It returns the
// number of records applied.
func (e *Engine) Replay(ctx context.Context, j *journal.Journal) (int, error) {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	applied := 0
	err := j.Replay(ctx, func(entry *journal.Entry) error {
		rec := entry.Record
		switch rec.Kind {
		case journal.KindUser:
			e.data.AddUser(rec.User)
		case journal.KindProduct:
			e.data.AddProduct(rec.Product)
		case journal.KindInteraction:
			e.data.Ingest(*rec.Interaction)
		default:
			return fmt.Errorf("%w: entry %d kind %q", journal.ErrInvalidRecord, entry.Seq, rec.Kind)
		}
		applied++
		return nil
	})
	e.clearCachesLocked()
	metrics.GraphEdges.Set(float64(e.data.Graph().NumEdges()))

	if err != nil {
		return applied, fmt.Errorf("replay journal: %w", err)
	}
	e.logger.Info().
		Int("records", applied).
		Int("users", e.data.NumUsers()).
		Int("products", e.data.NumProducts()).
		Int("interactions", e.data.NumInteractions()).
		Dur("duration", time.Since(start)).
		Msg("journal replayed")
	return applied, nil
}

// ========== Recommendation ==========

// Recommend produces a ranked list for req. StrategyAuto routes by the
// user's interaction count: none gets popularity, fewer than five get
// content-based results, the rest get the hybrid mix, falling back to
// content when the hybrid yields nothing. Unknown users get an empty list.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	req, err := e.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	var filter *reranking.Filter
	if req.Filter != "" {
		filter, err = e.filters.Get(ctx, req.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	if timeout := e.config.Limits.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	resp := &Response{
		Items: []*models.Recommendation{},
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			UserID:       req.UserID,
			Strategy:     req.Strategy,
			Served:       req.Strategy,
			ModelVersion: e.factorization.Version(),
		},
	}

	if !e.data.HasUser(req.UserID) {
		logger.Debug().Msg("unknown user")
		return e.finish(resp, outcomeEmpty, start), nil
	}
	interactions := e.data.InteractionCount(req.UserID)
	resp.Metadata.Interactions = interactions

	served := req.Strategy
	if served == StrategyAuto {
		served = route(interactions)
	}

	fetch := req.K + len(req.Exclude)
	if filter != nil {
		fetch *= filterOverFetch
	}
	if req.Diversify && served != StrategyDiversified {
		fetch *= reranking.OverFetch
	}

	recs, err := e.score(ctx, served, req.UserID, fetch)
	if err != nil {
		metrics.RecordRecommendation(served.String(), outcomeError, time.Since(start), 0)
		return nil, err
	}
	if len(recs) == 0 && served == StrategyHybrid && req.Strategy == StrategyAuto {
		logger.Debug().Msg("hybrid returned nothing, falling back to content")
		resp.Metadata.Fallback = true
		served = StrategyContent
		if recs, err = e.score(ctx, served, req.UserID, fetch); err != nil {
			metrics.RecordRecommendation(served.String(), outcomeError, time.Since(start), 0)
			return nil, err
		}
	}
	resp.Metadata.Served = served
	resp.Metadata.Candidates = len(recs)

	recs = exclude(recs, req.Exclude)
	if filter != nil {
		recs = filter.Apply(ctx, recs, e.data.Product)
	}
	if req.Diversify && served != StrategyDiversified {
		recs = e.reranker.Rerank(ctx, recs, req.K)
		resp.Metadata.Reranker = e.reranker.Name()
	}
	resp.Items = models.Rank(models.Truncate(recs, req.K))
	if resp.Items == nil {
		resp.Items = []*models.Recommendation{}
	}

	outcome := outcomeOK
	switch {
	case resp.Metadata.Fallback:
		outcome = outcomeFallback
	case len(resp.Items) == 0:
		outcome = outcomeEmpty
	}
	resp = e.finish(resp, outcome, start)

	logger.Debug().
		Str("served", served.String()).
		Int("candidates", resp.Metadata.Candidates).
		Int("returned", len(resp.Items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")
	return resp, nil
}

// finish stamps timing metadata and records the request.
func (e *Engine) finish(resp *Response, outcome string, start time.Time) *Response {
	elapsed := time.Since(start)
	resp.Metadata.LatencyMS = elapsed.Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	metrics.RecordRecommendation(resp.Metadata.Served.String(), outcome, elapsed, len(resp.Items))
	return resp
}

// route picks the strategy for a user with the given interaction count.
func route(interactions int) Strategy {
	switch {
	case interactions == 0:
		return StrategyPopular
	case interactions < SparseHistory:
		return StrategyContent
	default:
		return StrategyHybrid
	}
}

// prepareRequest applies defaults, clamps K and assigns a request id.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	strategy, err := ParseStrategy(string(req.Strategy))
	if err != nil {
		return req, err
	}
	req.Strategy = strategy
	req.K = e.clampK(req.K)
	if req.K < 0 {
		return req, fmt.Errorf("%w: k must be non-negative, got %d", ErrInvalidArgument, req.K)
	}
	if len(req.Exclude) > e.config.Limits.MaxK*10 {
		return req, fmt.Errorf("%w: too many excluded ids (%d)", ErrInvalidArgument, len(req.Exclude))
	}
	return req, nil
}

// clampK maps zero to the default and caps at the maximum. Negative values
// pass through for the caller to reject.
func (e *Engine) clampK(k int) int {
	switch {
	case k == 0:
		return e.config.Limits.DefaultK
	case k > e.config.Limits.MaxK:
		return e.config.Limits.MaxK
	default:
		return k
	}
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Str("strategy", req.Strategy.String()).
		Logger()
}

// score runs one strategy behind the failure boundary. The caller holds the
// read lock.
func (e *Engine) score(ctx context.Context, s Strategy, userID int64, k int) ([]*models.Recommendation, error) {
	return algorithms.SafeRecommend(ctx, e.logger, s.String(), userID, func() ([]*models.Recommendation, error) {
		return e.run(ctx, s, userID, k)
	})
}

// run dispatches to the strategy implementation.
func (e *Engine) run(ctx context.Context, s Strategy, userID int64, k int) ([]*models.Recommendation, error) {
	switch s {
	case StrategyHybrid:
		return e.hybrid.Recommend(ctx, e.data, userID, k, e.Weights())
	case StrategyAdaptive:
		w := AdaptiveWeights(e.Weights(), e.data.InteractionCount(userID))
		return e.hybrid.Recommend(ctx, e.data, userID, k, w)
	case StrategyDiversified:
		candidates, err := e.hybrid.Recommend(ctx, e.data, userID, k*reranking.OverFetch, e.Weights())
		if err != nil {
			return nil, err
		}
		return e.reranker.Rerank(ctx, candidates, k), nil
	case StrategyCascade:
		return e.hybrid.Cascade(ctx, e.data, userID, k)
	case StrategyCollaborative:
		return e.collaborative.Recommend(ctx, e.data, userID, k)
	case StrategyUserBased:
		return e.users.Recommend(ctx, e.data, userID, k, 0)
	case StrategyItemBased:
		return e.items.Recommend(ctx, e.data, userID, k)
	case StrategyContent:
		return e.content.Recommend(ctx, e.data, userID, k)
	case StrategyPopular:
		return e.popularity.Recommend(ctx, e.data, userID, k)
	case StrategyTrending:
		return e.content.Trending(ctx, e.data, userID, k)
	case StrategySimilarUsers:
		return e.neighbors.Recommend(ctx, e.data, userID, k)
	case StrategyMatrixFactorization:
		return e.factorization.Recommend(ctx, e.data, userID, k)
	case StrategyAuto:
		return e.run(ctx, route(e.data.InteractionCount(userID)), userID, k)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, s)
	}
}

// exclude drops the listed product ids.
func exclude(recs []*models.Recommendation, ids []int64) []*models.Recommendation {
	if len(ids) == 0 {
		return recs
	}
	skip := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	out := recs[:0]
	for _, rec := range recs {
		if _, ok := skip[rec.ProductID]; !ok {
			out = append(out, rec)
		}
	}
	return out
}

// direct serves one strategy for the library entry points.
func (e *Engine) direct(ctx context.Context, s Strategy, userID int64, k int) ([]*models.Recommendation, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be non-negative, got %d", ErrInvalidArgument, k)
	}
	k = e.clampK(k)
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	recs, err := e.score(ctx, s, userID, k)
	if err != nil {
		metrics.RecordRecommendation(s.String(), outcomeError, time.Since(start), 0)
		return nil, err
	}
	recs = models.Rank(models.Truncate(recs, k))

	outcome := outcomeOK
	if len(recs) == 0 {
		outcome = outcomeEmpty
	}
	metrics.RecordRecommendation(s.String(), outcome, time.Since(start), len(recs))
	return recs, nil
}

// Hybrid returns the weighted hybrid mix with the current weights.
func (e *Engine) Hybrid(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyHybrid, userID, k)
}

// Adaptive returns the hybrid mix with weights picked by the user's
// interaction count.
func (e *Engine) Adaptive(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyAdaptive, userID, k)
}

// Diversified returns the hybrid mix re-ranked for category and brand
// variety.
func (e *Engine) Diversified(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyDiversified, userID, k)
}

// Cascade returns collaborative results topped up by content and then
// popularity.
func (e *Engine) Cascade(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyCascade, userID, k)
}

// Collaborative returns user-based and item-based results merged.
func (e *Engine) Collaborative(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyCollaborative, userID, k)
}

// UserBased returns user-based collaborative results.
func (e *Engine) UserBased(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyUserBased, userID, k)
}

// ItemBased returns item-based collaborative results.
func (e *Engine) ItemBased(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyItemBased, userID, k)
}

// ContentBased returns content profile results.
func (e *Engine) ContentBased(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyContent, userID, k)
}

// Popular returns the most popular products. A user id of zero is served
// anonymously.
func (e *Engine) Popular(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyPopular, userID, k)
}

// Trending returns popular products in the user's preferred categories.
func (e *Engine) Trending(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyTrending, userID, k)
}

// SimilarUsers returns what graph neighbors of the user engaged with.
func (e *Engine) SimilarUsers(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategySimilarUsers, userID, k)
}

// MatrixFactorization returns latent factor results. It is empty until the
// first training run completes.
func (e *Engine) MatrixFactorization(ctx context.Context, userID int64, k int) ([]*models.Recommendation, error) {
	return e.direct(ctx, StrategyMatrixFactorization, userID, k)
}

// TrendingInCategory ranks a category's products by views, purchases and
// rating. The category match is case-insensitive.
func (e *Engine) TrendingInCategory(ctx context.Context, category string, k int) ([]*models.Recommendation, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be non-negative, got %d", ErrInvalidArgument, k)
	}
	k = e.clampK(k)
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	recs, err := algorithms.SafeRecommend(ctx, e.logger, StrategyTrending.String(), 0, func() ([]*models.Recommendation, error) {
		return algorithms.TrendingInCategory(ctx, e.data, category, k)
	})
	if err != nil {
		return nil, err
	}
	recs = models.Rank(recs)
	metrics.RecordRecommendation("trending_in_category", outcomeOK, time.Since(start), len(recs))
	return recs, nil
}

// Predict returns the matrix factorization score for one pair.
func (e *Engine) Predict(userID, productID int64) (float64, error) {
	return e.factorization.Predict(userID, productID)
}

// ========== Lookups ==========

// User returns a copy of a stored user.
func (e *Engine) User(id int64) (*models.User, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	u, ok := e.data.User(id)
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u.Clone(), nil
}

// Product returns a copy of a stored product.
func (e *Engine) Product(id int64) (*models.Product, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.data.Product(id)
	if !ok {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// Categories returns the known categories.
func (e *Engine) Categories() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.Categories()
}

// ========== Weights, Training and Stats ==========

// SetWeights replaces the hybrid weights after normalizing them to sum 1.
func (e *Engine) SetWeights(collaborative, content, popularity, trending float64) (Weights, error) {
	w, err := NewWeights(collaborative, content, popularity, trending)
	if err != nil {
		return Weights{}, err
	}
	e.weightsMu.Lock()
	e.weights = w
	e.weightsMu.Unlock()

	e.logger.Info().
		Float64("collaborative", w.Collaborative).
		Float64("content", w.Content).
		Float64("popularity", w.Popularity).
		Float64("trending", w.Trending).
		Msg("hybrid weights updated")
	return w, nil
}

// Weights returns the current hybrid weights.
func (e *Engine) Weights() Weights {
	e.weightsMu.RLock()
	defer e.weightsMu.RUnlock()
	return e.weights
}

// Train fits the matrix factorization model on a snapshot of the log. The
// read lock is held only while copying the snapshot. A call during an
// active run returns ErrTrainingInProgress.
func (e *Engine) Train(ctx context.Context) error {
	if e.factorization.Training() {
		metrics.RecordTrainingSkipped()
		return ErrTrainingInProgress
	}

	e.mu.RLock()
	data := algorithms.Snapshot(e.data)
	e.mu.RUnlock()

	start := time.Now()
	e.logger.Info().
		Int("interactions", len(data.Interactions)).
		Int("users", len(data.Users)).
		Int("products", len(data.Products)).
		Msg("starting model training")

	err := e.factorization.Train(ctx, data)
	switch {
	case errors.Is(err, ErrTrainingInProgress):
		metrics.RecordTrainingSkipped()
		return err
	case err != nil:
		metrics.RecordTraining(time.Since(start), err)
		e.logger.Error().Err(err).Msg("model training failed")
		return fmt.Errorf("train: %w", err)
	}

	metrics.RecordTraining(time.Since(start), nil)
	e.logger.Info().
		Int("version", e.factorization.Version()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model training complete")
	return nil
}

// NumInteractions returns the length of the interaction log.
func (e *Engine) NumInteractions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.NumInteractions()
}

// TrainingStatus returns the matrix factorization state.
func (e *Engine) TrainingStatus() algorithms.FactorizationStatus {
	return e.factorization.Status()
}

// Stats summarizes the catalog, graph, caches and model.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	cs := e.data.Stats()
	gs := e.data.Graph().Stats()
	top := e.data.Graph().MostPopular(topProducts)
	influential := e.data.Graph().InfluentialUsers(influentialUsers)
	e.mu.RUnlock()

	st := Stats{
		Users:        cs.Users,
		Products:     cs.Products,
		Interactions: cs.Interactions,
		Edges:        gs.Edges,
		Density:      gs.Density,
		ActiveUsers:  cs.ActiveUsers,
		Categories:   cs.Categories,
		TopProducts:  top,
		Influential:  influential,
		Weights:      e.Weights(),
		Caches: []cache.MemoStats{
			e.userSims.Stats(),
			e.itemSims.Stats(),
			e.profiles.Stats(),
		},
		Training: e.factorization.Status(),
	}
	if e.journal != nil {
		js := e.journal.Stats()
		st.Journal = &js
	}
	return st
}

// ClearCaches drops every cached similarity, profile and compiled filter.
func (e *Engine) ClearCaches() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearCachesLocked()
	e.logger.Info().Msg("caches cleared")
}

func (e *Engine) clearCachesLocked() {
	e.userSims.Clear()
	e.itemSims.Clear()
	e.profiles.Clear()
	e.filters.Clear()
}
