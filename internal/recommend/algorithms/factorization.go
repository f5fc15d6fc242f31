// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/graph"
	"github.com/tomtom215/rankengine/internal/models"
)

// ComponentLatentFactors is the score component set by matrix factorization.
const ComponentLatentFactors = "latent_factors"

// FactorizationConfig contains configuration for matrix factorization.
type FactorizationConfig struct {
	// Factors is the dimension of the latent vectors.
	Factors int

	// Iterations is the number of full passes over the interaction log.
	Iterations int

	// LearningRate is the SGD step size.
	LearningRate float64

	// Regularization is the L2 penalty on both factor matrices.
	Regularization float64

	// InitScale is the standard deviation of the initial factors.
	InitScale float64

	// Seed makes initialization reproducible.
	Seed uint64
}

// DefaultFactorizationConfig returns default factorization configuration.
func DefaultFactorizationConfig() FactorizationConfig {
	return FactorizationConfig{
		Factors:        10,
		Iterations:     20,
		LearningRate:   0.01,
		Regularization: 0.01,
		InitScale:      0.1,
		Seed:           42,
	}
}

func (c FactorizationConfig) withDefaults() FactorizationConfig {
	def := DefaultFactorizationConfig()
	if c.Factors <= 0 {
		c.Factors = def.Factors
	}
	if c.Iterations <= 0 {
		c.Iterations = def.Iterations
	}
	if c.LearningRate <= 0 {
		c.LearningRate = def.LearningRate
	}
	if c.Regularization < 0 {
		c.Regularization = def.Regularization
	}
	if c.InitScale <= 0 {
		c.InitScale = def.InitScale
	}
	return c
}

// TrainingData is an immutable snapshot of what a training run needs.
type TrainingData struct {
	Interactions []models.Interaction
	Users        []int64
	Products     []int64
}

// Snapshot copies the training inputs out of data. The caller must hold
// whatever lock guards data; training itself then runs without it.
func Snapshot(data *catalog.Catalog) TrainingData {
	g := data.Graph()
	return TrainingData{
		Interactions: data.Snapshot(),
		Users:        g.Users(),
		Products:     g.Products(),
	}
}

// factorModel is one trained, read-only set of factors.
type factorModel struct {
	users     *mat.Dense // len(userIndex) x factors
	items     *mat.Dense // len(itemIDs) x factors
	userIndex map[int64]int
	itemIndex map[int64]int
	itemIDs   []int64
}

func (f *factorModel) predict(ui, ii int) float64 {
	return mat.Dot(f.users.RowView(ui), f.items.RowView(ii))
}

// MatrixFactorization learns user and product latent factors with plain
// stochastic gradient descent over the interaction log:
//
//	e = w(u, p) - x_u . y_p
//	x_u += lr * (e * y_p - lambda * x_u)
//	y_p += lr * (e * x_u - lambda * y_p)
//
// Every log entry is one sample, so repeated interactions on a pair weigh
// in repeatedly. Training runs against a snapshot and swaps the finished
// model in atomically; readers never observe a partially trained model.
type MatrixFactorization struct {
	BaseAlgorithm
	config FactorizationConfig

	trainMu  sync.Mutex
	training atomic.Bool
	model    atomic.Pointer[factorModel]
}

// NewMatrixFactorization creates an untrained model.
func NewMatrixFactorization(cfg FactorizationConfig) *MatrixFactorization {
	return &MatrixFactorization{
		BaseAlgorithm: NewBaseAlgorithm(models.AlgorithmMF),
		config:        cfg.withDefaults(),
	}
}

// Config returns the effective configuration.
func (m *MatrixFactorization) Config() FactorizationConfig { return m.config }

// Training reports whether a training run is active.
func (m *MatrixFactorization) Training() bool { return m.training.Load() }

// Train fits a new model on data. A concurrent call while a run is active
// returns ErrTrainingInProgress immediately. The context is checked before
// the SGD loop starts; once started, the run completes.
func (m *MatrixFactorization) Train(ctx context.Context, data TrainingData) error {
	if !m.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer m.trainMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.training.Store(true)
	defer m.training.Store(false)

	model := m.fit(data)
	m.model.Store(model)
	m.markTrained()
	return nil
}

func (m *MatrixFactorization) fit(data TrainingData) *factorModel {
	cfg := m.config
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	model := &factorModel{
		userIndex: make(map[int64]int, len(data.Users)),
		itemIndex: make(map[int64]int, len(data.Products)),
		itemIDs:   append([]int64(nil), data.Products...),
	}
	for i, id := range data.Users {
		model.userIndex[id] = i
	}
	for i, id := range data.Products {
		model.itemIndex[id] = i
	}

	model.users = randomFactors(rng, len(data.Users), cfg.Factors, cfg.InitScale)
	model.items = randomFactors(rng, len(data.Products), cfg.Factors, cfg.InitScale)
	if model.users == nil || model.items == nil {
		return model
	}

	lr, reg := cfg.LearningRate, cfg.Regularization
	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range data.Interactions {
			in := &data.Interactions[i]
			ui, okU := model.userIndex[in.UserID]
			ii, okI := model.itemIndex[in.ProductID]
			if !okU || !okI {
				continue
			}

			x := model.users.RawRowView(ui)
			y := model.items.RawRowView(ii)

			var predicted float64
			for f := range x {
				predicted += x[f] * y[f]
			}
			e := in.Weight() - predicted

			for f := range x {
				xf, yf := x[f], y[f]
				x[f] += lr * (e*yf - reg*xf)
				y[f] += lr * (e*xf - reg*yf)
			}
		}
	}
	return model
}

// randomFactors returns rows x cols N(0, scale^2) entries, or nil when the
// matrix would be empty.
func randomFactors(rng *rand.Rand, rows, cols int, scale float64) *mat.Dense {
	if rows == 0 || cols == 0 {
		return nil
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}

// Predict returns the model's score for a single pair.
func (m *MatrixFactorization) Predict(userID, productID int64) (float64, error) {
	model := m.model.Load()
	if model == nil {
		return 0, ErrNotTrained
	}
	ui, okU := model.userIndex[userID]
	ii, okI := model.itemIndex[productID]
	if !okU || !okI || model.users == nil || model.items == nil {
		return 0, nil
	}
	return model.predict(ui, ii), nil
}

// Recommend scores every product the user has no edge to and keeps the
// positive ones. An untrained model or a user unknown at training time
// yields no results.
func (m *MatrixFactorization) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	model := m.model.Load()
	if model == nil || model.users == nil || model.items == nil || k <= 0 {
		return nil, nil
	}
	ui, ok := model.userIndex[userID]
	if !ok {
		return nil, nil
	}

	own := data.Graph().NeighborSet(graph.UserNode(userID))
	candidates := make(map[int64]*models.Recommendation)
	for ii, productID := range model.itemIDs {
		if _, done := own[productID]; done {
			continue
		}
		if ii%256 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		score := model.predict(ui, ii)
		if score <= 0 {
			continue
		}
		candidates[productID] = models.NewRecommendation(userID, productID, score, models.AlgorithmMF).
			WithComponent(ComponentLatentFactors, score).
			WithReason(models.ReasonLatentFactors, "", score)
	}
	return selectTop(candidates, k), nil
}

// FactorizationStatus describes the current model.
type FactorizationStatus struct {
	Trained       bool      `json:"trained"`
	Training      bool      `json:"training"`
	Version       int       `json:"version"`
	LastTrainedAt time.Time `json:"last_trained_at"`
	Users         int       `json:"users"`
	Products      int       `json:"products"`
	Factors       int       `json:"factors"`
}

// Status returns the training state and model dimensions.
func (m *MatrixFactorization) Status() FactorizationStatus {
	st := FactorizationStatus{
		Trained:       m.IsTrained(),
		Training:      m.Training(),
		Version:       m.Version(),
		LastTrainedAt: m.LastTrainedAt(),
		Factors:       m.config.Factors,
	}
	if model := m.model.Load(); model != nil {
		st.Users = len(model.userIndex)
		st.Products = len(model.itemIDs)
	}
	return st
}
