// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/validation"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// maxExclude caps the exclude query parameter.
const maxExclude = 1000

// UserRequest is the body of POST /api/v1/users. History sets are built
// from interactions, never accepted from clients.
type UserRequest struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// ToModel converts the request to a user.
func (u *UserRequest) ToModel() *models.User {
	return models.NewUser(u.ID, u.Username, u.Email)
}

// ProductRequest is the body of POST /api/v1/products. Engagement
// counters are maintained by ingestion and cannot be set here.
type ProductRequest struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category"`
	Brand       string            `json:"brand,omitempty"`
	Price       float64           `json:"price"`
	Rating      float64           `json:"rating,omitempty"`
	ReviewCount int               `json:"review_count,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	InStock     *bool             `json:"in_stock,omitempty"`
}

// ToModel converts the request to a product. InStock defaults to true.
func (p *ProductRequest) ToModel() *models.Product {
	inStock := true
	if p.InStock != nil {
		inStock = *p.InStock
	}
	return &models.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Tags:        p.Tags,
		Attributes:  p.Attributes,
		InStock:     inStock,
		AddedAt:     time.Now().UTC(),
	}
}

// InteractionBatchRequest is the body of POST /api/v1/interactions/batch.
type InteractionBatchRequest struct {
	Interactions []models.Interaction `json:"interactions" validate:"required,min=1,max=10000"`
}

// WeightsRequest is the body of PUT /api/v1/weights. Omitted weights are
// zero.
type WeightsRequest struct {
	Collaborative float64 `json:"collaborative"`
	Content       float64 `json:"content"`
	Popularity    float64 `json:"popularity"`
	Trending      float64 `json:"trending"`
}

// RecommendQuery holds the validated query of the recommendations route.
type RecommendQuery struct {
	K         int     `validate:"gte=0,lte=1000"`
	Strategy  string  `validate:"max=32"`
	Filter    string  `validate:"max=2048"`
	Diversify bool
	Exclude   []int64 `validate:"max=1000,dive,gt=0"`
}

// decodeJSON reads a single JSON value from the body, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected data after the first value")
	}
	return nil
}

// idParam parses a positive int64 URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, raw)
	}
	return v, nil
}

// kQuery parses and validates the k parameter shared by list routes.
func kQuery(r *http.Request) (int, error) {
	k, err := intQuery(r, "k", 0)
	if err != nil {
		return 0, err
	}
	if k < 0 {
		return 0, fmt.Errorf("k must be non-negative, got %d", k)
	}
	return k, nil
}

// parseRecommendQuery reads k, strategy, filter, diversify and exclude.
// exclude is a comma-separated id list.
func parseRecommendQuery(r *http.Request) (*RecommendQuery, error) {
	q := r.URL.Query()

	k, err := intQuery(r, "k", 0)
	if err != nil {
		return nil, err
	}
	diversify, err := boolQuery(r, "diversify")
	if err != nil {
		return nil, err
	}

	var exclude []int64
	if raw := q.Get("exclude"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) > maxExclude {
			return nil, fmt.Errorf("exclude accepts at most %d ids", maxExclude)
		}
		exclude = make([]int64, 0, len(parts))
		for _, part := range parts {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("exclude must be a comma-separated id list, got %q", part)
			}
			exclude = append(exclude, id)
		}
	}

	rq := &RecommendQuery{
		K:         k,
		Strategy:  q.Get("strategy"),
		Filter:    q.Get("filter"),
		Diversify: diversify,
		Exclude:   exclude,
	}
	if err := validation.Validate(rq); err != nil {
		return nil, err
	}
	return rq, nil
}
