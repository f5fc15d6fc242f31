// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package api

import (
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend"
	"github.com/tomtom215/rankengine/internal/recommend/algorithms"
)

func TestIngestHandlers_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		want     int
		wantCode string
	}{
		{"create user", http.MethodPost, "/api/v1/users", `{"id":10,"username":"dana","email":"dana@example.com"}`, http.StatusCreated, ""},
		{"user missing username", http.MethodPost, "/api/v1/users", `{"id":11}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"user bad email", http.MethodPost, "/api/v1/users", `{"id":11,"username":"x","email":"nope"}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"user unknown field", http.MethodPost, "/api/v1/users", `{"id":11,"username":"x","admin":true}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"user trailing data", http.MethodPost, "/api/v1/users", `{"id":11,"username":"x"}{}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"user malformed", http.MethodPost, "/api/v1/users", `{"id":`, http.StatusBadRequest, ErrCodeBadRequest},

		{"create product", http.MethodPost, "/api/v1/products", `{"id":200,"name":"Desk","category":"furniture","price":120}`, http.StatusCreated, ""},
		{"product without category", http.MethodPost, "/api/v1/products", `{"id":201,"name":"Desk"}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"product negative price", http.MethodPost, "/api/v1/products", `{"id":201,"name":"Desk","category":"x","price":-1}`, http.StatusBadRequest, ErrCodeValidationFailed},

		{"interaction", http.MethodPost, "/api/v1/interactions", `{"user_id":3,"product_id":101,"type":"PURCHASE"}`, http.StatusAccepted, ""},
		{"interaction unknown type", http.MethodPost, "/api/v1/interactions", `{"user_id":3,"product_id":101,"type":"STEAL"}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"interaction zero user", http.MethodPost, "/api/v1/interactions", `{"user_id":0,"product_id":101,"type":"VIEW"}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"interaction rating out of range", http.MethodPost, "/api/v1/interactions", `{"user_id":3,"product_id":101,"type":"RATING","value":9}`, http.StatusBadRequest, ErrCodeValidationFailed},

		{"batch", http.MethodPost, "/api/v1/interactions/batch", `{"interactions":[{"user_id":3,"product_id":102,"type":"VIEW"},{"user_id":3,"product_id":103,"type":"CART_ADD"}]}`, http.StatusAccepted, ""},
		{"empty batch", http.MethodPost, "/api/v1/interactions/batch", `{"interactions":[]}`, http.StatusBadRequest, ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _ := newTestHandler(t, nil)

			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if tt.wantCode == "" {
				if !env.Success {
					t.Errorf("success = false, body %s", rec.Body.String())
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestIngestHandlers_RoundTrip(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/products", `{"id":300,"name":"Lamp","category":"home","price":30,"in_stock":false}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/products/300", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get product = %d", rec.Code)
	}
	var p models.Product
	decodeData(t, decodeEnvelope(t, rec), &p)
	if p.Name != "Lamp" || p.InStock {
		t.Errorf("product = %+v, want Lamp out of stock", p)
	}

	before := e.NumInteractions()
	rec = do(t, h, http.MethodPost, "/api/v1/interactions/batch",
		`{"interactions":[{"user_id":3,"product_id":300,"type":"VIEW"},{"user_id":3,"product_id":300,"type":"WISHLIST"}]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("batch = %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]int
	decodeData(t, decodeEnvelope(t, rec), &accepted)
	if accepted["accepted"] != 2 {
		t.Errorf("accepted = %d, want 2", accepted["accepted"])
	}
	if got := e.NumInteractions(); got != before+2 {
		t.Errorf("NumInteractions() = %d, want %d", got, before+2)
	}
}

func TestLookupHandlers(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"known user", "/api/v1/users/1", http.StatusOK},
		{"unknown user", "/api/v1/users/999", http.StatusNotFound},
		{"non-numeric user", "/api/v1/users/abc", http.StatusBadRequest},
		{"zero user", "/api/v1/users/0", http.StatusBadRequest},
		{"known product", "/api/v1/products/101", http.StatusOK},
		{"unknown product", "/api/v1/products/999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestRecommendationsHandler(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"auto", "/api/v1/users/1/recommendations", http.StatusOK},
		{"explicit strategy", "/api/v1/users/1/recommendations?strategy=content&k=2", http.StatusOK},
		{"diversified", "/api/v1/users/1/recommendations?diversify=true", http.StatusOK},
		{"filter", "/api/v1/users/1/recommendations?filter=" + "product.price%20%3C%20100", http.StatusOK},
		{"exclude", "/api/v1/users/1/recommendations?exclude=103,104", http.StatusOK},
		{"unknown user", "/api/v1/users/999/recommendations", http.StatusOK},
		{"unknown strategy", "/api/v1/users/1/recommendations?strategy=psychic", http.StatusBadRequest},
		{"bad filter", "/api/v1/users/1/recommendations?filter=%28%28", http.StatusBadRequest},
		{"negative k", "/api/v1/users/1/recommendations?k=-1", http.StatusBadRequest},
		{"k not a number", "/api/v1/users/1/recommendations?k=ten", http.StatusBadRequest},
		{"bad exclude", "/api/v1/users/1/recommendations?exclude=1,x", http.StatusBadRequest},
		{"bad diversify", "/api/v1/users/1/recommendations?diversify=maybe", http.StatusBadRequest},
		{"bad user id", "/api/v1/users/x/recommendations", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d: %s", tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRecommendationsHandler_Body(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/users/1/recommendations?k=5&exclude=103", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var resp recommend.Response
	decodeData(t, env, &resp)

	if resp.Metadata.UserID != 1 {
		t.Errorf("metadata.user_id = %d, want 1", resp.Metadata.UserID)
	}
	if resp.Metadata.RequestID == "" || resp.Metadata.RequestID != env.Meta.RequestID {
		t.Errorf("metadata.request_id = %q, meta.request_id = %q", resp.Metadata.RequestID, env.Meta.RequestID)
	}
	if len(resp.Items) > 5 {
		t.Errorf("len(items) = %d, want <= 5", len(resp.Items))
	}
	for _, item := range resp.Items {
		if item.ProductID == 103 {
			t.Error("excluded product 103 was returned")
		}
	}

	rec = do(t, h, http.MethodGet, "/api/v1/users/999/recommendations", "")
	decodeData(t, decodeEnvelope(t, rec), &resp)
	if len(resp.Items) != 0 {
		t.Errorf("unknown user got %d items, want 0", len(resp.Items))
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("unknown user items should encode as [], body %s", rec.Body.String())
	}
}

func TestListHandlers(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name    string
		path    string
		want    int
		maxSize int
	}{
		{"popular", "/api/v1/products/popular?k=2", http.StatusOK, 2},
		{"popular default k", "/api/v1/products/popular", http.StatusOK, 100},
		{"popular negative k", "/api/v1/products/popular?k=-3", http.StatusBadRequest, 0},
		{"trending", "/api/v1/categories/electronics/trending?k=3", http.StatusOK, 3},
		{"trending unknown category", "/api/v1/categories/garden/trending", http.StatusOK, 0},
		{"trending bad k", "/api/v1/categories/electronics/trending?k=x", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("GET %s = %d, want %d: %s", tt.path, rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var list listResponse
			decodeData(t, decodeEnvelope(t, rec), &list)
			if list.Count != len(list.Items) {
				t.Errorf("count = %d, len(items) = %d", list.Count, len(list.Items))
			}
			if list.Count > tt.maxSize {
				t.Errorf("count = %d, want <= %d", list.Count, tt.maxSize)
			}
		})
	}
}

func TestTrendingHandler_CategoryOnly(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/categories/electronics/trending", "")
	var list listResponse
	decodeData(t, decodeEnvelope(t, rec), &list)
	for _, item := range list.Items {
		p, err := e.Product(item.ProductID)
		if err != nil {
			t.Fatalf("Product(%d) error = %v", item.ProductID, err)
		}
		if p.Category != "electronics" {
			t.Errorf("product %d category = %q, want electronics", p.ID, p.Category)
		}
	}
}

func TestWeightsHandlers(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/weights", "")
	var w recommend.Weights
	decodeData(t, decodeEnvelope(t, rec), &w)
	if w != recommend.DefaultWeights() {
		t.Errorf("GET weights = %+v, want defaults", w)
	}

	rec = do(t, h, http.MethodPut, "/api/v1/weights", `{"collaborative":1,"content":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT weights = %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, decodeEnvelope(t, rec), &w)
	if math.Abs(w.Collaborative-0.5) > 1e-9 || math.Abs(w.Content-0.5) > 1e-9 || w.Popularity != 0 {
		t.Errorf("normalized weights = %+v, want 0.5/0.5/0/0", w)
	}
	if e.Weights() != w {
		t.Errorf("engine weights = %+v, want %+v", e.Weights(), w)
	}

	for _, body := range []string{`{}`, `{"collaborative":-1,"content":2}`, `{"weight":1}`} {
		if rec := do(t, h, http.MethodPut, "/api/v1/weights", body); rec.Code != http.StatusBadRequest {
			t.Errorf("PUT weights %s = %d, want 400", body, rec.Code)
		}
	}
	if e.Weights() != w {
		t.Error("rejected update changed the weights")
	}
}

func TestStatsHandler(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats recommend.Stats
	decodeData(t, decodeEnvelope(t, rec), &stats)
	if stats.Users != 3 || stats.Products != 4 || stats.Interactions != 6 {
		t.Errorf("stats = users %d products %d interactions %d, want 3/4/6",
			stats.Users, stats.Products, stats.Interactions)
	}
	if len(stats.Influential) != 3 || stats.Influential[0] != 1 {
		t.Errorf("influential users = %v, want 3 with user 1 first", stats.Influential)
	}
}

func TestTrainHandler_Wait(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/admin/train?wait=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var status algorithms.FactorizationStatus
	decodeData(t, decodeEnvelope(t, rec), &status)
	if !status.Trained || status.Version != 1 {
		t.Errorf("status = %+v, want trained version 1", status)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/admin/train?wait=sometimes", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad wait = %d, want 400", rec.Code)
	}
}

func TestTrainHandler_Background(t *testing.T) {
	t.Parallel()
	h, e := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/admin/train", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(10 * time.Second)
	for !e.TrainingStatus().Trained {
		if time.Now().After(deadline) {
			t.Fatal("background training did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClearCachesHandler(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, nil)

	// Warm the caches first.
	do(t, h, http.MethodGet, "/api/v1/users/1/recommendations?strategy=user_based", "")

	rec := do(t, h, http.MethodPost, "/api/v1/admin/cache/clear", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decodeData(t, decodeEnvelope(t, rec), &body)
	if body["status"] != "cleared" {
		t.Errorf("body = %v", body)
	}
}
