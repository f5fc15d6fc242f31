// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package similarity provides pure similarity functions over sparse vectors,
// sets and products, plus builders for interaction vectors.
//
// All functions are safe for concurrent use; none of them retain their
// arguments.
package similarity

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/rankengine/internal/models"
)

// Vector is a sparse mapping from id to weight. Missing keys are zero.
type Vector map[int64]float64

// Content similarity weights.
const (
	CategoryWeight = 0.4
	BrandWeight    = 0.3
	PriceWeight    = 0.2
	TagWeight      = 0.1
)

// temporalDecayHours is the e-folding time of Temporal.
const temporalDecayHours = 168.0

// Cosine returns dot(a, b) / (|a| |b|) over the union of keys.
// It returns 0 when either vector is empty or has zero norm.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for k, v := range small {
		if w, ok := large[k]; ok {
			dot += v * w
		}
	}

	normA, normB := norm(a), norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * normB)
}

func norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets score 1, exactly one
// empty set scores 0.
func Jaccard[T comparable](a, b map[T]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

// Pearson returns the correlation of a and b over their shared keys.
// Fewer than two shared keys or zero variance on either side scores 0.
func Pearson(a, b Vector) float64 {
	shared := make([]int64, 0, min(len(a), len(b)))
	for k := range a {
		if _, ok := b[k]; ok {
			shared = append(shared, k)
		}
	}
	if len(shared) < 2 {
		return 0
	}

	var sumA, sumB float64
	for _, k := range shared {
		sumA += a[k]
		sumB += b[k]
	}
	n := float64(len(shared))
	meanA, meanB := sumA/n, sumB/n

	var num, varA, varB float64
	for _, k := range shared {
		da, db := a[k]-meanA, b[k]-meanB
		num += da * db
		varA += da * da
		varB += db * db
	}
	den := math.Sqrt(varA * varB)
	if den == 0 {
		return 0
	}
	return num / den
}

// Content blends attribute similarity between two products.
//
// Category and brand are exact, case-insensitive matches. Price proximity is
// max(0, 1 - |Δ|/mean) and tags use Jaccard. The price term is skipped, and
// its weight left out of the denominator, when either price is not positive;
// the tag term likewise when either tag set is empty.
func Content(a, b *models.Product) float64 {
	if a == nil || b == nil {
		return 0
	}

	var score, total float64

	if strings.EqualFold(a.Category, b.Category) && a.Category != "" {
		score += CategoryWeight
	}
	total += CategoryWeight

	if strings.EqualFold(a.Brand, b.Brand) && a.Brand != "" {
		score += BrandWeight
	}
	total += BrandWeight

	if a.Price > 0 && b.Price > 0 {
		avg := (a.Price + b.Price) / 2
		score += PriceWeight * math.Max(0, 1-math.Abs(a.Price-b.Price)/avg)
		total += PriceWeight
	}

	tagsA, tagsB := a.TagSet(), b.TagSet()
	if len(tagsA) > 0 && len(tagsB) > 0 {
		score += TagWeight * Jaccard(tagsA, tagsB)
		total += TagWeight
	}

	return score / total
}

// UserVector sums interaction weights per product for one user.
// Repeated interactions on the same product accumulate.
func UserVector(userID int64, log []models.Interaction) Vector {
	v := make(Vector)
	for i := range log {
		if log[i].UserID == userID {
			v[log[i].ProductID] += log[i].Weight()
		}
	}
	return v
}

// ItemVector sums interaction weights per user for one product.
func ItemVector(productID int64, log []models.Interaction) Vector {
	v := make(Vector)
	for i := range log {
		if log[i].ProductID == productID {
			v[log[i].UserID] += log[i].Weight()
		}
	}
	return v
}

// UserVectors builds every user's vector in a single pass over the log.
func UserVectors(log []models.Interaction) map[int64]Vector {
	out := make(map[int64]Vector)
	for i := range log {
		v, ok := out[log[i].UserID]
		if !ok {
			v = make(Vector)
			out[log[i].UserID] = v
		}
		v[log[i].ProductID] += log[i].Weight()
	}
	return out
}

// ItemVectors builds every product's vector in a single pass over the log.
func ItemVectors(log []models.Interaction) map[int64]Vector {
	out := make(map[int64]Vector)
	for i := range log {
		v, ok := out[log[i].ProductID]
		if !ok {
			v = make(Vector)
			out[log[i].ProductID] = v
		}
		v[log[i].UserID] += log[i].Weight()
	}
	return out
}

// Temporal scores how close in time two interaction histories ended,
// decaying exponentially with a one-week time constant.
func Temporal(a, b []models.Interaction) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	diff := latest(a).Sub(latest(b))
	if diff < 0 {
		diff = -diff
	}
	hours := math.Floor(diff.Hours())
	return math.Exp(-hours / temporalDecayHours)
}

func latest(log []models.Interaction) time.Time {
	var t time.Time
	for i := range log {
		if log[i].Timestamp.After(t) {
			t = log[i].Timestamp
		}
	}
	return t
}

// Weighted returns the weighted mean of named similarities. Names missing
// from weights default to weight 1.
func Weighted(sims, weights map[string]float64) float64 {
	var sum, total float64
	for name, s := range sims {
		w, ok := weights[name]
		if !ok {
			w = 1
		}
		sum += s * w
		total += w
	}
	if total <= 0 {
		return 0
	}
	return sum / total
}

// Scored pairs an id with a similarity.
type Scored struct {
	ID    int64
	Score float64
}

// MostSimilar ranks every other vector by cosine similarity to target.
// Ties order by ascending id.
func MostSimilar(target int64, vectors map[int64]Vector, k int) []Scored {
	tv, ok := vectors[target]
	if !ok || k <= 0 {
		return nil
	}
	out := make([]Scored, 0, len(vectors))
	for id, v := range vectors {
		if id == target {
			continue
		}
		out = append(out, Scored{ID: id, Score: Cosine(tv, v)})
	}
	slices.SortFunc(out, func(a, b Scored) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Clamp01 limits s to [0, 1].
func Clamp01(s float64) float64 {
	return math.Max(0, math.Min(1, s))
}
