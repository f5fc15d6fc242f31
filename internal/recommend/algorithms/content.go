// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package algorithms

import (
	"context"
	"math"
	"strings"

	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/catalog"
	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/similarity"
)

// Profile dimension weights.
const (
	profileCategoryWeight = 0.4
	profileBrandWeight    = 0.25
	profilePriceWeight    = 0.2
	profileTagWeight      = 0.15
)

// Scoring bonuses and the preference level that earns an explicit reason.
const (
	highlyRatedThreshold = 4.0
	highlyRatedBonus     = 0.10
	popularViewThreshold = 100
	popularViewBonus     = 0.05
	strongPreference     = 0.1
)

// Score component names set by the content strategies.
const (
	ComponentContentSimilarity  = "content_similarity"
	ComponentTrending           = "trending"
	ComponentCategoryPreference = "category_preference"
)

// Price buckets.
const (
	BucketBudget  = "budget"
	BucketLow     = "low"
	BucketMid     = "mid"
	BucketHigh    = "high"
	BucketPremium = "premium"
)

// PriceBucket classifies a price. Lower bounds are inclusive.
func PriceBucket(price float64) string {
	switch {
	case price < 500:
		return BucketBudget
	case price < 1500:
		return BucketLow
	case price < 3000:
		return BucketMid
	case price < 5000:
		return BucketHigh
	default:
		return BucketPremium
	}
}

// Profile is a user's weighted content preferences. Keys are lower-cased.
// Each dimension holds the share of the user's total interaction weight
// that went to the key, scaled by the dimension weight.
type Profile struct {
	Categories   map[string]float64 `json:"categories"`
	Brands       map[string]float64 `json:"brands"`
	PriceBuckets map[string]float64 `json:"price_buckets"`
	Tags         map[string]float64 `json:"tags"`
}

func newProfile() Profile {
	return Profile{
		Categories:   make(map[string]float64),
		Brands:       make(map[string]float64),
		PriceBuckets: make(map[string]float64),
		Tags:         make(map[string]float64),
	}
}

// Empty reports whether the profile carries no preference at all.
func (p Profile) Empty() bool {
	return len(p.Categories) == 0 && len(p.Brands) == 0 && len(p.PriceBuckets) == 0 && len(p.Tags) == 0
}

// Clone returns an independent copy.
func (p Profile) Clone() Profile {
	c := newProfile()
	for k, v := range p.Categories {
		c.Categories[k] = v
	}
	for k, v := range p.Brands {
		c.Brands[k] = v
	}
	for k, v := range p.PriceBuckets {
		c.PriceBuckets[k] = v
	}
	for k, v := range p.Tags {
		c.Tags[k] = v
	}
	return c
}

// ContentConfig contains configuration for content-based filtering.
type ContentConfig struct {
	// SimilarityThreshold is the minimum attribute similarity for a product
	// to count as similar to a history item.
	SimilarityThreshold float64
}

// DefaultContentConfig returns default content configuration.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{SimilarityThreshold: 0.3}
}

// ContentBased recommends products matching a user's content profile.
//
// Profiles are built from the user's interaction log and cached per user
// until invalidated. Scoring sums the profile weights a product matches:
//
//	score(u, p) = P_cat[p.category] + P_brand[p.brand] +
//	              P_price[bucket(p.price)] + sum_t P_tag[t]
//
// plus small bonuses for high ratings and high view counts, clamped to
// [0, 1].
type ContentBased struct {
	config   ContentConfig
	profiles *cache.Memo[cache.ID, Profile]
}

// NewContentBased creates a content strategy. A nil profiles cache gets a
// private one.
func NewContentBased(cfg ContentConfig, profiles *cache.Memo[cache.ID, Profile]) *ContentBased {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultContentConfig().SimilarityThreshold
	}
	if profiles == nil {
		profiles = cache.NewMemo[cache.ID, Profile]("content_profile")
	}
	return &ContentBased{config: cfg, profiles: profiles}
}

// Name returns the algorithm tag.
func (c *ContentBased) Name() string { return models.AlgorithmContent }

// Config returns the effective configuration.
func (c *ContentBased) Config() ContentConfig { return c.config }

// ProfileFor returns a copy of the user's cached profile, building it on a
// miss. Unknown users get an empty profile that is not cached.
func (c *ContentBased) ProfileFor(ctx context.Context, data *catalog.Catalog, userID int64) (Profile, error) {
	p, err := c.profile(ctx, data, userID)
	if err != nil {
		return Profile{}, err
	}
	return p.Clone(), nil
}

// profile returns the shared cached profile; callers must not modify it.
func (c *ContentBased) profile(ctx context.Context, data *catalog.Catalog, userID int64) (Profile, error) {
	if !data.HasUser(userID) {
		return newProfile(), nil
	}
	return c.profiles.GetOrCompute(ctx, cache.ID(userID), func() (Profile, error) {
		return buildProfile(data, userID), nil
	})
}

func buildProfile(data *catalog.Catalog, userID int64) Profile {
	p := newProfile()
	var total float64

	for _, in := range data.UserLog(userID) {
		product, ok := data.Product(in.ProductID)
		if !ok {
			continue
		}
		w := in.Weight()
		total += w

		if cat := strings.ToLower(product.Category); cat != "" {
			p.Categories[cat] += w
		}
		if brand := strings.ToLower(product.Brand); brand != "" {
			p.Brands[brand] += w
		}
		p.PriceBuckets[PriceBucket(product.Price)] += w
		for tag := range product.TagSet() {
			p.Tags[tag] += w
		}
	}

	if total <= 0 {
		return newProfile()
	}
	scale := func(m map[string]float64, weight float64) {
		for k, v := range m {
			m[k] = v / total * weight
		}
	}
	scale(p.Categories, profileCategoryWeight)
	scale(p.Brands, profileBrandWeight)
	scale(p.PriceBuckets, profilePriceWeight)
	scale(p.Tags, profileTagWeight)
	return p
}

// Score rates product against profile and explains the strongest matches.
func Score(profile Profile, product *models.Product) (float64, []models.Reason) {
	var score float64
	var reasons []models.Reason

	category := strings.ToLower(product.Category)
	if pref := profile.Categories[category]; category != "" {
		score += pref
		if pref > strongPreference {
			reasons = append(reasons, models.Reason{Code: models.ReasonCategoryMatch, Subject: product.Category, Value: pref})
		}
	}

	brand := strings.ToLower(product.Brand)
	if pref := profile.Brands[brand]; brand != "" {
		score += pref
		if pref > strongPreference {
			reasons = append(reasons, models.Reason{Code: models.ReasonBrandMatch, Subject: product.Brand, Value: pref})
		}
	}

	score += profile.PriceBuckets[PriceBucket(product.Price)]
	for tag := range product.TagSet() {
		score += profile.Tags[tag]
	}

	if product.Rating > highlyRatedThreshold {
		score += highlyRatedBonus
		reasons = append(reasons, models.Reason{Code: models.ReasonHighlyRated, Value: product.Rating})
	}
	if product.ViewCount > popularViewThreshold {
		score += popularViewBonus
	}

	return similarity.Clamp01(score), reasons
}

// Recommend scores every product the user has not viewed or purchased and
// returns the best k with a positive score.
func (c *ContentBased) Recommend(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	user, ok := data.User(userID)
	if !ok || k <= 0 {
		return nil, nil
	}
	profile, err := c.profile(ctx, data, userID)
	if err != nil || profile.Empty() {
		return nil, err
	}

	seen := user.Seen()
	candidates := make(map[int64]*models.Recommendation)
	for _, product := range data.Products() {
		if seen.Has(product.ID) {
			continue
		}
		score, reasons := Score(profile, product)
		if score <= 0 {
			continue
		}
		rec := models.NewRecommendation(userID, product.ID, score, models.AlgorithmContent).
			WithComponent(ComponentContentSimilarity, score)
		if len(reasons) == 0 {
			rec.WithReason(models.ReasonProfileMatch, "", score)
		} else {
			rec.Reasons = reasons
		}
		candidates[product.ID] = rec
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return selectTop(candidates, k), nil
}

// Trending ranks popular products in the user's strongly preferred
// categories by popularity times preference. Viewed products are excluded.
func (c *ContentBased) Trending(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	user, ok := data.User(userID)
	if !ok || k <= 0 {
		return nil, nil
	}
	profile, err := c.profile(ctx, data, userID)
	if err != nil {
		return nil, err
	}

	candidates := make(map[int64]*models.Recommendation)
	for category, pref := range profile.Categories {
		if pref <= strongPreference {
			continue
		}
		for _, product := range data.ProductsInCategory(category) {
			if user.Viewed.Has(product.ID) {
				continue
			}
			popularity := product.PopularityScore()
			score := popularity * pref
			if score <= 0 {
				continue
			}
			candidates[product.ID] = models.NewRecommendation(userID, product.ID, score, models.AlgorithmTrending).
				WithComponent(ComponentTrending, popularity).
				WithComponent(ComponentCategoryPreference, pref).
				WithReason(models.ReasonTrending, product.Category, pref)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return selectTop(candidates, k), nil
}

// SimilarProducts expands the user's viewed and purchased products to
// products with attribute similarity at or above the threshold, keeping
// the best similarity per candidate.
func (c *ContentBased) SimilarProducts(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	user, ok := data.User(userID)
	if !ok || k <= 0 {
		return nil, nil
	}
	history := user.Seen()
	if len(history) == 0 {
		return nil, nil
	}

	products := data.Products()
	best := make(map[int64]float64)
	for _, h := range history.Sorted() {
		source, ok := data.Product(h)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, candidate := range products {
			if history.Has(candidate.ID) {
				continue
			}
			sim := similarity.Content(source, candidate)
			if sim >= c.config.SimilarityThreshold && sim > best[candidate.ID] {
				best[candidate.ID] = sim
			}
		}
	}

	candidates := make(map[int64]*models.Recommendation, len(best))
	for id, sim := range best {
		product, _ := data.Product(id)
		candidates[id] = models.NewRecommendation(userID, id, sim, models.AlgorithmSimilar).
			WithComponent(ComponentContentSimilarity, sim).
			WithReason(models.ReasonSimilarContent, product.Category, sim)
	}
	return selectTop(candidates, k), nil
}

// TrendingInCategory ranks a category's products by engagement and rating:
//
//	0.4 * min(1, views/1000) + 0.4 * min(1, purchases/100) + 0.2 * rating/5
//
// The category match is case-insensitive. It is not personalized.
func TrendingInCategory(ctx context.Context, data *catalog.Catalog, category string, k int) ([]*models.Recommendation, error) {
	if k <= 0 {
		return nil, nil
	}
	candidates := make(map[int64]*models.Recommendation)
	for _, product := range data.ProductsInCategory(category) {
		score := 0.4*math.Min(1, float64(product.ViewCount)/1000) +
			0.4*math.Min(1, float64(product.PurchaseCount)/100) +
			0.2*product.Rating/5
		if score <= 0 {
			continue
		}
		candidates[product.ID] = models.NewRecommendation(0, product.ID, score, models.AlgorithmCategoryTrend).
			WithComponent(ComponentTrending, score).
			WithReason(models.ReasonTrending, product.Category, score)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return selectTop(candidates, k), nil
}

// Signal is the content input of the hybrid combiner: profile scoring and
// similar-product expansion each fill half of k and pass through one
// selector of size k. Profile scoring wins on overlap.
func (c *ContentBased) Signal(ctx context.Context, data *catalog.Catalog, userID int64, k int) ([]*models.Recommendation, error) {
	if k <= 0 {
		return nil, nil
	}
	profiled, err := c.Recommend(ctx, data, userID, half(k))
	if err != nil {
		return nil, err
	}
	similar, err := c.SimilarProducts(ctx, data, userID, half(k))
	if err != nil {
		return nil, err
	}
	return mergeTop(k, profiled, similar), nil
}
