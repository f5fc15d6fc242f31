// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package models

import (
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// IDSet is a set of product or user identifiers.
// It encodes to JSON as an ascending array.
type IDSet map[int64]struct{}

// Add inserts id into the set.
func (s IDSet) Add(id int64) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

// User is a shopper known to the engine.
type User struct {
	// ID is the numeric user identifier.
	ID int64 `json:"id" validate:"required,gt=0"`

	// Username is the display name.
	Username string `json:"username" validate:"required,notblank,max=128"`

	// Email is optional contact information.
	Email string `json:"email,omitempty" validate:"omitempty,email"`

	// Viewed holds products the user has viewed (purchases imply views).
	Viewed IDSet `json:"viewed"`

	// Purchased holds products the user has bought.
	Purchased IDSet `json:"purchased"`

	// Wishlist holds products the user has wishlisted.
	Wishlist IDSet `json:"wishlist"`

	// CategoryPreferences maps category to the mean interaction weight the
	// user gave that category's products. Maintained on ingestion.
	CategoryPreferences map[string]float64 `json:"category_preferences,omitempty"`

	// AverageRating is the mean of the user's explicit ratings.
	AverageRating float64 `json:"average_rating"`

	// RatingCount is the number of ratings folded into AverageRating.
	RatingCount int `json:"rating_count"`

	// RegisteredAt is when the user was first ingested.
	RegisteredAt time.Time `json:"registered_at"`
}

// NewUser returns a user with initialized history sets.
func NewUser(id int64, username, email string) *User {
	u := &User{ID: id, Username: username, Email: email}
	u.ensureSets()
	return u
}

// ensureSets initializes nil sets, which happens for decoded users.
func (u *User) ensureSets() {
	if u.Viewed == nil {
		u.Viewed = make(IDSet)
	}
	if u.Purchased == nil {
		u.Purchased = make(IDSet)
	}
	if u.Wishlist == nil {
		u.Wishlist = make(IDSet)
	}
	if u.CategoryPreferences == nil {
		u.CategoryPreferences = make(map[string]float64)
	}
}

// Normalize prepares a decoded user for storage.
func (u *User) Normalize() {
	u.ensureSets()
}

// AddViewed records a product view.
func (u *User) AddViewed(productID int64) {
	u.ensureSets()
	u.Viewed.Add(productID)
}

// AddPurchased records a purchase. Purchased products count as viewed.
func (u *User) AddPurchased(productID int64) {
	u.ensureSets()
	u.Purchased.Add(productID)
	u.Viewed.Add(productID)
}

// AddWishlist records a wishlist addition.
func (u *User) AddWishlist(productID int64) {
	u.ensureSets()
	u.Wishlist.Add(productID)
}

// AddRating folds a rating into AverageRating.
func (u *User) AddRating(value float64) {
	u.RatingCount++
	u.AverageRating += (value - u.AverageRating) / float64(u.RatingCount)
}

// HasInteractedWith reports whether the product is in any history set.
func (u *User) HasInteractedWith(productID int64) bool {
	return u.Viewed.Has(productID) || u.Purchased.Has(productID) || u.Wishlist.Has(productID)
}

// Seen returns viewed and purchased products, the set excluded from candidates.
func (u *User) Seen() IDSet {
	seen := make(IDSet, len(u.Viewed)+len(u.Purchased))
	for id := range u.Viewed {
		seen.Add(id)
	}
	for id := range u.Purchased {
		seen.Add(id)
	}
	return seen
}

// TotalInteractions is the engagement count used for tier routing.
func (u *User) TotalInteractions() int {
	return len(u.Viewed) + len(u.Purchased) + len(u.Wishlist)
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.Viewed = u.Viewed.Clone()
	c.Purchased = u.Purchased.Clone()
	c.Wishlist = u.Wishlist.Clone()
	c.CategoryPreferences = make(map[string]float64, len(u.CategoryPreferences))
	for k, v := range u.CategoryPreferences {
		c.CategoryPreferences[k] = v
	}
	return &c
}

// Product is a catalog item.
type Product struct {
	// ID is the numeric product identifier.
	ID int64 `json:"id" validate:"required,gt=0"`

	// Name is the product title.
	Name string `json:"name" validate:"required,notblank,max=256"`

	// Description is optional long text.
	Description string `json:"description,omitempty"`

	// Category is the primary category.
	Category string `json:"category" validate:"required,notblank,max=128"`

	// Brand is the manufacturer or label.
	Brand string `json:"brand" validate:"max=128"`

	// Price is the list price; zero means unknown.
	Price float64 `json:"price" validate:"gte=0"`

	// Rating is the average review rating (0-5).
	Rating float64 `json:"rating,omitempty" validate:"gte=0,lte=5"`

	// ReviewCount is the number of reviews behind Rating.
	ReviewCount int `json:"review_count,omitempty" validate:"gte=0"`

	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty" validate:"max=64,dive,max=64"`

	// Attributes holds color, size, material and similar facets.
	Attributes map[string]string `json:"attributes,omitempty"`

	// ViewCount is incremented per VIEW interaction.
	ViewCount int `json:"view_count"`

	// PurchaseCount is incremented per PURCHASE interaction.
	PurchaseCount int `json:"purchase_count"`

	// WishlistCount is incremented per WISHLIST interaction.
	WishlistCount int `json:"wishlist_count"`

	// InStock reports stock availability.
	InStock bool `json:"in_stock"`

	// AddedAt is when the product was ingested.
	AddedAt time.Time `json:"added_at"`
}

// PopularityScore combines engagement counters and rating volume.
func (p *Product) PopularityScore() float64 {
	return float64(p.ViewCount)*0.1 +
		float64(p.PurchaseCount)*0.5 +
		float64(p.WishlistCount)*0.3 +
		p.Rating*float64(p.ReviewCount)*0.1
}

// TagSet returns the lower-cased, non-empty tags as a set.
func (p *Product) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// MatchesCategory reports whether the category contains pattern, ignoring case.
func (p *Product) MatchesCategory(pattern string) bool {
	return strings.Contains(strings.ToLower(p.Category), strings.ToLower(pattern))
}

// Clone returns a deep copy of the product.
func (p *Product) Clone() *Product {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	if p.Attributes != nil {
		c.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}
