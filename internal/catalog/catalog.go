// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package catalog

import (
	"slices"
	"strings"

	"github.com/tomtom215/rankengine/internal/graph"
	"github.com/tomtom215/rankengine/internal/models"
)

// Catalog is the single-writer store of users, products, interactions and
// the interaction graph.
type Catalog struct {
	users    map[int64]*models.User
	products map[int64]*models.Product

	log       []models.Interaction
	byUser    map[int64][]int
	byProduct map[int64][]int

	// lower-cased category -> product ids
	categories map[string]map[int64]struct{}

	graph *graph.Graph
}

// Stats summarizes the catalog contents.
type Stats struct {
	Users        int `json:"users"`
	Products     int `json:"products"`
	Interactions int `json:"interactions"`
	ActiveUsers  int `json:"active_users"`
	Categories   int `json:"categories"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		users:      make(map[int64]*models.User),
		products:   make(map[int64]*models.Product),
		byUser:     make(map[int64][]int),
		byProduct:  make(map[int64][]int),
		categories: make(map[string]map[int64]struct{}),
		graph:      graph.New(),
	}
}

// AddUser stores u and reports whether it was new. Adding a known id
// replaces the profile fields (username, email, registration time) and
// keeps the interaction history already accumulated.
func (c *Catalog) AddUser(u *models.User) bool {
	u.Normalize()
	existing, ok := c.users[u.ID]
	if ok {
		existing.Username = u.Username
		existing.Email = u.Email
		if !u.RegisteredAt.IsZero() {
			existing.RegisteredAt = u.RegisteredAt
		}
		return false
	}
	c.users[u.ID] = u
	c.graph.AddUser(u.ID)
	return true
}

// AddProduct stores p and reports whether it was new. Adding a known id
// replaces the descriptive fields and keeps the interaction counters.
func (c *Catalog) AddProduct(p *models.Product) bool {
	existing, ok := c.products[p.ID]
	if ok {
		c.unindexCategory(existing)
		p.ViewCount = existing.ViewCount
		p.PurchaseCount = existing.PurchaseCount
		p.WishlistCount = existing.WishlistCount
	}
	c.products[p.ID] = p
	c.indexCategory(p)
	c.graph.AddProduct(p.ID)
	return !ok
}

func (c *Catalog) indexCategory(p *models.Product) {
	key := strings.ToLower(p.Category)
	if key == "" {
		return
	}
	set, ok := c.categories[key]
	if !ok {
		set = make(map[int64]struct{})
		c.categories[key] = set
	}
	set[p.ID] = struct{}{}
}

func (c *Catalog) unindexCategory(p *models.Product) {
	key := strings.ToLower(p.Category)
	if set, ok := c.categories[key]; ok {
		delete(set, p.ID)
		if len(set) == 0 {
			delete(c.categories, key)
		}
	}
}

// Ingest applies one interaction. Unknown users and products get graph
// nodes; their records are only updated when they exist.
func (c *Catalog) Ingest(in models.Interaction) {
	idx := len(c.log)
	c.log = append(c.log, in)
	c.byUser[in.UserID] = append(c.byUser[in.UserID], idx)
	c.byProduct[in.ProductID] = append(c.byProduct[in.ProductID], idx)

	if u, ok := c.users[in.UserID]; ok {
		switch in.Type {
		case models.InteractionView:
			u.AddViewed(in.ProductID)
		case models.InteractionPurchase:
			u.AddPurchased(in.ProductID)
		case models.InteractionWishlist:
			u.AddWishlist(in.ProductID)
		case models.InteractionRating:
			u.AddRating(in.Value)
		}
	}

	if p, ok := c.products[in.ProductID]; ok {
		switch in.Type {
		case models.InteractionView:
			p.ViewCount++
		case models.InteractionPurchase:
			p.PurchaseCount++
		case models.InteractionWishlist:
			p.WishlistCount++
		}
	}

	c.graph.AddInteraction(in.UserID, in.ProductID, in.Weight())
	c.refreshPreferences(in.UserID)
}

// refreshPreferences recomputes a user's category preferences as the mean
// interaction weight per category of the products they touched.
func (c *Catalog) refreshPreferences(userID int64) {
	u, ok := c.users[userID]
	if !ok {
		return
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, idx := range c.byUser[userID] {
		in := &c.log[idx]
		p, ok := c.products[in.ProductID]
		if !ok || p.Category == "" {
			continue
		}
		sums[p.Category] += in.Weight()
		counts[p.Category]++
	}
	prefs := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		prefs[cat] = sum / float64(counts[cat])
	}
	u.CategoryPreferences = prefs
}

// User returns the stored user.
func (c *Catalog) User(id int64) (*models.User, bool) {
	u, ok := c.users[id]
	return u, ok
}

// Product returns the stored product.
func (c *Catalog) Product(id int64) (*models.Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// HasUser reports whether a user record exists.
func (c *Catalog) HasUser(id int64) bool {
	_, ok := c.users[id]
	return ok
}

// Graph returns the interaction graph.
func (c *Catalog) Graph() *graph.Graph { return c.graph }

// Log returns the interaction log. The slice is shared; callers must not
// modify it and must copy it before releasing the read lock if they keep it.
func (c *Catalog) Log() []models.Interaction { return c.log }

// Snapshot returns a copy of the interaction log.
func (c *Catalog) Snapshot() []models.Interaction { return slices.Clone(c.log) }

// UserLog returns a copy of the user's interactions in ingestion order.
func (c *Catalog) UserLog(userID int64) []models.Interaction {
	return c.collect(c.byUser[userID])
}

// ProductLog returns a copy of the product's interactions in ingestion order.
func (c *Catalog) ProductLog(productID int64) []models.Interaction {
	return c.collect(c.byProduct[productID])
}

func (c *Catalog) collect(idx []int) []models.Interaction {
	if len(idx) == 0 {
		return nil
	}
	out := make([]models.Interaction, len(idx))
	for i, j := range idx {
		out[i] = c.log[j]
	}
	return out
}

// InteractionCount is the user's engagement count used for tier routing,
// or 0 for an unknown user.
func (c *Catalog) InteractionCount(userID int64) int {
	u, ok := c.users[userID]
	if !ok {
		return 0
	}
	return u.TotalInteractions()
}

// UserIDs returns every user id in ascending order.
func (c *Catalog) UserIDs() []int64 {
	ids := make([]int64, 0, len(c.users))
	for id := range c.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ProductIDs returns every product id in ascending order.
func (c *Catalog) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Products returns every product ordered by id.
func (c *Catalog) Products() []*models.Product {
	out := make([]*models.Product, 0, len(c.products))
	for _, id := range c.ProductIDs() {
		out = append(out, c.products[id])
	}
	return out
}

// ProductsInCategory returns the products of a category (case-insensitive)
// ordered by id.
func (c *Catalog) ProductsInCategory(category string) []*models.Product {
	set := c.categories[strings.ToLower(category)]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*models.Product, len(ids))
	for i, id := range ids {
		out[i] = c.products[id]
	}
	return out
}

// Categories returns the known categories, lower-cased and sorted.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.categories))
	for cat := range c.categories {
		out = append(out, cat)
	}
	slices.Sort(out)
	return out
}

// NumUsers returns the number of user records.
func (c *Catalog) NumUsers() int { return len(c.users) }

// NumProducts returns the number of product records.
func (c *Catalog) NumProducts() int { return len(c.products) }

// NumInteractions returns the log length.
func (c *Catalog) NumInteractions() int { return len(c.log) }

// ActiveUsers counts users with at least one recorded interaction.
func (c *Catalog) ActiveUsers() int {
	n := 0
	for _, u := range c.users {
		if u.TotalInteractions() > 0 {
			n++
		}
	}
	return n
}

// Stats returns a summary of the catalog.
func (c *Catalog) Stats() Stats {
	return Stats{
		Users:        c.NumUsers(),
		Products:     c.NumProducts(),
		Interactions: c.NumInteractions(),
		ActiveUsers:  c.ActiveUsers(),
		Categories:   len(c.categories),
	}
}
