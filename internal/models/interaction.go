// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package models

import (
	"fmt"
	"strings"
	"time"
)

// InteractionType classifies a user-product interaction.
type InteractionType int

const (
	// InteractionView is a product page view.
	InteractionView InteractionType = iota
	// InteractionPurchase is a completed purchase.
	InteractionPurchase
	// InteractionWishlist is a wishlist addition.
	InteractionWishlist
	// InteractionRating is an explicit rating; Value carries the rating.
	InteractionRating
	// InteractionSearch is a search result click.
	InteractionSearch
	// InteractionCartAdd is an add-to-cart event.
	InteractionCartAdd
	// InteractionCartRemove is a remove-from-cart event.
	InteractionCartRemove
)

var interactionTypeNames = [...]string{
	InteractionView:       "VIEW",
	InteractionPurchase:   "PURCHASE",
	InteractionWishlist:   "WISHLIST",
	InteractionRating:     "RATING",
	InteractionSearch:     "SEARCH",
	InteractionCartAdd:    "CART_ADD",
	InteractionCartRemove: "CART_REMOVE",
}

// String returns the canonical upper-case name of the interaction type.
func (t InteractionType) String() string {
	if t < 0 || int(t) >= len(interactionTypeNames) {
		return "UNKNOWN"
	}
	return interactionTypeNames[t]
}

// ParseInteractionType parses a case-insensitive interaction type name.
func ParseInteractionType(s string) (InteractionType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range interactionTypeNames {
		if n == name {
			return InteractionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown interaction type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t InteractionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *InteractionType) UnmarshalText(b []byte) error {
	parsed, err := ParseInteractionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsImplicit reports whether the type is an implicit feedback signal.
func (t InteractionType) IsImplicit() bool {
	return t == InteractionView || t == InteractionSearch || t == InteractionCartAdd
}

// IsExplicit reports whether the type is an explicit feedback signal.
func (t InteractionType) IsExplicit() bool {
	return t == InteractionRating || t == InteractionPurchase || t == InteractionWishlist
}

// Interaction is a single logged user-product event. Interactions are
// immutable once appended to the log.
type Interaction struct {
	// UserID is the acting user.
	UserID int64 `json:"user_id" validate:"required,gt=0"`

	// ProductID is the product acted on.
	ProductID int64 `json:"product_id" validate:"required,gt=0"`

	// Type classifies the interaction.
	Type InteractionType `json:"type" validate:"gte=0,lte=6"`

	// Value is meaningful only for RATING interactions.
	Value float64 `json:"value,omitempty" validate:"gte=0,lte=5"`

	// Timestamp is when the interaction happened. Zero means "now" at ingestion.
	Timestamp time.Time `json:"timestamp"`

	// Context is free text such as a search query or referrer.
	Context string `json:"context,omitempty" validate:"max=512"`

	// SessionID groups interactions of one visit.
	SessionID int64 `json:"session_id,omitempty" validate:"gte=0"`
}

// Weight returns the derived interaction weight.
func (i *Interaction) Weight() float64 {
	switch i.Type {
	case InteractionView:
		return 1.0
	case InteractionWishlist:
		return 2.0
	case InteractionCartAdd:
		return 3.0
	case InteractionPurchase:
		return 5.0
	case InteractionRating:
		return i.Value
	default:
		return 1.0
	}
}

// IsRecent reports whether the interaction happened within the window
// ending at now.
func (i *Interaction) IsRecent(now time.Time, window time.Duration) bool {
	return now.Sub(i.Timestamp) <= window
}
