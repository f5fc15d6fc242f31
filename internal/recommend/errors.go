// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package recommend

import (
	"errors"

	"github.com/tomtom215/rankengine/internal/recommend/algorithms"
	"github.com/tomtom215/rankengine/internal/recommend/reranking"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	// ErrInvalidArgument marks rejected input: bad weights, entities that
	// fail validation, malformed filters or unknown strategies.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks lookups of unknown users or products.
	ErrNotFound = errors.New("not found")

	// ErrTrainingInProgress is returned when a training run is already active.
	ErrTrainingInProgress = algorithms.ErrTrainingInProgress

	// ErrNotTrained is returned by model queries before the first training run.
	ErrNotTrained = algorithms.ErrNotTrained

	// ErrInvalidFilter is returned for filter expressions that do not compile.
	ErrInvalidFilter = reranking.ErrInvalidFilter
)
