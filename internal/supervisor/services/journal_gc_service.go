// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/rankengine/internal/journal"
)

// GarbageCollector is the part of *journal.Journal the GC service drives.
type GarbageCollector interface {
	RunGC(ctx context.Context) error
	GCInterval() time.Duration
}

// JournalGCService reclaims badger value log space on the journal's GC
// interval.
type JournalGCService struct {
	journal GarbageCollector
	logger  zerolog.Logger
}

// NewJournalGCService creates the service.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewJournalGCService(j GarbageCollector, logger zerolog.Logger) *JournalGCService {
	return &JournalGCService{
		journal: j,
		logger:  logger.With().Str("service", "journal-gc").Logger(),
	}
}

// Serve implements suture.Service. A closed journal or a zero interval
// removes the service from the tree; other GC errors restart it.
func (s *JournalGCService) Serve(ctx context.Context) error {
	interval := s.journal.GCInterval()
	if interval <= 0 {
		s.logger.Info().Msg("journal gc disabled")
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := s.journal.RunGC(ctx)
			switch {
			case err == nil:
			case errors.Is(err, journal.ErrClosed):
				return suture.ErrDoNotRestart
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				return fmt.Errorf("journal gc: %w", err)
			}
		}
	}
}

// String names the service in supervisor events.
func (s *JournalGCService) String() string {
	return "journal-gc"
}
