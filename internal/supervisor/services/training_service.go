// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rankengine/internal/recommend"
)

// Trainer is the part of *recommend.Engine the training service drives.
type Trainer interface {
	Train(ctx context.Context) error
	NumInteractions() int
}

// TrainingConfig controls the training schedule.
type TrainingConfig struct {
	// Interval between runs. Non-positive means 24h.
	Interval time.Duration

	// OnStartup trains once before the first tick.
	OnStartup bool

	// MinInteractions skips runs while the log is smaller than this.
	MinInteractions int

	// Timeout bounds one run. Non-positive means 30m.
	Timeout time.Duration
}

// TrainingService retrains the matrix factorization model on a schedule,
// off the request path.
type TrainingService struct {
	trainer Trainer
	config  TrainingConfig
	logger  zerolog.Logger
}

// NewTrainingService creates the service.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewTrainingService(trainer Trainer, cfg TrainingConfig, logger zerolog.Logger) *TrainingService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &TrainingService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "trainer").Logger(),
	}
}

// Serve implements suture.Service. Failed runs are logged and retried on
// the next tick; they never restart the service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Int("min_interactions", s.config.MinInteractions).
		Msg("training service starting")

	if s.config.OnStartup {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce trains if the log is large enough. It reports whether a run
// completed.
func (s *TrainingService) runOnce(ctx context.Context) bool {
	if n := s.trainer.NumInteractions(); n < s.config.MinInteractions {
		s.logger.Debug().
			Int("interactions", n).
			Int("min_interactions", s.config.MinInteractions).
			Msg("too few interactions, skipping training")
		return false
	}

	trainCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	err := s.trainer.Train(trainCtx)
	switch {
	case err == nil:
		return true
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Msg("training already running")
	case ctx.Err() != nil:
	default:
		s.logger.Warn().Err(err).Msg("scheduled training failed")
	}
	return false
}

// String names the service in supervisor events.
func (s *TrainingService) String() string {
	return "trainer"
}
