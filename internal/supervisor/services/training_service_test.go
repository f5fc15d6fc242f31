// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rankengine/internal/models"
	"github.com/tomtom215/rankengine/internal/recommend"
)

type mockTrainer struct {
	interactions int
	err          error
	calls        atomic.Int32
	trained      chan struct{}
}

func newMockTrainer(interactions int, err error) *mockTrainer {
	return &mockTrainer{interactions: interactions, err: err, trained: make(chan struct{}, 64)}
}

func (m *mockTrainer) Train(context.Context) error {
	m.calls.Add(1)
	select {
	case m.trained <- struct{}{}:
	default:
	}
	return m.err
}

func (m *mockTrainer) NumInteractions() int { return m.interactions }

func TestNewTrainingService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewTrainingService(newMockTrainer(0, nil), TrainingConfig{}, zerolog.Nop())
	if svc.config.Interval != 24*time.Hour || svc.config.Timeout != 30*time.Minute {
		t.Errorf("config = %+v", svc.config)
	}
	if svc.String() != "trainer" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestTrainingService_RunOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		interactions int
		min          int
		err          error
		wantCalls    int32
		wantDone     bool
	}{
		{"trains", 20, 10, nil, 1, true},
		{"below threshold", 5, 10, nil, 0, false},
		{"exactly threshold", 10, 10, nil, 1, true},
		{"already running", 20, 0, recommend.ErrTrainingInProgress, 1, false},
		{"failure", 20, 0, errors.New("diverged"), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			trainer := newMockTrainer(tt.interactions, tt.err)
			svc := NewTrainingService(trainer, TrainingConfig{MinInteractions: tt.min}, zerolog.Nop())

			if got := svc.runOnce(context.Background()); got != tt.wantDone {
				t.Errorf("runOnce() = %v, want %v", got, tt.wantDone)
			}
			if got := trainer.calls.Load(); got != tt.wantCalls {
				t.Errorf("Train calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestTrainingService_TrainsOnInterval(t *testing.T) {
	t.Parallel()

	trainer := newMockTrainer(100, nil)
	svc := NewTrainingService(trainer, TrainingConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-trainer.trained:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d scheduled runs", trainer.calls.Load())
		}
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestTrainingService_OnStartup(t *testing.T) {
	t.Parallel()

	trainer := newMockTrainer(100, nil)
	svc := NewTrainingService(trainer, TrainingConfig{Interval: time.Hour, OnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-trainer.trained:
	case <-time.After(2 * time.Second):
		t.Fatal("no startup run")
	}
	cancel()
	<-errCh
	if got := trainer.calls.Load(); got != 1 {
		t.Errorf("Train calls = %d, want 1", got)
	}
}

func TestTrainingService_WithEngine(t *testing.T) {
	t.Parallel()

	engine, err := recommend.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		if err := engine.AddUser(ctx, &models.User{ID: id, Username: "u", Email: "u@example.com"}); err != nil {
			t.Fatal(err)
		}
		if err := engine.AddProduct(ctx, &models.Product{ID: 100 + id, Name: "p", Category: "Books", Price: 10}); err != nil {
			t.Fatal(err)
		}
	}
	for u := int64(1); u <= 3; u++ {
		for p := int64(101); p <= 103; p++ {
			if u == p-100 {
				continue
			}
			in := models.Interaction{UserID: u, ProductID: p, Type: models.InteractionPurchase}
			if err := engine.IngestInteraction(ctx, in); err != nil {
				t.Fatal(err)
			}
		}
	}

	svc := NewTrainingService(engine, TrainingConfig{MinInteractions: 6}, zerolog.Nop())
	if !svc.runOnce(ctx) {
		t.Fatal("runOnce() = false, want a completed run")
	}
	if st := engine.TrainingStatus(); !st.Trained {
		t.Errorf("TrainingStatus() = %+v, want trained", st)
	}
}
