// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rankengine/internal/models"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenInMemory(zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendReplayOrder(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	records := []Record{
		UserRecord(models.NewUser(1, "alice", "")),
		ProductRecord(&models.Product{ID: 10, Name: "Laptop", Category: "Electronics", Price: 1200}),
		InteractionRecord(models.Interaction{UserID: 1, ProductID: 10, Type: models.InteractionPurchase}),
		InteractionRecord(models.Interaction{UserID: 1, ProductID: 10, Type: models.InteractionRating, Value: 4}),
	}
	ids := make(map[string]bool)
	for _, rec := range records {
		id, err := j.Append(ctx, rec)
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		ids[id] = true
	}
	if len(ids) != len(records) {
		t.Errorf("entry ids not unique: %v", ids)
	}

	var got []Kind
	var last uint64
	err := j.Replay(ctx, func(e *Entry) error {
		if len(got) > 0 && e.Seq <= last {
			t.Errorf("sequence %d after %d", e.Seq, last)
		}
		last = e.Seq
		got = append(got, e.Record.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	want := []Kind{KindUser, KindProduct, KindInteraction, KindInteraction}
	if len(got) != len(want) {
		t.Fatalf("replayed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d kind = %s, want %s", i, got[i], want[i])
		}
	}

	n, err := j.Len()
	if err != nil || n != 4 {
		t.Errorf("Len() = %d, %v; want 4", n, err)
	}
	if s := j.Stats(); s.Appends != 4 || s.Replayed != 4 || !s.InMemory {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestReplayPreservesPayload(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	in := models.Interaction{UserID: 2, ProductID: 20, Type: models.InteractionRating, Value: 3.5, Timestamp: ts, SessionID: 7}
	if _, err := j.Append(ctx, InteractionRecord(in)); err != nil {
		t.Fatal(err)
	}

	err := j.Replay(ctx, func(e *Entry) error {
		got := e.Record.Interaction
		if got == nil {
			t.Fatal("interaction payload missing")
		}
		if got.UserID != 2 || got.ProductID != 20 || got.Type != models.InteractionRating ||
			got.Value != 3.5 || !got.Timestamp.Equal(ts) || got.SessionID != 7 {
			t.Errorf("replayed interaction = %+v, want %+v", *got, in)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestReplayStopsOnError(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		if _, err := j.Append(ctx, UserRecord(models.NewUser(i, "u", ""))); err != nil {
			t.Fatal(err)
		}
	}

	stop := errors.New("stop")
	calls := 0
	err := j.Replay(ctx, func(*Entry) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || calls != 2 {
		t.Errorf("Replay() = %v after %d calls, want stop after 2", err, calls)
	}
}

func TestAppendRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  Record
	}{
		{"empty", Record{}},
		{"kind without payload", Record{Kind: KindUser}},
		{"mismatched payload", Record{Kind: KindProduct, User: models.NewUser(1, "a", "")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := j.Append(ctx, tt.rec); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Append() error = %v, want ErrInvalidRecord", err)
			}
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := j.Append(cancelled, UserRecord(models.NewUser(1, "a", ""))); !errors.Is(err, context.Canceled) {
		t.Errorf("Append(cancelled) error = %v", err)
	}
}

func TestClosedJournal(t *testing.T) {
	t.Parallel()

	j, err := OpenInMemory(zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if _, err := j.Append(ctx, UserRecord(models.NewUser(1, "a", ""))); !errors.Is(err, ErrClosed) {
		t.Errorf("Append() error = %v, want ErrClosed", err)
	}
	if err := j.Replay(ctx, func(*Entry) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Replay() error = %v, want ErrClosed", err)
	}
	if err := j.RunGC(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("RunGC() error = %v, want ErrClosed", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.SyncWrites = false
	ctx := context.Background()

	j, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := j.Append(ctx, ProductRecord(&models.Product{ID: 5, Name: "Lamp", Category: "Home"})); err != nil {
		t.Fatal(err)
	}
	if err := j.RunGC(ctx); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j, err = Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer j.Close()

	if _, err := j.Append(ctx, UserRecord(models.NewUser(1, "a", ""))); err != nil {
		t.Fatal(err)
	}
	var kinds []Kind
	if err := j.Replay(ctx, func(e *Entry) error {
		kinds = append(kinds, e.Record.Kind)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(kinds) != 2 || kinds[0] != KindProduct || kinds[1] != KindUser {
		t.Errorf("replayed kinds = %v, want [product user]", kinds)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"in memory without path", func(c *Config) { c.Path = ""; c.InMemory = true }, false},
		{"missing path", func(c *Config) { c.Path = "" }, true},
		{"small memtable", func(c *Config) { c.MemTableSize = 1024 }, true},
		{"small value log", func(c *Config) { c.ValueLogFileSize = 1024 }, true},
		{"negative gc interval", func(c *Config) { c.GCInterval = -time.Second }, true},
		{"gc ratio out of range", func(c *Config) { c.GCRatio = 1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
