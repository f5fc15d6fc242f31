// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package journal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/rankengine/internal/metrics"
	"github.com/tomtom215/rankengine/internal/models"
)

// Errors returned by the journal.
var (
	ErrClosed        = errors.New("journal is closed")
	ErrInvalidRecord = errors.New("invalid journal record")
)

// Kind tags the payload of a record.
type Kind string

// Record kinds.
const (
	KindUser        Kind = "user"
	KindProduct     Kind = "product"
	KindInteraction Kind = "interaction"
)

// Record is one ingestion input. Exactly one payload matches Kind.
type Record struct {
	Kind        Kind                `json:"kind"`
	User        *models.User        `json:"user,omitempty"`
	Product     *models.Product     `json:"product,omitempty"`
	Interaction *models.Interaction `json:"interaction,omitempty"`
}

// UserRecord wraps a user.
func UserRecord(u *models.User) Record { return Record{Kind: KindUser, User: u} }

// ProductRecord wraps a product.
func ProductRecord(p *models.Product) Record { return Record{Kind: KindProduct, Product: p} }

// InteractionRecord wraps an interaction.
func InteractionRecord(in models.Interaction) Record {
	return Record{Kind: KindInteraction, Interaction: &in}
}

// Validate reports whether the payload matches Kind.
func (r *Record) Validate() error {
	switch {
	case r.Kind == KindUser && r.User != nil:
	case r.Kind == KindProduct && r.Product != nil:
	case r.Kind == KindInteraction && r.Interaction != nil:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidRecord, r.Kind)
	}
	return nil
}

// Entry is a stored record with its metadata.
type Entry struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	Record    Record    `json:"record"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats contains journal counters.
type Stats struct {
	Appends  int64     `json:"appends"`
	Replayed int64     `json:"replayed"`
	LastGC   time.Time `json:"last_gc"`
	InMemory bool      `json:"in_memory"`
}

const (
	prefixEntry = "j/"
	keySequence = "meta/seq"

	// sequenceBandwidth is how many ids badger leases at a time.
	sequenceBandwidth = 256
)

// Journal is a BadgerDB-backed append-only record log.
type Journal struct {
	db     *badger.DB
	seq    *badger.Sequence
	config Config
	logger zerolog.Logger

	appends  atomic.Int64
	replayed atomic.Int64

	mu     sync.RWMutex
	closed bool
	lastGC time.Time
}

// Open opens (or creates) the journal.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func Open(cfg Config, logger zerolog.Logger) (*Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites && !cfg.InMemory
	opts.MemTableSize = cfg.MemTableSize
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	// Badger logs through its own logger; silence it.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	seq, err := db.GetSequence([]byte(keySequence), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("acquire sequence: %w", err)
	}

	j := &Journal{
		db:     db,
		seq:    seq,
		config: cfg,
		logger: logger.With().Str("component", "journal").Logger(),
		lastGC: time.Now(),
	}
	j.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("journal opened")
	return j, nil
}

// OpenInMemory opens a memory-only journal with default sizing.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func OpenInMemory(logger zerolog.Logger) (*Journal, error) {
	cfg := DefaultConfig()
	cfg.InMemory = true
	cfg.Path = ""
	return Open(cfg, logger)
}

func entryKey(seq uint64) []byte {
	key := make([]byte, len(prefixEntry)+8)
	copy(key, prefixEntry)
	binary.BigEndian.PutUint64(key[len(prefixEntry):], seq)
	return key
}

func (j *Journal) isClosed() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.closed
}

// Append stores the record durably and returns its entry id.
func (j *Journal) Append(ctx context.Context, rec Record) (string, error) {
	if j.isClosed() {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}

	n, err := j.seq.Next()
	if err != nil {
		metrics.RecordJournalAppend(err)
		return "", fmt.Errorf("next sequence: %w", err)
	}
	entry := Entry{
		ID:        uuid.New().String(),
		Seq:       n,
		Record:    rec,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		metrics.RecordJournalAppend(err)
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(n), data)
	})
	metrics.RecordJournalAppend(err)
	if err != nil {
		return "", fmt.Errorf("write to BadgerDB: %w", err)
	}
	j.appends.Add(1)
	return entry.ID, nil
}

// Replay calls fn for every entry in append order. It stops at the first
// error returned by fn or at context cancellation.
func (j *Journal) Replay(ctx context.Context, fn func(*Entry) error) error {
	if j.isClosed() {
		return ErrClosed
	}

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefixEntry)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("unmarshal entry %x: %w", it.Item().Key(), err)
			}
			if err := fn(&entry); err != nil {
				return err
			}
			j.replayed.Add(1)
			metrics.JournalReplayed.Inc()
		}
		return nil
	})
	if err != nil {
		metrics.RecordJournalError("replay")
	}
	return err
}

// Len counts stored entries.
func (j *Journal) Len() (int, error) {
	if j.isClosed() {
		return 0, ErrClosed
	}
	n := 0
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixEntry)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// RunGC reclaims value log space. It is a no-op for in-memory journals.
func (j *Journal) RunGC(ctx context.Context) error {
	if j.isClosed() {
		return ErrClosed
	}
	if j.config.InMemory {
		return nil
	}

	rewritten := 0
	for ctx.Err() == nil {
		err := j.db.RunValueLogGC(j.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			metrics.RecordJournalError("gc")
			return fmt.Errorf("value log gc: %w", err)
		}
		rewritten++
	}

	j.mu.Lock()
	j.lastGC = time.Now()
	j.mu.Unlock()

	j.logger.Debug().Int("rewritten", rewritten).Msg("journal gc complete")
	return nil
}

// GCInterval returns the configured GC interval.
func (j *Journal) GCInterval() time.Duration { return j.config.GCInterval }

// Stats returns journal counters.
func (j *Journal) Stats() Stats {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Stats{
		Appends:  j.appends.Load(),
		Replayed: j.replayed.Load(),
		LastGC:   j.lastGC,
		InMemory: j.config.InMemory,
	}
}

// Close releases the sequence lease and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	j.mu.Unlock()

	var errs []error
	if err := j.seq.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release sequence: %w", err))
	}
	if err := j.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close BadgerDB: %w", err))
	}
	j.logger.Info().Msg("journal closed")
	return errors.Join(errs...)
}
