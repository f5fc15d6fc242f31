// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package cache

import (
	"context"
	"errors"
	"hash/maphash"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/rankengine/internal/metrics"
)

const (
	defaultShards = 16
	remoteTimeout = 250 * time.Millisecond
)

// MemoStats is a point-in-time view of a Memo.
type MemoStats struct {
	Name    string  `json:"name"`
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

type shard[K Key, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// Memo is a concurrent get-or-compute cache.
//
// Entries are spread over independently locked shards. Concurrent misses on
// the same key share one computation through singleflight. Entries never
// expire locally; they are dropped by Invalidate, InvalidateFunc or Clear.
//
// When a Remote is attached, misses consult it before computing and computed
// values are written back. Remote failures are counted and ignored. Remote
// entries are namespaced by an epoch drawn once per Memo from the store's
// shared counter, so two Memos never read each other's entries even when they
// share a name and a store. Within an epoch a local generation, bumped by
// InvalidateFunc and Clear, retires entries written before a bulk
// invalidation.
type Memo[K Key, V any] struct {
	name   string
	seed   maphash.Seed
	shards []*shard[K, V]
	group  singleflight.Group

	remote    Remote
	remoteTTL time.Duration
	epoch     string
	gen       atomic.Uint64

	hits   atomic.Int64
	misses atomic.Int64

	logger zerolog.Logger
}

// MemoOption configures a Memo.
type MemoOption func(*memoOptions)

type memoOptions struct {
	shards    int
	remote    Remote
	remoteTTL time.Duration
	logger    zerolog.Logger
}

// WithShards sets the number of lock shards.
func WithShards(n int) MemoOption {
	return func(o *memoOptions) {
		if n > 0 {
			o.shards = n
		}
	}
}

// WithRemote attaches a second-level store. A ttl of zero stores entries
// without expiry.
func WithRemote(r Remote, ttl time.Duration) MemoOption {
	return func(o *memoOptions) {
		o.remote = r
		o.remoteTTL = ttl
	}
}

// WithLogger sets the logger used for remote failures.
func WithLogger(logger zerolog.Logger) MemoOption { //nolint:gocritic // zerolog.Logger is passed by value by convention
	return func(o *memoOptions) {
		o.logger = logger
	}
}

// NewMemo creates an empty cache. name labels its metrics and remote keys.
func NewMemo[K Key, V any](name string, opts ...MemoOption) *Memo[K, V] {
	o := memoOptions{shards: defaultShards, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memo[K, V]{
		name:      name,
		seed:      maphash.MakeSeed(),
		shards:    make([]*shard[K, V], o.shards),
		remote:    o.remote,
		remoteTTL: o.remoteTTL,
		logger:    o.logger.With().Str("component", "cache").Str("cache", name).Logger(),
	}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{m: make(map[K]V)}
	}
	if m.remote != nil {
		m.epoch = m.allocateEpoch()
	}
	return m
}

// allocateEpoch reserves a namespace for this Memo's remote entries. The
// shared counter keeps epochs unique across processes; when the store is
// unreachable a random id serves instead.
func (m *Memo[K, V]) allocateEpoch() string {
	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	n, err := m.remote.Incr(ctx, "rankengine:"+m.name+":epoch")
	if err != nil {
		metrics.RecordCacheRemoteError(m.name, "epoch")
		m.logger.Warn().Err(err).Msg("remote epoch unavailable, using a private namespace")
		return uuid.NewString()
	}
	return strconv.FormatInt(n, 10)
}

// Epoch returns the remote namespace of this Memo, or "" without a Remote.
func (m *Memo[K, V]) Epoch() string { return m.epoch }

// Name returns the cache name.
func (m *Memo[K, V]) Name() string { return m.name }

func (m *Memo[K, V]) shardFor(key K) *shard[K, V] {
	h := maphash.Comparable(m.seed, key)
	return m.shards[h%uint64(len(m.shards))]
}

// Get returns the cached value for key without computing it.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (m *Memo[K, V]) Set(key K, v V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Errors from compute are returned and nothing is stored.
func (m *Memo[K, V]) GetOrCompute(ctx context.Context, key K, compute func() (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		m.hits.Add(1)
		metrics.RecordCacheLookup(m.name, true)
		return v, nil
	}
	m.misses.Add(1)
	metrics.RecordCacheLookup(m.name, false)

	res, err, _ := m.group.Do(key.String(), func() (any, error) {
		if v, ok := m.Get(key); ok {
			return v, nil
		}
		if v, ok := m.remoteGet(ctx, key); ok {
			m.Set(key, v)
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		m.Set(key, v)
		m.remoteSet(ctx, key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate drops key and reports whether it was present locally.
func (m *Memo[K, V]) Invalidate(key K) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	_, ok := s.m[key]
	delete(s.m, key)
	s.mu.Unlock()

	if m.remote != nil {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if err := m.remote.Delete(ctx, m.remoteKey(key)); err != nil {
			metrics.RecordCacheRemoteError(m.name, "delete")
			m.logger.Debug().Err(err).Str("key", key.String()).Msg("remote delete failed")
		}
	}
	if ok {
		metrics.RecordCacheInvalidation(m.name, 1)
	}
	return ok
}

// InvalidateFunc drops every local entry whose key matches pred and returns
// how many were dropped. Remote entries are retired by bumping the
// generation.
func (m *Memo[K, V]) InvalidateFunc(pred func(K) bool) int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k := range s.m {
			if pred(k) {
				delete(s.m, k)
				n++
			}
		}
		s.mu.Unlock()
	}
	if m.remote != nil {
		m.gen.Add(1)
	}
	metrics.RecordCacheInvalidation(m.name, n)
	return n
}

// Clear drops every entry and resets the hit counters.
func (m *Memo[K, V]) Clear() {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n += len(s.m)
		s.m = make(map[K]V)
		s.mu.Unlock()
	}
	if m.remote != nil {
		m.gen.Add(1)
	}
	m.hits.Store(0)
	m.misses.Store(0)
	metrics.RecordCacheInvalidation(m.name, n)
}

// Len returns the number of local entries.
func (m *Memo[K, V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Stats returns the current counters.
func (m *Memo[K, V]) Stats() MemoStats {
	hits, misses := m.hits.Load(), m.misses.Load()
	st := MemoStats{Name: m.name, Entries: m.Len(), Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		st.HitRate = float64(hits) / float64(total)
	}
	return st
}

func (m *Memo[K, V]) remoteKey(key K) string {
	return "rankengine:" + m.name + ":" + m.epoch + ":" + strconv.FormatUint(m.gen.Load(), 10) + ":" + key.String()
}

func (m *Memo[K, V]) remoteGet(ctx context.Context, key K) (V, bool) {
	var v V
	if m.remote == nil {
		return v, false
	}
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	b, err := m.remote.Get(ctx, m.remoteKey(key))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			metrics.RecordCacheRemoteError(m.name, "get")
			m.logger.Debug().Err(err).Str("key", key.String()).Msg("remote get failed")
		}
		return v, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		metrics.RecordCacheRemoteError(m.name, "decode")
		return v, false
	}
	return v, true
}

func (m *Memo[K, V]) remoteSet(ctx context.Context, key K, v V) {
	if m.remote == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		metrics.RecordCacheRemoteError(m.name, "encode")
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), remoteTimeout)
	defer cancel()
	if err := m.remote.Set(ctx, m.remoteKey(key), b, m.remoteTTL); err != nil {
		metrics.RecordCacheRemoteError(m.name, "set")
		m.logger.Debug().Err(err).Str("key", key.String()).Msg("remote set failed")
	}
}
