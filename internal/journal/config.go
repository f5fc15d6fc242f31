// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package journal

import (
	"fmt"
	"time"
)

// Config holds journal storage settings.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps the journal in memory only. Used by tests and demos.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every append.
	SyncWrites bool `koanf:"sync_writes"`

	// Compression enables Snappy block compression.
	Compression bool `koanf:"compression"`

	// MemTableSize is the BadgerDB memtable size in bytes.
	MemTableSize int64 `koanf:"memtable_size"`

	// ValueLogFileSize is the BadgerDB value log file size in bytes.
	ValueLogFileSize int64 `koanf:"value_log_file_size"`

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64 `koanf:"gc_ratio"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:             "./data/journal",
		SyncWrites:       true,
		Compression:      true,
		MemTableSize:     16 << 20,
		ValueLogFileSize: 64 << 20,
		GCInterval:       10 * time.Minute,
		GCRatio:          0.5,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("journal path is required unless in_memory is set")
	}
	if c.MemTableSize < 1<<20 {
		return fmt.Errorf("memtable_size must be at least 1MB, got %d", c.MemTableSize)
	}
	if c.ValueLogFileSize < 1<<20 {
		return fmt.Errorf("value_log_file_size must be at least 1MB, got %d", c.ValueLogFileSize)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("gc_interval must be non-negative, got %v", c.GCInterval)
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return fmt.Errorf("gc_ratio must be in (0, 1), got %f", c.GCRatio)
	}
	return nil
}
