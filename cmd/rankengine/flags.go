// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tomtom215/rankengine/internal/config"
)

// options holds the command line. Empty values leave the loaded
// configuration untouched.
type options struct {
	configPath string
	addr       string
	logLevel   string
	inMemory   bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("rankengine", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&opts.addr, "addr", "", "listen address, overrides http.addr")
	fs.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn or error")
	fs.BoolVar(&opts.inMemory, "in-memory", false, "keep the journal in memory")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// loadConfig loads the configuration and applies flag overrides. The
// result is validated again since flags bypass the loader.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.addr != "" {
		cfg.HTTP.Addr = opts.addr
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.inMemory {
		cfg.Journal.InMemory = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command line: %w", err)
	}
	return cfg, nil
}
