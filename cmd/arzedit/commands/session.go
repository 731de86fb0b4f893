// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/arzedit/cmd/arzedit/cli"
	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/config"
	"github.com/bureau-foundation/arzedit/lib/modtool"
	"github.com/bureau-foundation/arzedit/lib/textenc"
)

// globalParams are the flags every command accepts.
type globalParams struct {
	Config   string `flag:"config" desc:"config file (default: $ARZEDIT_CONFIG, else built-in defaults)"`
	Verbose  bool   `flag:"verbose,v" desc:"log debug messages"`
	Quiet    bool   `flag:"quiet,q" desc:"log errors only"`
	Encoding string `flag:"encoding" desc:"text code page: gbk, windows-1252 or utf-8 (overrides config)"`
}

// session is the state shared by one command run.
type session struct {
	config *config.Config
	logger *slog.Logger
	sink   *cli.ProgressSink
	env    modtool.Env
}

// loadConfig reads the config file and applies the global flag
// overrides.
func (g globalParams) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if g.Config != "" {
		cfg, err = config.LoadFile(g.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if g.Verbose && g.Quiet {
		return nil, fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	switch {
	case g.Verbose:
		cfg.Log.Level = "debug"
	case g.Quiet:
		cfg.Log.Level = "error"
	}
	if g.Encoding != "" {
		if _, err := textenc.Lookup(g.Encoding); err != nil {
			return nil, fmt.Errorf("--encoding: %w", err)
		}
		cfg.TextEncoding = g.Encoding
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// open loads configuration and builds the logger, progress display and
// operation environment for a command.
func (g globalParams) open(command string) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewCommandLogger(cfg.LogLevel(), cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	logger = logger.With("command", command)

	sink := cli.NewProgressSink(os.Stderr, logger)
	return &session{
		config: cfg,
		logger: logger,
		sink:   sink,
		env: modtool.Env{
			Sink:   sink,
			Logger: logger,
			Codec:  cfg.Codec(),
		},
	}, nil
}

// finish ends the progress display and turns the outcome of a batch
// operation into the command's result. Per-item failures were already
// reported, so they become a bare exit code.
func (s *session) finish(summary batch.Summary, err error) error {
	s.sink.Finish()
	if err != nil {
		return err
	}
	if len(summary.Failed) > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
