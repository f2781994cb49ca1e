// Copyright 2025 The codeflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the codeflow C++ completion engine.

codeflow suggests STL container methods for the variable in front of the
cursor, C++ keywords anywhere else, and variables declared in the current
buffer. Methods are only offered for containers whose header the buffer
includes.

# Usage

Start the MessagePack IPC server on stdin/stdout:

	codeflow

Serve editors over the Language Server Protocol:

	codeflow -lsp

Try completions by hand:

	codeflow -cli -limit 5

# Configuration

Settings live in codeflow.toml under $XDG_CONFIG_HOME/codeflow (or
~/.config/codeflow). The file is created with defaults on first run:

	[engine]
	max_results = 10
	catalog_path = "data/stl_functions.json"
	keywords_path = "data/cpp_keywords.txt"
	watch = false

	[server]
	max_limit = 64
	max_prefix = 60
	rate_limit = 0.0
	burst = 0

	[runner]
	compiler = "g++"
	std = "c++20"
	timeout_seconds = 5

With watch = true the catalog and keyword files are reloaded when they change
on disk.

# IPC Protocol

Requests and responses are MessagePack maps. A completion request carries the
buffer and cursor so the engine can find the receiver before the dot:

	{"id": "1", "cmd": "complete", "p": "pu", "code": "...", "cur": 42}

	{"id": "1", "s": [{"w": "push_back", "k": "method", "d": "vector", "s": 1.0, "r": 1}], "c": 1, "t": 18}

Other commands are "symbols", "stats", "accept", "run" and "health".
Failures come back as {"id": "1", "e": "message", "c": 400}.

# Command Line Flags

	-d  Enable debug logging on stderr
	-config string
	    Path to a config file
	-lsp
	    Serve the Language Server Protocol on stdin/stdout
	-cli
	    Interactive prompt
	-limit int
	    Suggestions per query in CLI mode
	-rebuild-config
	    Overwrite the config file with defaults and exit
	-version
	    Show version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/codeflow/internal/cli"
	"github.com/bastiangx/codeflow/internal/logger"
	"github.com/bastiangx/codeflow/internal/utils"
	"github.com/bastiangx/codeflow/pkg/catalog"
	"github.com/bastiangx/codeflow/pkg/config"
	"github.com/bastiangx/codeflow/pkg/lsp"
	"github.com/bastiangx/codeflow/pkg/runner"
	"github.com/bastiangx/codeflow/pkg/server"
	"github.com/bastiangx/codeflow/pkg/suggest"
)

const (
	Version = "0.3.0"
	AppName = "codeflow"
	gh      = "https://github.com/bastiangx/codeflow"
)

// main only wires packages together; each mode lives in its own package.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	configPath := flag.String("config", "", "Path to a codeflow.toml config file")
	lspMode := flag.Bool("lsp", false, "Serve the Language Server Protocol on stdin/stdout")
	cliMode := flag.Bool("cli", false, "Run the interactive prompt")
	rebuild := flag.Bool("rebuild-config", false, "Overwrite the config file with defaults and exit")
	limit := flag.Int("limit", 0, "Number of suggestions in CLI mode (default from config)")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	logger.Setup(*debugMode)

	if *rebuild {
		path, err := config.RebuildConfigFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Config rebuilt at %s\n", path)
		return
	}

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(usedPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, cleanup := buildEngine(ctx, cfg)
	defer cleanup()

	switch {
	case *lspMode:
		h := lsp.NewHandler(engine, cfg.Engine.MaxResults, Version)
		if err := lsp.Serve(h); err != nil {
			log.Fatalf("LSP error: %v", err)
		}
	case *cliMode:
		n := cfg.CLI.DefaultLimit
		if *limit > 0 {
			n = *limit
		}
		h := cli.NewInputHandler(engine, cfg.Server.MaxPrefix, n, cfg.CLI.ShowScores)
		if err := h.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	default:
		run := runner.NewExecRunner(runner.Options{
			Compiler: cfg.Runner.Compiler,
			Std:      cfg.Runner.Std,
			Timeout:  cfg.Runner.Timeout(),
			WorkDir:  cfg.Runner.WorkDir,
		})
		srv := server.NewServer(engine, run, server.Options{
			DefaultLimit: cfg.Engine.MaxResults,
			MaxLimit:     cfg.Server.MaxLimit,
			MaxPrefix:    cfg.Server.MaxPrefix,
			RateLimit:    cfg.Server.RateLimit,
			Burst:        cfg.Server.Burst,
		})
		log.Debugf("%s %s serving IPC (pid %d)", AppName, Version, os.Getpid())
		if err := srv.Start(ctx); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
}

// buildEngine loads the catalog and keywords and, when enabled, starts
// watching them. The returned func stops the watcher.
func buildEngine(ctx context.Context, cfg *config.Config) (*suggest.Engine, func()) {
	catalogPath, keywordsPath := cfg.Engine.CatalogPath, cfg.Engine.KeywordsPath
	if pr, err := utils.NewPathResolver(); err == nil {
		catalogPath = pr.ResolveDataFile(catalogPath)
		keywordsPath = pr.ResolveDataFile(keywordsPath)
	} else {
		log.Warnf("Failed to init path resolver: %v. Using paths as given.", err)
	}

	engine := suggest.NewEngine(cfg.Engine.MaxResults)
	engine.LoadSTLData(catalogPath)
	engine.LoadKeywords(keywordsPath)

	st := engine.Stats()
	if st.CatalogTypes == 0 {
		log.Warnf("No catalog loaded from %s, only keywords will be suggested", catalogPath)
	}
	log.Debug("engine ready", "types", st.CatalogTypes, "words", st.TrieWords)

	if !cfg.Engine.Watch {
		return engine, func() {}
	}

	w, err := catalog.NewWatcher()
	if err != nil {
		log.Warnf("File watching disabled: %v", err)
		return engine, func() {}
	}
	if err := w.Add(catalogPath, func() { engine.ReloadSTLData(catalogPath) }); err != nil {
		log.Warnf("Not watching catalog: %v", err)
	}
	if err := w.Add(keywordsPath, func() { engine.ReloadKeywords(keywordsPath) }); err != nil {
		log.Warnf("Not watching keywords: %v", err)
	}
	go w.Run(ctx)
	return engine, func() { w.Close() }
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ codeflow ] C++ STL completions", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}
