// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// The clear-sessions command removes saved play sessions from the
// Redis store.  With no arguments it clears everything; with session
// IDs it clears just those.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/config"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/storage"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	store, err := storage.Open(storage.URL(cfg.Redis.URL), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	count, err := clear(store, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d session(s).\n", count)
}

// clear removes the named sessions, or every session when none are
// named, and returns how many were removed.
func clear(store *storage.Store, sids []string) (int, error) {
	if len(sids) == 0 {
		all, err := store.Sessions()
		if err != nil {
			return 0, err
		}
		sids = all
	}
	for i, sid := range sids {
		if err := store.RemoveSession(sid); err != nil {
			return i, err
		}
	}
	return len(sids), nil
}
