// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package storage persists play sessions in Redis so a game can be
// resumed after the client exits.  Each session is a hash of metadata
// plus a list of JSON board snapshots, one per confirmed step; the
// list is the on-disk form of the undo stack.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gomodule/redigo/redis"
)

// DefaultURL is used when neither configuration nor the REDIS_URL
// environment variable names a server.
const DefaultURL = "redis://localhost:6379/"

// keyPrefix namespaces every key this package writes.
const keyPrefix = "sudoku"

// ErrNotFound is returned when a looked-up session does not exist.
var ErrNotFound = errors.New("session not found")

// A Store is a pooled Redis connection for session persistence.
type Store struct {
	pool *redis.Pool
	log  *slog.Logger
}

// URL resolves the Redis URL from the argument, the REDIS_URL
// environment variable, or the default, in that order.
func URL(configured string) string {
	if configured != "" {
		return configured
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return DefaultURL
}

// Open connects to Redis at url and verifies the connection with a
// ping before returning.
func Open(url string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	pool := &redis.Pool{
		MaxIdle:     2,
		IdleTimeout: 4 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(url)
		},
		// Idle connections can go away without warning; ping before
		// reuse and let the pool replace the dead ones.
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	conn := pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("couldn't connect to session store at %q: %w", url, err)
	}

	log.Debug("session store connected", "url", url)
	return &Store{pool: pool, log: log}, nil
}

// Close releases the connection pool.
func (st *Store) Close() error {
	return st.pool.Close()
}

// sessionKey returns the metadata hash key for a session ID.
func sessionKey(sid string) string {
	return keyPrefix + ":SID:" + sid
}

// stepsKey returns the snapshot list key for a session ID.
func stepsKey(sid string) string {
	return sessionKey(sid) + ":Steps"
}
