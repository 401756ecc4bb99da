// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
)

// A Record tracks one persisted play session.  The metadata fields
// live in a Redis hash; the board snapshots live in a parallel list,
// serialized as JSON, so prior steps can be replayed after a resume.
type Record struct {
	SID     string // session ID
	Puzzle  string // catalog name or "custom"
	Step    int    // current step, 1 is the freshly loaded board
	Created string // RFC3339 time when the session was created
	Saved   string // RFC3339 time when the session was last saved
}

// NewRecord returns a record for a brand new session.
func NewRecord(puzzleName string) Record {
	now := time.Now().Format(time.RFC3339)
	return Record{
		SID:     uuid.NewString(),
		Puzzle:  puzzleName,
		Step:    1,
		Created: now,
		Saved:   now,
	}
}

// StartSession writes a fresh session: metadata hash, and a step list
// holding only the starting board.  Any prior steps under the same
// SID are discarded.
func (st *Store) StartSession(rec *Record, s board.State) error {
	snapshot, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding step snapshot: %w", err)
	}
	rec.Step = 1
	rec.Saved = time.Now().Format(time.RFC3339)

	conn := st.pool.Get()
	defer conn.Close()
	conn.Send("HMSET", redis.Args{}.Add(sessionKey(rec.SID)).AddFlat(rec)...)
	conn.Send("DEL", stepsKey(rec.SID))
	if _, err := conn.Do("RPUSH", stepsKey(rec.SID), snapshot); err != nil {
		return fmt.Errorf("saving session %q: %w", rec.SID, err)
	}
	st.log.Info("session started", "sid", rec.SID, "puzzle", rec.Puzzle)
	return nil
}

// AddStep appends the board reached by a confirmed move and advances
// the step counter.
func (st *Store) AddStep(rec *Record, s board.State) error {
	snapshot, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding step snapshot: %w", err)
	}
	rec.Step++
	rec.Saved = time.Now().Format(time.RFC3339)

	conn := st.pool.Get()
	defer conn.Close()
	conn.Send("HMSET", redis.Args{}.Add(sessionKey(rec.SID)).AddFlat(rec)...)
	if _, err := conn.Do("RPUSH", stepsKey(rec.SID), snapshot); err != nil {
		return fmt.Errorf("saving step %d of session %q: %w", rec.Step, rec.SID, err)
	}
	return nil
}

// RemoveStep drops the last snapshot and returns the board of the
// step before it.  Removing the only step is a no-op that returns the
// starting board.
func (st *Store) RemoveStep(rec *Record) (board.State, error) {
	conn := st.pool.Get()
	defer conn.Close()

	if rec.Step > 1 {
		rec.Step--
		rec.Saved = time.Now().Format(time.RFC3339)
		conn.Send("HMSET", redis.Args{}.Add(sessionKey(rec.SID)).AddFlat(rec)...)
		conn.Send("LTRIM", stepsKey(rec.SID), 0, -2)
	}
	snapshot, err := redis.Bytes(conn.Do("LINDEX", stepsKey(rec.SID), -1))
	if err != nil {
		return nil, fmt.Errorf("reverting session %q to step %d: %w", rec.SID, rec.Step, err)
	}
	return decodeSnapshot(snapshot)
}

// Lookup fetches the metadata for a session ID.  A missing session is
// ErrNotFound, not a hard failure.
func (st *Store) Lookup(sid string) (Record, error) {
	conn := st.pool.Get()
	defer conn.Close()

	vals, err := redis.Values(conn.Do("HGETALL", sessionKey(sid)))
	if err != nil {
		return Record{}, fmt.Errorf("looking up session %q: %w", sid, err)
	}
	if len(vals) == 0 {
		return Record{}, fmt.Errorf("session %q: %w", sid, ErrNotFound)
	}
	var rec Record
	if err := redis.ScanStruct(vals, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing saved session %q: %w", sid, err)
	}
	return rec, nil
}

// LoadStep returns the board of the session's current step.
func (st *Store) LoadStep(rec Record) (board.State, error) {
	conn := st.pool.Get()
	defer conn.Close()

	snapshot, err := redis.Bytes(conn.Do("LINDEX", stepsKey(rec.SID), -1))
	if err != nil {
		return nil, fmt.Errorf("loading step %d of session %q: %w", rec.Step, rec.SID, err)
	}
	return decodeSnapshot(snapshot)
}

// RemoveSession deletes a session's metadata and snapshots.
func (st *Store) RemoveSession(sid string) error {
	conn := st.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("DEL", sessionKey(sid), stepsKey(sid)); err != nil {
		return fmt.Errorf("removing session %q: %w", sid, err)
	}
	st.log.Info("session removed", "sid", sid)
	return nil
}

// Sessions lists the IDs of every stored session.
func (st *Store) Sessions() ([]string, error) {
	conn := st.pool.Get()
	defer conn.Close()

	var sids []string
	cursor := 0
	for {
		vals, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", keyPrefix+":SID:*"))
		if err != nil {
			return nil, fmt.Errorf("scanning sessions: %w", err)
		}
		var keys []string
		if _, err := redis.Scan(vals, &cursor, &keys); err != nil {
			return nil, fmt.Errorf("scanning sessions: %w", err)
		}
		for _, key := range keys {
			// skip the step lists; they share the prefix
			if len(key) > 6 && key[len(key)-6:] == ":Steps" {
				continue
			}
			sids = append(sids, key[len(sessionKey("")):])
		}
		if cursor == 0 {
			return sids, nil
		}
	}
}

// decodeSnapshot rebuilds a board from its stored JSON.
func decodeSnapshot(snapshot []byte) (board.State, error) {
	var s board.State
	if err := json.Unmarshal(snapshot, &s); err != nil {
		return nil, fmt.Errorf("parsing saved step snapshot: %w", err)
	}
	return s, nil
}
