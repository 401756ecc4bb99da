// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package game coordinates user moves against the remote oracle.
//
// A Session owns the live board state and its undo/redo history, and
// runs every mutating action through the same transaction: snapshot
// the pre-move state, call the oracle, replace the state wholesale
// with the response, recheck completeness.  The session enforces a
// single-slot in-flight rule (a second mutating action while one is
// awaiting the oracle is rejected with ErrBusy) and tags every
// request with a generation number so a response that arrives after
// the session has moved on (for example after a new puzzle was
// started) is discarded rather than applied out of order.  The
// displayed state therefore always reflects the most recently
// initiated action's resolution.
//
// Failure never corrupts history: the snapshot pushed before a failed
// call stays on the undo stack, where it is still a valid
// server-confirmed state, and the live board is left untouched.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/history"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/oracle"
)

// AckDuration is how long the display layer keeps an applied move's
// cells highlighted.
const AckDuration = time.Second

var (
	// ErrBusy means a mutating call is already awaiting the oracle.
	ErrBusy = errors.New("another move is still waiting for the oracle")

	// ErrNotLoaded means no puzzle has been loaded yet.
	ErrNotLoaded = errors.New("no puzzle loaded")

	// ErrNoCandidates means the user targeted an unassigned cell
	// whose candidate set is empty.  Detected locally, no round
	// trip; informational rather than fatal.
	ErrNoCandidates = errors.New("cell has no candidates left; undo to continue")

	// ErrStale means the response was discarded because the session
	// moved on (a newer puzzle was started) before it arrived.
	ErrStale = errors.New("stale oracle response discarded")
)

// A MoveResult reports what a successful mutating action did.
type MoveResult struct {
	// State is the new live board (a copy safe to render).
	State board.State

	// Changed lists the cells the move altered, for the transient
	// acknowledgment highlight.
	Changed []board.CellRef

	// Contradictions lists unassigned cells left with no
	// candidates, reported explicitly rather than silently
	// rendering an empty cell.
	Contradictions []board.CellRef

	// Complete is the structural all-81-assigned check.
	Complete bool

	// Solved means complete and passing the oracle's strict check.
	// Complete && !Solved is the "complete but invalid" state.
	Solved bool

	// CheckMessage is the strict check's message when one ran.
	CheckMessage string
}

// A Session is the move coordinator for one puzzle.
//
// Methods are safe for concurrent use; the display layer issues
// oracle calls from background goroutines and the mutex plus the
// in-flight slot keep the state/history pair consistent.
type Session struct {
	mu      sync.Mutex
	oracle  oracle.Oracle
	advisor oracle.Advisor
	log     *slog.Logger

	state board.State
	hist  history.Manager

	inFlight   bool
	generation uint64

	startedAt time.Time
	solvedAt  time.Time
	solved    bool
}

// NewSession returns a session using orc for puzzle operations and
// adv for move proposals.  adv may be nil if proposals are not
// needed.
func NewSession(orc oracle.Oracle, adv oracle.Advisor, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{oracle: orc, advisor: adv, log: log}
}

// State returns a copy of the live board, or nil before Start.
func (s *Session) State() board.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	return s.state.Copy()
}

// Loaded reports whether a puzzle is in play.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil
}

// Busy reports whether a mutating call is awaiting the oracle.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// UndoLen returns the undo stack depth.
func (s *Session) UndoLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.UndoLen()
}

// RedoLen returns the redo stack depth.
func (s *Session) RedoLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.RedoLen()
}

// Solved reports whether the puzzle has been solved.
func (s *Session) Solved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solved
}

// Elapsed returns the play clock: time since Start, frozen at the
// moment the puzzle was solved.  Purely cosmetic; display ticks don't
// affect correctness.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	if s.solved {
		return s.solvedAt.Sub(s.startedAt)
	}
	return time.Since(s.startedAt)
}

// Start submits a new puzzle: load, then candidate computation.  On
// success the previous board and both history stacks are discarded
// and the play clock restarts.
//
// Start preempts rather than queues: it bumps the generation counter
// immediately, so a move still awaiting the oracle resolves as
// ErrStale instead of landing on the new puzzle.  Last request wins.
func (s *Session) Start(ctx context.Context, text string) (board.State, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	loaded, err := s.oracle.LoadPuzzle(ctx, text)
	var computed board.State
	if err == nil {
		computed, err = s.oracle.ComputeCandidates(ctx, loaded)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, ErrStale
	}
	if err != nil {
		s.log.Debug("puzzle load failed", "error", err)
		return nil, err
	}
	s.state = computed
	s.hist.Reset()
	s.solved = false
	s.startedAt = time.Now()
	s.log.Info("puzzle started", "cells", len(computed))
	return s.state.Copy(), nil
}

// Assign runs one assign transaction.
func (s *Session) Assign(ctx context.Context, ref board.CellRef, digit int) (MoveResult, error) {
	return s.mutate(ctx, ref, func(st board.State) (board.State, error) {
		return s.oracle.AssignDigit(ctx, st, ref, digit)
	})
}

// Eliminate runs one eliminate transaction.
func (s *Session) Eliminate(ctx context.Context, ref board.CellRef, digit int) (MoveResult, error) {
	return s.mutate(ctx, ref, func(st board.State) (board.State, error) {
		return s.oracle.EliminateDigit(ctx, st, ref, digit)
	})
}

// Scan asks the oracle to assign every single-candidate cell.
func (s *Session) Scan(ctx context.Context) (MoveResult, error) {
	return s.mutate(ctx, board.CellRef{}, func(st board.State) (board.State, error) {
		return s.oracle.ScanAndAssign(ctx, st)
	})
}

// mutate is the shared snapshot -> await -> replace transaction.
// target, when valid, is pre-checked locally so a hopeless click
// (contradicted cell) never costs a round trip or a snapshot.
func (s *Session) mutate(ctx context.Context, target board.CellRef, call func(board.State) (board.State, error)) (MoveResult, error) {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return MoveResult{}, ErrNotLoaded
	}
	if s.inFlight {
		s.mu.Unlock()
		return MoveResult{}, ErrBusy
	}
	if target.Valid() {
		if cell, ok := s.state[target]; ok && cell.Contradicted() {
			s.mu.Unlock()
			return MoveResult{}, fmt.Errorf("%s: %w", target, ErrNoCandidates)
		}
	}

	// Snapshotting: record the pre-move state, then occupy the
	// in-flight slot for the oracle round trip.
	s.hist.Push(s.state)
	s.inFlight = true
	gen := s.generation
	request := s.state.Copy()
	s.mu.Unlock()

	next, err := call(request)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if gen != s.generation {
		return MoveResult{}, ErrStale
	}
	if err != nil {
		// Failed: live state untouched, snapshot stays undoable.
		s.log.Debug("move rejected", "error", err)
		return MoveResult{}, err
	}

	changed := s.state.Diff(next)
	s.state = next
	result := MoveResult{
		State:          next.Copy(),
		Changed:        changed,
		Contradictions: board.HasContradiction(next),
		Complete:       board.IsComplete(next),
	}

	if result.Complete {
		check, cerr := s.oracle.CheckStrict(ctx, next)
		if cerr != nil {
			// the move itself applied; completeness just can't be
			// confirmed yet
			result.CheckMessage = fmt.Sprintf("strict check unavailable: %v", cerr)
		} else {
			result.Solved = check.Result
			result.CheckMessage = check.Message
			if check.Result && !s.solved {
				s.solved = true
				s.solvedAt = time.Now()
				s.log.Info("puzzle solved", "elapsed", s.solvedAt.Sub(s.startedAt))
			}
		}
	}
	return result, nil
}

// Undo replays the previous snapshot.  Purely local: no oracle call,
// cannot fail for network reasons.
func (s *Session) Undo() (board.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, ErrNotLoaded
	}
	if s.inFlight {
		return nil, ErrBusy
	}
	prev, err := s.hist.Undo(s.state)
	if err != nil {
		return nil, err
	}
	s.state = prev
	s.solved = false
	return s.state.Copy(), nil
}

// Redo replays the next snapshot.
func (s *Session) Redo() (board.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, ErrNotLoaded
	}
	if s.inFlight {
		return nil, ErrBusy
	}
	next, err := s.hist.Redo(s.state)
	if err != nil {
		return nil, err
	}
	s.state = next
	return s.state.Copy(), nil
}

// Propose asks the advisor for a next move.  Advisory only: the board
// is not changed, and no history snapshot is taken.
func (s *Session) Propose(ctx context.Context) (oracle.Proposal, error) {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return oracle.Proposal{}, ErrNotLoaded
	}
	if s.advisor == nil {
		s.mu.Unlock()
		return oracle.Proposal{}, errors.New("no advisor configured")
	}
	request := s.state.Copy()
	s.mu.Unlock()

	return s.advisor.ProposeNextMove(ctx, request)
}

// CheckStrict runs the oracle's strict check on the live board
// without mutating anything.
func (s *Session) CheckStrict(ctx context.Context) (oracle.CheckResult, error) {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return oracle.CheckResult{}, ErrNotLoaded
	}
	request := s.state.Copy()
	s.mu.Unlock()

	return s.oracle.CheckStrict(ctx, request)
}

// CheckCandidates runs the oracle's candidate-coverage check on the
// live board without mutating anything.
func (s *Session) CheckCandidates(ctx context.Context) (oracle.CheckResult, error) {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return oracle.CheckResult{}, ErrNotLoaded
	}
	request := s.state.Copy()
	s.mu.Unlock()

	return s.oracle.CheckCandidates(ctx, request)
}

// ExportJSON dumps the live board in the oracle's JSON shape.
func (s *Session) ExportJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, ErrNotLoaded
	}
	return s.state.ExportJSON()
}
