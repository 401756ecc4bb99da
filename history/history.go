// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package history keeps the undo/redo snapshot stacks for a puzzle
// session.  Every snapshot is a deep copy taken at push time, so a
// stored snapshot can never be altered by later changes to the live
// board.  Undo and redo are purely local replays of previously
// observed oracle states; they never make a network call, which makes
// them instantaneous and infallible.
package history

import (
	"errors"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
)

// Sentinel errors for empty stacks.  The caller surfaces these as
// informational notices, not failures.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// A Manager holds the two snapshot stacks, most-recent-last.  The
// zero value is ready to use.  A Manager is not safe for concurrent
// use; the session coordinator owns it and serializes access.
type Manager struct {
	undo []board.State
	redo []board.State
}

// Push records a deep copy of state on the undo stack and clears the
// redo stack: a new move after an undo starts a fresh lineage, and
// the old redo states can never be reached again.  Push is called
// with the pre-move state before the move is sent to the oracle, so
// the recorded snapshot is always a server-confirmed state.
func (m *Manager) Push(state board.State) {
	m.undo = append(m.undo, state.Copy())
	m.redo = nil
}

// Undo exchanges current for the most recent undo snapshot: current
// is deep-copied onto the redo stack and the popped snapshot is
// returned.  Returns ErrNothingToUndo when the undo stack is empty.
func (m *Manager) Undo(current board.State) (board.State, error) {
	if len(m.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	m.redo = append(m.redo, current.Copy())
	top := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	return top, nil
}

// Redo is the mirror of Undo, using the redo stack.
func (m *Manager) Redo(current board.State) (board.State, error) {
	if len(m.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	m.undo = append(m.undo, current.Copy())
	top := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	return top, nil
}

// Reset empties both stacks.  Used when a new puzzle is submitted.
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
}

// UndoLen returns the undo stack depth, for display.
func (m *Manager) UndoLen() int { return len(m.undo) }

// RedoLen returns the redo stack depth, for display.
func (m *Manager) RedoLen() int { return len(m.redo) }
