// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package oracle defines the typed boundary to the external puzzle
// oracle and move advisor, plus two implementations: an HTTP client
// for the real microservice and an in-memory implementation for
// offline play and tests.
//
// The oracle owns all Sudoku semantics.  The client never computes a
// cell's value or candidates itself; every mutating call returns the
// oracle's recomputed full state, which replaces the client's state
// wholesale.  Each call is a single request/response pair with no
// retries and no local fallback: if the oracle is unreachable or
// rejects the request, the operation fails and the caller surfaces
// the error without touching state or history.
package oracle

import (
	"context"
	"fmt"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
)

// Oracle is the capability interface for puzzle operations.  The
// implementations built into this package are Client (HTTP) and
// Memory (local).
type Oracle interface {
	// LoadPuzzle parses raw puzzle text into a board skeleton with
	// no candidates computed.  The text is either 9 rows of 9
	// digit-or-blank tokens, or a JSON dump previously exported by
	// the client.
	LoadPuzzle(ctx context.Context, text string) (board.State, error)

	// ComputeCandidates fills in the candidate sets of all
	// unassigned cells.
	ComputeCandidates(ctx context.Context, s board.State) (board.State, error)

	// AssignDigit sets one cell's value and returns the recomputed
	// full state, including cascading candidate updates.
	AssignDigit(ctx context.Context, s board.State, ref board.CellRef, digit int) (board.State, error)

	// EliminateDigit removes one digit from one cell's candidate set
	// and returns the recomputed full state.
	EliminateDigit(ctx context.Context, s board.State, ref board.CellRef, digit int) (board.State, error)

	// ScanAndAssign repeatedly assigns every cell that is down to a
	// single candidate and returns the resulting state.
	ScanAndAssign(ctx context.Context, s board.State) (board.State, error)

	// GetUnit returns the cells of one unit ("R4", "C7", "B2").
	GetUnit(ctx context.Context, s board.State, unit string) (board.State, error)

	// CheckStrict validates that no solved digit repeats within any
	// unit.  Callers run it on structurally complete boards to
	// distinguish "solved" from "complete but invalid".
	CheckStrict(ctx context.Context, s board.State) (CheckResult, error)

	// CheckCandidates validates that every missing digit of every
	// unit still appears in some candidate set of that unit.
	CheckCandidates(ctx context.Context, s board.State) (CheckResult, error)
}

// Advisor proposes a next move with explanatory reasoning.  Advisory
// only: a proposal never mutates board state, it only informs the
// user.
type Advisor interface {
	ProposeNextMove(ctx context.Context, s board.State) (Proposal, error)
}

// CheckResult is the oracle's answer to a consistency check.
type CheckResult struct {
	Result  bool   `json:"result"`
	Message string `json:"message,omitempty"`
}

// Step actions.
const (
	ActionAssign    = "assign"
	ActionEliminate = "eliminate"
)

// A Step is one cell action within a proposal.
type Step struct {
	Cell   string `json:"cell"`
	Action string `json:"action"`
	Digit  int    `json:"digit"`
}

// A Proposal is the advisor's suggested next move: the solving
// technique it used, its reasoning in free text, and the ordered
// steps that carry the technique out.
type Proposal struct {
	Strategy  string `json:"strategy"`
	Reasoning string `json:"reasoning"`
	Steps     []Step `json:"steps"`
}

// A RemoteError is a non-success response from the oracle service.
// Detail is the server's human-readable message, surfaced verbatim.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("oracle returned status %d", e.Status)
}
