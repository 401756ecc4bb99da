// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package game

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/history"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/oracle"
)

var solution = [9][9]int{
	{4, 1, 7, 3, 6, 9, 8, 2, 5},
	{6, 3, 2, 1, 5, 8, 9, 4, 7},
	{9, 5, 8, 7, 2, 4, 3, 1, 6},
	{8, 2, 5, 4, 3, 7, 1, 6, 9},
	{7, 9, 1, 5, 8, 6, 4, 3, 2},
	{3, 4, 6, 9, 1, 2, 7, 5, 8},
	{2, 8, 9, 6, 4, 3, 5, 7, 1},
	{5, 7, 3, 2, 9, 1, 6, 8, 4},
	{1, 6, 4, 8, 7, 5, 2, 9, 3},
}

func ref(row, col int) board.CellRef {
	return board.CellRef{Row: row, Col: col}
}

// puzzleText renders the solved grid with the given cells blanked.
func puzzleText(blanks ...board.CellRef) string {
	blanked := map[board.CellRef]bool{}
	for _, b := range blanks {
		blanked[b] = true
	}
	var rows []string
	for r := 1; r <= 9; r++ {
		var tokens []string
		for c := 1; c <= 9; c++ {
			if blanked[ref(r, c)] {
				tokens = append(tokens, "_")
			} else {
				tokens = append(tokens, fmt.Sprintf("%d", solution[r-1][c-1]))
			}
		}
		rows = append(rows, strings.Join(tokens, " "))
	}
	return strings.Join(rows, "\n")
}

func newTestSession(t *testing.T, blanks ...board.CellRef) *Session {
	t.Helper()
	mem := oracle.NewMemory()
	sess := NewSession(mem, mem, nil)
	_, err := sess.Start(context.Background(), puzzleText(blanks...))
	require.NoError(t, err)
	return sess
}

func TestStartComputesCandidates(t *testing.T) {
	sess := newTestSession(t, ref(1, 1))

	s := sess.State()
	require.True(t, sess.Loaded())
	cell, ok := s.Cell(ref(1, 1))
	require.True(t, ok)
	assert.Nil(t, cell.Value)
	assert.Equal(t, []int{4}, cell.Candidates, "every peer digit is placed, only 4 remains")
	assert.Equal(t, 0, sess.UndoLen())
	assert.Equal(t, 0, sess.RedoLen())
}

func TestAssignUndoRedoRoundTrip(t *testing.T) {
	sess := newTestSession(t, ref(1, 1), ref(9, 9))
	before := sess.State()

	res, err := sess.Assign(context.Background(), ref(1, 1), 4)
	require.NoError(t, err)
	assert.False(t, res.Complete)
	assert.Contains(t, res.Changed, ref(1, 1))
	assert.False(t, before.Equal(res.State))

	after, err := sess.Undo()
	require.NoError(t, err)
	assert.True(t, before.Equal(after), "undo restores the exact pre-move state")
	assert.Equal(t, 1, sess.RedoLen())

	redone, err := sess.Redo()
	require.NoError(t, err)
	assert.True(t, res.State.Equal(redone))
}

func TestFailedMoveLeavesStateAndHistoryUsable(t *testing.T) {
	sess := newTestSession(t, ref(1, 1), ref(9, 9))
	before := sess.State()

	_, err := sess.Assign(context.Background(), ref(1, 1), 9)
	require.Error(t, err, "9 is not a candidate for R1C1")
	assert.True(t, before.Equal(sess.State()), "rejected moves never change the board")

	// The pre-move snapshot stays on the undo stack.  It is identical
	// to the live state, so undoing it is a harmless no-op replay.
	require.Equal(t, 1, sess.UndoLen())
	after, err := sess.Undo()
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestNewMoveInvalidatesRedo(t *testing.T) {
	sess := newTestSession(t, ref(1, 1), ref(9, 9))

	_, err := sess.Assign(context.Background(), ref(1, 1), 4)
	require.NoError(t, err)
	_, err = sess.Undo()
	require.NoError(t, err)
	require.Equal(t, 1, sess.RedoLen())

	_, err = sess.Assign(context.Background(), ref(9, 9), 3)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.RedoLen(), "a new move after undo abandons the redo branch")
}

func TestScanSolvesAndStopsClock(t *testing.T) {
	sess := newTestSession(t, ref(1, 1), ref(9, 9))

	res, err := sess.Scan(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.True(t, res.Solved)
	assert.NotEmpty(t, res.CheckMessage)
	assert.True(t, sess.Solved())

	frozen := sess.Elapsed()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, sess.Elapsed(), "the play clock stops at the solve")
}

func TestAssignLastCellReportsSolved(t *testing.T) {
	sess := newTestSession(t, ref(1, 1))

	res, err := sess.Assign(context.Background(), ref(1, 1), 4)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.True(t, res.Solved)
}

func TestUndoReopensSolvedPuzzle(t *testing.T) {
	sess := newTestSession(t, ref(1, 1))

	_, err := sess.Assign(context.Background(), ref(1, 1), 4)
	require.NoError(t, err)
	require.True(t, sess.Solved())

	_, err = sess.Undo()
	require.NoError(t, err)
	assert.False(t, sess.Solved())
}

func TestContradictionReportedAndBlockedLocally(t *testing.T) {
	sess := newTestSession(t, ref(1, 1))

	res, err := sess.Eliminate(context.Background(), ref(1, 1), 4)
	require.NoError(t, err)
	assert.Equal(t, []board.CellRef{ref(1, 1)}, res.Contradictions)

	// Further moves on the dead cell are refused without a round trip
	// and without touching history.
	depth := sess.UndoLen()
	_, err = sess.Assign(context.Background(), ref(1, 1), 4)
	require.ErrorIs(t, err, ErrNoCandidates)
	assert.Equal(t, depth, sess.UndoLen())

	recovered, err := sess.Undo()
	require.NoError(t, err)
	cell, _ := recovered.Cell(ref(1, 1))
	assert.Equal(t, []int{4}, cell.Candidates)
}

func TestProposeIsAdvisoryOnly(t *testing.T) {
	sess := newTestSession(t, ref(1, 1))
	before := sess.State()

	p, err := sess.Propose(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, p.Steps)
	assert.Equal(t, "R1C1", p.Steps[0].Cell)
	assert.Equal(t, oracle.ActionAssign, p.Steps[0].Action)
	assert.Equal(t, 4, p.Steps[0].Digit)

	assert.True(t, before.Equal(sess.State()), "proposals never touch the board")
	assert.Equal(t, 0, sess.UndoLen())
}

func TestProposeWithoutAdvisor(t *testing.T) {
	sess := NewSession(oracle.NewMemory(), nil, nil)
	_, err := sess.Start(context.Background(), puzzleText(ref(1, 1)))
	require.NoError(t, err)

	_, err = sess.Propose(context.Background())
	assert.Error(t, err)
}

func TestNotLoadedErrors(t *testing.T) {
	sess := NewSession(oracle.NewMemory(), nil, nil)

	_, err := sess.Assign(context.Background(), ref(1, 1), 4)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = sess.Undo()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = sess.ExportJSON()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, sess.State())
	assert.Zero(t, sess.Elapsed())
}

func TestUndoRedoEmptyStacks(t *testing.T) {
	sess := newTestSession(t, ref(1, 1))

	_, err := sess.Undo()
	assert.ErrorIs(t, err, history.ErrNothingToUndo)
	_, err = sess.Redo()
	assert.ErrorIs(t, err, history.ErrNothingToRedo)
}

// slowOracle parks AssignDigit until released so tests can observe the
// in-flight window.
type slowOracle struct {
	*oracle.Memory
	entered chan struct{}
	release chan struct{}
}

func newSlowOracle() *slowOracle {
	return &slowOracle{
		Memory:  oracle.NewMemory(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (o *slowOracle) AssignDigit(ctx context.Context, s board.State, cell board.CellRef, digit int) (board.State, error) {
	o.entered <- struct{}{}
	<-o.release
	return o.Memory.AssignDigit(ctx, s, cell, digit)
}

func TestSecondMoveDuringFlightIsRejected(t *testing.T) {
	slow := newSlowOracle()
	sess := NewSession(slow, nil, nil)
	_, err := sess.Start(context.Background(), puzzleText(ref(1, 1), ref(9, 9)))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Assign(context.Background(), ref(1, 1), 4)
		done <- err
	}()
	<-slow.entered
	require.True(t, sess.Busy())

	_, err = sess.Assign(context.Background(), ref(9, 9), 3)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = sess.Undo()
	assert.ErrorIs(t, err, ErrBusy)
	_, err = sess.Redo()
	assert.ErrorIs(t, err, ErrBusy)

	close(slow.release)
	require.NoError(t, <-done)
	assert.False(t, sess.Busy())
}

func TestStartPreemptsPendingMove(t *testing.T) {
	slow := newSlowOracle()
	sess := NewSession(slow, nil, nil)
	_, err := sess.Start(context.Background(), puzzleText(ref(1, 1), ref(9, 9)))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Assign(context.Background(), ref(1, 1), 4)
		done <- err
	}()
	<-slow.entered

	// A fresh puzzle supersedes the pending move.
	fresh, err := sess.Start(context.Background(), puzzleText(ref(5, 5)))
	require.NoError(t, err)

	close(slow.release)
	assert.ErrorIs(t, <-done, ErrStale)

	assert.True(t, fresh.Equal(sess.State()), "the stale response never lands")
	assert.Equal(t, 0, sess.UndoLen())
	assert.Equal(t, 0, sess.RedoLen())
}
