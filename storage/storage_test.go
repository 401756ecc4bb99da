// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
)

func TestPuzzleNames(t *testing.T) {
	names := PuzzleNames()
	require.Len(t, names, 6)
	assert.Equal(t, "standard-1", names[0])
	assert.IsIncreasing(t, names)
}

func TestPuzzleText(t *testing.T) {
	text, err := PuzzleText("standard-1")
	require.NoError(t, err)

	rows := strings.Split(text, "\n")
	require.Len(t, rows, 9)
	assert.Equal(t, "4 _ _ _ _ 3 5 _ 2", rows[0])
	assert.Equal(t, "5 _ 2 9 _ _ _ _ 6", rows[8])
}

func TestPuzzleTextDefaultAlias(t *testing.T) {
	byAlias, err := PuzzleText("default")
	require.NoError(t, err)
	byName, err := PuzzleText(DefaultPuzzleName)
	require.NoError(t, err)
	assert.Equal(t, byName, byAlias)

	_, err = PuzzleText("standard-99")
	assert.Error(t, err)
}

// testStore connects to a local Redis, skipping the test when none is
// reachable.
func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(URL(""), nil)
	if err != nil {
		t.Skipf("no session store available: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testBoard(digit int) board.State {
	s := board.State{}
	for _, ref := range board.AllRefs() {
		s[ref] = board.NewEmptyCell(1, 2, 3)
	}
	s[board.CellRef{Row: 1, Col: 1}] = board.NewFilledCell(digit)
	return s
}

func TestSessionLifecycle(t *testing.T) {
	st := testStore(t)

	rec := NewRecord("standard-1")
	t.Cleanup(func() { st.RemoveSession(rec.SID) })

	require.NoError(t, st.StartSession(&rec, testBoard(1)))
	require.NoError(t, st.AddStep(&rec, testBoard(2)))
	require.NoError(t, st.AddStep(&rec, testBoard(3)))
	assert.Equal(t, 3, rec.Step)

	found, err := st.Lookup(rec.SID)
	require.NoError(t, err)
	assert.Equal(t, rec.SID, found.SID)
	assert.Equal(t, "standard-1", found.Puzzle)
	assert.Equal(t, 3, found.Step)

	current, err := st.LoadStep(found)
	require.NoError(t, err)
	assert.True(t, testBoard(3).Equal(current))

	reverted, err := st.RemoveStep(&rec)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Step)
	assert.True(t, testBoard(2).Equal(reverted))
}

func TestRemoveStepAtStart(t *testing.T) {
	st := testStore(t)

	rec := NewRecord("standard-2")
	t.Cleanup(func() { st.RemoveSession(rec.SID) })
	require.NoError(t, st.StartSession(&rec, testBoard(5)))

	// removing with only the starting board keeps it
	s, err := st.RemoveStep(&rec)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Step)
	assert.True(t, testBoard(5).Equal(s))
}

func TestStartSessionResetsSteps(t *testing.T) {
	st := testStore(t)

	rec := NewRecord("standard-3")
	t.Cleanup(func() { st.RemoveSession(rec.SID) })
	require.NoError(t, st.StartSession(&rec, testBoard(1)))
	require.NoError(t, st.AddStep(&rec, testBoard(2)))

	require.NoError(t, st.StartSession(&rec, testBoard(7)))
	assert.Equal(t, 1, rec.Step)

	current, err := st.LoadStep(rec)
	require.NoError(t, err)
	assert.True(t, testBoard(7).Equal(current))
}

func TestLookupMissingSession(t *testing.T) {
	st := testStore(t)

	_, err := st.Lookup("no-such-session")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSessionsListing(t *testing.T) {
	st := testStore(t)

	rec := NewRecord("standard-4")
	t.Cleanup(func() { st.RemoveSession(rec.SID) })
	require.NoError(t, st.StartSession(&rec, testBoard(9)))

	sids, err := st.Sessions()
	require.NoError(t, err)
	assert.Contains(t, sids, rec.SID)

	require.NoError(t, st.RemoveSession(rec.SID))
	sids, err = st.Sessions()
	require.NoError(t, err)
	assert.NotContains(t, sids, rec.SID)
}
