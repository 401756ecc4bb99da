// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellRef(t *testing.T) {
	good := map[string]CellRef{
		"R1C1": {Row: 1, Col: 1},
		"R9C9": {Row: 9, Col: 9},
		"R4C7": {Row: 4, Col: 7},
	}
	for in, want := range good {
		ref, err := ParseCellRef(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, ref, in)
		assert.Equal(t, in, ref.String())
	}

	bad := []string{"", "R1", "C1", "R0C1", "R1C0", "R10C1", "R1C10", "r1c1", "R01C1", "R1C1 ", "R1C1x", "B3"}
	for _, in := range bad {
		_, err := ParseCellRef(in)
		assert.Error(t, err, in)
	}
}

func TestCellRefBlock(t *testing.T) {
	assert.Equal(t, 1, CellRef{Row: 1, Col: 1}.Block())
	assert.Equal(t, 3, CellRef{Row: 2, Col: 9}.Block())
	assert.Equal(t, 5, CellRef{Row: 5, Col: 5}.Block())
	assert.Equal(t, 9, CellRef{Row: 9, Col: 9}.Block())
}

func TestCellJSONShape(t *testing.T) {
	filled, err := json.Marshal(NewFilledCell(4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 4, "candidates": []}`, string(filled))

	empty, err := json.Marshal(NewEmptyCell(9, 1, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": null, "candidates": [1, 5, 9]}`, string(empty))
}

func TestStateJSONRoundTrip(t *testing.T) {
	s := State{
		CellRef{Row: 1, Col: 1}: NewFilledCell(4),
		CellRef{Row: 1, Col: 2}: NewEmptyCell(1, 2, 3),
	}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, s.Equal(back))
}

func TestStateCopyIsDeep(t *testing.T) {
	ref := CellRef{Row: 2, Col: 3}
	s := State{ref: NewEmptyCell(1, 2, 3)}
	snap := s.Copy()
	require.True(t, s.Equal(snap))

	// mutate the original; the copy must not move
	cell := s[ref]
	cell.Candidates[0] = 9
	s[ref] = NewFilledCell(5)

	got := snap[ref]
	assert.Nil(t, got.Value)
	assert.Equal(t, []int{1, 2, 3}, got.Candidates)
}

func TestStateEqual(t *testing.T) {
	a := State{CellRef{Row: 1, Col: 1}: NewFilledCell(4)}
	b := State{CellRef{Row: 1, Col: 1}: NewFilledCell(4)}
	c := State{CellRef{Row: 1, Col: 1}: NewFilledCell(5)}
	d := State{CellRef{Row: 1, Col: 1}: NewEmptyCell(4)}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(State{}))
}

func TestStateDiff(t *testing.T) {
	r1, r2 := CellRef{Row: 1, Col: 1}, CellRef{Row: 5, Col: 5}
	before := State{r1: NewEmptyCell(1, 2), r2: NewFilledCell(7)}
	after := before.Copy()
	after[r1] = NewFilledCell(1)

	assert.Equal(t, []CellRef{r1}, before.Diff(after))
	assert.Empty(t, before.Diff(before.Copy()))
}

func TestAllRefs(t *testing.T) {
	refs := AllRefs()
	require.Len(t, refs, CellCount)
	assert.Equal(t, CellRef{Row: 1, Col: 1}, refs[0])
	assert.Equal(t, CellRef{Row: 1, Col: 9}, refs[8])
	assert.Equal(t, CellRef{Row: 9, Col: 9}, refs[80])
}
