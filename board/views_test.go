// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blankState returns a loaded board with every cell unassigned and
// holding all nine candidates.
func blankState() State {
	s := make(State, CellCount)
	for _, ref := range AllRefs() {
		s[ref] = NewEmptyCell(1, 2, 3, 4, 5, 6, 7, 8, 9)
	}
	return s
}

func TestRelatedCellsCardinality(t *testing.T) {
	// the 21-member guarantee holds for every cell on the board
	for _, ref := range AllRefs() {
		related := RelatedCells(ref)
		require.Len(t, related, 21, "related cells of %s", ref)

		seen := make(map[CellRef]bool)
		foundSelf := false
		for _, r := range related {
			assert.False(t, seen[r], "duplicate %s in related cells of %s", r, ref)
			seen[r] = true
			if r == ref {
				foundSelf = true
			}
		}
		assert.True(t, foundSelf, "related cells of %s must include the cell itself", ref)
	}
}

func TestRelatedCellsMembership(t *testing.T) {
	related := RelatedCells(CellRef{Row: 4, Col: 1})
	members := make(map[CellRef]bool)
	for _, r := range related {
		members[r] = true
	}
	assert.True(t, members[CellRef{Row: 4, Col: 9}], "row peer")
	assert.True(t, members[CellRef{Row: 9, Col: 1}], "column peer")
	assert.True(t, members[CellRef{Row: 6, Col: 3}], "block peer")
	assert.False(t, members[CellRef{Row: 7, Col: 4}], "unrelated cell")
}

func TestRemainingCountConsistency(t *testing.T) {
	s := blankState()
	s[CellRef{Row: 1, Col: 1}] = NewFilledCell(5)
	s[CellRef{Row: 4, Col: 7}] = NewFilledCell(5)
	s[CellRef{Row: 9, Col: 9}] = NewFilledCell(1)

	for digit := 1; digit <= 9; digit++ {
		count := RemainingCount(s, digit)
		assert.Equal(t, 9-len(SameDigitCells(s, digit)), count, "digit %d", digit)
		assert.GreaterOrEqual(t, count, 0)
		assert.LessOrEqual(t, count, 9)
	}
	assert.Equal(t, 7, RemainingCount(s, 5))
	assert.Equal(t, 8, RemainingCount(s, 1))
	assert.Equal(t, 9, RemainingCount(s, 2))
}

func TestRemainingCountsOmitsPlacedDigits(t *testing.T) {
	s := blankState()
	// place all nine 3s, one per row/col/block position is irrelevant here
	cols := []int{1, 4, 7, 2, 5, 8, 3, 6, 9}
	for row := 1; row <= 9; row++ {
		s[CellRef{Row: row, Col: cols[row-1]}] = NewFilledCell(3)
	}
	counts := RemainingCounts(s)
	_, present := counts[3]
	assert.False(t, present, "fully placed digit must be omitted")
	assert.Equal(t, 9, counts[1])
	assert.Len(t, counts, 8)
}

func TestSameDigitCellsOrder(t *testing.T) {
	s := blankState()
	s[CellRef{Row: 5, Col: 2}] = NewFilledCell(8)
	s[CellRef{Row: 1, Col: 9}] = NewFilledCell(8)

	refs := SameDigitCells(s, 8)
	require.Len(t, refs, 2)
	assert.Equal(t, CellRef{Row: 1, Col: 9}, refs[0])
	assert.Equal(t, CellRef{Row: 5, Col: 2}, refs[1])
}

func TestIsComplete(t *testing.T) {
	assert.False(t, IsComplete(State{}), "unloaded state is not complete")
	assert.False(t, IsComplete(blankState()))

	s := make(State, CellCount)
	for _, ref := range AllRefs() {
		s[ref] = NewFilledCell(1) // complete but wildly invalid
	}
	assert.True(t, IsComplete(s), "completeness is structural, not validity")

	partial := s.Copy()
	partial[CellRef{Row: 3, Col: 3}] = NewEmptyCell(2)
	assert.False(t, IsComplete(partial))
}

func TestHasContradiction(t *testing.T) {
	s := blankState()
	assert.Empty(t, HasContradiction(s))

	ref := CellRef{Row: 7, Col: 2}
	s[ref] = NewEmptyCell()
	assert.Equal(t, []CellRef{ref}, HasContradiction(s))
}

func TestUnitCells(t *testing.T) {
	row, err := UnitCells("R4")
	require.NoError(t, err)
	require.Len(t, row, 9)
	assert.Equal(t, CellRef{Row: 4, Col: 1}, row[0])
	assert.Equal(t, CellRef{Row: 4, Col: 9}, row[8])

	col, err := UnitCells("C7")
	require.NoError(t, err)
	require.Len(t, col, 9)
	assert.Equal(t, CellRef{Row: 1, Col: 7}, col[0])
	assert.Equal(t, CellRef{Row: 9, Col: 7}, col[8])

	block, err := UnitCells("B5")
	require.NoError(t, err)
	require.Len(t, block, 9)
	assert.Equal(t, CellRef{Row: 4, Col: 4}, block[0])
	assert.Equal(t, CellRef{Row: 6, Col: 6}, block[8])

	for _, bad := range []string{"", "R", "R0", "R10", "X3", "B"} {
		_, err := UnitCells(bad)
		assert.Error(t, err, bad)
	}
}
