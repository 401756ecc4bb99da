// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package board

import (
	"fmt"
	"strconv"
	"strings"
)

/*

Derived views

These are stateless functions over a State used by the display layer.
None of them consult the oracle and none of them mutate anything.

*/

// RemainingCount returns how many of the given digit are still to be
// placed: 9 minus the number of cells assigned that digit.
func RemainingCount(s State, digit int) int {
	return SideLength - len(SameDigitCells(s, digit))
}

// RemainingCounts returns the remaining count for every digit that is
// not yet fully placed.  Digits with a remaining count of zero are
// omitted, matching the remaining-digit display.
func RemainingCounts(s State) map[int]int {
	out := make(map[int]int)
	for digit := 1; digit <= SideLength; digit++ {
		if n := RemainingCount(s, digit); n > 0 {
			out[digit] = n
		}
	}
	return out
}

// SameDigitCells returns the references of all cells assigned the
// given digit, in reading order.
func SameDigitCells(s State, digit int) []CellRef {
	var refs []CellRef
	for _, ref := range AllRefs() {
		if cell, ok := s[ref]; ok && cell.Value != nil && *cell.Value == digit {
			refs = append(refs, ref)
		}
	}
	return refs
}

// RelatedCells returns the union of ref's row, column and 3x3 block,
// in reading order.  The union always has exactly 21 members: the
// row and column overlap in ref itself, and the block shares three
// cells with each of them.
func RelatedCells(ref CellRef) []CellRef {
	seen := make(map[CellRef]bool, 21)
	for col := 1; col <= SideLength; col++ {
		seen[CellRef{Row: ref.Row, Col: col}] = true
	}
	for row := 1; row <= SideLength; row++ {
		seen[CellRef{Row: row, Col: ref.Col}] = true
	}
	rowStart := ((ref.Row - 1) / BlockSide) * BlockSide
	colStart := ((ref.Col - 1) / BlockSide) * BlockSide
	for r := rowStart + 1; r <= rowStart+BlockSide; r++ {
		for c := colStart + 1; c <= colStart+BlockSide; c++ {
			seen[CellRef{Row: r, Col: c}] = true
		}
	}
	refs := make([]CellRef, 0, len(seen))
	for _, r := range AllRefs() {
		if seen[r] {
			refs = append(refs, r)
		}
	}
	return refs
}

// IsComplete reports whether all 81 cells have an assigned value.
// This is a structural check only: a complete board is not
// necessarily a correct one.  Correctness is the oracle's strict
// check to decide.
func IsComplete(s State) bool {
	if !s.Loaded() {
		return false
	}
	for _, cell := range s {
		if cell.Value == nil {
			return false
		}
	}
	return true
}

// HasContradiction returns the references of unassigned cells whose
// candidate sets are empty, in reading order.
func HasContradiction(s State) []CellRef {
	var refs []CellRef
	for _, ref := range AllRefs() {
		if cell, ok := s[ref]; ok && cell.Contradicted() {
			refs = append(refs, ref)
		}
	}
	return refs
}

/*

Units

Unit references ("R4", "C7", "B2") come from the oracle's getUnit
operation.  The client parses them locally only to know which cells a
unit covers; the cell contents still come from the oracle.

*/

// UnitCells returns the nine references covered by a unit reference:
// "R{n}" for a row, "C{n}" for a column, "B{n}" for a 3x3 block
// (blocks are numbered 1-9 left-to-right, top-to-bottom).
func UnitCells(unit string) ([]CellRef, error) {
	if len(unit) < 2 {
		return nil, fmt.Errorf("invalid unit reference %q", unit)
	}
	index, err := strconv.Atoi(unit[1:])
	if err != nil || index < 1 || index > SideLength {
		return nil, fmt.Errorf("invalid unit reference %q", unit)
	}
	refs := make([]CellRef, 0, SideLength)
	switch strings.ToUpper(unit[:1]) {
	case "R":
		for col := 1; col <= SideLength; col++ {
			refs = append(refs, CellRef{Row: index, Col: col})
		}
	case "C":
		for row := 1; row <= SideLength; row++ {
			refs = append(refs, CellRef{Row: row, Col: index})
		}
	case "B":
		rowStart := ((index - 1) / BlockSide) * BlockSide
		colStart := ((index - 1) % BlockSide) * BlockSide
		for r := rowStart + 1; r <= rowStart+BlockSide; r++ {
			for c := colStart + 1; c <= colStart+BlockSide; c++ {
				refs = append(refs, CellRef{Row: r, Col: c})
			}
		}
	default:
		return nil, fmt.Errorf("unit reference must start with 'R', 'C', or 'B': %q", unit)
	}
	return refs, nil
}
