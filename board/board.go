// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package board provides the client-side model of a Sudoku puzzle.
//
// In this package a puzzle is a mapping from cell references (of the
// form "R3C7", 1-indexed) to cells.  A cell either has an assigned
// value between 1 and 9, or a set of candidate values it might still
// take.  The client never computes values or candidates itself: the
// remote oracle is the sole source of truth, and every mutating call
// replaces the whole State wholesale.  What this package offers is
// storage, deep copying for history snapshots, structural equality
// for tests, derived views for display, and export renderings.
package board

import (
	"fmt"
	"sort"
)

// SideLength is the side of the board.  The oracle protocol is fixed
// at classic 9x9 Sudoku, so unlike a general puzzle library there is
// no geometry registry here.
const SideLength = 9

// BlockSide is the side of a 3x3 block.
const BlockSide = 3

// CellCount is the number of cells in a loaded puzzle.
const CellCount = SideLength * SideLength

/*

Cell references

*/

// A CellRef names one of the 81 board positions.  Row and Col are
// 1-indexed.  The wire form is "R{row}C{col}" with no leading zeros;
// this form is load-bearing, since it is the key format of the JSON
// puzzle object exchanged with the oracle.
type CellRef struct {
	Row int
	Col int
}

// String returns the wire form of the reference.
func (r CellRef) String() string {
	return fmt.Sprintf("R%dC%d", r.Row, r.Col)
}

// Valid reports whether the reference is on the board.
func (r CellRef) Valid() bool {
	return r.Row >= 1 && r.Row <= SideLength && r.Col >= 1 && r.Col <= SideLength
}

// Block returns the 1-indexed number of the 3x3 block containing the
// reference, counting blocks left-to-right, top-to-bottom.
func (r CellRef) Block() int {
	return ((r.Row-1)/BlockSide)*BlockSide + (r.Col-1)/BlockSide + 1
}

// MarshalText makes CellRef usable as a JSON object key.
func (r CellRef) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cell reference %q is off the board", r.String())
	}
	return []byte(r.String()), nil
}

// UnmarshalText parses the wire form, so JSON puzzle objects decode
// directly into a State.
func (r *CellRef) UnmarshalText(text []byte) error {
	ref, err := ParseCellRef(string(text))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// ParseCellRef parses a "R{row}C{col}" reference.  It is strict: no
// whitespace, no leading zeros, row and column both in [1,9].
func ParseCellRef(s string) (CellRef, error) {
	var row, col int
	var rest string
	n, err := fmt.Sscanf(s, "R%dC%d%s", &row, &col, &rest)
	if n < 2 || (err != nil && n != 2) {
		return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
	}
	if n > 2 && rest != "" {
		return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
	}
	ref := CellRef{Row: row, Col: col}
	if !ref.Valid() {
		return CellRef{}, fmt.Errorf("cell reference %q is off the board", s)
	}
	if ref.String() != s {
		// catches leading zeros and other oddities that survive Sscanf
		return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
	}
	return ref, nil
}

// AllRefs returns the 81 references in reading order (left-to-right,
// top-to-bottom).  The slice is freshly allocated on every call.
func AllRefs() []CellRef {
	refs := make([]CellRef, 0, CellCount)
	for row := 1; row <= SideLength; row++ {
		for col := 1; col <= SideLength; col++ {
			refs = append(refs, CellRef{Row: row, Col: col})
		}
	}
	return refs
}

/*

Cells

*/

// A Cell holds what the oracle last reported for one board position:
// either an assigned value (Value non-nil, Candidates empty) or a
// candidate set (Value nil).  An unassigned cell with an empty
// candidate set is a contradiction; the client stores and displays
// it, it does not re-validate.
//
// The JSON form matches the oracle exactly:
//
//	{"value": 4, "candidates": []}
//	{"value": null, "candidates": [1, 5, 9]}
type Cell struct {
	Value      *int  `json:"value"`
	Candidates []int `json:"candidates"`
}

// NewFilledCell returns a cell with an assigned value.
func NewFilledCell(value int) Cell {
	v := value
	return Cell{Value: &v, Candidates: []int{}}
}

// NewEmptyCell returns an unassigned cell with the given candidates,
// which are copied and kept sorted.
func NewEmptyCell(candidates ...int) Cell {
	cs := make([]int, len(candidates))
	copy(cs, candidates)
	sort.Ints(cs)
	return Cell{Value: nil, Candidates: cs}
}

// Assigned reports whether the cell has a value.
func (c Cell) Assigned() bool {
	return c.Value != nil
}

// HasCandidate reports whether the cell's candidate set contains the
// digit.  Assigned cells have no candidates.
func (c Cell) HasCandidate(digit int) bool {
	for _, d := range c.Candidates {
		if d == digit {
			return true
		}
	}
	return false
}

// Contradicted reports whether the cell is unassigned with no
// candidates left, which means the board cannot be completed from
// here without undoing something.
func (c Cell) Contradicted() bool {
	return c.Value == nil && len(c.Candidates) == 0
}

// Copy returns a cell sharing no storage with the receiver.
func (c Cell) Copy() Cell {
	out := Cell{Candidates: make([]int, len(c.Candidates))}
	copy(out.Candidates, c.Candidates)
	if c.Value != nil {
		v := *c.Value
		out.Value = &v
	}
	return out
}

// Equal is structural equality.  Candidate order matters; the oracle
// and this package both keep candidates sorted, so this is value
// equality in practice.
func (c Cell) Equal(o Cell) bool {
	if (c.Value == nil) != (o.Value == nil) {
		return false
	}
	if c.Value != nil && *c.Value != *o.Value {
		return false
	}
	if len(c.Candidates) != len(o.Candidates) {
		return false
	}
	for i, d := range c.Candidates {
		if o.Candidates[i] != d {
			return false
		}
	}
	return true
}

/*

States

*/

// A State is the client's mirror of the oracle's puzzle: a mapping
// from cell reference to cell.  Once a puzzle is loaded and its
// candidates computed, a State always has exactly 81 entries.  States
// are replaced wholesale on every mutating oracle call; nothing in
// this package edits a Cell of a live State in place.
type State map[CellRef]Cell

// Copy returns a deep copy of the state.  The copy shares no storage
// with the receiver, so mutating one can never affect the other.
// This is the snapshot primitive the history manager relies on.
func (s State) Copy() State {
	out := make(State, len(s))
	for ref, cell := range s {
		out[ref] = cell.Copy()
	}
	return out
}

// Equal is structural equality over all cells.
func (s State) Equal(o State) bool {
	if len(s) != len(o) {
		return false
	}
	for ref, cell := range s {
		other, ok := o[ref]
		if !ok || !cell.Equal(other) {
			return false
		}
	}
	return true
}

// Cell returns the cell at ref, and whether the state has one.
func (s State) Cell(ref CellRef) (Cell, bool) {
	c, ok := s[ref]
	return c, ok
}

// Loaded reports whether the state has a full board's worth of cells.
func (s State) Loaded() bool {
	return len(s) == CellCount
}

// Diff returns the references whose cells differ between s and o, in
// reading order.  The display layer uses this to decide which cells
// to flash after an applied move.
func (s State) Diff(o State) []CellRef {
	var changed []CellRef
	for _, ref := range AllRefs() {
		a, aok := s[ref]
		b, bok := o[ref]
		if aok != bok || (aok && !a.Equal(b)) {
			changed = append(changed, ref)
		}
	}
	return changed
}
