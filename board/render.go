// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package board

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

/*

Export renderings

These are the local export formats: a full-state JSON dump and two
human-readable grids.  They never touch the network.

*/

// blankMarker is how unassigned cells print in grid renderings.
const blankMarker = "_"

// cellString renders one cell for the grid forms.
func cellString(cell Cell, showCandidates bool) string {
	if cell.Value != nil {
		return fmt.Sprintf("%d", *cell.Value)
	}
	if showCandidates && len(cell.Candidates) > 0 {
		cs := make([]int, len(cell.Candidates))
		copy(cs, cell.Candidates)
		sort.Ints(cs)
		parts := make([]string, len(cs))
		for i, d := range cs {
			parts[i] = fmt.Sprintf("%d", d)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return blankMarker
}

// String renders the board as a plain-text grid split into 3x3
// blocks, with "_" for unassigned cells:
//
//	4 _ _ | _ _ 3 | 5 _ 2
//	...
//	---------------------
//	...
func (s State) String() string {
	return s.Render(false)
}

// Render is String with optional candidate display for unassigned
// cells.
func (s State) Render(showCandidates bool) string {
	var lines []string
	for row := 1; row <= SideLength; row++ {
		cells := make([]string, 0, SideLength)
		for col := 1; col <= SideLength; col++ {
			cells = append(cells, cellString(s[CellRef{Row: row, Col: col}], showCandidates))
		}
		groups := make([]string, 0, BlockSide)
		for i := 0; i < SideLength; i += BlockSide {
			groups = append(groups, strings.Join(cells[i:i+BlockSide], " "))
		}
		line := strings.Join(groups, " | ")
		lines = append(lines, line)
		if row%BlockSide == 0 && row < SideLength {
			lines = append(lines, strings.Repeat("-", len(line)))
		}
	}
	return strings.Join(lines, "\n")
}

// Markdown renders the board as a Markdown table with R/C headers.
func (s State) Markdown(showCandidates bool) string {
	header := make([]string, 0, SideLength+1)
	header = append(header, "")
	for col := 1; col <= SideLength; col++ {
		header = append(header, fmt.Sprintf("C%d", col))
	}
	rows := [][]string{header}
	divider := make([]string, len(header))
	for i := range divider {
		divider[i] = "---"
	}
	rows = append(rows, divider)
	for row := 1; row <= SideLength; row++ {
		line := make([]string, 0, SideLength+1)
		line = append(line, fmt.Sprintf("R%d", row))
		for col := 1; col <= SideLength; col++ {
			line = append(line, cellString(s[CellRef{Row: row, Col: col}], showCandidates))
		}
		rows = append(rows, line)
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = "| " + strings.Join(row, " | ") + " |"
	}
	return strings.Join(out, "\n")
}

// ExportJSON returns the indented full-state JSON dump, keyed by cell
// reference, in the exact shape the oracle speaks.
func (s State) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
