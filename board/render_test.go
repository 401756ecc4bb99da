// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package board

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlainGrid(t *testing.T) {
	s := blankState()
	s[CellRef{Row: 1, Col: 1}] = NewFilledCell(4)
	s[CellRef{Row: 1, Col: 6}] = NewFilledCell(3)
	s[CellRef{Row: 9, Col: 9}] = NewFilledCell(6)

	out := s.String()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 11, "nine rows plus two separators")

	assert.Equal(t, "4 _ _ | _ _ 3 | _ _ _", lines[0])
	assert.Equal(t, "_ _ _ | _ _ _ | _ _ 6", lines[10])
	assert.True(t, strings.HasPrefix(lines[3], "---"), "separator after row 3")
	assert.True(t, strings.HasPrefix(lines[7], "---"), "separator after row 6")
}

func TestRenderShowsCandidates(t *testing.T) {
	s := blankState()
	s[CellRef{Row: 1, Col: 1}] = NewEmptyCell(2, 7)

	hidden := s.Render(false)
	assert.True(t, strings.HasPrefix(hidden, "_"))

	shown := s.Render(true)
	assert.True(t, strings.HasPrefix(shown, "{2, 7}"))
}

func TestMarkdownTable(t *testing.T) {
	s := blankState()
	s[CellRef{Row: 2, Col: 3}] = NewFilledCell(9)

	out := s.Markdown(false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 11, "header, divider, nine rows")

	assert.Equal(t, "|  | C1 | C2 | C3 | C4 | C5 | C6 | C7 | C8 | C9 |", lines[0])
	assert.Contains(t, lines[1], "---")
	assert.True(t, strings.HasPrefix(lines[3], "| R2 | _ | _ | 9 |"))
}

func TestExportJSON(t *testing.T) {
	s := State{
		CellRef{Row: 1, Col: 1}: NewFilledCell(4),
		CellRef{Row: 1, Col: 2}: NewEmptyCell(1, 5),
	}
	data, err := s.ExportJSON()
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, s.Equal(back))
	assert.Contains(t, string(data), `"R1C1"`)
}
