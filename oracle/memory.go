// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
)

// Memory is a local Oracle with the same semantics as the remote
// service: peer-scan candidate computation, assignment with cascading
// peer elimination and sole-candidate auto-assignment, and unit
// consistency checks.  It exists for offline play and for tests; the
// client code cannot tell it apart from the HTTP client.
//
// Memory never mutates a caller's State.  Every operation works on a
// deep copy and returns it, which is exactly the wholesale-replace
// contract of the remote oracle.
//
// Memory also implements Advisor with a deterministic single-scan,
// so the propose feature works without network or API keys.
type Memory struct{}

// NewMemory returns the in-memory oracle.
func NewMemory() *Memory { return &Memory{} }

// LoadPuzzle implements Oracle.  Like the service, it first tries to
// interpret the text as a JSON dump previously exported by the
// client, and otherwise parses it as 9 rows of 9 tokens where "_" or
// "0" marks a blank.  Decoration lines (starting with "-") and "|"
// separators are ignored, so the output of State.String round-trips.
func (m *Memory) LoadPuzzle(_ context.Context, text string) (board.State, error) {
	if s, ok := parseJSONPuzzle(text); ok {
		return s, nil
	}

	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		line = strings.ReplaceAll(line, "|", "")
		tokens := strings.Fields(line)
		if len(tokens) > 0 {
			rows = append(rows, tokens)
		}
	}
	if len(rows) != board.SideLength {
		return nil, fmt.Errorf("expected 9 rows in puzzle, got %d", len(rows))
	}

	s := make(board.State, board.CellCount)
	for ri, tokens := range rows {
		if len(tokens) != board.SideLength {
			return nil, fmt.Errorf("expected 9 tokens in row %d, got %d", ri+1, len(tokens))
		}
		for ci, token := range tokens {
			ref := board.CellRef{Row: ri + 1, Col: ci + 1}
			if token == "_" || token == "0" {
				s[ref] = board.NewEmptyCell()
				continue
			}
			digit, err := strconv.Atoi(token)
			if err != nil || digit < 1 || digit > board.SideLength {
				return nil, fmt.Errorf("invalid token %q in cell %s", token, ref)
			}
			s[ref] = board.NewFilledCell(digit)
		}
	}
	return s, nil
}

// parseJSONPuzzle accepts a puzzle exported with ExportJSON.  Any
// malformed key or cell disqualifies the text, and the caller falls
// back to token parsing.
func parseJSONPuzzle(text string) (board.State, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var s board.State
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return nil, false
	}
	return s, true
}

// ComputeCandidates implements Oracle.
func (m *Memory) ComputeCandidates(_ context.Context, s board.State) (board.State, error) {
	out := s.Copy()
	computeCandidates(out)
	return out, nil
}

// AssignDigit implements Oracle.
func (m *Memory) AssignDigit(_ context.Context, s board.State, ref board.CellRef, digit int) (board.State, error) {
	out := s.Copy()
	if err := assignInPlace(out, ref, digit); err != nil {
		return nil, err
	}
	return out, nil
}

// EliminateDigit implements Oracle.
func (m *Memory) EliminateDigit(_ context.Context, s board.State, ref board.CellRef, digit int) (board.State, error) {
	out := s.Copy()
	if err := eliminateInPlace(out, ref, digit); err != nil {
		return nil, err
	}
	return out, nil
}

// ScanAndAssign implements Oracle.
func (m *Memory) ScanAndAssign(_ context.Context, s board.State) (board.State, error) {
	out := s.Copy()
	progress := true
	for progress {
		progress = false
		for _, ref := range board.AllRefs() {
			cell := out[ref]
			if cell.Value == nil && len(cell.Candidates) == 1 {
				if err := assignInPlace(out, ref, cell.Candidates[0]); err != nil {
					return nil, err
				}
				progress = true
			}
		}
	}
	return out, nil
}

// GetUnit implements Oracle.
func (m *Memory) GetUnit(_ context.Context, s board.State, unit string) (board.State, error) {
	refs, err := board.UnitCells(unit)
	if err != nil {
		return nil, err
	}
	out := make(board.State, len(refs))
	for _, ref := range refs {
		if cell, ok := s[ref]; ok {
			out[ref] = cell.Copy()
		}
	}
	return out, nil
}

// CheckStrict implements Oracle.
func (m *Memory) CheckStrict(_ context.Context, s board.State) (CheckResult, error) {
	for _, refs := range allUnits() {
		seen := make(map[int]bool)
		for _, ref := range refs {
			cell, ok := s[ref]
			if !ok || cell.Value == nil {
				continue
			}
			if seen[*cell.Value] {
				return CheckResult{Result: false, Message: "Strict consistency check failed."}, nil
			}
			seen[*cell.Value] = true
		}
	}
	return CheckResult{Result: true, Message: "Strict consistency check passed."}, nil
}

// CheckCandidates implements Oracle.
func (m *Memory) CheckCandidates(_ context.Context, s board.State) (CheckResult, error) {
	for _, refs := range allUnits() {
		solved := make(map[int]bool)
		for _, ref := range refs {
			if cell, ok := s[ref]; ok && cell.Value != nil {
				solved[*cell.Value] = true
			}
		}
		for digit := 1; digit <= board.SideLength; digit++ {
			if solved[digit] {
				continue
			}
			found := false
			for _, ref := range refs {
				cell, ok := s[ref]
				if ok && cell.Value == nil && cell.HasCandidate(digit) {
					found = true
					break
				}
			}
			if !found {
				return CheckResult{Result: false, Message: "Candidate consistency check failed."}, nil
			}
		}
	}
	return CheckResult{Result: true, Message: "Candidate consistency check passed."}, nil
}

/*

internal mechanics, shared by the operations above

*/

// allUnits returns the 27 units of the board: rows R1-R9, columns
// C1-C9, blocks B1-B9.
func allUnits() [][]board.CellRef {
	units := make([][]board.CellRef, 0, 27)
	for _, prefix := range []string{"R", "C", "B"} {
		for i := 1; i <= board.SideLength; i++ {
			refs, _ := board.UnitCells(fmt.Sprintf("%s%d", prefix, i))
			units = append(units, refs)
		}
	}
	return units
}

// peers returns the related cells of ref, excluding ref itself.
func peers(ref board.CellRef) []board.CellRef {
	related := board.RelatedCells(ref)
	out := make([]board.CellRef, 0, len(related)-1)
	for _, r := range related {
		if r != ref {
			out = append(out, r)
		}
	}
	return out
}

// computeCandidates recomputes every unassigned cell's candidates
// from its peers' solved values.
func computeCandidates(s board.State) {
	for _, ref := range board.AllRefs() {
		cell, ok := s[ref]
		if !ok {
			continue
		}
		if cell.Value != nil {
			s[ref] = board.NewFilledCell(*cell.Value)
			continue
		}
		used := make(map[int]bool)
		for _, peer := range peers(ref) {
			if pc, ok := s[peer]; ok && pc.Value != nil {
				used[*pc.Value] = true
			}
		}
		var candidates []int
		for digit := 1; digit <= board.SideLength; digit++ {
			if !used[digit] {
				candidates = append(candidates, digit)
			}
		}
		s[ref] = board.NewEmptyCell(candidates...)
	}
}

// assignInPlace assigns digit to ref, eliminates it from all peers,
// and auto-assigns any peer reduced to a single candidate, exactly as
// the remote service does.
func assignInPlace(s board.State, ref board.CellRef, digit int) error {
	cell, ok := s[ref]
	if !ok {
		return fmt.Errorf("Cell %s not found in the puzzle.", ref)
	}
	if cell.Value != nil {
		return fmt.Errorf("Cell %s is already solved with value %d.", ref, *cell.Value)
	}
	if !cell.HasCandidate(digit) {
		return fmt.Errorf("Digit %d is not a candidate for cell %s.", digit, ref)
	}
	s[ref] = board.NewFilledCell(digit)

	for _, peerRef := range peers(ref) {
		peer, ok := s[peerRef]
		if !ok || peer.Value != nil || !peer.HasCandidate(digit) {
			continue
		}
		remaining := make([]int, 0, len(peer.Candidates)-1)
		for _, d := range peer.Candidates {
			if d != digit {
				remaining = append(remaining, d)
			}
		}
		s[peerRef] = board.NewEmptyCell(remaining...)
		if len(remaining) == 1 {
			if err := assignInPlace(s, peerRef, remaining[0]); err != nil {
				return err
			}
		}
	}
	return nil
}

// eliminateInPlace removes digit from ref's candidates.  Removing the
// next-to-last candidate auto-assigns the survivor; removing the last
// one leaves an explicit contradiction (an empty candidate set) for
// the client to report.
func eliminateInPlace(s board.State, ref board.CellRef, digit int) error {
	cell, ok := s[ref]
	if !ok {
		return fmt.Errorf("Cell %s not found.", ref)
	}
	if cell.Value != nil {
		return fmt.Errorf("Cannot eliminate digit from cell %s because it is already solved.", ref)
	}
	if !cell.HasCandidate(digit) {
		return nil
	}
	remaining := make([]int, 0, len(cell.Candidates)-1)
	for _, d := range cell.Candidates {
		if d != digit {
			remaining = append(remaining, d)
		}
	}
	s[ref] = board.NewEmptyCell(remaining...)
	if len(remaining) == 1 {
		return assignInPlace(s, ref, remaining[0])
	}
	return nil
}

/*

built-in advisor

*/

// ProposeNextMove implements Advisor with a deterministic scan: a
// naked single if one exists, otherwise a hidden single.  When the
// board has neither, it reports that honestly instead of guessing.
func (m *Memory) ProposeNextMove(_ context.Context, s board.State) (Proposal, error) {
	// naked single: a cell with exactly one candidate
	for _, ref := range board.AllRefs() {
		cell, ok := s[ref]
		if ok && cell.Value == nil && len(cell.Candidates) == 1 {
			digit := cell.Candidates[0]
			return Proposal{
				Strategy: "naked single",
				Reasoning: fmt.Sprintf(
					"Cell %s has exactly one remaining candidate, %d, so it must take that value.",
					ref, digit),
				Steps: []Step{{Cell: ref.String(), Action: ActionAssign, Digit: digit}},
			}, nil
		}
	}

	// hidden single: a digit with exactly one home within a unit
	for _, refs := range allUnits() {
		for digit := 1; digit <= board.SideLength; digit++ {
			var home board.CellRef
			count := 0
			solved := false
			for _, ref := range refs {
				cell, ok := s[ref]
				if !ok {
					continue
				}
				if cell.Value != nil && *cell.Value == digit {
					solved = true
					break
				}
				if cell.Value == nil && cell.HasCandidate(digit) {
					home = ref
					count++
				}
			}
			if !solved && count == 1 {
				return Proposal{
					Strategy: "hidden single",
					Reasoning: fmt.Sprintf(
						"Within its unit, cell %s is the only remaining place for digit %d.",
						home, digit),
					Steps: []Step{{Cell: home.String(), Action: ActionAssign, Digit: digit}},
				}, nil
			}
		}
	}

	return Proposal{}, fmt.Errorf("no single-candidate move found; the board needs a deeper strategy")
}
