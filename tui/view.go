// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))

	cursorStyle  = lipgloss.NewStyle().Reverse(true).Bold(true)
	relatedStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	sameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	flashStyle   = lipgloss.NewStyle().Background(lipgloss.Color("22")).Bold(true)
	deadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	blankStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	gridStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	panelStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == nil {
		return fmt.Sprintf("\n  %s loading %s...\n", m.spinner.View(), m.puzzleName)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("sudoku - "+m.puzzleName) + "\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	if m.showCandidates {
		b.WriteString(m.renderCandidates())
		b.WriteString("\n")
	}
	if m.showProposal && m.proposal != nil {
		b.WriteString(m.renderProposal())
		b.WriteString("\n")
	}
	if m.showHelp {
		b.WriteString(renderHelp())
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderGrid draws the 9x9 board with the cursor's row, column, and
// block tinted, same-digit cells emphasized, and the last move's
// cells flashed.
func (m Model) renderGrid() string {
	related := refSet(board.RelatedCells(m.cursor))
	var same map[board.CellRef]bool
	if cell, ok := m.state.Cell(m.cursor); ok && cell.Assigned() {
		same = refSet(board.SameDigitCells(m.state, *cell.Value))
	}

	var b strings.Builder
	for row := 1; row <= board.SideLength; row++ {
		b.WriteString("  ")
		for col := 1; col <= board.SideLength; col++ {
			ref := board.CellRef{Row: row, Col: col}
			b.WriteString(m.renderCell(ref, related, same))
			if col == 3 || col == 6 {
				b.WriteString(gridStyle.Render(" | "))
			} else if col < board.SideLength {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
		if row == 3 || row == 6 {
			b.WriteString(gridStyle.Render("  ------+-------+------") + "\n")
		}
	}
	return b.String()
}

func (m Model) renderCell(ref board.CellRef, related, same map[board.CellRef]bool) string {
	cell, ok := m.state.Cell(ref)
	if !ok {
		return " "
	}
	text := "_"
	if cell.Assigned() {
		text = fmt.Sprintf("%d", *cell.Value)
	} else if cell.Contradicted() || m.contradicted[ref] {
		text = "!"
	}

	switch {
	case ref == m.cursor:
		return cursorStyle.Render(text)
	case m.flashed[ref]:
		return flashStyle.Render(text)
	case cell.Contradicted() || m.contradicted[ref]:
		return deadStyle.Render(text)
	case same != nil && same[ref]:
		return sameStyle.Render(text)
	case related[ref]:
		return relatedStyle.Render(text)
	case !cell.Assigned():
		return blankStyle.Render(text)
	default:
		return text
	}
}

// renderCandidates shows the candidate set of the cursor cell.
func (m Model) renderCandidates() string {
	cell, ok := m.state.Cell(m.cursor)
	if !ok {
		return ""
	}
	var body string
	switch {
	case cell.Assigned():
		body = fmt.Sprintf("%s holds %d", m.cursor, *cell.Value)
	case cell.Contradicted():
		body = fmt.Sprintf("%s has no candidates left", m.cursor)
	default:
		digits := make([]string, len(cell.Candidates))
		for i, d := range cell.Candidates {
			digits[i] = fmt.Sprintf("%d", d)
		}
		body = fmt.Sprintf("%s candidates: %s", m.cursor, strings.Join(digits, " "))
	}
	return panelStyle.Render(body)
}

// renderProposal shows the advisor's suggestion.
func (m Model) renderProposal() string {
	p := m.proposal
	var b strings.Builder
	fmt.Fprintf(&b, "Strategy: %s\n", p.Strategy)
	fmt.Fprintf(&b, "%s\n", p.Reasoning)
	for _, step := range p.Steps {
		fmt.Fprintf(&b, "  %s %d at %s\n", step.Action, step.Digit, step.Cell)
	}
	b.WriteString("\nenter: play first step   any other key: dismiss")
	return panelStyle.Render(b.String())
}

func renderHelp() string {
	return panelStyle.Render(strings.Join([]string{
		"arrows/hjkl  move cursor",
		"1-9          assign digit at cursor",
		"x then 1-9   eliminate candidate at cursor",
		"c            toggle candidate panel",
		"s            assign all single-candidate cells",
		"u / r        undo / redo",
		"p            ask for a proposed move",
		"n            restart this puzzle",
		"q            quit",
	}, "\n"))
}

// renderFooter shows remaining digits, the play clock, history
// depths, and the latest status message.
func (m Model) renderFooter() string {
	remaining := board.RemainingCounts(m.state)
	digits := make([]int, 0, len(remaining))
	for d := range remaining {
		digits = append(digits, d)
	}
	sort.Ints(digits)
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = fmt.Sprintf("%d:%d", d, remaining[d])
	}
	left := "left " + strings.Join(parts, " ")
	if len(digits) == 0 {
		left = "all digits placed"
	}

	elapsed := m.sess.Elapsed().Truncate(time.Second)
	line := fmt.Sprintf("%s   %s   undo:%d redo:%d",
		left, elapsed, m.sess.UndoLen(), m.sess.RedoLen())
	if m.waiting {
		line += "   " + m.spinner.View() + " oracle"
	}

	out := footerStyle.Render(line)
	if m.status != "" {
		style := statusErrStyle
		if m.statusOK {
			style = statusOKStyle
		}
		out += "\n" + style.Render(m.status)
	}
	if !m.showHelp {
		out += "\n" + footerStyle.Render("? for help")
	}
	return out
}
