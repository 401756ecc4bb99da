// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package tui implements the interactive play screen using bubbletea.
//
// The model never talks to the network from Update: every oracle call
// runs as a tea.Cmd in the background and comes back as a message.
// The coordinator in the game package serializes the calls and
// discards stale responses, so the screen always shows the most
// recently initiated action's outcome.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/game"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/history"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/oracle"
)

// Messages delivered by background commands.
type (
	// loadedMsg reports the outcome of starting a puzzle.
	loadedMsg struct {
		state board.State
		err   error
	}

	// moveMsg reports the outcome of a mutating action.
	moveMsg struct {
		res game.MoveResult
		err error
	}

	// proposalMsg reports an advisor reply.
	proposalMsg struct {
		proposal oracle.Proposal
		err      error
	}

	// flashEndMsg clears the move-acknowledgment highlight.
	flashEndMsg struct{ gen int }

	// clockMsg drives the elapsed-time display.
	clockMsg time.Time
)

// Model is the bubbletea model for a play session.
type Model struct {
	sess *game.Session
	log  *slog.Logger

	puzzleText string
	puzzleName string

	// board under the cursor; refreshed from the session after
	// every confirmed action
	state  board.State
	cursor board.CellRef

	showCandidates bool
	eliminating    bool
	showHelp       bool

	proposal     *oracle.Proposal
	showProposal bool

	// cells changed by the last confirmed move, highlighted until
	// the flash timer fires
	flashed  map[board.CellRef]bool
	flashGen int

	contradicted map[board.CellRef]bool

	spinner  spinner.Model
	waiting  bool
	solved   bool
	status   string
	statusOK bool

	width    int
	height   int
	quitting bool
}

// New returns a model that will load the given puzzle text on Init.
func New(sess *game.Session, puzzleName, puzzleText string, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		sess:       sess,
		log:        log,
		puzzleName: puzzleName,
		puzzleText: puzzleText,
		cursor:     board.CellRef{Row: 1, Col: 1},
		spinner:    sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(m.puzzleText), clockCmd(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		return m.handleLoaded(msg)

	case moveMsg:
		return m.handleMove(msg)

	case proposalMsg:
		m.waiting = false
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.proposal = &msg.proposal
		m.showProposal = true
		return m, nil

	case flashEndMsg:
		if msg.gen == m.flashGen {
			m.flashed = nil
		}
		return m, nil

	case clockMsg:
		if m.quitting {
			return m, nil
		}
		return m, clockCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey routes keystrokes.  Overlays capture input first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.showProposal {
		switch key {
		case "enter":
			m.showProposal = false
			return m.applyProposal()
		default:
			m.showProposal = false
			return m, nil
		}
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "up", "k":
		return m.moveCursor(-1, 0), nil
	case "down", "j":
		return m.moveCursor(1, 0), nil
	case "left", "h":
		return m.moveCursor(0, -1), nil
	case "right", "l":
		return m.moveCursor(0, 1), nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		digit := int(key[0] - '0')
		return m.playDigit(digit)

	case "x":
		m.eliminating = !m.eliminating
		if m.eliminating {
			m.status, m.statusOK = "eliminate: press a digit", true
		} else {
			m.status = ""
		}
		return m, nil

	case "c":
		m.showCandidates = !m.showCandidates
		return m, nil

	case "s":
		if m.state == nil {
			return m, nil
		}
		m.waiting = true
		m.status = ""
		return m, m.scanCmd()

	case "u":
		return m.undo()

	case "r":
		return m.redo()

	case "p":
		if m.state == nil {
			return m, nil
		}
		m.waiting = true
		m.status = ""
		return m, m.proposeCmd()

	case "n":
		m.waiting = true
		m.status, m.statusOK = "restarting puzzle", true
		return m, m.loadCmd(m.puzzleText)
	}
	return m, nil
}

// playDigit turns a digit key into an assign or, when armed with x,
// an eliminate on the cursor cell.
func (m Model) playDigit(digit int) (tea.Model, tea.Cmd) {
	if m.state == nil {
		return m, nil
	}
	ref := m.cursor
	m.waiting = true
	m.status = ""
	if m.eliminating {
		m.eliminating = false
		return m, m.eliminateCmd(ref, digit)
	}
	return m, m.assignCmd(ref, digit)
}

// applyProposal plays the first step of the advisor's proposal.
func (m Model) applyProposal() (tea.Model, tea.Cmd) {
	if m.proposal == nil || len(m.proposal.Steps) == 0 {
		return m, nil
	}
	step := m.proposal.Steps[0]
	ref, err := board.ParseCellRef(step.Cell)
	if err != nil {
		return m.fail(fmt.Errorf("proposal names unknown cell %q", step.Cell)), nil
	}
	m.cursor = ref
	m.waiting = true
	if step.Action == oracle.ActionEliminate {
		return m, m.eliminateCmd(ref, step.Digit)
	}
	return m, m.assignCmd(ref, step.Digit)
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	if msg.err != nil {
		if errors.Is(msg.err, game.ErrStale) {
			return m, nil
		}
		return m.fail(msg.err), nil
	}
	m.state = msg.state
	m.flashed = nil
	m.contradicted = nil
	m.solved = false
	m.status, m.statusOK = "", true
	return m, nil
}

func (m Model) handleMove(msg moveMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, game.ErrStale):
			return m, nil
		case errors.Is(msg.err, game.ErrBusy):
			m.status, m.statusOK = "still waiting for the oracle", false
			return m, nil
		default:
			// oracle rejections arrive with the service's own
			// wording; show it unchanged
			return m.fail(msg.err), nil
		}
	}

	m.state = msg.res.State
	m.solved = msg.res.Solved
	m.contradicted = refSet(msg.res.Contradictions)
	m.flashed = refSet(msg.res.Changed)
	m.flashGen++

	switch {
	case msg.res.Solved:
		m.status, m.statusOK = "Solved! "+msg.res.CheckMessage, true
	case msg.res.Complete:
		m.status, m.statusOK = "All cells filled, but: "+msg.res.CheckMessage, false
	case len(msg.res.Contradictions) > 0:
		m.status, m.statusOK = fmt.Sprintf("contradiction at %s; undo to continue",
			msg.res.Contradictions[0]), false
	default:
		m.status = ""
	}
	return m, flashCmd(m.flashGen)
}

func (m Model) undo() (tea.Model, tea.Cmd) {
	if m.state == nil {
		return m, nil
	}
	state, err := m.sess.Undo()
	if err != nil {
		if errors.Is(err, history.ErrNothingToUndo) {
			m.status, m.statusOK = "nothing to undo", false
			return m, nil
		}
		return m.fail(err), nil
	}
	m.state = state
	m.solved = false
	m.contradicted = refSet(board.HasContradiction(state))
	m.status = ""
	return m, nil
}

func (m Model) redo() (tea.Model, tea.Cmd) {
	if m.state == nil {
		return m, nil
	}
	state, err := m.sess.Redo()
	if err != nil {
		if errors.Is(err, history.ErrNothingToRedo) {
			m.status, m.statusOK = "nothing to redo", false
			return m, nil
		}
		return m.fail(err), nil
	}
	m.state = state
	m.contradicted = refSet(board.HasContradiction(state))
	m.status = ""
	return m, nil
}

func (m Model) moveCursor(dr, dc int) Model {
	next := board.CellRef{Row: m.cursor.Row + dr, Col: m.cursor.Col + dc}
	if next.Valid() {
		m.cursor = next
	}
	return m
}

func (m Model) fail(err error) Model {
	m.status, m.statusOK = err.Error(), false
	return m
}

func refSet(refs []board.CellRef) map[board.CellRef]bool {
	if len(refs) == 0 {
		return nil
	}
	set := make(map[board.CellRef]bool, len(refs))
	for _, ref := range refs {
		set[ref] = true
	}
	return set
}

/*

background commands

*/

func (m Model) loadCmd(text string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		state, err := sess.Start(context.Background(), text)
		return loadedMsg{state: state, err: err}
	}
}

func (m Model) assignCmd(ref board.CellRef, digit int) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		res, err := sess.Assign(context.Background(), ref, digit)
		return moveMsg{res: res, err: err}
	}
}

func (m Model) eliminateCmd(ref board.CellRef, digit int) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		res, err := sess.Eliminate(context.Background(), ref, digit)
		return moveMsg{res: res, err: err}
	}
}

func (m Model) scanCmd() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		res, err := sess.Scan(context.Background())
		return moveMsg{res: res, err: err}
	}
}

func (m Model) proposeCmd() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		p, err := sess.Propose(context.Background())
		return proposalMsg{proposal: p, err: err}
	}
}

func flashCmd(gen int) tea.Cmd {
	return tea.Tick(game.AckDuration, func(time.Time) tea.Msg {
		return flashEndMsg{gen: gen}
	})
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
