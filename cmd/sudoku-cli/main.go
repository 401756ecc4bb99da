// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Command-line client for the Sudoku oracle, for terminals and
// scripted use.  One command per line; state lives in a play session
// that is optionally persisted to Redis so it can be resumed later.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/advisor"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/config"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/game"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/oracle"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/storage"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	cli, err := newCLI(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer cli.close()

	if err := cli.listen(os.Stdout, os.Stdin); err != nil {
		log.Error("CLI failure", "error", err)
		os.Exit(1)
	}
}

/*

client state

*/

// cli holds the play session and the output preferences.
type cli struct {
	sess  *game.Session
	store *storage.Store // nil when persistence is off
	rec   storage.Record
	log   *slog.Logger

	useMarkdown    bool
	showCandidates bool
	prompt         bool
}

// newCLI wires the oracle, advisor, and session store from the
// configuration.  An empty oracle URL selects offline play against
// the built-in solver.
func newCLI(cfg config.Config, log *slog.Logger) (*cli, error) {
	var orc oracle.Oracle
	if cfg.Oracle.BaseURL == "" {
		orc = oracle.NewMemory()
	} else {
		orc = oracle.NewClient(cfg.Oracle.BaseURL, oracle.WithLogger(log))
	}

	adv, err := pickAdvisor(cfg, orc, log)
	if err != nil {
		return nil, err
	}

	c := &cli{sess: game.NewSession(orc, adv, log), log: log}
	if cfg.Redis.URL != "" {
		store, err := storage.Open(cfg.Redis.URL, log)
		if err != nil {
			// persistence is a convenience; play continues without it
			log.Warn("session store unavailable", "error", err)
		} else {
			c.store = store
		}
	}
	return c, nil
}

// pickAdvisor resolves the configured proposal backend.
func pickAdvisor(cfg config.Config, orc oracle.Oracle, log *slog.Logger) (oracle.Advisor, error) {
	switch cfg.Advisor.Backend {
	case "", "oracle":
		if client, ok := orc.(*oracle.Client); ok {
			return client, nil
		}
		return oracle.NewMemory(), nil
	case "builtin":
		return oracle.NewMemory(), nil
	case "openai":
		return advisor.New(advisor.WithModel(cfg.Advisor.Model), advisor.WithLogger(log))
	default:
		return nil, fmt.Errorf("unknown advisor backend %q", cfg.Advisor.Backend)
	}
}

func (c *cli) close() {
	if c.store != nil {
		c.store.Close()
	}
}

/*

listener and dispatch

*/

type request struct {
	command string
	args    []string
}

// listen reads lines and dispatches them until quit or EOF.
func (c *cli) listen(out io.Writer, in io.Reader) error {
	if f, ok := out.(*os.File); ok {
		if stat, _ := f.Stat(); stat != nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			c.prompt = true
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		if c.prompt {
			fmt.Fprintf(out, "sudoku> ")
		}
		if !scanner.Scan() {
			if c.prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		r := &request{command: strings.ToLower(fields[0]), args: fields[1:]}
		switch r.command {
		case "quit", "exit":
			return nil
		}
		c.dispatch(out, r)
	}
}

type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(*cli, io.Writer, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"assign", "RxCy digit", "assign a digit to a cell", assignHandler},
		{"candidates", "on|off", "show candidate sets in state output", candidatesHandler},
		{"check", "", "run the strict consistency check", checkHandler},
		{"eliminate", "RxCy digit", "remove a candidate from a cell", eliminateHandler},
		{"export", "[file]", "write the board as JSON", exportHandler},
		{"help", "", "list the available commands", helpHandler},
		{"load", "[name]", "load a built-in puzzle", loadHandler},
		{"markdown", "on|off", "format state output as Markdown", markdownHandler},
		{"propose", "", "ask the advisor for a next move", proposeHandler},
		{"redo", "", "replay an undone step", redoHandler},
		{"reset", "", "restart the current puzzle", resetHandler},
		{"scan", "", "assign every single-candidate cell", scanHandler},
		{"session", "[sessionID]", "show or resume a saved session", sessionHandler},
		{"state", "", "show the current board", stateHandler},
		{"summary", "", "show progress and history depths", summaryHandler},
		{"undo", "", "go back one step", undoHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func (c *cli) dispatch(w io.Writer, r *request) {
	ci := dispatchTable[r.command]
	if ci == nil {
		fmt.Fprintf(w, "%q is not a known command; try 'help'\n", r.command)
		return
	}
	ci.handler(c, w, r)
}

/*

request handlers

*/

func helpHandler(c *cli, w io.Writer, r *request) {
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "  %-12s %-14s %s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  %-12s %-14s %s\n", "quit", "", "leave the program")
}

func loadHandler(c *cli, w io.Writer, r *request) {
	name := storage.DefaultPuzzleName
	if len(r.args) > 0 {
		name = r.args[0]
	}
	text, err := storage.PuzzleText(name)
	if err != nil {
		fmt.Fprintf(w, "%v (available: %s)\n", err, strings.Join(storage.PuzzleNames(), " "))
		return
	}
	state, err := c.sess.Start(context.Background(), text)
	if err != nil {
		fmt.Fprintf(w, "Load failed: %v\n", err)
		return
	}
	if c.store != nil {
		c.rec = storage.NewRecord(name)
		if err := c.store.StartSession(&c.rec, state); err != nil {
			c.log.Warn("couldn't persist session", "error", err)
		} else {
			fmt.Fprintf(w, "Session %s\n", c.rec.SID)
		}
	}
	stateHandler(c, w, r)
}

func resetHandler(c *cli, w io.Writer, r *request) {
	name := c.rec.Puzzle
	if name == "" {
		name = storage.DefaultPuzzleName
	}
	loadHandler(c, w, &request{command: "load", args: []string{name}})
}

func assignHandler(c *cli, w io.Writer, r *request) {
	ref, digit, ok := cellAndDigit(w, r)
	if !ok {
		return
	}
	res, err := c.sess.Assign(context.Background(), ref, digit)
	if err != nil {
		fmt.Fprintf(w, "Assign failed: %v\n", err)
		return
	}
	c.afterMove(w, r, res)
}

func eliminateHandler(c *cli, w io.Writer, r *request) {
	ref, digit, ok := cellAndDigit(w, r)
	if !ok {
		return
	}
	res, err := c.sess.Eliminate(context.Background(), ref, digit)
	if err != nil {
		fmt.Fprintf(w, "Eliminate failed: %v\n", err)
		return
	}
	c.afterMove(w, r, res)
}

func scanHandler(c *cli, w io.Writer, r *request) {
	res, err := c.sess.Scan(context.Background())
	if err != nil {
		fmt.Fprintf(w, "Scan failed: %v\n", err)
		return
	}
	c.afterMove(w, r, res)
}

// afterMove persists the confirmed step and reports the outcome.
func (c *cli) afterMove(w io.Writer, r *request, res game.MoveResult) {
	if c.store != nil && c.rec.SID != "" {
		if err := c.store.AddStep(&c.rec, res.State); err != nil {
			c.log.Warn("couldn't persist step", "error", err)
		}
	}
	stateHandler(c, w, r)
	for _, ref := range res.Contradictions {
		fmt.Fprintf(w, "Contradiction: %s has no candidates left; undo to continue.\n", ref)
	}
	switch {
	case res.Solved:
		fmt.Fprintf(w, "Solved! %s\n", res.CheckMessage)
	case res.Complete:
		fmt.Fprintf(w, "All cells are filled, but: %s\n", res.CheckMessage)
	}
}

func undoHandler(c *cli, w io.Writer, r *request) {
	if _, err := c.sess.Undo(); err != nil {
		fmt.Fprintf(w, "Undo failed: %v\n", err)
		return
	}
	if c.store != nil && c.rec.SID != "" {
		if _, err := c.store.RemoveStep(&c.rec); err != nil {
			c.log.Warn("couldn't persist undo", "error", err)
		}
	}
	stateHandler(c, w, r)
}

func redoHandler(c *cli, w io.Writer, r *request) {
	state, err := c.sess.Redo()
	if err != nil {
		fmt.Fprintf(w, "Redo failed: %v\n", err)
		return
	}
	if c.store != nil && c.rec.SID != "" {
		if err := c.store.AddStep(&c.rec, state); err != nil {
			c.log.Warn("couldn't persist redo", "error", err)
		}
	}
	stateHandler(c, w, r)
}

func stateHandler(c *cli, w io.Writer, r *request) {
	state := c.sess.State()
	if state == nil {
		fmt.Fprintf(w, "No puzzle loaded; try 'load'.\n")
		return
	}
	if c.useMarkdown {
		fmt.Fprint(w, state.Markdown(c.showCandidates))
	} else {
		fmt.Fprint(w, state.Render(c.showCandidates))
	}
}

func summaryHandler(c *cli, w io.Writer, r *request) {
	state := c.sess.State()
	if state == nil {
		fmt.Fprintf(w, "No puzzle loaded; try 'load'.\n")
		return
	}
	remaining := board.RemainingCounts(state)
	total := 0
	for _, n := range remaining {
		total += n
	}
	fmt.Fprintf(w, "Cells left: %d   Elapsed: %s   Undo depth: %d   Redo depth: %d\n",
		total, c.sess.Elapsed().Truncate(time.Second), c.sess.UndoLen(), c.sess.RedoLen())
	if c.sess.Solved() {
		fmt.Fprintf(w, "The puzzle is solved.\n")
	}
	if c.rec.SID != "" {
		fmt.Fprintf(w, "Session %s (%s), step %d\n", c.rec.SID, c.rec.Puzzle, c.rec.Step)
	}
}

func proposeHandler(c *cli, w io.Writer, r *request) {
	p, err := c.sess.Propose(context.Background())
	if err != nil {
		fmt.Fprintf(w, "Propose failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Strategy: %s\n%s\n", p.Strategy, p.Reasoning)
	for _, step := range p.Steps {
		fmt.Fprintf(w, "  %s %d at %s\n", step.Action, step.Digit, step.Cell)
	}
}

func checkHandler(c *cli, w io.Writer, r *request) {
	strict, err := c.sess.CheckStrict(context.Background())
	if err != nil {
		fmt.Fprintf(w, "Check failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", strict.Message)
	candidates, err := c.sess.CheckCandidates(context.Background())
	if err != nil {
		fmt.Fprintf(w, "Check failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", candidates.Message)
}

func exportHandler(c *cli, w io.Writer, r *request) {
	data, err := c.sess.ExportJSON()
	if err != nil {
		fmt.Fprintf(w, "Export failed: %v\n", err)
		return
	}
	if len(r.args) == 0 {
		fmt.Fprintf(w, "%s\n", data)
		return
	}
	if err := os.WriteFile(r.args[0], data, 0o644); err != nil {
		fmt.Fprintf(w, "Export failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Wrote %s\n", r.args[0])
}

func sessionHandler(c *cli, w io.Writer, r *request) {
	if c.store == nil {
		fmt.Fprintf(w, "Session persistence is off; set redis.url in the config.\n")
		return
	}
	if len(r.args) == 0 {
		sids, err := c.store.Sessions()
		if err != nil {
			fmt.Fprintf(w, "Session listing failed: %v\n", err)
			return
		}
		if len(sids) == 0 {
			fmt.Fprintf(w, "No saved sessions.\n")
			return
		}
		for _, sid := range sids {
			fmt.Fprintf(w, "  %s\n", sid)
		}
		return
	}

	rec, err := c.store.Lookup(r.args[0])
	if err != nil {
		fmt.Fprintf(w, "Session lookup failed: %v\n", err)
		return
	}
	state, err := c.store.LoadStep(rec)
	if err != nil {
		fmt.Fprintf(w, "Session load failed: %v\n", err)
		return
	}
	// resume by replaying the saved board through the oracle's
	// JSON-dump load path, which keeps hand-eliminated candidates
	dump, err := json.Marshal(state)
	if err != nil {
		fmt.Fprintf(w, "Session load failed: %v\n", err)
		return
	}
	if _, err := c.sess.Start(context.Background(), string(dump)); err != nil {
		fmt.Fprintf(w, "Session resume failed: %v\n", err)
		return
	}
	c.rec = rec
	fmt.Fprintf(w, "Resumed session %s (%s) at step %d\n", rec.SID, rec.Puzzle, rec.Step)
	stateHandler(c, w, r)
}

func candidatesHandler(c *cli, w io.Writer, r *request) {
	onOff(w, r, &c.showCandidates, "Candidates")
}

func markdownHandler(c *cli, w io.Writer, r *request) {
	onOff(w, r, &c.useMarkdown, "Markdown")
}

func onOff(w io.Writer, r *request, flag *bool, name string) {
	if len(r.args) == 0 {
		if *flag {
			fmt.Fprintf(w, "%s is on\n", name)
		} else {
			fmt.Fprintf(w, "%s is off\n", name)
		}
		return
	}
	switch strings.ToLower(r.args[0]) {
	case "on":
		*flag = true
	case "off":
		*flag = false
	default:
		fmt.Fprintf(w, "argument to %s must be 'on' or 'off'\n", r.command)
	}
}

// cellAndDigit parses the "RxCy digit" argument pair.
func cellAndDigit(w io.Writer, r *request) (board.CellRef, int, bool) {
	if len(r.args) != 2 {
		fmt.Fprintf(w, "%s requires a cell reference and a digit\n", r.command)
		return board.CellRef{}, 0, false
	}
	ref, err := board.ParseCellRef(strings.ToUpper(r.args[0]))
	if err != nil {
		fmt.Fprintf(w, "%s cell (%s): %v\n", r.command, r.args[0], err)
		return board.CellRef{}, 0, false
	}
	digit, err := strconv.Atoi(r.args[1])
	if err != nil || digit < 1 || digit > 9 {
		fmt.Fprintf(w, "%s digit (%s) must be 1 through 9\n", r.command, r.args[1])
		return board.CellRef{}, 0, false
	}
	return ref, digit, true
}
