// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// The sudoku command is the interactive client.  "sudoku play" runs
// the full-screen game; the other subcommands are one-shot utilities
// around the same oracle.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/advisor"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/config"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/game"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/oracle"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/storage"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/tui"
)

var (
	flagConfig    string
	flagOracleURL string
	flagOffline   bool
	flagAdvisor   string

	flagCandidates bool
	flagMarkdown   bool
	flagJSON       bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sudoku",
		Short:         "Play Sudoku against a remote puzzle oracle",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the config file")
	root.PersistentFlags().StringVar(&flagOracleURL, "oracle-url", "", "oracle service URL")
	root.PersistentFlags().BoolVar(&flagOffline, "offline", false, "play against the built-in solver")
	root.PersistentFlags().StringVar(&flagAdvisor, "advisor", "", "proposal backend: oracle, openai, or builtin")

	root.AddCommand(newPlayCmd(), newRenderCmd(), newProposeCmd(), newCheckCmd(), newPuzzlesCmd())
	return root
}

// loadConfig reads the config and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagOracleURL != "" {
		cfg.Oracle.BaseURL = flagOracleURL
	}
	if flagOffline {
		cfg.Oracle.BaseURL = ""
	}
	if flagAdvisor != "" {
		cfg.Advisor.Backend = flagAdvisor
	}
	return cfg, nil
}

// newSession wires a play session from the configuration.
func newSession(cfg config.Config, log *slog.Logger) (*game.Session, error) {
	var orc oracle.Oracle
	if cfg.Oracle.BaseURL == "" {
		orc = oracle.NewMemory()
	} else {
		orc = oracle.NewClient(cfg.Oracle.BaseURL, oracle.WithLogger(log))
	}

	var adv oracle.Advisor
	switch cfg.Advisor.Backend {
	case "", "oracle":
		if client, ok := orc.(*oracle.Client); ok {
			adv = client
		} else {
			adv = oracle.NewMemory()
		}
	case "builtin":
		adv = oracle.NewMemory()
	case "openai":
		a, err := advisor.New(advisor.WithModel(cfg.Advisor.Model), advisor.WithLogger(log))
		if err != nil {
			return nil, err
		}
		adv = a
	default:
		return nil, fmt.Errorf("unknown advisor backend %q", cfg.Advisor.Backend)
	}

	return game.NewSession(orc, adv, log), nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
}

// puzzleArg resolves the optional positional argument: a built-in
// puzzle name, or a path to a puzzle text file.
func puzzleArg(args []string) (name, text string, err error) {
	name = storage.DefaultPuzzleName
	if len(args) > 0 {
		name = args[0]
	}
	text, err = storage.PuzzleText(name)
	if err != nil && len(args) > 0 {
		if data, readErr := os.ReadFile(args[0]); readErr == nil {
			return args[0], string(data), nil
		}
	}
	return name, text, err
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play [puzzle]",
		Short: "Play a puzzle in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			name, text, err := puzzleArg(args)
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, log)
			if err != nil {
				return err
			}
			program := tea.NewProgram(tui.New(sess, name, text, log), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [puzzle]",
		Short: "Load a puzzle and print the computed board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, text, err := oneShotSession(args)
			if err != nil {
				return err
			}
			state, err := sess.Start(context.Background(), text)
			if err != nil {
				return err
			}
			switch {
			case flagJSON:
				data, err := state.ExportJSON()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			case flagMarkdown:
				fmt.Fprint(cmd.OutOrStdout(), state.Markdown(flagCandidates))
			default:
				fmt.Fprint(cmd.OutOrStdout(), state.Render(flagCandidates))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagCandidates, "candidates", false, "show candidate sets")
	cmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "format as a Markdown table")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "dump the board as JSON")
	return cmd
}

func newProposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "propose [puzzle]",
		Short: "Load a puzzle and ask the advisor for a next move",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, text, err := oneShotSession(args)
			if err != nil {
				return err
			}
			if _, err := sess.Start(context.Background(), text); err != nil {
				return err
			}
			p, err := sess.Propose(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Strategy: %s\n%s\n", p.Strategy, p.Reasoning)
			for _, step := range p.Steps {
				fmt.Fprintf(out, "  %s %d at %s\n", step.Action, step.Digit, step.Cell)
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [puzzle]",
		Short: "Load a puzzle and run the consistency checks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, text, err := oneShotSession(args)
			if err != nil {
				return err
			}
			if _, err := sess.Start(context.Background(), text); err != nil {
				return err
			}
			strict, err := sess.CheckStrict(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", strict.Message)
			candidates, err := sess.CheckCandidates(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", candidates.Message)
			return nil
		},
	}
}

func newPuzzlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "puzzles",
		Short: "List the built-in starter puzzles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range storage.PuzzleNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
			}
			return nil
		},
	}
}

// oneShotSession builds a session and resolves the puzzle argument
// for the non-interactive subcommands.
func oneShotSession(args []string) (*game.Session, string, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", "", err
	}
	name, text, err := puzzleArg(args)
	if err != nil {
		return nil, "", "", err
	}
	sess, err := newSession(cfg, newLogger(cfg))
	if err != nil {
		return nil, "", "", err
	}
	return sess, name, text, nil
}
