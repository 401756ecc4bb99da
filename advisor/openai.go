// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package advisor provides an LLM-backed move advisor that talks to
// the OpenAI API directly, for running without the microservice's
// /proposeNextMove endpoint.  It returns the same Proposal shape the
// service does and, like the service, it only ever informs the user:
// nothing here mutates board state.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
	"github.com/geraldyong/OpenAI-Sudoku-LLM/oracle"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = "You are an expert sudoku solving agent. Your task is to analyze the current puzzle board and propose the next move without modifying the board.\n" +
	"Output only a JSON array containing one object with the keys:\n" +
	"\"strategy\": the name of the solving technique used\n" +
	"\"reasoning\": a detailed explanation of your reasoning\n" +
	"\"steps\": a list of steps to achieve the strategy\n" +
	"\"cell\": the cell reference (e.g. 'R1C2')\n" +
	"\"action\": either 'assign' or 'eliminate'\n" +
	"\"digit\": the digit to assign or eliminate\n\n"

// completer is the slice of the OpenAI client the advisor uses,
// extracted so tests can fake the API.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI is an oracle.Advisor backed by the OpenAI chat API.
type OpenAI struct {
	client completer
	model  string
	log    *slog.Logger
}

// Option configures the advisor.
type Option func(*OpenAI)

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(a *OpenAI) {
		if model != "" {
			a.model = model
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *OpenAI) { a.log = log }
}

// withCompleter substitutes the API client, for tests.
func withCompleter(c completer) Option {
	return func(a *OpenAI) { a.client = c }
}

// New returns an advisor using the OPENAI_API_KEY environment
// variable for authentication.
func New(opts ...Option) (*OpenAI, error) {
	a := &OpenAI{model: DefaultModel, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		cfg := openai.DefaultConfig(apiKey)
		if org := os.Getenv("OPENAI_ORGANIZATION_ID"); org != "" {
			cfg.OrgID = org
		}
		a.client = openai.NewClientWithConfig(cfg)
	}
	return a, nil
}

// ProposeNextMove implements oracle.Advisor.  The board travels as a
// JSON object in the prompt; the model's reply is expected to be a
// JSON array holding one proposal object.  A reply that does not
// parse is an error, never a fabricated proposal.
func (a *OpenAI) ProposeNextMove(ctx context.Context, s board.State) (oracle.Proposal, error) {
	puzzleJSON, err := json.Marshal(s)
	if err != nil {
		return oracle.Proposal{}, fmt.Errorf("encoding board for advisor: %w", err)
	}

	userPrompt := "Below is the current 9x9 Sudoku board represented as JSON string.\n" +
		"Each cell is referenced by a cell reference \"RxCy\" which denotes Row x and Column y.\n" +
		string(puzzleJSON) + "\n\n" +
		"A solved cell is represented by its digit under the key \"value\".\n" +
		"An unsolved cell has null for value but has a candidate list under the key \"candidates\", which contains a list of the possible digits that can be likely for this cell.\n" +
		"Analyze the board and propose the next move based solely on the data provided.\n\n" +
		"Output only a JSON array:\n" +
		"[\n" +
		"  {\n" +
		"    \"strategy\": \"xxxx\",\n" +
		"    \"reasoning\": \"xxxx\",\n" +
		"    \"steps\": [\n" +
		"      { \"cell\": \"RxCy\",\n" +
		"        \"action\": \"'assign' or 'eliminate'\",\n" +
		"        \"digit\": x\n" +
		"      },\n" +
		"      { ... }\n" +
		"  }\n" +
		"]\n"

	a.log.Debug("calling advisor", "model", a.model)
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return oracle.Proposal{}, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return oracle.Proposal{}, fmt.Errorf("OpenAI returned no choices")
	}

	return parseProposal(resp.Choices[0].Message.Content)
}

// parseProposal extracts the proposal from the model's reply.  The
// reply may wrap the JSON array in prose, so everything outside the
// outermost brackets is stripped first.
func parseProposal(reply string) (oracle.Proposal, error) {
	trimmed := strings.TrimSpace(reply)

	var proposals []oracle.Proposal
	err := json.Unmarshal([]byte("["+stripPrePost(trimmed)+"]"), &proposals)
	if err == nil && len(proposals) > 0 && len(proposals[0].Steps) > 0 {
		return proposals[0], nil
	}

	// some models reply with a bare object instead of an array
	var single oracle.Proposal
	if err2 := json.Unmarshal([]byte(trimmed), &single); err2 == nil && len(single.Steps) > 0 {
		return single, nil
	}
	return oracle.Proposal{}, fmt.Errorf("failed to parse advisor response: %q", trimmed)
}

// stripPrePost cuts the reply down to the content between the first
// '[' and the last ']', exclusive.  If no bracket pair is present the
// reply passes through unchanged.
func stripPrePost(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end != -1 && end > start {
		return text[start+1 : end]
	}
	return text
}
