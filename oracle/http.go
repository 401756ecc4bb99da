// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geraldyong/OpenAI-Sudoku-LLM/board"
)

// DefaultTimeout bounds a single oracle round trip.  The advisor
// endpoint is slower than the others (it consults an LLM), so the
// timeout is generous.
const DefaultTimeout = 90 * time.Second

// Client talks to the Sudoku microservice over HTTP.  One POST per
// operation, JSON both ways, no retries.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, mainly for
// tests and for callers that need custom TLS settings (the reference
// deployment serves with a self-signed certificate).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

// WithLogger substitutes the logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for the service at baseURL, e.g.
// "https://localhost:8000".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: DefaultTimeout},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request bodies, matching the service's API models field for field

type textRequest struct {
	Text string `json:"text"`
}

type puzzleRequest struct {
	Puzzle board.State `json:"puzzle"`
}

type cellActionRequest struct {
	Puzzle  board.State `json:"puzzle"`
	CellRef string      `json:"cell_ref"`
	Digit   int         `json:"digit"`
}

type unitRequest struct {
	Puzzle  board.State `json:"puzzle"`
	UnitRef string      `json:"unit_ref"`
}

// errorResponse is the body of any non-success response.
type errorResponse struct {
	Detail string `json:"detail"`
}

// post sends one request and decodes the response into out.  A
// non-2xx status becomes a RemoteError carrying the server's detail
// message verbatim.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("oracle call failed", "path", path, "error", err)
		return fmt.Errorf("calling oracle %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("oracle call", "path", path, "status", resp.StatusCode,
		"elapsed", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		if json.Unmarshal(data, &er) != nil || er.Detail == "" {
			er.Detail = strings.TrimSpace(string(data))
		}
		return &RemoteError{Status: resp.StatusCode, Detail: er.Detail}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// postState is post for the many endpoints that return a full board.
func (c *Client) postState(ctx context.Context, path string, in any) (board.State, error) {
	var out board.State
	if err := c.post(ctx, path, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadPuzzle implements Oracle.
func (c *Client) LoadPuzzle(ctx context.Context, text string) (board.State, error) {
	return c.postState(ctx, "/loadPuzzle", textRequest{Text: text})
}

// ComputeCandidates implements Oracle.
func (c *Client) ComputeCandidates(ctx context.Context, s board.State) (board.State, error) {
	return c.postState(ctx, "/computeCandidates", puzzleRequest{Puzzle: s})
}

// AssignDigit implements Oracle.
func (c *Client) AssignDigit(ctx context.Context, s board.State, ref board.CellRef, digit int) (board.State, error) {
	return c.postState(ctx, "/assignDigit",
		cellActionRequest{Puzzle: s, CellRef: ref.String(), Digit: digit})
}

// EliminateDigit implements Oracle.
func (c *Client) EliminateDigit(ctx context.Context, s board.State, ref board.CellRef, digit int) (board.State, error) {
	return c.postState(ctx, "/eliminateDigit",
		cellActionRequest{Puzzle: s, CellRef: ref.String(), Digit: digit})
}

// ScanAndAssign implements Oracle.
func (c *Client) ScanAndAssign(ctx context.Context, s board.State) (board.State, error) {
	return c.postState(ctx, "/scanAndAssign", puzzleRequest{Puzzle: s})
}

// GetUnit implements Oracle.
func (c *Client) GetUnit(ctx context.Context, s board.State, unit string) (board.State, error) {
	return c.postState(ctx, "/getUnit", unitRequest{Puzzle: s, UnitRef: unit})
}

// CheckStrict implements Oracle.
func (c *Client) CheckStrict(ctx context.Context, s board.State) (CheckResult, error) {
	var out CheckResult
	err := c.post(ctx, "/checkStrict", puzzleRequest{Puzzle: s}, &out)
	return out, err
}

// CheckCandidates implements Oracle.
func (c *Client) CheckCandidates(ctx context.Context, s board.State) (CheckResult, error) {
	var out CheckResult
	err := c.post(ctx, "/checkCandidates", puzzleRequest{Puzzle: s}, &out)
	return out, err
}

// ProposeNextMove implements Advisor against the service's
// /proposeNextMove endpoint, which fronts the service-side LLM agent.
func (c *Client) ProposeNextMove(ctx context.Context, s board.State) (Proposal, error) {
	var out Proposal
	err := c.post(ctx, "/proposeNextMove", puzzleRequest{Puzzle: s}, &out)
	return out, err
}
