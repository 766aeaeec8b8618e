package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
	"github.com/wricardo/memory-match-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every matching pair of cards before the countdown reaches zero.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get current board, moves and time left
- start_game: Deal a new board and start the clock
- flip_card: Flip one card by index
- submit_name: Record a win on the leaderboard
- reset_game: Abandon the current game
- leaderboard: Show the top five results
- game_instructions: Get the full rules`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session using the server's configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board. Face-down cards show as '??'",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Deal a freshly shuffled board and start the countdown",
		InputSchema: sessionSchema(nil),
	}, c.handleStart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "flip_card",
		Description: "Flip the card at index (row-major, starting at 0)",
		InputSchema: sessionSchema(map[string]interface{}{
			"index": map[string]interface{}{
				"type":        "integer",
				"description": "Card index, row * cols + col",
				"minimum":     0,
			},
		}, "index"),
	}, c.handleFlip)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_name",
		Description: "Record a finished game on the leaderboard",
		InputSchema: sessionSchema(map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Player name, at most 15 characters",
			},
		}, "name"),
	}, c.handleSubmitName)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Abandon the current game and return to the start screen",
		InputSchema: sessionSchema(nil),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Show the top five results, fastest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and how to use the tools",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// intArg reads a JSON number that must be a whole number
func intArg(args map[string]interface{}, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\nCall start_game to deal the cards.", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := engine.Phase("unknown")
		if s.GameState != nil {
			phase = s.GameState.Phase
		}
		fmt.Fprintf(&result, "- %s (Phase: %s, Created: %s)\n", s.ID, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, request, "/start", nil)
}

func (c *Client) handleFlip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := intArg(arguments(request), "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.command(ctx, request, "/flip", map[string]int{"index": index})
}

func (c *Client) handleSubmitName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := arguments(request)["name"].(string)
	return c.command(ctx, request, "/name", map[string]string{"name": name})
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, request, "/reset", nil)
}

func (c *Client) command(ctx context.Context, request mcp.CallToolRequest, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Entries leaderboard.Ledger `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", "/api/leaderboard", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(response.Entries)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var config engine.GameConfig
	if err := c.apiCall(ctx, "GET", "/api/config", nil, &config); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	instructions := fmt.Sprintf(`MEMORY MATCH - RULES

The board has %d rows and %d columns: %d face-down cards hiding %d pairs.
You have %d seconds to find every pair.

HOW TO PLAY
1. create_session, then start_game to deal a shuffled board and start the clock.
2. flip_card with an index. Index = row * %d + col, starting at 0 in the top-left.
3. Every second card you flip counts as one move.
   - Same image: the pair stays face up.
   - Different images: both turn back over after %s. Flips are ignored until then.
4. Find all pairs before time runs out to win. Running out of time loses the game.
5. After a win, submit_name records your time and moves on the leaderboard.

RANKING
Fastest time first, fewer moves breaks ties. Only the top five are kept.

TIPS
- Face-down cards show as '??' in game_state. Remember what you have seen.
- Flipping a face-up or matched card does nothing and costs nothing.
- reset_game abandons the current game; start_game deals a new one.`,
		config.Rows, config.Cols, config.Cells(), config.PairsNeeded(),
		config.DurationSeconds, config.Cols, config.MismatchDelay())

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// formatGameState renders the board as a grid of card labels
func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Phase: %s | Moves: %d | Time left: %ds | Pairs: %d/%d\n",
		state.Phase, state.Moves, state.TimeRemaining, state.MatchedPairs(), len(state.Cards)/2)

	if state.Resolving {
		result.WriteString("Wrong pair showing; it will turn back over shortly.\n")
	}

	if len(state.Cards) > 0 {
		result.WriteString("\n")
		for i, card := range state.Cards {
			label := "??"
			switch {
			case card.IsMatched:
				label = "[" + card.Image + "]"
			case card.IsFlipped:
				label = card.Image
			}
			fmt.Fprintf(&result, "%2d:%-12s", i, label)
			if (i+1)%boardCols(len(state.Cards)) == 0 {
				result.WriteString("\n")
			}
		}
	}

	switch state.Phase {
	case engine.PhaseAwaitingName:
		result.WriteString("\n🎉 All pairs found! Use submit_name to record the result.")
	case engine.PhaseWon:
		result.WriteString("\n🎉 VICTORY!")
	case engine.PhaseLost:
		result.WriteString("\n⏰ TIME'S UP")
	}
	if state.Phase.Finished() {
		fmt.Fprintf(&result, "\nFinished after %d moves and %d seconds.", state.Moves, state.ElapsedSeconds())
	}

	return result.String()
}

// boardCols is the largest divisor of n that is at most sqrt(n). The state
// does not carry the grid shape, and the default 5x4 board comes out right.
func boardCols(n int) int {
	best := 1
	for c := 1; c*c <= n; c++ {
		if n%c == 0 {
			best = c
		}
	}
	return best
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if !result.Applied {
		b.WriteString("(ignored) ")
	}
	b.WriteString(result.Message)
	if len(result.Signals) > 0 {
		names := make([]string, len(result.Signals))
		for i, s := range result.Signals {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, "\nSignals: %s", strings.Join(names, ", "))
	}
	if result.Result != nil {
		fmt.Fprintf(&b, "\nRecorded: %s - %ds, %d moves", result.Result.Name, result.Result.ElapsedSeconds, result.Result.Moves)
	}
	b.WriteString("\n\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatLeaderboard(entries leaderboard.Ledger) string {
	if len(entries) == 0 {
		return "No results yet."
	}
	var b strings.Builder
	b.WriteString("Leaderboard:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %-15s %4ds %4d moves\n", i+1, e.Name, e.ElapsedSeconds, e.Moves)
	}
	return b.String()
}
