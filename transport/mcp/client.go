package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
)

var directionEnum = []string{"up", "right", "down", "left"}

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets the logger used for failed API calls
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the default 10s-timeout HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Merge Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Merge Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide numbered tiles on a square board. Equal tiles that collide merge into
their sum. Reach the win tile (2048 on the classic board) before the board
locks up.

AVAILABLE TOOLS:
- create_session: Start a new game (optional config_id)
- list_sessions / get_session: Inspect sessions
- game_state: Current board, score and possible moves
- move: One slide (up/right/down/left) - requires intent explanation
- bulk_move: Up to 50 slides in one call - requires intent explanation
- restart_game: New game, best score kept
- keep_playing: Continue after reaching the win tile
- list_configs: Available board variants
- game_instructions: Full rules and strategy notes
- describe_cell: Value and merge options of one cell

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally choosing a board variant",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Variant to use, see list_configs (optional)",
				},
			},
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
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and possible moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide every tile in one direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directionEnum,
					"description": "Direction to slide",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d slides in sequence, stopping when the game ends", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directionEnum,
					},
					"description": "Array of directions",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Start a new game in the session; the best score is kept",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "keep_playing",
		Description: "Keep sliding after the win tile has been reached",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleKeepPlaying)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board variants",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the value of one cell, its neighbours and which slides would merge it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based, left to right)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based, top to bottom)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
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

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg accepts JSON numbers and numeric strings.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatSnapshot(session.Game))
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

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score := 0
		if s.Game != nil {
			score = s.Game.Metadata.Score
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var snapshot service.GameSnapshot
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID+"/state", nil, &snapshot); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snapshot)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	direction := stringArg(args, "direction")

	// intent is for the caller's benefit only
	_ = stringArg(args, "intent")

	var result service.MoveResult
	err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/move", map[string]string{"direction": direction}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	_ = stringArg(args, "intent")

	var moves []string
	switch raw := args["moves"].(type) {
	case []interface{}:
		for _, m := range raw {
			if move, ok := m.(string); ok {
				moves = append(moves, move)
			}
		}
	case []string:
		moves = raw
	case string:
		// tolerate "up,left,down"
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				moves = append(moves, m)
			}
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must contain at least one direction"), nil
	}

	var result service.BulkMoveResult
	err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/bulk-move", map[string]interface{}{"moves": moves}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

type lifecycleResponse struct {
	Message string                `json:"message"`
	Event   service.GameEvent     `json:"event"`
	Game    *service.GameSnapshot `json:"game"`
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(ctx, request, "restart")
}

func (c *Client) handleKeepPlaying(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(ctx, request, "keep-playing")
}

func (c *Client) lifecycle(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var response lifecycleResponse
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/"+action, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.Game))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, Start tiles: %d, Win tile: %d, 4-spawn chance: %.0f%%\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Size, cfg.Size, cfg.StartTiles, cfg.WinValue, cfg.FourProbability*100)
	}

	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Tile Merge Game - Complete Instructions

GAME OBJECTIVE:
Merge tiles until one of them reaches the win value (2048 on the classic board).

BOARD:
• The board is a square grid (4x4 by default). Coordinates are (x, y):
  x is the column from the left, y is the row from the top, both 0-based.
• Empty cells are shown as '.', tiles as their value.

MOVEMENT COMMANDS:
• up, right, down, left. Every tile slides as far as it can that way.
• Two tiles of equal value that collide merge into one tile of twice the
  value. The merged value is added to your score.
• A tile merges at most once per move: [2,2,2,2] sliding left gives [4,4,.,.].
• Tiles nearest the wall you slide toward merge first: [2,2,2,.] sliding
  left gives [4,2,.,.].

SPAWNING:
• After every move that changes the board, one new tile appears in a random
  empty cell: a 2 usually, a 4 sometimes (10% on the classic board).
• A move that changes nothing is a no-op: no spawn, no score.

WINNING AND LOSING:
• Reaching the win tile wins the game. Moves are then refused until you
  call keep_playing (continue past the win) or restart_game.
• The game is over when the board is full and no two neighbours are equal.

STRATEGY NOTES:
• Keep your largest tile in a corner and build a chain of decreasing values
  along one edge.
• Prefer two or three directions; use the fourth only when forced.
• Check possible_moves in game_state before planning a long bulk_move.
• Use describe_cell to see which slides would merge a specific tile.

Good luck merging!`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

var neighbourDirections = []struct {
	name string
	dx   int
	dy   int
}{
	{"up", 0, -1},
	{"right", 1, 0},
	{"down", 0, 1},
	{"left", -1, 0},
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}

	var snapshot service.GameSnapshot
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID+"/state", nil, &snapshot); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&snapshot, x, y)), nil
}

func describeCell(snapshot *service.GameSnapshot, x, y int) string {
	size := len(snapshot.Rows)
	if x < 0 || x >= size || y < 0 || y >= size {
		return fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Board is %dx%d (0-%d for both x and y)",
			x, y, size, size, size-1)
	}

	value := snapshot.Rows[y][x]

	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position (%d, %d):\n", x, y)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	if value == 0 {
		b.WriteString("Value: empty\n")
	} else {
		fmt.Fprintf(&b, "Value: %d\n", value)
	}

	b.WriteString("Neighbours:\n")
	var merges []string
	for _, d := range neighbourDirections {
		nx, ny := x+d.dx, y+d.dy
		if nx < 0 || nx >= size || ny < 0 || ny >= size {
			fmt.Fprintf(&b, "  %-5s wall\n", d.name)
			continue
		}
		// nearest tile along the line, skipping empty cells
		nearest := 0
		for nx >= 0 && nx < size && ny >= 0 && ny < size {
			if v := snapshot.Rows[ny][nx]; v != 0 {
				nearest = v
				break
			}
			nx, ny = nx+d.dx, ny+d.dy
		}
		n := snapshot.Rows[y+d.dy][x+d.dx]
		if n == 0 {
			fmt.Fprintf(&b, "  %-5s empty\n", d.name)
		} else {
			fmt.Fprintf(&b, "  %-5s %d\n", d.name, n)
		}
		if value != 0 && nearest == value {
			merges = append(merges, d.name)
		}
	}

	switch {
	case value == 0:
		b.WriteString("\nEmpty cells can receive a spawned tile after any move.")
	case len(merges) == 0:
		b.WriteString("\nNo slide merges this tile right now.")
	default:
		fmt.Fprintf(&b, "\nMerges with an equal tile when sliding: %s", strings.Join(merges, ", "))
	}
	return b.String()
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.Game))
}

func formatBoard(rows [][]int) string {
	width := 1
	for _, row := range rows {
		for _, v := range row {
			if w := len(strconv.Itoa(v)); v != 0 && w > width {
				width = w
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for x, v := range row {
			if x > 0 {
				b.WriteString(" ")
			}
			cell := "."
			if v != 0 {
				cell = strconv.Itoa(v)
			}
			fmt.Fprintf(&b, "%*s", width, cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatSnapshot(snapshot *service.GameSnapshot) string {
	if snapshot == nil {
		return "No game state available"
	}

	var b strings.Builder
	meta := snapshot.Metadata
	fmt.Fprintf(&b, "Score: %d | Best: %d | Max tile: %d/%d\n\n",
		meta.Score, meta.BestScore, snapshot.MaxTile, snapshot.WinValue)
	b.WriteString(formatBoard(snapshot.Rows))

	if len(snapshot.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s", strings.Join(snapshot.PossibleMoves, ","))
	}

	switch {
	case meta.Over:
		b.WriteString("\n💀 GAME OVER")
	case meta.Won && meta.Terminated:
		b.WriteString("\n🎉 YOU WIN! Use keep_playing to continue or restart_game to start over.")
	}

	return b.String()
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Moved %s (+%d, %d merges)\n", result.Direction, result.ScoreDelta, result.Merges)
	} else {
		fmt.Fprintf(&b, "✗ Nothing moved %s\n", result.Direction)
	}
	if result.Spawned != nil {
		fmt.Fprintf(&b, "Spawned %d at (%d,%d)\n", result.Spawned.Value, result.Spawned.Position.X, result.Spawned.Position.Y)
	}

	formatEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.Game))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	size := 0
	if result.Game != nil {
		size = len(result.Game.Rows)
	}
	fmt.Fprintf(&b, "Session: %s • Board: %dx%d\n", sessionID, size, size)

	fmt.Fprintf(&b, "Executed %d/%d moves (score +%d)\n", result.MovesExecuted, result.RequestedMoves, result.ScoreDelta)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			status := "✓"
			if !s.Moved {
				status = "·"
			}
			fmt.Fprintf(&b, "%2d. %-5s %s +%d", s.Idx, s.Dir, status, s.ScoreDelta)
			if s.Merges > 0 {
				fmt.Fprintf(&b, " merges=%d", s.Merges)
			}
			if s.Spawned != nil {
				fmt.Fprintf(&b, " spawn=%d@(%d,%d)", s.Spawned.Value, s.Spawned.Position.X, s.Spawned.Position.Y)
			}
			b.WriteString("\n")
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\n")
		formatEvents(&b, result.Events)
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.Game))
	return b.String()
}
