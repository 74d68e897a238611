package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/telemetry"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	tracer   trace.Tracer
	mu       sync.RWMutex
}

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = l }
}

// WithTracer sets the tracer used for per-operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *gameServiceImpl) { s.tracer = t }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   zap.NewNop(),
		tracer:   telemetry.Tracer("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "service."+name)
	if sessionID != "" {
		span.SetAttributes(attribute.String("session.id", sessionID))
	}
	return ctx, span
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// getSession loads a session and bumps its access time.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Debug("failed to update last access", zap.String("session_id", sessionID), zap.Error(err))
	}
	return sess, nil
}

// persist writes the session after a mutation. Failures are logged only.
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session",
			zap.String("session_id", sessionID), zap.String("op", op), zap.Error(err))
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Game:           newSnapshot(sess.Game),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	_, span := s.startSpan(ctx, "create_session", "")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.Config
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, failSpan(span, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs))
				}
				return nil, failSpan(span, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName))
			}
			return nil, failSpan(span, fmt.Errorf("failed to load config %s: %w", configName, err))
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("failed to create session: %w", err))
	}

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("config.id", configID),
		attribute.Int("board.size", config.Size),
	)
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	_, span := s.startSpan(ctx, "get_session", sessionID)
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	_, span := s.startSpan(ctx, "list_sessions", "")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	span.SetAttributes(attribute.Int("sessions.count", len(result)))
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	_, span := s.startSpan(ctx, "delete_session", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return failSpan(span, err)
	}
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	_, span := s.startSpan(ctx, "move", sessionID)
	defer span.End()

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, failSpan(span, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	wasWon := sess.Game.Won()
	res := sess.Game.Move(dir)

	result := &MoveResult{
		Success:    res.Moved,
		Direction:  dir.String(),
		ScoreDelta: res.ScoreDelta,
		Merges:     res.Merges,
		Spawned:    res.Spawned,
		Events:     moveEvents(sess.Game, res, wasWon),
		Game:       newSnapshot(sess.Game),
	}
	result.Message = result.Events[0].Message

	if res.Moved {
		s.persist(sessionID, "move")
	}

	span.SetAttributes(
		attribute.String("move.direction", dir.String()),
		attribute.Bool("move.moved", res.Moved),
		attribute.Int("move.score_delta", res.ScoreDelta),
		attribute.Int("game.score", sess.Game.Score()),
	)
	s.logger.Debug("move",
		zap.String("session_id", sessionID),
		zap.Stringer("direction", dir),
		zap.Bool("moved", res.Moved),
		zap.Int("score_delta", res.ScoreDelta),
		zap.Int("score", sess.Game.Score()),
	)
	return result, nil
}

// BulkMove executes multiple moves in sequence, stopping at the first invalid
// direction or as soon as the game stops accepting moves.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	_, span := s.startSpan(ctx, "bulk_move", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	game := sess.Game
	startScore := game.Score()

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Success:        true,
		Events:         make([]GameEvent, 0),
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	changed := false
	for i, move := range moves {
		if game.IsTerminated() {
			result.StopReasonCode, result.StoppedReason = terminationReason(game)
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(move)
		if err != nil {
			result.Success = false
			result.StopReasonCode = StopInvalidDir
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, err)
			result.StoppedOnMove = i + 1
			break
		}

		wasWon := game.Won()
		res := game.Move(dir)
		changed = changed || res.Moved
		result.MovesExecuted++
		result.Events = append(result.Events, moveEvents(game, res, wasWon)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			Dir:        dir.String(),
			Moved:      res.Moved,
			ScoreDelta: res.ScoreDelta,
			Merges:     res.Merges,
			Spawned:    res.Spawned,
			Won:        res.Won,
			Over:       res.Over,
		})
	}

	if result.StopReasonCode == "" && game.IsTerminated() {
		result.StopReasonCode, result.StoppedReason = terminationReason(game)
	}

	result.ScoreDelta = game.Score() - startScore
	result.Game = newSnapshot(game)

	if changed {
		s.persist(sessionID, "bulk_move")
	}

	span.SetAttributes(
		attribute.Int("bulk.requested", result.RequestedMoves),
		attribute.Int("bulk.executed", result.MovesExecuted),
		attribute.String("bulk.stop", result.StopReasonCode),
		attribute.Int("game.score", game.Score()),
	)
	s.logger.Info("bulk move",
		zap.String("session_id", sessionID),
		zap.Int("executed", result.MovesExecuted),
		zap.Int("requested", result.RequestedMoves),
		zap.String("stop", result.StopReasonCode),
		zap.Int("score_delta", result.ScoreDelta),
	)
	return result, nil
}

func terminationReason(game *engine.Game) (code, reason string) {
	if game.Over() {
		return StopGameOver, fmt.Sprintf("game over with score %d", game.Score())
	}
	return StopWon, "game won; keep playing to continue"
}

// Restart starts a fresh game in the session, keeping the best score
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*GameSnapshot, error) {
	_, span := s.startSpan(ctx, "restart", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	sess.Game.Restart()
	s.persist(sessionID, "restart")

	s.logger.Info("game restarted", zap.String("session_id", sessionID), zap.Int("best_score", sess.Game.BestScore()))
	return newSnapshot(sess.Game), nil
}

// KeepPlaying lets a won game accept moves again
func (s *gameServiceImpl) KeepPlaying(ctx context.Context, sessionID string) (*GameSnapshot, error) {
	_, span := s.startSpan(ctx, "keep_playing", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	sess.Game.KeepPlaying()
	s.persist(sessionID, "keep_playing")

	return newSnapshot(sess.Game), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameSnapshot, error) {
	_, span := s.startSpan(ctx, "game_state", sessionID)
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}
	return newSnapshot(sess.Game), nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Config, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.Config) error {
	_, span := s.startSpan(ctx, "save_config", "")
	defer span.End()
	span.SetAttributes(attribute.String("config.id", configName))

	if err := s.configs.SaveConfig(configName, config); err != nil {
		return failSpan(span, err)
	}
	return nil
}

// newSnapshot captures a game for transport.
func newSnapshot(g *engine.Game) *GameSnapshot {
	board := g.Board()
	rows := make([][]int, board.Size())
	for y := range rows {
		rows[y] = make([]int, board.Size())
	}
	board.EachCell(func(x, y int, tile *engine.Tile) {
		if tile != nil {
			rows[y][x] = tile.Value
		}
	})

	possible := make([]string, 0, len(engine.Directions))
	for _, d := range g.PossibleMoves() {
		possible = append(possible, d.String())
	}

	return &GameSnapshot{
		State:         g.Serialize(),
		Rows:          rows,
		Tiles:         board.View(),
		Metadata:      g.Metadata(),
		PossibleMoves: possible,
		MaxTile:       engine.MaxTile(board),
		WinValue:      g.Config().WinValue,
	}
}

// moveEvents describes one Move call. The first event always summarizes it.
func moveEvents(g *engine.Game, res engine.MoveResult, wasWon bool) []GameEvent {
	now := time.Now()

	if res.Ignored {
		msg := "Move ignored: game is over, restart to play again"
		if !g.Over() {
			msg = "Move ignored: game won, choose keep playing to continue"
		}
		return []GameEvent{{Type: EventIgnored, Message: msg, Timestamp: now}}
	}

	if !res.Moved {
		return []GameEvent{{
			Type:      EventNoOp,
			Message:   fmt.Sprintf("Nothing moved %s", res.Direction),
			Timestamp: now,
		}}
	}

	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s: +%d points, score %d", res.Direction, res.ScoreDelta, g.Score()),
		Timestamp: now,
		Value:     res.ScoreDelta,
	}}

	for _, tile := range g.Board().View() {
		if len(tile.MergedFrom) == 0 {
			continue
		}
		pos := tile.Position
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("Merged into %d at (%d,%d)", tile.Value, pos.X, pos.Y),
			Timestamp: now,
			Position:  &pos,
			Value:     tile.Value,
		})
	}

	if res.Won && !wasWon {
		events = append(events, GameEvent{
			Type:      EventWon,
			Message:   fmt.Sprintf("Reached %d!", g.Config().WinValue),
			Timestamp: now,
			Value:     g.Config().WinValue,
		})
	}

	if res.Over {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   fmt.Sprintf("No moves left. Final score %d", g.Score()),
			Timestamp: now,
			Value:     g.Score(),
		})
	}

	return events
}
