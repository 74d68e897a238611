package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/config"
	"github.com/wricardo/tile-merge-game/game/service"
	"github.com/wricardo/tile-merge-game/game/session"
)

// storageOptions selects and configures the session store.
type storageOptions struct {
	Kind        string
	SessionsDir string
	DatabaseURL string
}

// services is everything a mode needs to serve games.
type services struct {
	configs     *config.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	game        service.GameService
	close       func()
}

// newPersistence opens the selected session store. The returned persistence
// is nil for memory storage.
func newPersistence(ctx context.Context, opts storageOptions, logger *zap.Logger) (session.SessionPersistence, func(), error) {
	noop := func() {}

	switch opts.Kind {
	case storageFile, "":
		p, err := session.NewFilePersistence(opts.SessionsDir)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create session persistence: %w", err)
		}
		logger.Info("using file session storage", zap.String("dir", opts.SessionsDir))
		return p, noop, nil
	case storagePostgres:
		if opts.DatabaseURL == "" {
			return nil, noop, fmt.Errorf("postgres storage needs --database-url")
		}
		p, err := session.NewPostgresPersistence(ctx, opts.DatabaseURL, logger)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("using postgres session storage")
		return p, p.Close, nil
	case storageMemory:
		logger.Info("using in-memory session storage")
		return nil, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage %q (want file, postgres or memory)", opts.Kind)
}

// buildServices wires config and session managers and the game service.
func buildServices(ctx context.Context, configDir string, storage storageOptions, logger *zap.Logger, opts ...session.Option) (*services, error) {
	configManager, err := config.NewManager(configDir, logger.Named("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, closeStore, err := newPersistence(ctx, storage, logger)
	if err != nil {
		return nil, err
	}

	opts = append([]session.Option{session.WithLogger(logger.Named("session"))}, opts...)
	var sessionManager *session.Manager
	if persistence != nil {
		sessionManager = session.NewManagerWithPersistence(persistence, configManager, opts...)
		if err := sessionManager.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", zap.Error(err))
		}
	} else {
		opts = append(opts, session.WithConfigs(configManager))
		sessionManager = session.NewManager(opts...)
	}

	gameService := service.NewGameService(sessionManager, configManager, service.WithLogger(logger.Named("service")))

	return &services{
		configs:     configManager,
		sessions:    sessionManager,
		persistence: persistence,
		game:        gameService,
		close:       closeStore,
	}, nil
}

// startBackground runs session expiry and, for stored sessions, pruning of
// sessions whose records were deleted behind our back.
func (s *services) startBackground(ctx context.Context, ttl time.Duration, logger *zap.Logger) {
	go sessionCleanupRoutine(ctx, s.sessions, ttl, time.Hour, logger)
	if s.persistence != nil {
		go storeSyncRoutine(ctx, s.sessions, s.persistence, 5*time.Second, logger)
	}
}

// shutdown saves every live session and closes the store.
func (s *services) shutdown(logger *zap.Logger) {
	if err := s.sessions.SaveAllSessions(); err != nil {
		logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}
	s.close()
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// storeSyncRoutine drops in-memory sessions whose stored record is gone.
func storeSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, persistence, logger); pruned > 0 {
				logger.Info("store sync pruned orphaned sessions", zap.Int("pruned", pruned))
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence, logger *zap.Logger) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			logger.Debug("pruned session from memory", zap.String("session_id", s.ID))
		}
	}
	return pruned
}
