package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// sessionIDLength is the number of hex characters in generated IDs.
const sessionIDLength = 8

// ActuatorFactory returns the render collaborator for a session's game.
type ActuatorFactory func(sessionID string) engine.Actuator

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	configs     service.ConfigManager
	actuators   ActuatorFactory
	logger      *zap.Logger
	mu          sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithActuatorFactory attaches a render collaborator to every new game.
func WithActuatorFactory(f ActuatorFactory) Option {
	return func(m *Manager) { m.actuators = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithConfigs sets where persisted sessions look up their variant.
func WithConfigs(c service.ConfigManager) Option {
	return func(m *Manager) { m.configs = c }
}

// NewManager creates a new in-memory session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerWithPersistence creates a new session manager with persistence.
// configs resolves each stored session's variant on load.
func NewManagerWithPersistence(persistence SessionPersistence, configs service.ConfigManager, opts ...Option) *Manager {
	m := NewManager(opts...)
	m.persistence = persistence
	m.configs = configs
	return m
}

// Create creates a new session with the given ID and configuration
func (m *Manager) Create(id, configName string, config *engine.Config) (*service.Session, error) {
	if id == "" {
		id = generateSessionID()
	} else if strings.ContainsAny(id, `/\ `) {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session, err := m.newSession(&PersistedSessionData{
		ID:             id,
		ConfigName:     configName,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, config)
	if err != nil {
		return nil, err
	}

	m.sessions[strings.ToLower(id)] = session

	if m.persistence != nil {
		if err := m.persistence.Save(recordFor(session)); err != nil {
			m.logger.Warn("failed to persist session", zap.String("session_id", id), zap.Error(err))
		}
	}

	m.logger.Info("session created", zap.String("session_id", id), zap.String("config", configName))
	return session, nil
}

// newSession builds a game whose storage is seeded from the record.
func (m *Manager) newSession(data *PersistedSessionData, config *engine.Config) (*service.Session, error) {
	storage := engine.NewMemoryStorage()
	storage.SetBestScore(data.BestScore)
	if data.GameState != nil {
		storage.SetGameState(data.GameState)
	}

	opts := []engine.Option{
		engine.WithStorage(storage),
		engine.WithLogger(m.logger.With(zap.String("session_id", data.ID))),
	}
	if m.actuators != nil {
		opts = append(opts, engine.WithActuator(m.actuators(data.ID)))
	}

	game, err := engine.NewGame(config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		ConfigName:     data.ConfigName,
		Game:           game,
		Storage:        storage,
		Config:         config,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// restore rebuilds a session from a persisted record.
func (m *Manager) restore(data *PersistedSessionData) (*service.Session, error) {
	config := engine.DefaultConfig()
	if m.configs != nil {
		loaded, err := m.configs.LoadConfig(data.ConfigName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
		}
		config = loaded
	}
	return m.newSession(data, config)
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && m.persistence.Exists(id) {
		data, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		session, err := m.restore(data)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if cached, ok := m.sessions[strings.ToLower(id)]; ok {
			return cached, nil
		}
		m.sessions[strings.ToLower(id)] = session
		return session, nil
	}

	return nil, ErrSessionNotFound
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id, configName string, config *engine.Config) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, configName, config)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	_, inMemory := m.sessions[lowerID]
	delete(m.sessions, lowerID)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory removes a session from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()

	if m.persistence != nil {
		if err := m.persistence.Save(recordFor(session)); err != nil {
			m.logger.Warn("failed to persist session after access update",
				zap.String("session_id", id), zap.Error(err))
		}
	}

	return nil
}

// Save saves a specific session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(recordFor(session))
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration from memory. Persisted records stay.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Info("expired sessions evicted", zap.Int("count", removed))
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a short random hex ID.
func generateSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionIDLength]
}

// sessionExists checks if a session exists (case-insensitive). Callers hold m.mu.
func (m *Manager) sessionExists(id string) bool {
	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return true
	}
	return m.persistence != nil && m.persistence.Exists(id)
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		if _, exists := m.sessions[strings.ToLower(id)]; exists {
			continue
		}

		data, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn("failed to load persisted session", zap.String("session_id", id), zap.Error(err))
			continue
		}

		session, err := m.restore(data)
		if err != nil {
			m.logger.Warn("failed to restore persisted session", zap.String("session_id", id), zap.Error(err))
			continue
		}

		m.sessions[strings.ToLower(id)] = session
		loadedCount++
	}

	if loadedCount > 0 {
		m.logger.Info("loaded persisted sessions", zap.Int("count", loadedCount))
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	records := make([]*PersistedSessionData, 0, len(m.sessions))
	for _, session := range m.sessions {
		records = append(records, recordFor(session))
	}
	m.mu.RUnlock()

	errorCount := 0
	for _, record := range records {
		if err := m.persistence.Save(record); err != nil {
			m.logger.Warn("failed to save session", zap.String("session_id", record.ID), zap.Error(err))
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}
