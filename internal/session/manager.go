package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/code"
	"github.com/gsarma/judgepad/internal/hostmsg"
)

var ErrNotFound = errors.New("session not found")

// Manager owns the live sessions of the process. With a CredentialStore,
// sessions are registered durably and a session unknown to this process is
// rebuilt from its stored row on first use (with a fresh editor).
type Manager struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	catalogOnce sync.Once
	catalog     *Session
}

func NewManager(deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{deps: deps, sessions: make(map[uuid.UUID]*Session)}
}

// Create starts and initialises a new session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.New()
	if m.deps.Credentials != nil {
		var err error
		if id, err = m.deps.Credentials.Create(ctx); err != nil {
			return nil, err
		}
	}
	s := m.start(ctx, id)
	m.deps.Logger.Info("session created", zap.String("session_id", id.String()))
	return s, nil
}

// Get returns the live session id, restoring it from the credential store
// when this process has not seen it yet.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if m.deps.Credentials == nil {
		return nil, ErrNotFound
	}

	exists, err := m.deps.Credentials.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	key, err := m.deps.Credentials.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s = m.start(ctx, id)
	if key != "" {
		s.SetCredential(key)
	}
	m.deps.Logger.Info("session restored", zap.String("session_id", id.String()))
	return s, nil
}

func (m *Manager) start(ctx context.Context, id uuid.UUID) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s
	}
	s := New(id, m.deps)
	m.sessions[id] = s
	m.mu.Unlock()

	s.Initialise(ctx)
	return s
}

// Remove drops a session and cancels its run.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Catalog returns an unregistered session used only for catalog reads
// made outside of any session.
func (m *Manager) Catalog() *Session {
	m.catalogOnce.Do(func() {
		deps := m.deps
		deps.Bus = nil
		m.catalog = New(uuid.Nil, deps)
	})
	return m.catalog
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// HandleCommand routes a host command to its session. It is a
// hostmsg.CommandHandler.
func (m *Manager) HandleCommand(ctx context.Context, id uuid.UUID, cmd hostmsg.Command) (*hostmsg.Event, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Handle(ctx, cmd)
}

// Execute runs req on behalf of session id without touching its editor.
func (m *Manager) Execute(ctx context.Context, id uuid.UUID, req code.Request) (*code.Result, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, req)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
