// Package session tracks long-running analyses so the HTTP API can start a
// screen, return immediately, and let clients poll for the outcome.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vyasaquant/pkg/core/pipeline"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// retention is how long finished sessions stay pollable.
const retention = 24 * time.Hour

// Session is one background analysis run.
type Session struct {
	ID        string           `json:"id"`
	Request   pipeline.Request `json:"request"`
	Status    Status           `json:"status"`
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Runner is the subset of the orchestrator the manager needs.
type Runner interface {
	Analyze(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Manager runs analyses in background goroutines and keeps their state.
type Manager struct {
	runner   Runner
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewManager(runner Runner) *Manager {
	m := &Manager{
		runner:   runner,
		sessions: make(map[string]*Session),
	}
	go m.cleanup()
	return m
}

// Start launches an analysis in the background and returns its session ID.
func (m *Manager) Start(req pipeline.Request) string {
	id := uuid.New().String()
	now := time.Now()

	s := &Session{
		ID:        id,
		Request:   req,
		Status:    StatusRunning,
		StartedAt: now,
		UpdatedAt: now,
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	go func() {
		// Detached context: the session outlives the HTTP request that started it.
		result, err := m.runner.Analyze(context.Background(), req)

		m.mu.Lock()
		defer m.mu.Unlock()
		s.UpdatedAt = time.Now()
		if err != nil {
			s.Status = StatusFailed
			s.Error = err.Error()
			return
		}
		s.Status = StatusCompleted
		s.Result = result
	}()

	return id
}

// Get returns a snapshot of the session, safe for the caller to serialize.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Active lists the IDs of sessions still running.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active []string
	for id, s := range m.sessions {
		if s.Status == StatusRunning {
			active = append(active, id)
		}
	}
	return active
}

// cleanup drops finished sessions older than the retention window.
func (m *Manager) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		m.mu.Lock()
		for id, s := range m.sessions {
			if s.Status != StatusRunning && time.Since(s.UpdatedAt) > retention {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}
