package annotation

import (
	"sync"

	"github.com/google/uuid"
)

// ============================================================
// Tool sessions
// ============================================================

// Tool is any capture tool that can live in a session.
type Tool interface {
	Kind() string
}

// Sessions keeps transient tool state per session so concurrent editors never
// share drag state.
type Sessions struct {
	mu    sync.Mutex
	tools map[string]Tool // session id -> tool
}

func NewSessions() *Sessions {
	return &Sessions{
		tools: make(map[string]Tool),
	}
}

// Open registers tool and returns its session id.
func (s *Sessions) Open(tool Tool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.tools[id] = tool
	return id
}

func (s *Sessions) Get(id string) (Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[id]
	return tool, ok
}

// Close discards the session and any uncommitted state in it.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.tools[id].(*MarkerDrag); ok {
		d.Cancel()
	}
	delete(s.tools, id)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tools)
}
