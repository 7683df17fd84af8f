package service

import (
	"sync"
	"time"

	"github.com/lucky-aeon/agentx/mcp-manager/selection"
)

// Session is one interactive client. It owns the fragment selection used by
// the next apply or save-as-agent.
type Session struct {
	mu sync.RWMutex

	Id              string
	LastReceiveTime time.Time // last request seen for this session

	Selection *selection.Set
}

func NewSession(id string) *Session {
	return &Session{
		Id:              id,
		LastReceiveTime: time.Now(),
		Selection:       selection.New(),
	}
}

func (s *Session) GetId() string {
	return s.Id
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastReceiveTime = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastReceiveTime
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActive())
}
