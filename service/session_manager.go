package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

type SessionManager struct {
	sessions      map[string]*Session
	sessionsMutex sync.RWMutex

	gcInterval time.Duration
	timeout    time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// NewSessionManager starts a GC loop that drops sessions idle for longer than
// timeout. A non-positive gcInterval disables the loop.
func NewSessionManager(gcInterval, timeout time.Duration) *SessionManager {
	m := &SessionManager{
		sessions:   make(map[string]*Session),
		gcInterval: gcInterval,
		timeout:    timeout,
		done:       make(chan struct{}),
	}
	if gcInterval > 0 {
		go m.loopGC()
	}
	return m
}

// GetSession returns the session with the given id and marks it as used.
func (m *SessionManager) GetSession(_ xlog.Logger, sessionId string) (*Session, bool) {
	m.sessionsMutex.RLock()
	session, ok := m.sessions[sessionId]
	m.sessionsMutex.RUnlock()
	if !ok {
		return nil, false
	}
	session.Touch()
	return session, true
}

// CreateSession creates a new session.
func (m *SessionManager) CreateSession(xl xlog.Logger) *Session {
	session := NewSession(uuid.New().String())
	m.sessionsMutex.Lock()
	m.sessions[session.Id] = session
	m.sessionsMutex.Unlock()
	xl.Infof("session created: %s", session.Id)
	return session
}

// CloseSession drops a session. It reports whether the session existed.
func (m *SessionManager) CloseSession(xl xlog.Logger, id string) bool {
	m.sessionsMutex.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.sessionsMutex.Unlock()
	if ok {
		xl.Infof("session closed: %s", id)
	}
	return ok
}

func (m *SessionManager) Len() int {
	m.sessionsMutex.RLock()
	defer m.sessionsMutex.RUnlock()
	return len(m.sessions)
}

// loopGC drops sessions that stayed idle longer than the timeout.
func (m *SessionManager) loopGC() {
	tick := time.NewTicker(m.gcInterval)
	defer tick.Stop()
	xl := xlog.NewLogger("[SessionManager-GC]")

	for {
		select {
		case <-m.done:
			return
		case now := <-tick.C:
			if n := m.collect(now); n > 0 {
				xl.Infof("GC removed %d idle sessions, timeout: %s", n, m.timeout)
			}
		}
	}
}

func (m *SessionManager) collect(now time.Time) int {
	m.sessionsMutex.Lock()
	defer m.sessionsMutex.Unlock()
	removed := 0
	for id, session := range m.sessions {
		if session == nil || session.idleSince(now) > m.timeout {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *SessionManager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.sessionsMutex.Lock()
		clear(m.sessions)
		m.sessionsMutex.Unlock()
	})
}
