package bridge

import (
	"sort"
	"sync"
	"time"

	"github.com/kataras/design-tagger/pkg/design"
	"github.com/kataras/design-tagger/pkg/tags"

	"github.com/google/uuid"
)

// MaxSessions limits concurrent sessions. Opening one more evicts the least
// recently used session.
const MaxSessions = 32

// Session is one open document with its tag assignments. The document is
// replaced as a whole on reload and never mutated in place.
type Session struct {
	ID   string
	Tags *tags.Store

	mu           sync.RWMutex
	doc          *design.Document
	lastAccessed time.Time
}

// Document returns the current document of the session.
func (s *Session) Document() *design.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// SetDocument replaces the document. Tags are kept: ids that no longer
// resolve are skipped on export.
func (s *Session) SetDocument(doc *design.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccessed = now
	s.mu.Unlock()
}

func (s *Session) accessed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessed
}

// Manager owns the open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	now      func() time.Time
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		max:      MaxSessions,
		now:      time.Now,
	}
}

// Open starts a session for doc with an empty tag store.
func (m *Manager) Open(doc *design.Document) *Session {
	s := &Session{
		ID:           uuid.New().String(),
		Tags:         tags.NewStore(),
		doc:          doc,
		lastAccessed: m.now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.max {
		m.evictOldestLocked(len(m.sessions) - m.max + 1)
	}
	m.sessions[s.ID] = s
	return s
}

// Get returns the session with the given id and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// Close ends a session and drops its tags. It reports whether the session
// existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.Tags.Clear()
		delete(m.sessions, id)
	}
	return ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOlderThan closes sessions unused for longer than maxAge and
// returns how many were closed.
func (m *Manager) CleanupOlderThan(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	closed := 0
	for id, s := range m.sessions {
		if s.accessed().Before(cutoff) {
			s.Tags.Clear()
			delete(m.sessions, id)
			closed++
		}
	}
	return closed
}

func (m *Manager) evictOldestLocked(n int) {
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].accessed().Before(all[j].accessed()) })
	for i := 0; i < n && i < len(all); i++ {
		all[i].Tags.Clear()
		delete(m.sessions, all[i].ID)
	}
}
