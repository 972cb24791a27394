package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/KaramelBytes/sheetsift-cli/internal/metrics"
	"github.com/KaramelBytes/sheetsift-cli/internal/session"
)

// CookieName is the browser cookie carrying the session id.
const CookieName = "sheetsift_session"

type entry struct {
	sess     *session.Session
	lastSeen time.Time
}

// Sessions maps browser cookies to independent filter sessions over one
// shared dataset. Idle sessions expire after ttl; when max sessions are
// live the least recently used one is dropped.
type Sessions struct {
	mu       sync.Mutex
	shared   *session.Shared
	sessions map[string]*entry
	ttl      time.Duration
	max      int
	logger   log.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSessions returns an empty session table.
func NewSessions(shared *session.Shared, ttl time.Duration, max int, logger log.Logger, m *metrics.Metrics) *Sessions {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if max <= 0 {
		max = 1
	}
	return &Sessions{
		shared:   shared,
		sessions: make(map[string]*entry),
		ttl:      ttl,
		max:      max,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Get returns the caller's session, creating one and setting the cookie
// when the request carries no live session id.
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpiredLocked(now)

	if c, err := r.Cookie(CookieName); err == nil {
		if e, ok := s.sessions[c.Value]; ok {
			e.lastSeen = now
			return e.sess
		}
	}

	if len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}
	id := uuid.NewString()
	sess := session.New(s.shared, session.Options{ID: id, Logger: s.logger, Metrics: s.metrics})
	s.sessions[id] = &entry{sess: sess, lastSeen: now}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	level.Debug(s.logger).Log("msg", "session created", "session", id, "live", len(s.sessions))
	s.metrics.SetSessions(len(s.sessions))
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) evictExpiredLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			level.Debug(s.logger).Log("msg", "session expired", "session", id)
		}
	}
	s.metrics.SetSessions(len(s.sessions))
}

func (s *Sessions) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		level.Info(s.logger).Log("msg", "session evicted", "session", oldestID, "reason", "max sessions reached")
	}
}
