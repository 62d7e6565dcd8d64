package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Event is one recorded interaction within a session.
type Event struct {
	Type string         `json:"type"`
	At   time.Time      `json:"at"`
	Data map[string]any `json:"data,omitempty"`
}

// Session holds the per-visitor onboarding state. All state is in-memory
// and non-durable; a restart starts everyone over.
type Session struct {
	ID             string         `json:"id"`
	CreatedAt      time.Time      `json:"createdAt"`
	LastSeen       time.Time      `json:"lastSeen"`
	Prompt         string         `json:"prompt,omitempty"`
	RecipeID       string         `json:"recipeId,omitempty"`
	Values         map[string]any `json:"values"`
	CompletedSteps []string       `json:"completedSteps"`
	Events         []Event        `json:"events"`
}

// Config bounds the store.
type Config struct {
	IdleTTL       time.Duration
	MaxSessions   int
	MaxEvents     int
	SweepInterval time.Duration
}

// DefaultConfig returns the store defaults: 30 minute idle expiry, up to
// 10k sessions, 50 events per session.
func DefaultConfig() Config {
	return Config{
		IdleTTL:       30 * time.Minute,
		MaxSessions:   10_000,
		MaxEvents:     50,
		SweepInterval: time.Minute,
	}
}

// Store is an in-memory session store with idle expiry and LRU eviction
// when the session cap is hit.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a Store and starts its background sweeper.
func NewStore(cfg Config, log *zap.Logger) *Store {
	def := DefaultConfig()
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = def.MaxEvents
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		sessions: map[string]*Session{},
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the background sweeper.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Create registers a new session, evicting the least recently used one
// if the store is full.
func (s *Store) Create(prompt string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
		Prompt:    prompt,
		Values:    map[string]any{},
	}
	s.sessions[sess.ID] = sess
	return copySession(sess)
}

// Get returns a snapshot of the session and refreshes its idle clock.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expiredLocked(sess) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	sess.LastSeen = s.now()
	return copySession(sess), nil
}

// Update merges values into the session and optionally marks a step
// complete. Merging is per-key; existing keys not present in values are
// preserved.
func (s *Store) Update(id string, values map[string]any, completeStep string, recipeID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expiredLocked(sess) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}

	for k, v := range values {
		sess.Values[k] = v
	}
	if completeStep != "" && !contains(sess.CompletedSteps, completeStep) {
		sess.CompletedSteps = append(sess.CompletedSteps, completeStep)
	}
	if recipeID != "" {
		sess.RecipeID = recipeID
	}
	sess.LastSeen = s.now()
	return copySession(sess), nil
}

// AppendEvent records an event, dropping the oldest one once the
// per-session buffer is full.
func (s *Store) AppendEvent(id string, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expiredLocked(sess) {
		delete(s.sessions, id)
		return ErrNotFound
	}

	if event.At.IsZero() {
		event.At = s.now()
	}
	sess.Events = append(sess.Events, event)
	if overflow := len(sess.Events) - s.cfg.MaxEvents; overflow > 0 {
		sess.Events = append([]Event(nil), sess.Events[overflow:]...)
	}
	sess.LastSeen = s.now()
	return nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) expiredLocked(sess *Session) bool {
	return s.now().Sub(sess.LastSeen) > s.cfg.IdleTTL
}

func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, sess := range s.sessions {
		if oldestID == "" || sess.LastSeen.Before(oldestAt) {
			oldestID = id
			oldestAt = sess.LastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.log.Debug("evicted least recently used session", zap.String("session_id", oldestID))
	}
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
		}
	}
}

func copySession(in *Session) *Session {
	out := *in
	out.Values = make(map[string]any, len(in.Values))
	for k, v := range in.Values {
		out.Values[k] = v
	}
	out.CompletedSteps = append([]string(nil), in.CompletedSteps...)
	out.Events = append([]Event(nil), in.Events...)
	return &out
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
