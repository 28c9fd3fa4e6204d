package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"microcasa/internal/deck"
	"microcasa/internal/metrics"
	"microcasa/internal/telemetry"
)

// ObserverFactory builds the telemetry observer of one session.
type ObserverFactory func(sessionID string) telemetry.Observer

type Options struct {
	Slides SlideFactory
	// State persists sessions; nil keeps them in memory only.
	State *StateManager
	// Observers are instantiated per session and receive every appended reading.
	Observers []ObserverFactory
	// FeedOptions are applied to every new feed (tests inject source and clock).
	FeedOptions []telemetry.Option
	Logger      *zap.Logger
	// Now stamps session activity for EvictIdle; defaults to time.Now.
	Now func() time.Time
}

// Manager owns the live sessions of the process.
type Manager struct {
	opts     Options
	log      *zap.Logger
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		opts:     opts,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new seeded session at slide 0.
func (m *Manager) Create() (*Session, error) {
	s, err := m.build(uuid.NewString(), nil)
	if err != nil {
		return nil, err
	}
	s.Feed.Seed()

	if m.opts.State != nil {
		if err := m.opts.State.Create(s.ID, s.Deck.Active(), s.Feed.All()); err != nil {
			return nil, err
		}
	}
	m.attach(s)

	m.mu.Lock()
	s.lastSeen = m.opts.Now()
	m.sessions[s.ID] = s
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	metrics.SessionsStarted.Inc()
	m.log.Info("session started", zap.String("session", s.ID))
	return s, nil
}

// Get returns a live session, restoring it from the state store if needed.
// ok is false when the id is unknown.
func (m *Manager) Get(id string) (s *Session, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.lastSeen = m.opts.Now()
		return s, true, nil
	}
	if m.opts.State == nil || id == "" {
		return nil, false, nil
	}

	index, rows, err := m.opts.State.Load(id)
	if errors.Is(err, ErrUnknownSession) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s, err = m.build(id, rows)
	if err != nil {
		return nil, false, err
	}
	s.Deck.GoTo(index)
	m.attach(s)

	s.lastSeen = m.opts.Now()
	m.sessions[id] = s
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.log.Info("session restored", zap.String("session", id), zap.Int("slide", index), zap.Int("readings", len(rows)))
	return s, true, nil
}

// Open returns the session for id, creating a fresh one when id is unknown.
func (m *Manager) Open(id string) (s *Session, created bool, err error) {
	s, ok, err := m.Get(id)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return s, false, nil
	}
	s, err = m.Create()
	return s, err == nil, err
}

// EvictIdle drops sessions not opened for at least idle, from memory and
// from the state store. With idle set to the cookie lifetime the evicted
// sessions are unreachable anyway: their cookie has expired.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := m.opts.Now().Add(-idle)

	m.mu.Lock()
	var evicted []string
	for id, s := range m.sessions {
		if !s.lastSeen.After(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, id := range evicted {
		if m.opts.State != nil {
			if err := m.opts.State.Delete(id); err != nil {
				m.log.Error("delete expired session", zap.String("session", id), zap.Error(err))
				continue
			}
		}
		m.log.Info("session expired", zap.String("session", id))
	}
	return len(evicted)
}

// Janitor calls EvictIdle every interval until ctx is done.
func (m *Manager) Janitor(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.EvictIdle(idle)
		}
	}
}

// Len is the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) build(id string, rows []telemetry.Reading) (*Session, error) {
	if m.opts.Slides == nil {
		return nil, errors.New("session manager has no slide factory")
	}
	s := &Session{ID: id}

	opts := append([]telemetry.Option{telemetry.WithObserver(s.observe)}, m.opts.FeedOptions...)
	for _, newObserver := range m.opts.Observers {
		opts = append(opts, telemetry.WithObserver(newObserver(id)))
	}
	if rows == nil {
		s.Feed = telemetry.New(opts...)
	} else {
		s.Feed = telemetry.Restore(rows, opts...)
	}

	d, err := deck.New(m.opts.Slides(s))
	if err != nil {
		return nil, err
	}
	s.Deck = d
	return s, nil
}

// attach wires write-through persistence once the initial state is stored.
func (m *Manager) attach(s *Session) {
	state := m.opts.State
	if state == nil {
		return
	}
	log := m.log.With(zap.String("session", s.ID))

	s.record = func(r telemetry.Reading) {
		if err := state.AppendReading(s.ID, r); err != nil {
			log.Error("persist reading failed", zap.Int("seq", r.Seq), zap.Error(err))
		}
	}
	s.onNavigate = func(index int) {
		if err := state.UpdateIndex(s.ID, index); err != nil {
			log.Error("persist slide index failed", zap.Int("slide", index), zap.Error(err))
		}
	}
}
