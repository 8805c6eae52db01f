// Package session keeps calculator sessions in memory, each expiring after a
// period of inactivity.
package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"go-chi-calculator/internal/calculator"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session store closed")
)

// Session is one calculator owned by a single user. Transitions on the
// same session are serialized.
type Session struct {
	ID string

	mu      sync.Mutex
	machine *calculator.Machine
}

func (s *Session) Apply(t calculator.Token) calculator.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Apply(t)
}

// ApplyAll runs tokens in order under one lock and returns every frame
// together with the state they left behind.
func (s *Session) ApplyAll(tokens []calculator.Token) ([]calculator.Frame, calculator.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := make([]calculator.Frame, 0, len(tokens))
	for _, t := range tokens {
		frames = append(frames, s.machine.Apply(t))
	}
	return frames, s.machine.Snapshot()
}

func (s *Session) Snapshot() calculator.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Snapshot()
}

type entry struct {
	session  *Session
	expireAt int64
}

// Store holds sessions keyed by id.
type Store struct {
	mu          sync.RWMutex
	cleanerOnce sync.Once
	cleanerCh   chan struct{}
	items       map[string]entry
	ttl         time.Duration
	opts        calculator.Options
	inShutdown  atomic.Bool
}

// NewStore starts a store whose sessions expire after ttl without use. A
// background cleaner sweeps expired sessions every cleanup interval.
func NewStore(opts calculator.Options, ttl, cleanup time.Duration) *Store {
	s := &Store{
		cleanerCh: make(chan struct{}),
		items:     make(map[string]entry),
		ttl:       ttl,
		opts:      opts,
	}

	go func() {
		ticker := time.NewTicker(cleanup)
		defer ticker.Stop()

		for {
			select {
			case <-s.cleanerCh:
				return
			case <-ticker.C:
				s.cleanExpired()
			}
		}
	}()
	return s
}

// Create opens a new session with a fresh calculator.
func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inShutdown.Load() {
		return nil, ErrClosed
	}

	sess := &Session{
		ID:      uuid.New().String(),
		machine: calculator.NewMachine(s.opts),
	}
	s.items[sess.ID] = entry{session: sess, expireAt: s.deadline()}
	return sess, nil
}

// Get returns the live session for id and extends its lifetime.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok || time.Now().UnixNano() > item.expireAt {
		return nil, ErrNotFound
	}

	item.expireAt = s.deadline()
	s.items[id] = item
	return item.session, nil
}

// GetOrCreate returns the session stored under key, creating one when none
// is live. Chat front ends key sessions by chat and user instead of uuid.
func (s *Store) GetOrCreate(key string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[key]; ok && time.Now().UnixNano() <= item.expireAt {
		item.expireAt = s.deadline()
		s.items[key] = item
		return item.session, false, nil
	}

	if s.inShutdown.Load() {
		return nil, false, ErrClosed
	}

	sess := &Session{ID: key, machine: calculator.NewMachine(s.opts)}
	s.items[key] = entry{session: sess, expireAt: s.deadline()}
	return sess, true, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

const shutdownIntervalMax = 500 * time.Millisecond

// Shutdown stops accepting new sessions and waits for the existing ones to
// expire, or for ctx to be done.
func (s *Store) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.inShutdown.Store(true)
	s.mu.Unlock()
	s.closeCleaner()

	intervalBase := time.Millisecond
	nextInterval := func() time.Duration {
		interval := intervalBase + time.Duration(rand.Intn(int(intervalBase/10)))

		intervalBase *= 2
		if intervalBase > shutdownIntervalMax {
			intervalBase = shutdownIntervalMax
		}
		return interval
	}

	timer := time.NewTimer(nextInterval())
	defer timer.Stop()
	for {
		s.cleanExpired()
		if s.Len() == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(nextInterval())
		}
	}
}

// Close drops every session immediately. It returns ErrClosed when the
// store was already shut down or closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasClosed := s.inShutdown.Swap(true)
	s.cleanerOnce.Do(func() { close(s.cleanerCh) })
	clear(s.items)

	if wasClosed {
		return ErrClosed
	}
	return nil
}

// Collector exposes the number of live sessions to Prometheus.
func (s *Store) Collector() prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "calculator_sessions_active",
		Help: "Number of calculator sessions currently held in memory.",
	}, func() float64 {
		return float64(s.Len())
	})
}

func (s *Store) deadline() int64 {
	return time.Now().Add(s.ttl).UnixNano()
}

func (s *Store) cleanExpired() {
	now := time.Now().UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.items {
		if now > v.expireAt {
			delete(s.items, k)
		}
	}
}

func (s *Store) closeCleaner() {
	s.cleanerOnce.Do(func() {
		close(s.cleanerCh)
	})
}
