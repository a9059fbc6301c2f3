package chat

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dominators/sagara/backend/internal/model/action"
)

var ErrSessionNotFound = errors.New("session not found")

// RandFactory builds the random source of each new session.
type RandFactory func() Rand

// SeededRand returns a factory whose sessions draw reproducible sequences from seed.
func SeededRand(seed uint64) RandFactory {
	var n atomic.Uint64
	return func() Rand {
		return rand.New(rand.NewPCG(seed, n.Add(1)))
	}
}

// DefaultRand returns a factory with freshly seeded sources.
func DefaultRand() RandFactory {
	return func() Rand {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// Service keeps one SessionController per user session. Sessions never share state.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]*SessionController
	responder Responder
	actions   action.Store
	newRand   RandFactory
}

// NewService bootstraps the in-memory session registry.
func NewService(responder Responder, actions action.Store, newRand RandFactory) *Service {
	if newRand == nil {
		newRand = DefaultRand()
	}
	return &Service{
		sessions:  make(map[string]*SessionController),
		responder: responder,
		actions:   actions,
		newRand:   newRand,
	}
}

// CreateSession starts a new session and returns its controller.
func (s *Service) CreateSession(_ context.Context) *SessionController {
	controller := NewSessionController(uuid.NewString(), s.responder, s.actions, s.newRand())

	s.mu.Lock()
	s.sessions[controller.ID()] = controller
	s.mu.Unlock()

	log.Printf("[chat] session created id=%s", controller.ID())
	return controller
}

// GetSession retrieves a session controller by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*SessionController, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	controller, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return controller, nil
}

// EndSession drops a session and its state.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	controller, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	// outside the registry lock: end waits for an in-flight operation
	controller.end()
	log.Printf("[chat] session ended id=%s", sessionID)
	return nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepIdle removes sessions unused for longer than ttl and returns how many were removed.
func (s *Service) SweepIdle(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}

	s.mu.RLock()
	var expired []string
	for id, controller := range s.sessions {
		if now.Sub(controller.IdleSince()) > ttl {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	s.mu.Lock()
	removed := make([]*SessionController, 0, len(expired))
	for _, id := range expired {
		controller, ok := s.sessions[id]
		// re-check: the session may have been used since the read pass
		if !ok || now.Sub(controller.IdleSince()) <= ttl {
			continue
		}
		delete(s.sessions, id)
		removed = append(removed, controller)
	}
	s.mu.Unlock()

	for _, controller := range removed {
		controller.end()
	}
	return len(removed)
}

// StartJanitor sweeps idle sessions every interval until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context, interval, ttl time.Duration) {
	if ttl <= 0 || interval <= 0 {
		log.Println("[chat] idle session janitor disabled")
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		log.Printf("[chat] idle session janitor started interval=%s ttl=%s", interval, ttl)

		for {
			select {
			case <-ctx.Done():
				log.Printf("[chat] idle session janitor stopped: %v", ctx.Err())
				return
			case t := <-ticker.C:
				if removed := s.SweepIdle(t.UTC(), ttl); removed > 0 {
					log.Printf("[chat] expired idle sessions count=%d remaining=%d", removed, s.Count())
				}
			}
		}
	}()
}
