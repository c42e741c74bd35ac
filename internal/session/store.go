// Package session keeps one SearchController per browser session in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cloo-solutions/cravings/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Factory builds the controller for a new session.
type Factory func() *service.SearchController

type entry struct {
	controller *service.SearchController
	lastSeen   time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	factory  Factory
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewStore(ttl time.Duration, factory Factory, logger logrus.FieldLogger) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		factory:  factory,
		logger:   logger,
		now:      time.Now,
	}
}

// NewID returns a fresh session id.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// Exists reports whether id names a live session.
func (s *Store) Exists(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	return ok && !s.expired(e)
}

// Controller returns the controller for id, creating the session if needed.
func (s *Store) Controller(id string) *service.SearchController {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || s.expired(e) {
		e = &entry{controller: s.factory()}
		s.sessions[id] = e
	}
	e.lastSeen = s.now()
	return e.controller
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle drops sessions not seen within the TTL. Sessions with a search
// in flight are kept until it finishes.
func (s *Store) EvictIdle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.sessions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.expired(e) && !e.controller.Loading() {
			delete(s.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		s.logger.WithFields(logrus.Fields{
			"evicted":   evicted,
			"remaining": len(s.sessions),
		}).Debug("evicted idle sessions")
	}
	return nil
}

func (s *Store) expired(e *entry) bool {
	return s.now().Sub(e.lastSeen) > s.ttl
}
