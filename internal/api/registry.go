package api

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-trainer/internal/trainer"
	"golang.org/x/sync/singleflight"
)

// SessionFactory builds the session of a collection on first use.
type SessionFactory func(ctx context.Context, collection string) (*trainer.Session, error)

type sessionEntry struct {
	mu      sync.Mutex
	session *trainer.Session
}

// Registry owns one trainer session per collection and serializes every
// access to a given session.
type Registry struct {
	mu       sync.Mutex
	group    singleflight.Group
	factory  SessionFactory
	sessions map[string]*sessionEntry
}

// NewRegistry creates an empty Registry.
func NewRegistry(factory SessionFactory) *Registry {
	if factory == nil {
		panic("session factory cannot be nil")
	}
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*sessionEntry),
	}
}

// With runs fn with exclusive access to the session of collection,
// creating the session if needed.
func (r *Registry) With(ctx context.Context, collection string, fn func(*trainer.Session) error) error {
	entry, err := r.entry(ctx, collection)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

func (r *Registry) entry(ctx context.Context, collection string) (*sessionEntry, error) {
	if e, ok := r.lookup(collection); ok {
		return e, nil
	}

	// The build runs outside mu. The group collapses concurrent builds of
	// one collection into a single factory call.
	v, err, _ := r.group.Do(collection, func() (any, error) {
		if e, ok := r.lookup(collection); ok {
			return e, nil
		}
		s, err := r.factory(ctx, collection)
		if err != nil {
			return nil, err
		}
		e := &sessionEntry{session: s}
		r.mu.Lock()
		r.sessions[collection] = e
		r.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sessionEntry), nil
}

func (r *Registry) lookup(collection string) (*sessionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[collection]
	return e, ok
}

// Drop forgets the session of collection. The next access builds a new one.
func (r *Registry) Drop(collection string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, collection)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
