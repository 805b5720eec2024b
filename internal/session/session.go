// Package session keeps one builder per editing session: the composition
// store, the template selection and the queue-mode planner.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"adbuilder/internal/builder"
	"adbuilder/internal/interfaces"
	"adbuilder/internal/queue"
	"adbuilder/internal/templates"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrLaunchInFlight = errors.New("a launch is already running for this session")
	ErrNotOwner       = errors.New("session belongs to another user")
)

type Session struct {
	ID string
	// Owner is the authenticated user that created the session.
	Owner     string
	TenantID  string
	Store     *builder.Store
	Templates *templates.Orchestrator
	Queue     *queue.Planner
	CreatedAt time.Time

	launching atomic.Bool
	lastUsed  atomic.Int64
}

func (s *Session) Snapshot() builder.Snapshot {
	return s.Store.Snapshot()
}

// ResetAfterLaunch returns the builder to its first step.
func (s *Session) ResetAfterLaunch() {
	s.Store.Reset()
	s.Templates.ResetSelection()
	s.Queue.Clear()
}

// BeginLaunch claims the session for one launch. The returned func releases it.
func (s *Session) BeginLaunch() (func(), error) {
	if !s.launching.CompareAndSwap(false, true) {
		return nil, ErrLaunchInFlight
	}
	return func() { s.launching.Store(false) }, nil
}

func (s *Session) Launching() bool {
	return s.launching.Load()
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	seed      []builder.CreativeAsset
	catalogue interfaces.TemplateCatalogue
	now       func() time.Time
}

func NewRegistry(seed []builder.CreativeAsset, catalogue interfaces.TemplateCatalogue) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		seed:      seed,
		catalogue: catalogue,
		now:       time.Now,
	}
}

func (r *Registry) Create(owner, tenantID string) *Session {
	store := builder.NewStore(r.seed)
	s := &Session{
		ID:        uuid.New().String(),
		Owner:     owner,
		TenantID:  tenantID,
		Store:     store,
		Templates: templates.NewOrchestrator(r.catalogue, store),
		Queue:     queue.NewPlanner(),
		CreatedAt: r.now(),
	}
	s.touch(s.CreatedAt)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session if it exists and belongs to owner.
func (r *Registry) Get(id, owner string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.Owner != owner {
		return nil, ErrNotOwner
	}
	s.touch(r.now())
	return s, nil
}

func (r *Registry) Delete(id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Owner != owner {
		return ErrNotOwner
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle, skipping any that are
// launching, and returns how many were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.Launching() || s.lastUsed.Load() > cutoff {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}
