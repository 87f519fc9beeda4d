package authstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/servanahq/servana-backend/internal/auth"
	"github.com/servanahq/servana-backend/pkg/enums"
	"github.com/servanahq/servana-backend/pkg/logger"
)

// Snapshot is the read model exposed to consumers: who is signed in, with
// what role, and whether the initial session fetch has completed.
type Snapshot struct {
	Session   *auth.Session
	Role      *enums.Role
	IsLoading bool
}

// Authenticated reports whether an identity is present.
func (s Snapshot) Authenticated() bool {
	return s.Session != nil
}

type sessionSource interface {
	OnAuthStateChange(fn func(auth.Change)) (unsubscribe func())
}

type roleResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) enums.Role
}

// SnapshotFunc fetches the current session independently of the push stream.
type SnapshotFunc func(ctx context.Context) (*auth.Session, error)

// Store is the single source of truth for session and role state. All
// mutations run on one task loop: push events and the snapshot fetch post
// tasks onto it, so state has exactly one writer no matter how callbacks
// interleave. Role resolution is posted as a follow-up task rather than
// executed inside the auth callback, which must not call back into the
// provider.
type Store struct {
	provider sessionSource
	snapshot SnapshotFunc
	resolver roleResolver
	logg     *logger.Logger

	tasks chan func()
	done  chan struct{}

	mu          sync.RWMutex
	session     *auth.Session
	role        *enums.Role
	isLoading   bool
	initialDone bool
	started     bool
	unsubscribe func()

	subMu       sync.Mutex
	subscribers map[int]chan Snapshot
	nextSubID   int
}

// StoreParams bundles the dependencies for an auth state store.
type StoreParams struct {
	Provider sessionSource
	Snapshot SnapshotFunc
	Resolver roleResolver
	Logger   *logger.Logger
}

// NewStore constructs the store in the uninitialized, loading state.
func NewStore(params StoreParams) (*Store, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("session provider is required")
	}
	if params.Snapshot == nil {
		return nil, fmt.Errorf("snapshot func is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("role resolver is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Store{
		provider:    params.Provider,
		snapshot:    params.Snapshot,
		resolver:    params.Resolver,
		logg:        params.Logger,
		tasks:       make(chan func(), 64),
		done:        make(chan struct{}),
		isLoading:   true,
		subscribers: make(map[int]chan Snapshot),
	}, nil
}

// Start registers the push listener, kicks off the independent snapshot
// fetch, and runs the task loop until Stop or context cancellation. The
// two event sources may resolve in either order; application is
// last-write-wins on identity so both orders converge.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("store already started")
	}
	s.started = true
	s.mu.Unlock()

	s.unsubscribe = s.provider.OnAuthStateChange(func(change auth.Change) {
		s.post(func() { s.apply(ctx, change.Session, false) })
	})

	go s.run(ctx)

	go func() {
		sess, err := s.snapshot(ctx)
		if err != nil {
			s.logg.Error(ctx, "initial session fetch failed", err)
			sess = nil
		}
		s.post(func() { s.apply(ctx, sess, true) })
	}()

	return nil
}

// Stop unsubscribes from the push stream and halts the task loop.
func (s *Store) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	close(s.done)
}

// Current returns the present snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Session: s.session, Role: s.role, IsLoading: s.isLoading}
}

// Subscribe returns a channel of snapshots (latest wins; slow readers skip
// intermediates) and its cancel function.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// Clear drops identity and role immediately. Sign-out calls this so logout
// does not wait for the provider's event echo; the echo re-applies the same
// nil state, which is a no-op.
func (s *Store) Clear() {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		// No task loop is running to apply the post, and state has a
		// single reader path, so clear in place.
		s.clearState()
		return
	}

	applied := make(chan struct{})
	s.post(func() {
		s.clearState()
		close(applied)
	})
	select {
	case <-applied:
	case <-s.done:
	}
}

func (s *Store) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case task := <-s.tasks:
			task()
		}
	}
}

func (s *Store) post(task func()) {
	select {
	case s.tasks <- task:
	case <-s.done:
	}
}

// apply runs on the task loop. initial marks the snapshot-fetch path,
// which is the only event allowed to clear isLoading.
func (s *Store) apply(ctx context.Context, sess *auth.Session, initial bool) {
	s.mu.Lock()
	if sess != nil {
		s.session = sess
		// Role is resolved on a follow-up task, never inline.
		userID := sess.UserID
		s.post(func() { s.resolveRole(ctx, userID) })
	} else {
		s.session = nil
		s.role = nil
	}
	if initial && !s.initialDone {
		s.initialDone = true
		s.isLoading = false
	}
	s.mu.Unlock()

	s.publish()
}

func (s *Store) resolveRole(ctx context.Context, userID uuid.UUID) {
	role := s.resolver.Resolve(ctx, userID)

	s.mu.Lock()
	// The session may have changed or cleared while the lookup ran.
	if s.session == nil || s.session.UserID != userID {
		s.mu.Unlock()
		return
	}
	s.role = &role
	s.mu.Unlock()

	s.publish()
}

func (s *Store) clearState() {
	s.mu.Lock()
	s.session = nil
	s.role = nil
	s.mu.Unlock()

	s.publish()
}

func (s *Store) publish() {
	snapshot := s.Current()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Replace the stale pending snapshot with the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
