// Package credential holds the current authentication credential and notifies
// watchers when it changes.
package credential

import (
	"context"
	"sync"
)

// Credential is an opaque bearer token. The zero value is the absent
// credential.
type Credential struct {
	Token string
}

// Present reports whether the credential carries a token.
func (c Credential) Present() bool {
	return c.Token != ""
}

// Source publishes credential changes. The returned channel first yields the
// current credential, then every later change, and is closed when ctx ends.
type Source interface {
	Watch(ctx context.Context) <-chan Credential
}

// Store is an in-memory Source. Watchers that fall behind only see the latest
// value; intermediate credentials are coalesced.
type Store struct {
	mu       sync.Mutex
	current  Credential
	watchers map[*watcher]struct{}
}

type watcher struct {
	// wake has capacity 1 so a pending notification is never lost
	wake chan struct{}
}

// NewStore returns a store holding initial.
func NewStore(initial Credential) *Store {
	return &Store{
		current:  initial,
		watchers: make(map[*watcher]struct{}),
	}
}

// Current returns the stored credential.
func (s *Store) Current() Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the credential. Setting the same value again is not a change.
func (s *Store) Set(c Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == s.current {
		return
	}
	s.current = c
	for w := range s.watchers {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

// Clear removes the credential (logout).
func (s *Store) Clear() {
	s.Set(Credential{})
}

// Watch implements Source.
func (s *Store) Watch(ctx context.Context) <-chan Credential {
	w := &watcher{wake: make(chan struct{}, 1)}
	w.wake <- struct{}{}

	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	out := make(chan Credential)
	go func() {
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.watchers, w)
			s.mu.Unlock()
		}()

		var last *Credential
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.wake:
			}

			c := s.Current()
			if last != nil && *last == c {
				continue
			}
			select {
			case out <- c:
				last = &c
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

var _ Source = (*Store)(nil)
