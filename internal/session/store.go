// Package session keeps small per-visitor key/value state between requests:
// the signed-in user and one-shot flash messages.
//
// Storage is behind the Store interface. Take is the read-and-clear primitive
// flash messages rely on; both backends make it atomic per key.
package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned when a request context carries no session id.
var ErrNoSession = errors.New("no session in context")

// Store persists values per session id.
type Store interface {
	// Get returns the value for key without removing it.
	Get(ctx context.Context, sid, key string) (string, bool, error)

	// Set stores value under key and refreshes the session lifetime.
	Set(ctx context.Context, sid, key, value string) error

	// Take returns the value for key and removes it in the same step.
	Take(ctx context.Context, sid, key string) (string, bool, error)

	// Remove deletes a single key.
	Remove(ctx context.Context, sid, key string) error

	// Destroy removes the whole session.
	Destroy(ctx context.Context, sid string) error
}
