// Package keyval is the small persistent key-value layer behind progress
// counters, unlocked achievements, and theme preference. The app treats it
// the way a browser treats local storage: string keys, string values.
package keyval

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
