// Package store persists the single most recent generated message. There
// is exactly one slot: every successful generation overwrites the previous
// message, and reading before any generation reports ErrEmpty.
package store

import (
	"errors"
	"time"
)

// ErrEmpty is returned by Read when no message has ever been written.
var ErrEmpty = errors.New("store: no message generated yet")

// Message is the latest generated text and when it was produced.
type Message struct {
	Text        string
	GeneratedAt time.Time
}

// Store is a single-slot message store. Write unconditionally replaces any
// prior value. Writes are atomic with respect to reads: a reader sees
// either the full old message or the full new one, never a mix. Between
// concurrent writers, last writer wins.
type Store interface {
	Write(msg Message) error
	Read() (Message, error)
}
