// Package stream provides the producer/consumer handle used to surface
// progress of a long-running generation without blocking on its result.
package stream

import (
	"context"
	"errors"
	"sync"
)

// ErrSealed is returned when a producer touches a handle after Done or Fail.
var ErrSealed = errors.New("stream: already sealed")

// Update is one observable snapshot of the stream.
type Update struct {
	// Value is the latest intermediate (or final) payload.
	Value interface{}
	// Sealed reports whether the producer finished.
	Sealed bool
	// Err is the terminal error when the producer sealed with Fail.
	Err error
}

// Streamable is a write-once-many handle: the producer may call Update any
// number of times, then seals exactly once via Done or Fail. Consumers read
// the latest value without blocking the producer and are notified of every
// change through Subscribe.
type Streamable struct {
	mu      sync.Mutex
	current Update
	waiters []chan Update
	done    chan struct{}
}

// New creates a handle showing the given initial value.
func New(initial interface{}) *Streamable {
	return &Streamable{
		current: Update{Value: initial},
		done:    make(chan struct{}),
	}
}

// Update replaces the currently visible intermediate value.
func (s *Streamable) Update(value interface{}) error {
	return s.publish(Update{Value: value})
}

// Done seals the handle with a final value. Exactly once.
func (s *Streamable) Done(value interface{}) error {
	return s.publish(Update{Value: value, Sealed: true})
}

// Fail seals the handle with a terminal error. Exactly once.
func (s *Streamable) Fail(err error) error {
	return s.publish(Update{Value: s.Value().Value, Sealed: true, Err: err})
}

func (s *Streamable) publish(u Update) error {
	s.mu.Lock()
	if s.current.Sealed {
		s.mu.Unlock()
		return ErrSealed
	}
	s.current = u
	waiters := s.waiters
	if u.Sealed {
		close(s.done)
	}
	s.mu.Unlock()

	for _, ch := range waiters {
		// Drop the stale snapshot if the subscriber hasn't drained it yet;
		// the channel always ends up holding the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
	return nil
}

// Value returns the latest snapshot immediately.
func (s *Streamable) Value() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Sealed reports whether the producer finished.
func (s *Streamable) Sealed() bool {
	return s.Value().Sealed
}

// Subscribe returns a channel that receives every subsequent snapshot,
// coalescing bursts to the newest one. The channel is not closed; stop
// reading once a received snapshot has Sealed set.
func (s *Streamable) Subscribe() <-chan Update {
	ch := make(chan Update, 1)
	s.mu.Lock()
	// Seed while holding the lock: the buffered send cannot block on a
	// fresh channel, and no publish can land between the seed and the
	// waiter registration to fill it first.
	ch <- s.current
	if !s.current.Sealed {
		s.waiters = append(s.waiters, ch)
	}
	s.mu.Unlock()
	return ch
}

// Wait blocks until the handle is sealed or the context ends, returning the
// final snapshot.
func (s *Streamable) Wait(ctx context.Context) (Update, error) {
	select {
	case <-s.done:
		return s.Value(), nil
	case <-ctx.Done():
		return s.Value(), ctx.Err()
	}
}
