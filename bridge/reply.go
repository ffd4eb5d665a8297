// Package bridge models the runtime surface generated bindings consume.
//
// A binding method calls a worker function on the runtime and receives its
// result through a callback that is invoked once per reply. The callback
// returns true to stop listening. Single and Stream drive that callback the
// way generated Future and Stream methods do, so the control flow of the
// bindings can be exercised from Go.
package bridge

import (
	"context"
	"sync"

	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/sdkgen"
)

// Reply is one callback invocation from the runtime.
type Reply struct {
	// Err is set when the worker reported an error
	Err error
	// Data is the payload; it is meaningful only when HasData is set
	Data    []byte
	HasData bool
	// Done marks the final reply of a streaming call
	Done bool
}

// HasError reports whether the reply carries a worker error.
func (r Reply) HasError() bool {
	return r.Err != nil
}

// Handler receives replies. Returning true stops further delivery.
type Handler func(Reply) bool

// Caller invokes a named worker function with wire-converted arguments.
// CallFunction returns once the call is started; replies may arrive on
// another goroutine until onData returns true.
type Caller interface {
	CallFunction(ctx context.Context, name string, args []any, onData Handler) error
}

// Item is one element of a streaming call: a decoded value or the error
// that terminated the stream.
type Item struct {
	Value any
	Err   error
}

// Single calls fn and waits for its first reply. An error reply fails the
// call; any other reply is decoded as category and completes it.
func Single(ctx context.Context, caller Caller, fn string, args []any, category sdkgen.TypeCategory) (any, error) {
	type outcome struct {
		value any
		err   error
	}
	result := make(chan outcome, 1)
	var once sync.Once

	onData := func(r Reply) bool {
		once.Do(func() {
			if r.HasError() {
				result <- outcome{err: r.Err}
				return
			}
			if category.IsVoid() {
				result <- outcome{}
				return
			}
			value, err := Decode(category, r.Data)
			result <- outcome{value: value, err: err}
		})
		return true
	}

	if err := caller.CallFunction(ctx, fn, args, onData); err != nil {
		return nil, errors.Wrapf(err, "call %s", fn)
	}

	select {
	case out := <-result:
		return out.value, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stream calls fn and delivers decoded data replies on the returned channel.
// An error reply is delivered as an Item with Err set and closes the
// channel; a Done reply closes it. Replies arriving after closure are
// dropped.
func Stream(ctx context.Context, caller Caller, fn string, args []any, category sdkgen.TypeCategory) (<-chan Item, error) {
	s := &stream{ctx: ctx, category: category, items: make(chan Item)}
	if err := caller.CallFunction(ctx, fn, args, s.handle); err != nil {
		s.close()
		return nil, errors.Wrapf(err, "call %s", fn)
	}
	return s.items, nil
}

type stream struct {
	ctx      context.Context
	category sdkgen.TypeCategory
	items    chan Item

	mu     sync.Mutex
	closed bool
}

func (s *stream) handle(r Reply) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}

	if r.HasError() {
		s.send(Item{Err: r.Err})
		s.closeLocked()
		return true
	}

	if r.HasData {
		var item Item
		if !s.category.IsVoid() {
			item.Value, item.Err = Decode(s.category, r.Data)
		}
		if !s.send(item) {
			s.closeLocked()
			return true
		}
	}

	if r.Done {
		s.closeLocked()
		return true
	}

	return false
}

// send blocks until the consumer takes the item or the context ends.
func (s *stream) send(item Item) bool {
	select {
	case s.items <- item:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *stream) closeLocked() {
	if !s.closed {
		s.closed = true
		close(s.items)
	}
}
