package bridge

import (
	"context"
	"sync"

	"github.com/teranos/sdkgen/errors"
)

// Call records one CallFunction invocation.
type Call struct {
	Name string
	Args []any
}

// ScriptedModule is a Caller that replays a fixed reply sequence per
// function. Replies are delivered on a separate goroutine, in order, until
// the handler returns true.
type ScriptedModule struct {
	mu      sync.Mutex
	scripts map[string][]Reply
	calls   []Call
	// delivered counts replies handed to handlers per function
	delivered map[string]int
	wg        sync.WaitGroup

	// IgnoreStop keeps delivering after the handler asked to stop, to
	// exercise the handlers' own termination guards
	IgnoreStop bool
}

// NewScriptedModule creates an empty scripted module.
func NewScriptedModule() *ScriptedModule {
	return &ScriptedModule{
		scripts:   make(map[string][]Reply),
		delivered: make(map[string]int),
	}
}

// Script sets the replies fn produces on every call.
func (m *ScriptedModule) Script(fn string, replies ...Reply) *ScriptedModule {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[fn] = replies
	return m
}

// CallFunction implements Caller.
func (m *ScriptedModule) CallFunction(ctx context.Context, name string, args []any, onData Handler) error {
	m.mu.Lock()
	replies, ok := m.scripts[name]
	m.calls = append(m.calls, Call{Name: name, Args: append([]any(nil), args...)})
	m.mu.Unlock()

	if !ok {
		return errors.Newf("function %q is not registered", name)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for _, r := range replies {
			if ctx.Err() != nil {
				return
			}
			m.mu.Lock()
			m.delivered[name]++
			m.mu.Unlock()
			if onData(r) && !m.IgnoreStop {
				return
			}
		}
	}()
	return nil
}

// Wait blocks until every started call has finished delivering.
func (m *ScriptedModule) Wait() {
	m.wg.Wait()
}

// Calls returns the recorded invocations.
func (m *ScriptedModule) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Delivered returns how many replies fn's handlers received.
func (m *ScriptedModule) Delivered(fn string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delivered[fn]
}

// DataReply is a reply carrying payload.
func DataReply(payload []byte) Reply {
	return Reply{Data: payload, HasData: true}
}

// DoneReply ends a streaming call.
func DoneReply() Reply {
	return Reply{Done: true}
}

// ErrorReply carries a worker error.
func ErrorReply(err error) Reply {
	return Reply{Err: err}
}
