package noexcept

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Module owns a code registry and a pending store and dispatches calls
// against them.
type Module struct {
	registry *Registry
	pending  *PendingStore

	terminate atomic.Bool
	out       io.Writer
	exit      func(code int)

	logger  logr.Logger
	metrics *metrics
}

// NewModule returns a module with an empty registry.
func NewModule(opts ...Option) *Module {
	m := &Module{
		registry: NewRegistry(),
		pending:  NewPendingStore(),
		out:      os.Stdout,
		exit:     os.Exit,
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the module's code registry.
func (m *Module) Registry() *Registry {
	return m.registry
}

// PendingStore returns the module's pending store.
func (m *Module) PendingStore() *PendingStore {
	return m.pending
}

// Likey registers code with its default message. Registering a code a second
// time is a no-op; the first registration wins.
func (m *Module) Likey(code Code, defaultMessage string, opts ...RegisterOption) {
	reg := Registration{Code: code, DefaultMessage: defaultMessage}
	for _, opt := range opts {
		opt(&reg)
	}
	if m.registry.Register(reg) {
		m.logger.V(1).Info("registered code", "code", int(code), "soft", reg.Soft, "linked", len(reg.Linked))
	}
}

// Lookup returns the registration of code, synthesized if unregistered.
func (m *Module) Lookup(code Code) Registration {
	return m.registry.Lookup(code)
}

// Pending returns the pending error visible from ctx, or nil.
func (m *Module) Pending(ctx context.Context) *Error {
	return m.pending.Get(ctx)
}

// HasPending reports whether an error is pending for ctx.
func (m *Module) HasPending(ctx context.Context) bool {
	return m.pending.Get(ctx) != nil
}

// ActiveMessages returns the flattened messages of the pending error, or an
// empty slice.
func (m *Module) ActiveMessages(ctx context.Context) []string {
	if e := m.pending.Get(ctx); e != nil {
		return e.Messages()
	}
	return []string{}
}

// ActiveCodes returns the codes and messages of the pending error, or an
// empty map.
func (m *Module) ActiveCodes(ctx context.Context) map[Code][]string {
	if e := m.pending.Get(ctx); e != nil {
		return e.CodeMessages()
	}
	return map[Code][]string{}
}

// ClearPending abandons every accumulated soft error visible from ctx: the
// scope slot and the shared slot.
func (m *Module) ClearPending(ctx context.Context) {
	m.pending.Clear(ctx)
	m.logger.V(1).Info("cleared pending", "scope", ScopeFrom(ctx).String())
}

// EnableTerminateOnRaise switches the raise path to writing the rendered
// error to the module output and exiting with status 1.
func (m *Module) EnableTerminateOnRaise() {
	m.terminate.Store(true)
}

// TerminateOnRaise reports whether terminate mode is enabled.
func (m *Module) TerminateOnRaise() bool {
	return m.terminate.Load()
}

// Build returns a builder whose default messages come from the module's
// registry.
func (m *Module) Build() *Builder {
	return &Builder{module: m, codes: make(map[Code][]string), soft: make(map[Code]bool)}
}

// makeOne creates a fresh error for code owned by m, including its
// auto-linked codes.
func (m *Module) makeOne(code Code, causes []error, messages ...string) *Error {
	reg := m.registry.Lookup(code)
	e := newError(code, reg.DefaultMessage)
	e.module = m
	e.soft[code] = reg.Soft
	for _, msg := range messages {
		e.AddMessage(code, msg)
	}
	for _, cause := range causes {
		e.RecordLinkedCause(cause)
	}
	for _, extra := range reg.Linked {
		m.propagate(e, extra)
	}
	return e
}

// propagate adds code to e with its registered default message and soft
// flag.
func (m *Module) propagate(e *Error, code Code) {
	reg := m.registry.Lookup(code)
	e.AddCode(code, reg.DefaultMessage)
	e.SetSoft(code, reg.Soft)
}
