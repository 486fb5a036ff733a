package noexcept

import (
	"context"
	"sync/atomic"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
)

// Scope identifies one logical call chain. Pending errors stashed under a
// scope are invisible to every other scope.
type Scope struct {
	id  uuid.UUID
	key string
}

// NewScope returns a fresh call scope.
func NewScope() *Scope {
	id := uuid.New()
	return &Scope{id: id, key: id.String()}
}

// ID returns the scope identifier.
func (s *Scope) ID() uuid.UUID {
	return s.id
}

func (s *Scope) String() string {
	if s == nil {
		return "shared"
	}
	return s.key
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope carried by ctx, or nil.
func ScopeFrom(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	scope, _ := ctx.Value(scopeKey{}).(*Scope)
	return scope
}

// Scoped returns ctx with a new scope unless it already carries one.
func Scoped(ctx context.Context) context.Context {
	if ScopeFrom(ctx) != nil {
		return ctx
	}
	return WithScope(ctx, NewScope())
}

// PendingStore holds at most one pending error per scope plus one shared
// slot. Reads check the caller's scope first, then the shared slot.
//
// The shared slot is last-writer-wins: concurrent callers without a scope
// may overwrite each other's pending error.
type PendingStore struct {
	scoped *haxmap.Map[string, *Error]
	shared atomic.Pointer[Error]
}

// NewPendingStore returns an empty store.
func NewPendingStore() *PendingStore {
	return &PendingStore{scoped: haxmap.New[string, *Error]()}
}

// Get returns the pending error visible from ctx: the scope slot if set,
// otherwise the shared slot.
func (p *PendingStore) Get(ctx context.Context) *Error {
	e, _ := p.lookup(ctx)
	return e
}

// lookup is Get also reporting whether the error came from the shared slot.
func (p *PendingStore) lookup(ctx context.Context) (e *Error, shared bool) {
	if scope := ScopeFrom(ctx); scope != nil {
		if e, ok := p.scoped.Get(scope.key); ok && e != nil {
			return e, false
		}
	}
	e = p.shared.Load()
	return e, e != nil
}

// Set stores e as pending. With a scope in ctx only the scope slot is
// written; callers without a scope accumulate into the shared slot.
func (p *PendingStore) Set(ctx context.Context, e *Error) {
	if scope := ScopeFrom(ctx); scope != nil {
		p.scoped.Set(scope.key, e)
		return
	}
	p.shared.Store(e)
}

// Clear drops the pending error of ctx's scope and the shared slot.
func (p *PendingStore) Clear(ctx context.Context) {
	if scope := ScopeFrom(ctx); scope != nil {
		p.scoped.Del(scope.key)
	}
	p.shared.Store(nil)
}

// Release drops the slot of scope without touching the shared slot. Callers
// use it when a call chain ends.
func (p *PendingStore) Release(scope *Scope) {
	if scope == nil {
		return
	}
	p.scoped.Del(scope.key)
}

// Scopes returns the number of scopes currently holding a pending error.
func (p *PendingStore) Scopes() int {
	return int(p.scoped.Len())
}
