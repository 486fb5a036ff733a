package noexcept

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alphadose/haxmap"
)

// Code identifies a registered error kind.
type Code int

// CodeEmpty is the code of the error synthesized by an empty call when
// nothing is pending.
const CodeEmpty Code = 0

// Registration describes a registered error code.
type Registration struct {
	Code           Code   `json:"code" yaml:"code"`
	Name           string `json:"name" yaml:"name"`
	DefaultMessage string `json:"message" yaml:"message"`
	Linked         []Code `json:"linked,omitempty" yaml:"linked,omitempty"`
	Soft           bool   `json:"soft,omitempty" yaml:"soft,omitempty"`
}

// DisplayName returns the name used for a code, e.g. "Error404".
func DisplayName(code Code) string {
	return fmt.Sprintf("Error%d", code)
}

// DefaultMessage returns the message synthesized for a code that was never
// given one, e.g. "Error 404".
func DefaultMessage(code Code) string {
	return fmt.Sprintf("Error %d", code)
}

func fallbackRegistration(code Code) Registration {
	return Registration{
		Code:           code,
		Name:           DisplayName(code),
		DefaultMessage: DefaultMessage(code),
	}
}

// Registry maps codes to their registrations. Codes are write-once.
//
// Writes are serialized by mu. Reads go straight to the lock-free map and
// always observe a complete entry, since entries are immutable once stored.
type Registry struct {
	mu      sync.Mutex
	entries *haxmap.Map[Code, *Registration]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: haxmap.New[Code, *Registration]()}
}

// Register inserts reg unless its code is already registered, in which case
// the call is a no-op. It reports whether the entry was inserted.
func (r *Registry) Register(reg Registration) bool {
	entry := &Registration{
		Code:           reg.Code,
		Name:           reg.Name,
		DefaultMessage: reg.DefaultMessage,
		Soft:           reg.Soft,
	}
	if entry.Name == "" {
		entry.Name = DisplayName(reg.Code)
	}
	if entry.DefaultMessage == "" {
		entry.DefaultMessage = DefaultMessage(reg.Code)
	}
	if len(reg.Linked) > 0 {
		entry.Linked = append([]Code(nil), reg.Linked...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries.Get(reg.Code); ok {
		return false
	}
	r.entries.Set(reg.Code, entry)
	return true
}

// Lookup returns the registration for code. Unregistered codes get a
// synthesized hard registration with the default "Error {code}" message.
func (r *Registry) Lookup(code Code) Registration {
	entry, ok := r.entries.Get(code)
	if !ok {
		return fallbackRegistration(code)
	}
	return entry.clone()
}

// IsRegistered reports whether code has been registered.
func (r *Registry) IsRegistered(code Code) bool {
	_, ok := r.entries.Get(code)
	return ok
}

// DefaultMessageFor returns the registered default message for a code.
func (r *Registry) DefaultMessageFor(code Code) (string, bool) {
	entry, ok := r.entries.Get(code)
	if !ok {
		return DefaultMessage(code), false
	}
	return entry.DefaultMessage, true
}

// Entries returns every registration in code order.
func (r *Registry) Entries() []Registration {
	out := make([]Registration, 0, int(r.entries.Len()))
	r.entries.ForEach(func(_ Code, entry *Registration) bool {
		out = append(out, entry.clone())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of registered codes.
func (r *Registry) Len() int {
	return int(r.entries.Len())
}

func (e *Registration) clone() Registration {
	out := *e
	if len(e.Linked) > 0 {
		out.Linked = append([]Code(nil), e.Linked...)
	}
	return out
}
