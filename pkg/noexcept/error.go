package noexcept

import (
	"context"
	"errors"
	"sync"
)

// Error is a structured error carrying one or more codes, the messages
// accumulated for each code, per-code soft flags and descriptive records of
// linked external failures.
//
// Every code held by an Error has at least one message, its default. An Error
// never holds a reference to a linked failure, only its type, message and
// locations.
type Error struct {
	mu sync.RWMutex

	codes    []Code
	messages map[Code][]string
	soft     map[Code]bool

	linked    []*LinkedCause
	linkedIdx map[causeKey]*LinkedCause

	origin Location
	module *Module
}

// New creates an Error for code with the default "Error {code}" message and an
// optional complaint appended after it.
func New(code Code, complaint string) *Error {
	e := newError(code, DefaultMessage(code))
	e.AddMessage(code, complaint)
	return e
}

func newError(code Code, defaultMessage string) *Error {
	e := &Error{
		messages: make(map[Code][]string),
		soft:     make(map[Code]bool),
		origin:   callerLocation(),
	}
	e.AddCode(code, defaultMessage)
	return e
}

// clone returns a deep copy of e owned by the same module.
func (e *Error) clone() *Error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c := &Error{
		codes:    append([]Code(nil), e.codes...),
		messages: make(map[Code][]string, len(e.messages)),
		soft:     make(map[Code]bool, len(e.soft)),
		origin:   e.origin,
		module:   e.module,
	}
	for code, msgs := range e.messages {
		c.messages[code] = append([]string(nil), msgs...)
	}
	for code, soft := range e.soft {
		c.soft[code] = soft
	}
	if len(e.linked) > 0 {
		c.linkedIdx = make(map[causeKey]*LinkedCause, len(e.linked))
		for _, entry := range e.linked {
			copied := entry.clone()
			c.linked = append(c.linked, &copied)
			c.linkedIdx[causeKey{typ: copied.Type, msg: copied.Message}] = &copied
		}
	}
	return c
}

// AddCode inserts code with defaultMessage as its first message. It is a
// no-op when the code is already present.
func (e *Error) AddCode(code Code, defaultMessage string) {
	if defaultMessage == "" {
		defaultMessage = DefaultMessage(code)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addCodeLocked(code, defaultMessage)
}

func (e *Error) addCodeLocked(code Code, defaultMessage string) {
	if _, ok := e.messages[code]; ok {
		return
	}
	e.codes = append(e.codes, code)
	e.messages[code] = []string{defaultMessage}
}

// AddMessage appends message to the messages of code. Empty messages are
// ignored. A code that is not present yet is added with its default message
// first.
func (e *Error) AddMessage(code Code, message string) {
	if message == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addCodeLocked(code, DefaultMessage(code))
	e.messages[code] = append(e.messages[code], message)
}

// SetSoft records the soft flag for code.
func (e *Error) SetSoft(code Code, soft bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.soft[code] = soft
}

// IsSoft reports the recorded soft flag for code.
func (e *Error) IsSoft(code Code) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.soft[code]
}

// SoftCodes returns a copy of the per-code soft flags.
func (e *Error) SoftCodes() map[Code]bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[Code]bool, len(e.soft))
	for code, soft := range e.soft {
		out[code] = soft
	}
	return out
}

// Code returns the primary (first) code.
func (e *Error) Code() Code {
	if e == nil {
		return CodeEmpty
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.codes) == 0 {
		return CodeEmpty
	}
	return e.codes[0]
}

// Codes returns the codes in insertion order.
func (e *Error) Codes() []Code {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Code(nil), e.codes...)
}

// HasCode reports whether the error carries code.
func (e *Error) HasCode(code Code) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.messages[code]
	return ok
}

// CodeMessages returns a copy of the messages keyed by code.
func (e *Error) CodeMessages() map[Code][]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[Code][]string, len(e.messages))
	for code, msgs := range e.messages {
		out[code] = append([]string(nil), msgs...)
	}
	return out
}

// Messages returns every message, code by code in insertion order.
func (e *Error) Messages() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []string
	for _, code := range e.codes {
		out = append(out, e.messages[code]...)
	}
	return out
}

// Origin returns where the error was created, if known.
func (e *Error) Origin() Location {
	return e.origin
}

// Error implements the error interface with the rendered text.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.RenderText()
}

// Is matches a target *Error whose primary code is carried by e.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	if t == e {
		return true
	}
	return e.HasCode(t.Code())
}

// Call dispatches args with e as the receiver. See Module.Call.
func (e *Error) Call(ctx context.Context, args ...any) error {
	_, err := e.owner().dispatch(ctx, e, args)
	return err
}

func (e *Error) owner() *Module {
	if e.module != nil {
		return e.module
	}
	return Default
}
