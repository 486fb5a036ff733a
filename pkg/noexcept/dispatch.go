package noexcept

import (
	"context"
	"errors"
	"fmt"
)

// Outcome is the state transition a call performed.
type Outcome int

const (
	// OutcomeNone means the call contributed nothing.
	OutcomeNone Outcome = iota
	// OutcomeRaised means an error was returned to the caller.
	OutcomeRaised
	// OutcomeStashed means an error was stored as pending instead of raised.
	OutcomeStashed
	// OutcomeMerged means the call was folded into the already pending error.
	OutcomeMerged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRaised:
		return "raised"
	case OutcomeStashed:
		return "stashed"
	case OutcomeMerged:
		return "merged"
	default:
		return "none"
	}
}

type shape int

const (
	shapeInvalid shape = iota
	shapeEmpty
	shapeCodeList
	shapeRawFailure
	shapeCode
	shapeCodeFailure
	shapeCodeMessage
)

type call struct {
	shape   shape
	code    Code
	codes   []Code
	message string
	cause   error
	args    []any
	opts    callOptions
}

// messages returns the free-text messages the call adds to its code.
func (c call) messages() []string {
	var out []string
	if c.message != "" {
		out = append(out, c.message)
	}
	if c.opts.complaint != "" && c.opts.complaint != c.message {
		out = append(out, c.opts.complaint)
	}
	return out
}

// classify sorts call arguments into one of the call shapes. Call options
// are applied and removed first; the first matching shape wins.
func classify(args []any) call {
	c := call{args: args}
	positional := make([]any, 0, len(args))
	for _, arg := range args {
		if opt, ok := arg.(CallOption); ok {
			if opt != nil {
				opt(&c.opts)
			}
			continue
		}
		positional = append(positional, arg)
	}

	switch len(positional) {
	case 0:
		c.shape = shapeEmpty
	case 1:
		arg := positional[0]
		if codes, ok := asCodes(arg); ok {
			c.shape, c.codes = shapeCodeList, codes
		} else if err, ok := arg.(error); ok && !ownError(err) {
			c.shape = shapeRawFailure
		} else if code, ok := asCode(arg); ok {
			c.shape, c.code = shapeCode, code
		}
	case 2:
		code, ok := asCode(positional[0])
		if !ok {
			break
		}
		c.code = code
		switch second := positional[1].(type) {
		case nil:
			c.shape = shapeCode
		case string:
			c.shape, c.message = shapeCodeMessage, second
		case error:
			c.shape, c.cause = shapeCodeFailure, second
		}
	}
	return c
}

func ownError(err error) bool {
	switch err.(type) {
	case *Error, *Group:
		return true
	}
	return false
}

func asCode(arg any) (Code, bool) {
	switch v := arg.(type) {
	case Code:
		return v, true
	case int:
		return Code(v), true
	case int32:
		return Code(v), true
	case int64:
		return Code(v), true
	}
	return 0, false
}

func asCodes(arg any) ([]Code, bool) {
	switch v := arg.(type) {
	case []Code:
		return append([]Code(nil), v...), true
	case []int:
		out := make([]Code, 0, len(v))
		for _, code := range v {
			out = append(out, Code(code))
		}
		return out, true
	}
	return nil, false
}

// Call interprets args and performs the matching transition. It returns the
// raised error, or nil when the call stashed, merged or did nothing.
//
// Accepted shapes, in precedence order:
//
//	Call(ctx)                      raise the pending error, or an empty error
//	Call(ctx, []Code{1, 2})        raise a *Group, one error per code; empty lists are rejected
//	Call(ctx, err)                 no-op for a raw external failure
//	Call(ctx, code)                raise or stash code
//	Call(ctx, code, err)           same, linking err
//	Call(ctx, code, "message")     same, with a custom message
//
// CallOption values (Complaint, Soften, Active) may be mixed into args.
// Anything else returns a *UsageError.
func (m *Module) Call(ctx context.Context, args ...any) error {
	_, err := m.dispatch(ctx, nil, args)
	return err
}

// Dispatch is Call reporting the transition it performed.
func (m *Module) Dispatch(ctx context.Context, args ...any) (Outcome, error) {
	return m.dispatch(ctx, nil, args)
}

// Dispatch is Call reporting the transition it performed.
func (e *Error) Dispatch(ctx context.Context, args ...any) (Outcome, error) {
	return e.owner().dispatch(ctx, e, args)
}

func (m *Module) dispatch(ctx context.Context, receiver *Error, args []any) (Outcome, error) {
	c := classify(args)
	switch c.shape {
	case shapeEmpty:
		return m.raiseEmpty(ctx, receiver)
	case shapeCodeList:
		return m.raiseGroup(ctx, c)
	case shapeRawFailure:
		return OutcomeNone, nil
	case shapeCode, shapeCodeFailure, shapeCodeMessage:
		return m.resolveCode(ctx, receiver, c)
	default:
		return m.usageError(c)
	}
}

func (m *Module) usageError(c call) (Outcome, error) {
	err := &UsageError{Args: c.args}
	m.metrics.usageError()
	m.logger.Error(err, "unsupported call arguments")
	return OutcomeNone, err
}

func (m *Module) raiseEmpty(ctx context.Context, receiver *Error) (Outcome, error) {
	if pending := m.pending.Get(ctx); pending != nil {
		return m.raise(ctx, pending)
	}
	if receiver != nil {
		return m.raise(ctx, receiver)
	}
	return m.raise(ctx, m.makeOne(CodeEmpty, nil))
}

// raiseGroup raises one error per code. Groups are never stashed.
func (m *Module) raiseGroup(ctx context.Context, c call) (Outcome, error) {
	if len(c.codes) == 0 {
		return m.usageError(c)
	}
	members := make([]*Error, 0, len(c.codes))
	for _, code := range c.codes {
		members = append(members, m.makeOne(code, nil, c.opts.complaint))
	}
	return m.raise(ctx, NewGroup(members...))
}

// resolveCode applies a code to the first receiver found: the pending error,
// then the active *Error (module calls), then the receiver (instance calls),
// otherwise a fresh error.
func (m *Module) resolveCode(ctx context.Context, receiver *Error, c call) (Outcome, error) {
	reg := m.registry.Lookup(c.code)
	// A repeated code without a message repeats its default, so every call
	// leaves one message behind.
	merge := func(e *Error) {
		messages := c.messages()
		if e.HasCode(c.code) && len(messages) == 0 {
			messages = []string{reg.DefaultMessage}
		}
		e.AddCode(c.code, reg.DefaultMessage)
		for _, msg := range messages {
			e.AddMessage(c.code, msg)
		}
		e.SetSoft(c.code, reg.Soft)
		e.RecordLinkedCause(c.cause)
	}

	if pending, shared := m.pending.lookup(ctx); pending != nil {
		// A scope never writes through to the shared error it reads.
		if shared && ScopeFrom(ctx) != nil {
			pending = pending.clone()
		}
		merge(pending)
		m.pending.Set(ctx, pending)
		m.metrics.observe(OutcomeMerged, c.code)
		m.logger.V(1).Info("merged into pending", "scope", ScopeFrom(ctx).String(), "code", int(c.code))
		return OutcomeMerged, nil
	}

	var active *Error
	if receiver == nil && c.opts.active != nil && errors.As(c.opts.active, &active) {
		merge(active)
		return m.raiseOrStash(ctx, active, reg.Soft || c.opts.soften)
	}

	if receiver != nil {
		merge(receiver)
		return m.raiseOrStash(ctx, receiver, reg.Soft || c.opts.soften)
	}

	var causes []error
	if c.cause != nil {
		causes = append(causes, c.cause)
	}
	fresh := m.makeOne(c.code, causes, c.messages()...)
	return m.raiseOrStash(ctx, fresh, reg.Soft || c.opts.soften)
}

// raiseOrStash stores e as pending when soft, otherwise raises it.
func (m *Module) raiseOrStash(ctx context.Context, e *Error, soft bool) (Outcome, error) {
	if soft {
		m.pending.Set(ctx, e)
		m.metrics.observe(OutcomeStashed, e.Code())
		m.logger.V(1).Info("stashed soft error", "scope", ScopeFrom(ctx).String(), "codes", renderHeader(e.Codes()))
		recordStash(ctx, e)
		return OutcomeStashed, nil
	}
	return m.raise(ctx, e)
}

// raise returns err to the caller, or in terminate mode writes it out and
// exits with status 1.
func (m *Module) raise(ctx context.Context, err error) (Outcome, error) {
	codes := raisedCodes(err)
	for _, code := range codes {
		m.metrics.observe(OutcomeRaised, code)
	}
	m.logger.V(1).Info("raising", "scope", ScopeFrom(ctx).String(), "codes", renderHeader(codes))
	recordRaise(ctx, err, codes)

	if m.terminate.Load() {
		fmt.Fprintln(m.out, err.Error())
		m.exit(1)
	}
	return OutcomeRaised, err
}

func raisedCodes(err error) []Code {
	switch typed := err.(type) {
	case *Group:
		return typed.Codes()
	case *Error:
		return []Code{typed.Code()}
	}
	return nil
}
