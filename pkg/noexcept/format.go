package noexcept

import (
	"errors"
	"fmt"
	"strings"
)

// UserString returns a user-safe error message.
// For an *Error it is the last message of its primary code; for a *Group the
// user strings of its members joined by "; ". Other errors fall back to their
// standard message.
func UserString(err error) string {
	if err == nil {
		return ""
	}
	var g *Group
	if errors.As(err, &g) {
		parts := make([]string, 0, g.Len())
		for _, member := range g.Errors() {
			parts = append(parts, UserString(member))
		}
		return strings.Join(parts, "; ")
	}
	var e *Error
	if errors.As(err, &e) {
		msgs := e.CodeMessages()[e.Code()]
		if len(msgs) > 0 {
			return msgs[len(msgs)-1]
		}
		return DefaultMessage(e.Code())
	}
	return err.Error()
}

// IsError checks if the given error is, or wraps, an *Error.
func IsError(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	return errors.As(err, &e)
}

// HasCode reports whether err or any error in its tree carries code.
func HasCode(err error, code Code) bool {
	for _, item := range flattenChain(err) {
		if e, ok := item.(*Error); ok && e.HasCode(code) {
			return true
		}
	}
	return false
}

// CodesOf returns the codes and messages of the first *Error in err's chain,
// or an empty map.
func CodesOf(err error) map[Code][]string {
	var e *Error
	if errors.As(err, &e) {
		return e.CodeMessages()
	}
	return map[Code][]string{}
}

// MessagesOf returns the flattened messages of the first *Error in err's
// chain.
func MessagesOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Messages()
	}
	return nil
}

// DebugString returns a verbose error string with codes, soft flags, linked
// causes and the chain.
func DebugString(err error) string {
	if err == nil {
		return ""
	}
	chain := flattenChain(err)
	var b strings.Builder
	for i, item := range chain {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch typed := item.(type) {
		case *Error:
			b.WriteString(fmt.Sprintf("%d: %T: %s", i+1, typed, renderHeader(typed.Codes())))
			b.WriteString(fmt.Sprintf(" | messages=%q", typed.Messages()))
			if soft := softList(typed); len(soft) > 0 {
				b.WriteString(fmt.Sprintf(" | soft=%s", renderHeader(soft)))
			}
			for _, linked := range typed.Linked() {
				b.WriteString(fmt.Sprintf(" | linked=%q", linked.String()))
			}
		case *Group:
			b.WriteString(fmt.Sprintf("%d: %T: %d errors", i+1, typed, typed.Len()))
		default:
			b.WriteString(fmt.Sprintf("%d: %T: %s", i+1, item, item.Error()))
		}
	}
	return b.String()
}

func softList(e *Error) []Code {
	flags := e.SoftCodes()
	var out []Code
	for _, code := range e.Codes() {
		if flags[code] {
			out = append(out, code)
		}
	}
	return out
}

func flattenChain(err error) []error {
	var out []error
	queue := []error{err}
	const maxEntries = 64
	for len(queue) > 0 && len(out) < maxEntries {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		out = append(out, current)
		queue = append(queue, unwrapAll(current)...)
	}
	return out
}

func unwrapAll(err error) []error {
	switch unwrapped := err.(type) {
	case interface{ Unwrap() []error }:
		return unwrapped.Unwrap()
	case interface{ Unwrap() error }:
		if next := unwrapped.Unwrap(); next != nil {
			return []error{next}
		}
	}
	return nil
}
