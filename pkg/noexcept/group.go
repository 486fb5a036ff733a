package noexcept

import (
	"fmt"
	"strings"
)

// Group is the aggregate raised by a code-list call: an ordered sequence of
// independent errors raised together.
type Group struct {
	errs []*Error
}

// NewGroup returns a group holding errs in order.
func NewGroup(errs ...*Error) *Group {
	return &Group{errs: append([]*Error(nil), errs...)}
}

// Errors returns the member errors in order.
func (g *Group) Errors() []*Error {
	return append([]*Error(nil), g.errs...)
}

// Len returns the number of member errors.
func (g *Group) Len() int {
	return len(g.errs)
}

// Codes returns the primary code of every member, in order.
func (g *Group) Codes() []Code {
	out := make([]Code, 0, len(g.errs))
	for _, e := range g.errs {
		out = append(out, e.Code())
	}
	return out
}

// Unwrap exposes the members to errors.Is and errors.As.
func (g *Group) Unwrap() []error {
	out := make([]error, 0, len(g.errs))
	for _, e := range g.errs {
		out = append(out, e)
	}
	return out
}

func (g *Group) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "multiple errors (%d)", len(g.errs))
	for i, e := range g.errs {
		fmt.Fprintf(&b, "\n+-- %d: ", i+1)
		b.WriteString(strings.ReplaceAll(e.RenderText(), "\n", "\n|   "))
	}
	return b.String()
}
