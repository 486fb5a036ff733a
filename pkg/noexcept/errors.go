package noexcept

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUsage is matched by every usage error returned for malformed call
	// arguments.
	ErrUsage = errors.New("noexcept: unsupported call arguments")

	// ErrNoCodes is returned by Builder.Build when no code was added.
	ErrNoCodes = errors.New("noexcept: at least one code must be specified")
)

var validPatterns = []string{
	"Call(ctx) - raise the pending error",
	"Call(ctx, code) - raise an error with a code",
	"Call(ctx, []Code{c1, c2}) - raise a Group with one error per code (non-empty)",
	"Call(ctx, code, message) - raise with a custom message",
	"Call(ctx, code, err) - raise and link an external failure",
	"Call(ctx, err) - no-op for a raw external failure",
}

// UsageError reports call arguments that match none of the call shapes. It
// is never soft and never linked.
type UsageError struct {
	Args []any
}

func (e *UsageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v\n\nValid patterns:", ErrUsage.Error(), e.Args)
	for _, pattern := range validPatterns {
		b.WriteString("\n  - ")
		b.WriteString(pattern)
	}
	return b.String()
}

// Is matches ErrUsage.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}
