package noexcept

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Go runs fn and resolves any failure it returns or panics with under code.
// See Capture.
func (m *Module) Go(ctx context.Context, code Code, fn func() error, opts ...CallOption) (err error) {
	defer m.Capture(ctx, code, &err, opts...)
	return fn()
}

// GoValue is Go for functions returning a value. A panicking fn yields the
// zero value.
func GoValue[T any](ctx context.Context, m *Module, code Code, fn func() (T, error), opts ...CallOption) (value T, err error) {
	if m == nil {
		m = Default
	}
	defer m.Capture(ctx, code, &err, opts...)
	return fn()
}

// Capture resolves the failure in *errp under code. It must be deferred
// directly so it can also recover a panic:
//
//	func load(ctx context.Context) (err error) {
//		defer noexcept.Capture(ctx, 503, &err)
//		...
//	}
//
// An *Error failure gets code merged into it; groups and usage errors pass
// through; any other failure is linked to a new error for code. *errp is replaced by the raised error, or nil when
// the result was stashed or merged into the pending error.
func (m *Module) Capture(ctx context.Context, code Code, errp *error, opts ...CallOption) {
	if r := recover(); r != nil {
		failure := panicError(r)
		if errp == nil {
			panic(r)
		}
		*errp = failure
	}
	if errp == nil || *errp == nil {
		return
	}
	switch (*errp).(type) {
	case *Group, *UsageError:
		return
	}

	args := make([]any, 0, len(opts)+2)
	args = append(args, code)
	var own *Error
	if errors.As(*errp, &own) {
		args = append(args, Active(own))
	} else {
		args = append(args, *errp)
	}
	for _, opt := range opts {
		args = append(args, opt)
	}
	*errp = m.Call(ctx, args...)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		var own *Error
		if errors.As(err, &own) {
			return err
		}
		return pkgerrors.WithStack(err)
	}
	return pkgerrors.Errorf("panic: %v", r)
}
