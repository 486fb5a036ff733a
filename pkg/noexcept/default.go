package noexcept

import "context"

// Default is the module used by the package-level functions.
var Default = NewModule()

// Likey registers code on the Default module.
func Likey(code Code, defaultMessage string, opts ...RegisterOption) {
	Default.Likey(code, defaultMessage, opts...)
}

// Call dispatches args on the Default module.
func Call(ctx context.Context, args ...any) error {
	return Default.Call(ctx, args...)
}

// Dispatch dispatches args on the Default module and reports the outcome.
func Dispatch(ctx context.Context, args ...any) (Outcome, error) {
	return Default.Dispatch(ctx, args...)
}

func HasPending(ctx context.Context) bool {
	return Default.HasPending(ctx)
}

func ActiveMessages(ctx context.Context) []string {
	return Default.ActiveMessages(ctx)
}

func ActiveCodes(ctx context.Context) map[Code][]string {
	return Default.ActiveCodes(ctx)
}

func ClearPending(ctx context.Context) {
	Default.ClearPending(ctx)
}

func EnableTerminateOnRaise() {
	Default.EnableTerminateOnRaise()
}

// Go runs fn under code on the Default module.
func Go(ctx context.Context, code Code, fn func() error, opts ...CallOption) error {
	return Default.Go(ctx, code, fn, opts...)
}

// Capture must be deferred directly; see Module.Capture.
func Capture(ctx context.Context, code Code, errp *error, opts ...CallOption) {
	if r := recover(); r != nil {
		if errp == nil {
			panic(r)
		}
		*errp = panicError(r)
	}
	Default.Capture(ctx, code, errp, opts...)
}
