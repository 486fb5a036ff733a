// Package noexcept provides code-based errors that can be raised, accumulated
// and grouped.
//
// Callers register integer codes once, then signal failures by code instead
// of by error type. Every error carries:
//   - One or more codes, the first being the primary code
//   - The messages accumulated for each code, starting with its default
//   - A soft flag per code
//   - Descriptive records of linked external failures (type, message and
//     source locations, never the failure itself)
//
// A hard code is returned to the caller immediately. A soft code is stashed
// as the pending error of the caller's scope; later calls merge into it
// until an empty call raises it or ClearPending abandons it.
//
// Example usage:
//
//	noexcept.Likey(404, "Not Found")
//	noexcept.Likey(1001, "Validation failed", noexcept.Soft())
//
//	ctx = noexcept.Scoped(ctx)
//	_ = noexcept.Call(ctx, 1001, "name is empty")
//	_ = noexcept.Call(ctx, 1001, "age is negative")
//	if err := noexcept.Call(ctx); err != nil {
//		fmt.Println(noexcept.MessagesOf(err))
//	}
//
//	if err := noexcept.Call(ctx, 404, dbErr); noexcept.HasCode(err, 404) {
//		fmt.Println(noexcept.DebugString(err))
//	}
//
// Pending errors live per Scope carried in the context. Callers without a
// scope share one process-wide slot.
package noexcept
