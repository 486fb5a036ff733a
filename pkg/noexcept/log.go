package noexcept

import (
	"errors"
	"strconv"

	"github.com/go-logr/logr"
)

// LogError logs err with structured fields:
//   - error.codes: "[404,500]"
//   - error.code: 404
//   - error.messages: ["Not Found", "Server Error"]
//   - error.soft: "[500]" (only when a code is soft)
//   - error.linked.0: "*errors.errorString: boom @ /src/app/db.go:42"
//
// A *Group logs one entry per member. Other errors fall back to plain error
// logging.
func LogError(logger logr.Logger, err error, msg string) {
	if err == nil {
		return
	}

	var g *Group
	if errors.As(err, &g) {
		for _, member := range g.Errors() {
			logger.Error(member, msg, errorKeysAndValues(member)...)
		}
		return
	}

	var e *Error
	if errors.As(err, &e) {
		logger.Error(err, msg, errorKeysAndValues(e)...)
		return
	}

	logger.Error(err, msg)
}

func errorKeysAndValues(e *Error) []interface{} {
	keysAndValues := []interface{}{
		"error.codes", renderHeader(e.Codes()),
		"error.code", int(e.Code()),
		"error.messages", e.Messages(),
	}
	if soft := softList(e); len(soft) > 0 {
		keysAndValues = append(keysAndValues, "error.soft", renderHeader(soft))
	}
	for i, linked := range e.Linked() {
		keysAndValues = append(keysAndValues, "error.linked."+strconv.Itoa(i), linked.String())
	}
	return keysAndValues
}
