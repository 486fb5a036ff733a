package noexcept

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Location is a single source position. The zero value means unknown.
type Location struct {
	File string
	Line int
}

// Known reports whether the location carries a file.
func (l Location) Known() bool {
	return l.File != ""
}

func (l Location) String() string {
	if !l.Known() {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

func (l Location) less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	return l.Line < o.Line
}

// LinkedCause describes an external failure linked to an Error: its type,
// its message and every location it was recorded from.
type LinkedCause struct {
	Type      string
	Message   string
	locations sets.Set[Location]
}

type causeKey struct {
	typ string
	msg string
}

// Locations returns the recorded locations in sorted order.
func (c *LinkedCause) Locations() []Location {
	out := c.locations.UnsortedList()
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

func (c *LinkedCause) String() string {
	locs := c.Locations()
	parts := make([]string, 0, len(locs))
	for _, loc := range locs {
		parts = append(parts, loc.String())
	}
	return fmt.Sprintf("%s: %s @ %s", c.Type, c.Message, strings.Join(parts, ", "))
}

func (c *LinkedCause) clone() LinkedCause {
	return LinkedCause{
		Type:      c.Type,
		Message:   c.Message,
		locations: c.locations.Clone(),
	}
}

// RecordLinkedCause records cause as a linked failure. The cause is reduced
// to its type and message plus the innermost location of its chain; repeated
// records of the same type and message add locations to a single entry.
func (e *Error) RecordLinkedCause(cause error) {
	if cause == nil {
		return
	}
	key := causeKey{typ: fmt.Sprintf("%T", cause), msg: cause.Error()}
	loc := locate(cause)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.linkedIdx == nil {
		e.linkedIdx = make(map[causeKey]*LinkedCause)
	}
	entry, ok := e.linkedIdx[key]
	if !ok {
		entry = &LinkedCause{Type: key.typ, Message: key.msg, locations: sets.New[Location]()}
		e.linkedIdx[key] = entry
		e.linked = append(e.linked, entry)
	}
	entry.locations.Insert(loc)
}

// Linked returns copies of the linked causes in the order they were first
// recorded.
func (e *Error) Linked() []LinkedCause {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]LinkedCause, 0, len(e.linked))
	for _, entry := range e.linked {
		out = append(out, entry.clone())
	}
	return out
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// locate returns the innermost known location in err's chain: the first
// frame of the deepest stack-carrying error, or the origin of the deepest
// *Error.
func locate(err error) Location {
	var loc Location
	for current := err; current != nil; current = errors.Unwrap(current) {
		switch typed := current.(type) {
		case *Error:
			if typed.origin.Known() {
				loc = typed.origin
			}
		case stackTracer:
			if found := frameLocation(typed.StackTrace()); found.Known() {
				loc = found
			}
		}
	}
	return loc
}

// frameLocation returns the first frame of st outside this package and the
// runtime.
func frameLocation(st pkgerrors.StackTrace) Location {
	for _, f := range st {
		pc := uintptr(f) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line := fn.FileLine(pc)
		if internalFrame(runtime.Frame{File: file, Function: fn.Name()}) {
			continue
		}
		return Location{File: file, Line: line}
	}
	return Location{}
}

var packageDir = func() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Dir(file)
}()

const maxCallerFrames = 32

// callerLocation returns the first frame outside this package's non-test
// sources.
func callerLocation() Location {
	pcs := make([]uintptr, maxCallerFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !internalFrame(frame) {
			return Location{File: frame.File, Line: frame.Line}
		}
		if !more {
			return Location{}
		}
	}
}

func internalFrame(frame runtime.Frame) bool {
	if strings.HasSuffix(frame.File, "_test.go") {
		return false
	}
	if strings.HasPrefix(frame.Function, "runtime.") {
		return true
	}
	return packageDir != "" && filepath.Dir(frame.File) == packageDir
}
