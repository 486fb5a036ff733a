package noexcept

import (
	"sort"
	"strconv"
	"strings"
)

// RenderText returns the deterministic text form of the error:
//
//	[404,500]
//	Not Found
//	Server Error
//	linked:
//	  *errors.errorString: boom @ /src/app/db.go:42
//
// The header lists codes in insertion order, then one line per message in
// code order, then the linked causes ordered by their first location, each with its
// locations sorted. Causes without a known location come last.
func (e *Error) RenderText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var b strings.Builder
	b.WriteString(renderHeader(e.codes))
	for _, code := range e.codes {
		for _, msg := range e.messages[code] {
			b.WriteByte('\n')
			b.WriteString(msg)
		}
	}
	if len(e.linked) > 0 {
		b.WriteString("\nlinked:")
		for _, entry := range sortedLinked(e.linked) {
			b.WriteString("\n  ")
			b.WriteString(entry.String())
		}
	}
	return b.String()
}

func renderHeader(codes []Code) string {
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, strconv.Itoa(int(code)))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// sortedLinked orders causes by their first location. Ties keep the order the
// causes were recorded in.
func sortedLinked(linked []*LinkedCause) []*LinkedCause {
	out := append([]*LinkedCause(nil), linked...)
	first := make(map[*LinkedCause]Location, len(out))
	for _, entry := range out {
		if locs := entry.Locations(); len(locs) > 0 {
			first[entry] = locs[0]
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := first[out[i]], first[out[j]]
		if a.Known() != b.Known() {
			return a.Known()
		}
		return a.less(b)
	})
	return out
}
