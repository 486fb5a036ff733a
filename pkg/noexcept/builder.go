package noexcept

// Builder assembles a multi-code Error. Methods return the same builder for
// chaining; Build consumes it. The zero value is ready to use and builds
// against the Default module.
//
//	err, buildErr := noexcept.NewBuilder().
//		WithCode(404, "user 42").
//		WithCode(500).
//		WithLinkedCause(dbErr).
//		AsSoft(500).
//		Build()
type Builder struct {
	module *Module
	order  []Code
	codes  map[Code][]string
	linked []error
	soft   map[Code]bool
}

// NewBuilder returns a builder backed by the Default module.
func NewBuilder() *Builder {
	return Default.Build()
}

// WithCode adds code with optional complaints. Adding a code twice appends
// the complaints to the first entry.
func (b *Builder) WithCode(code Code, complaints ...string) *Builder {
	if b.codes == nil {
		b.codes = make(map[Code][]string)
	}
	if _, ok := b.codes[code]; !ok {
		b.order = append(b.order, code)
		b.codes[code] = nil
	}
	for _, complaint := range complaints {
		if complaint != "" {
			b.codes[code] = append(b.codes[code], complaint)
		}
	}
	return b
}

// WithLinkedCause links an external failure to the built error.
func (b *Builder) WithLinkedCause(cause error) *Builder {
	if cause != nil {
		b.linked = append(b.linked, cause)
	}
	return b
}

// AsSoft marks code as soft on the built error.
func (b *Builder) AsSoft(code Code) *Builder {
	if b.soft == nil {
		b.soft = make(map[Code]bool)
	}
	b.soft[code] = true
	return b
}

// Build returns the assembled error. The first added code is the primary
// code; every code starts with its registered default message. Build returns
// ErrNoCodes when no code was added.
func (b *Builder) Build() (*Error, error) {
	if len(b.order) == 0 {
		return nil, ErrNoCodes
	}
	m := b.module
	if m == nil {
		m = Default
	}

	first := b.order[0]
	e := newError(first, m.registry.Lookup(first).DefaultMessage)
	e.module = m
	for _, code := range b.order {
		e.AddCode(code, m.registry.Lookup(code).DefaultMessage)
		for _, msg := range b.codes[code] {
			e.AddMessage(code, msg)
		}
	}
	for _, cause := range b.linked {
		e.RecordLinkedCause(cause)
	}
	for code, soft := range b.soft {
		e.SetSoft(code, soft)
	}
	return e, nil
}
