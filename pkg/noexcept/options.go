package noexcept

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the logger used for state transitions.
func WithLogger(logger logr.Logger) Option {
	return func(m *Module) {
		m.logger = logger
	}
}

// WithMetrics registers the transition counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Module) {
		m.metrics = newMetrics(reg)
	}
}

// WithOutput sets where terminate mode writes the rendered error.
func WithOutput(w io.Writer) Option {
	return func(m *Module) {
		m.out = w
	}
}

// WithExit replaces the function terminate mode calls after writing the
// rendered error. It defaults to os.Exit.
func WithExit(exit func(code int)) Option {
	return func(m *Module) {
		m.exit = exit
	}
}

// WithTerminateOnRaise starts the module in terminate mode.
func WithTerminateOnRaise() Option {
	return func(m *Module) {
		m.terminate.Store(true)
	}
}

// RegisterOption configures a registration made through Module.Likey.
type RegisterOption func(*Registration)

// Linked sets the codes automatically added to every fresh error of the
// registered code.
func Linked(codes ...Code) RegisterOption {
	return func(r *Registration) {
		r.Linked = append(r.Linked, codes...)
	}
}

// Soft marks the registered code as soft: calls accumulate it into the
// pending error instead of raising.
func Soft() RegisterOption {
	return func(r *Registration) {
		r.Soft = true
	}
}

// CallOption is a named parameter of a call. Call options may appear
// anywhere in the argument list and do not count towards its shape.
type CallOption func(*callOptions)

type callOptions struct {
	complaint string
	soften    bool
	active    error
}

// Complaint adds a free-text message to the call.
func Complaint(message string) CallOption {
	return func(o *callOptions) {
		o.complaint = message
	}
}

// Soften requests soft behavior for this call only.
func Soften() CallOption {
	return func(o *callOptions) {
		o.soften = true
	}
}

// SoftenIf requests soft behavior for this call when soften is true.
func SoftenIf(soften bool) CallOption {
	return func(o *callOptions) {
		o.soften = o.soften || soften
	}
}

// Active names the failure currently being handled. When it is an *Error,
// module calls with a code merge into it instead of creating a new error.
func Active(err error) CallOption {
	return func(o *callOptions) {
		o.active = err
	}
}
