// Package catalog loads error code catalogs from YAML and applies them to a
// noexcept module.
//
// A catalog file looks like:
//
//	terminate_on_raise: false
//	codes:
//	  - code: 404
//	    message: Not Found
//	    linked: [500]
//	  - code: 1001
//	    message: Validation failed
//	    soft: true
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"noexcept/pkg/noexcept"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

var (
	// ErrInvalidCatalog is wrapped by every validation failure.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnsupportedFormat is returned by Export for unknown formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Catalog is a set of code registrations plus module settings.
type Catalog struct {
	TerminateOnRaise bool    `json:"terminate_on_raise,omitempty" yaml:"terminate_on_raise,omitempty"`
	Codes            []Entry `json:"codes" yaml:"codes"`
}

// Entry is one code registration.
type Entry struct {
	Code    noexcept.Code   `json:"code" yaml:"code"`
	Message string          `json:"message,omitempty" yaml:"message,omitempty"`
	Linked  []noexcept.Code `json:"linked,omitempty" yaml:"linked,omitempty"`
	Soft    bool            `json:"soft,omitempty" yaml:"soft,omitempty"`
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	// #nosec G304 -- path is supplied by the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a YAML catalog. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks that codes are positive and unique and that no code links
// to itself.
func (c *Catalog) Validate() error {
	var problems []string
	seen := make(map[noexcept.Code]bool, len(c.Codes))
	for i, entry := range c.Codes {
		if entry.Code <= 0 {
			problems = append(problems, fmt.Sprintf("codes[%d]: code must be positive, got %d", i, entry.Code))
			continue
		}
		if seen[entry.Code] {
			problems = append(problems, fmt.Sprintf("codes[%d]: duplicate code %d", i, entry.Code))
		}
		seen[entry.Code] = true
		for _, linked := range entry.Linked {
			if linked == entry.Code {
				problems = append(problems, fmt.Sprintf("codes[%d]: code %d links to itself", i, entry.Code))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}

// Apply registers every entry on m and enables terminate mode when the
// catalog asks for it. It returns the number of codes newly registered;
// codes already present on m keep their first registration.
func (c *Catalog) Apply(m *noexcept.Module) int {
	added := 0
	for _, entry := range c.Codes {
		if m.Registry().IsRegistered(entry.Code) {
			continue
		}
		var opts []noexcept.RegisterOption
		if len(entry.Linked) > 0 {
			opts = append(opts, noexcept.Linked(entry.Linked...))
		}
		if entry.Soft {
			opts = append(opts, noexcept.Soft())
		}
		m.Likey(entry.Code, entry.Message, opts...)
		added++
	}
	if c.TerminateOnRaise {
		m.EnableTerminateOnRaise()
	}
	return added
}

// FromModule returns the catalog of m's registrations in code order.
func FromModule(m *noexcept.Module) *Catalog {
	regs := m.Registry().Entries()
	cat := &Catalog{
		TerminateOnRaise: m.TerminateOnRaise(),
		Codes:            make([]Entry, 0, len(regs)),
	}
	for _, reg := range regs {
		cat.Codes = append(cat.Codes, Entry{
			Code:    reg.Code,
			Message: reg.DefaultMessage,
			Linked:  reg.Linked,
			Soft:    reg.Soft,
		})
	}
	return cat
}

// Export encodes the catalog as "yaml" or "json".
func (c *Catalog) Export(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return sigsyaml.Marshal(c)
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
