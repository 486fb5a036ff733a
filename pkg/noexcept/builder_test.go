package noexcept

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	m := NewModule()
	m.Likey(404, "Not Found")

	e, err := m.Build().
		WithCode(404, "a").
		WithCode(500).
		WithCode(404, "b", "").
		WithLinkedCause(errors.New("x")).
		WithLinkedCause(nil).
		AsSoft(500).
		Build()
	require.NoError(t, err)

	assert.Equal(t, Code(404), e.Code())
	assert.Equal(t, []Code{404, 500}, e.Codes())
	want := map[Code][]string{404: {"Not Found", "a", "b"}, 500: {"Error 500"}}
	if diff := cmp.Diff(want, e.CodeMessages()); diff != "" {
		t.Errorf("CodeMessages() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[Code]bool{500: true}, e.SoftCodes())
	require.Len(t, e.Linked(), 1)
	assert.Equal(t, "x", e.Linked()[0].Message)
}

func TestBuilder_NoCodes(t *testing.T) {
	e, err := NewModule().Build().WithLinkedCause(errors.New("x")).Build()
	if !errors.Is(err, ErrNoCodes) {
		t.Errorf("Build() error = %v, want %v", err, ErrNoCodes)
	}
	if e != nil {
		t.Errorf("Build() = %v, want nil", e)
	}
}

func TestBuilder_ZeroValue(t *testing.T) {
	Likey(61002, "zero value code")

	var b Builder
	e, err := b.WithCode(61002, "extra").AsSoft(61002).Build()
	require.NoError(t, err)
	assert.Equal(t, Code(61002), e.Code())
	assert.Equal(t, []string{"zero value code", "extra"}, e.Messages())
	assert.True(t, e.IsSoft(61002))

	_, err = (&Builder{}).AsSoft(1).Build()
	assert.ErrorIs(t, err, ErrNoCodes)
}

func TestNewBuilder_UsesDefault(t *testing.T) {
	Likey(61001, "default module code")

	e, err := NewBuilder().WithCode(61001).Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"default module code"}, e.Messages())
	assert.Same(t, Default, e.owner())
}
