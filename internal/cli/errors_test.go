package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"noexcept/pkg/noexcept"
)

func TestNewWithSentinel(t *testing.T) {
	err := newWithSentinel(ErrInvalidCode, "invalid code \"x\"")

	if !errors.Is(err, ErrInvalidCode) {
		t.Errorf("errors.Is(err, ErrInvalidCode) = false, want true")
	}
	if !noexcept.HasCode(err, CodeCLI) {
		t.Errorf("HasCode(err, %d) = false, want true", CodeCLI)
	}
	if err.Error() != "invalid code \"x\"" {
		t.Errorf("Error() = %q, want %q", err.Error(), "invalid code \"x\"")
	}
}

func TestWrapWithSentinel(t *testing.T) {
	cause := errors.New("open codes.yaml: no such file")
	err := wrapWithSentinel(ErrLoadCatalogFailed, cause, "failed to load catalog")

	require.True(t, errors.Is(err, ErrLoadCatalogFailed))
	assert.True(t, noexcept.HasCode(err, CodeConfig))

	var coded *noexcept.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, []string{"Configuration error", "failed to load catalog"}, coded.Messages())
	require.Len(t, coded.Linked(), 1)
	assert.Equal(t, cause.Error(), coded.Linked()[0].Message)
}

func TestWrapWithSentinel_NilBase(t *testing.T) {
	err := newWithSentinel(nil, "bad input")

	var coded *noexcept.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, CodeCLI, coded.Code())
}

func TestCodeFor(t *testing.T) {
	if got := codeFor(errors.New("unregistered")); got != CodeCLI {
		t.Errorf("codeFor(unregistered) = %d, want %d", got, CodeCLI)
	}
	if got := codeFor(ErrExportCatalogFailed); got != CodeConfig {
		t.Errorf("codeFor(ErrExportCatalogFailed) = %d, want %d", got, CodeConfig)
	}
}

func TestLogStructuredError(t *testing.T) {
	t.Cleanup(func() { SetDebugMode(false) })

	t.Run("skipped without debug mode", func(t *testing.T) {
		SetDebugMode(false)
		core, logs := observer.New(zapcore.DebugLevel)
		logStructuredError(zap.New(core), newWithSentinel(ErrInvalidCode, "bad"), "Invalid code")
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("coded error fields", func(t *testing.T) {
		SetDebugMode(true)
		core, logs := observer.New(zapcore.DebugLevel)
		err := wrapWithSentinel(ErrLoadCatalogFailed, errors.New("boom"), "failed to load catalog")

		logStructuredError(zap.New(core), err, "Failed to load catalog")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "Failed to load catalog", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, "[79000]", fields["error.codes"])
		assert.Equal(t, "*errors.errorString: boom @ unknown", fields["error.linked.0"])
	})

	t.Run("plain error", func(t *testing.T) {
		SetDebugMode(true)
		core, logs := observer.New(zapcore.DebugLevel)
		logStructuredError(zap.New(core), errors.New("plain"), "Failed")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "plain", logs.All()[0].ContextMap()["error"])
	})

	t.Run("nil logger", func(t *testing.T) {
		SetDebugMode(true)
		logStructuredError(nil, errors.New("plain"), "Failed")
	})
}

func TestDebugMode(t *testing.T) {
	t.Cleanup(func() { SetDebugMode(false) })

	SetDebugMode(true)
	if !IsDebugMode() {
		t.Errorf("IsDebugMode() = false, want true")
	}
	SetDebugMode(false)
	if IsDebugMode() {
		t.Errorf("IsDebugMode() = true, want false")
	}
}
