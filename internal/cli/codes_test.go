package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"noexcept/pkg/noexcept"
)

const testCatalog = `
codes:
  - code: 404
    message: Not Found
  - code: 1001
    message: Validation failed
    soft: true
`

type exitRecorder struct {
	codes []int
}

func (r *exitRecorder) exit(code int) {
	r.codes = append(r.codes, code)
}

func newTestManager(t *testing.T, cfg CLIConfig) (*CodesManager, *bytes.Buffer, *exitRecorder) {
	t.Helper()
	if cfg.CatalogPath == "" {
		path := filepath.Join(t.TempDir(), "codes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))
		cfg.CatalogPath = path
	}
	var out bytes.Buffer
	recorder := &exitRecorder{}
	mgr := NewCodesManager(cfg, &Printer{Writer: &out}, recorder.exit, zap.NewNop())
	return mgr, &out, recorder
}

func TestCodesManager_ListCodes(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		mgr, _, _ := newTestManager(t, CLIConfig{})
		var out bytes.Buffer

		require.NoError(t, mgr.ListCodes(&out, "table"))
		assert.Contains(t, out.String(), "Validation failed")
		assert.Contains(t, out.String(), "Error404")
	})

	t.Run("yaml", func(t *testing.T) {
		mgr, _, _ := newTestManager(t, CLIConfig{})
		var out bytes.Buffer

		require.NoError(t, mgr.ListCodes(&out, "yaml"))
		want := "codes:\n- code: 404\n  message: Not Found\n- code: 1001\n  message: Validation failed\n  soft: true\n"
		assert.Equal(t, want, out.String())
	})

	t.Run("json", func(t *testing.T) {
		mgr, _, _ := newTestManager(t, CLIConfig{})
		var out bytes.Buffer

		require.NoError(t, mgr.ListCodes(&out, "JSON"))
		assert.Contains(t, out.String(), `"code": 1001`)
	})

	t.Run("unknown format", func(t *testing.T) {
		mgr, _, _ := newTestManager(t, CLIConfig{})
		err := mgr.ListCodes(&bytes.Buffer{}, "xml")
		assert.ErrorIs(t, err, ErrUnknownOutputFormat)
	})
}

func TestCodesManager_CatalogErrors(t *testing.T) {
	mgr, _, _ := newTestManager(t, CLIConfig{CatalogPath: filepath.Join(t.TempDir(), "missing.yaml")})

	_, err := mgr.Module()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadCatalogFailed)
	assert.True(t, noexcept.HasCode(err, CodeConfig))
}

func TestCodesManager_Explain(t *testing.T) {
	mgr, _, _ := newTestManager(t, CLIConfig{})

	var out bytes.Buffer
	require.NoError(t, mgr.Explain(&out, 1001))
	assert.Contains(t, out.String(), "Validation failed")
	assert.Contains(t, out.String(), "yes")

	out.Reset()
	require.NoError(t, mgr.Explain(&out, 77))
	assert.Contains(t, out.String(), "Error 77")
	assert.Contains(t, out.String(), "not in the catalog")
}

func TestCodesManager_RaiseHard(t *testing.T) {
	mgr, _, recorder := newTestManager(t, CLIConfig{})
	var out bytes.Buffer

	err := mgr.Raise(context.Background(), &out, RaiseRequest{Code: 404, Message: "user 42", Link: "dial tcp: refused"})
	require.Error(t, err)

	var coded *noexcept.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, []string{"Not Found", "user 42"}, coded.Messages())
	require.Len(t, coded.Linked(), 1)
	assert.Equal(t, "dial tcp: refused", coded.Linked()[0].Message)

	assert.Contains(t, out.String(), "404: raised")
	assert.Contains(t, out.String(), "linked:")
	assert.Empty(t, recorder.codes)
}

func TestCodesManager_RaiseSoftAccumulates(t *testing.T) {
	mgr, _, _ := newTestManager(t, CLIConfig{})
	var out bytes.Buffer

	err := mgr.Raise(context.Background(), &out, RaiseRequest{
		Code:    1001,
		Message: "name is empty",
		Then:    []noexcept.Code{1001, 404},
	})
	require.Error(t, err)

	var coded *noexcept.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, []noexcept.Code{1001, 404}, coded.Codes())
	assert.Equal(t, []string{"Validation failed", "name is empty", "Validation failed", "Not Found"}, coded.Messages())

	assert.Contains(t, out.String(), "1001: stashed")
	assert.Contains(t, out.String(), "1001: merged")
	assert.Contains(t, out.String(), "404: merged")
	assert.Contains(t, out.String(), "Pending messages: Validation failed; name is empty; Validation failed; Not Found")

	module, _ := mgr.Module()
	assert.Equal(t, 0, module.PendingStore().Scopes())
}

func TestCodesManager_RaiseTerminate(t *testing.T) {
	mgr, moduleOut, recorder := newTestManager(t, CLIConfig{})

	err := mgr.Raise(context.Background(), &bytes.Buffer{}, RaiseRequest{Code: 404, Terminate: true})
	require.Error(t, err)
	assert.Equal(t, []int{1}, recorder.codes)
	assert.Contains(t, moduleOut.String(), "[404]\nNot Found\n")
}

func TestCodesManager_Group(t *testing.T) {
	mgr, _, _ := newTestManager(t, CLIConfig{})
	var out bytes.Buffer

	err := mgr.Group(context.Background(), &out, []noexcept.Code{404, 1001}, "batch")
	require.Error(t, err)

	var group *noexcept.Group
	require.True(t, errors.As(err, &group))
	assert.Equal(t, []noexcept.Code{404, 1001}, group.Codes())
	assert.Contains(t, out.String(), "batch")

	module, _ := mgr.Module()
	assert.False(t, module.HasPending(context.Background()))
}

func TestCodesManager_ParseCode(t *testing.T) {
	mgr, _, _ := newTestManager(t, CLIConfig{})

	code, err := mgr.parseCode(" 404 ")
	require.NoError(t, err)
	assert.Equal(t, noexcept.Code(404), code)

	_, err = mgr.parseCode("abc")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = mgr.parseCode(" ")
	assert.ErrorIs(t, err, ErrCodeRequired)
}

func TestCodesManager_Commands(t *testing.T) {
	mgr, _, _ := newTestManager(t, CLIConfig{})
	cmds := mgr.Commands()

	var names []string
	for _, cmd := range cmds {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"codes", "explain", "raise", "group"}, names)

	raise := cmds[2]
	var out bytes.Buffer
	raise.SetOut(&out)
	raise.SetErr(&out)
	raise.SetArgs([]string{"1001", "bad\x07bell"})
	err := raise.Execute()
	assert.ErrorIs(t, err, ErrControlCharsNotAllowed)
}
