package noexcept

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := newTestModule(t)
		err := m.Go(Scoped(context.Background()), 503, func() error { return nil })
		assert.NoError(t, err)
	})

	t.Run("external failure is linked", func(t *testing.T) {
		m := newTestModule(t)
		m.Likey(503, "Unavailable")

		err := m.Go(Scoped(context.Background()), 503, func() error {
			return errors.New("dial tcp: refused")
		})
		require.Error(t, err)

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, []Code{503}, e.Codes())
		require.Len(t, e.Linked(), 1)
		assert.Equal(t, "dial tcp: refused", e.Linked()[0].Message)
	})

	t.Run("own failure gets the code merged", func(t *testing.T) {
		m := newTestModule(t)
		ctx := Scoped(context.Background())

		err := m.Go(ctx, 503, func() error {
			return m.Call(ctx, 404)
		}, Complaint("loading user"))
		require.Error(t, err)
		assert.Equal(t, []Code{404, 503}, codesOfError(t, err))
		assert.Equal(t, []string{"Error 404", "Error 503", "loading user"}, MessagesOf(err))
	})

	t.Run("panic is recovered and linked", func(t *testing.T) {
		m := newTestModule(t)

		err := m.Go(Scoped(context.Background()), 503, func() error {
			panic("boom")
		})
		require.Error(t, err)

		var e *Error
		require.ErrorAs(t, err, &e)
		linked := e.Linked()
		require.Len(t, linked, 1)
		assert.Equal(t, "panic: boom", linked[0].Message)
		require.Len(t, linked[0].Locations(), 1)
		assert.Equal(t, "guard_test.go", filepath.Base(linked[0].Locations()[0].File))
	})

	t.Run("soft code stashes", func(t *testing.T) {
		m := newTestModule(t)
		m.Likey(503, "Unavailable", Soft())
		ctx := Scoped(context.Background())

		err := m.Go(ctx, 503, func() error { return errors.New("retry later") })
		assert.NoError(t, err)
		assert.True(t, m.HasPending(ctx))
	})

	t.Run("group passes through", func(t *testing.T) {
		m := newTestModule(t)
		ctx := Scoped(context.Background())

		err := m.Go(ctx, 503, func() error { return m.Call(ctx, []Code{1, 2}) })
		var g *Group
		require.ErrorAs(t, err, &g)
		assert.Equal(t, []Code{1, 2}, g.Codes())
	})
}

func TestGoValue(t *testing.T) {
	m := newTestModule(t)
	ctx := Scoped(context.Background())

	got, err := GoValue(ctx, m, 503, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = GoValue(ctx, m, 503, func() (int, error) { panic(errors.New("nil map")) })
	require.Error(t, err)
	assert.Equal(t, 0, got)
	assert.True(t, HasCode(err, 503))
}

func TestCapture(t *testing.T) {
	ctx := Scoped(context.Background())

	load := func() (err error) {
		defer Capture(ctx, 61002, &err, Complaint("loading config"))
		panic("bad config")
	}

	err := load()
	require.Error(t, err)
	assert.Equal(t, []string{"Error 61002", "loading config"}, MessagesOf(err))
	assert.Equal(t, "panic: bad config", err.(*Error).Linked()[0].Message)
}
