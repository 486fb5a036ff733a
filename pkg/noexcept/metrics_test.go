package noexcept

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newTestModule(t, WithMetrics(reg))
	m.Likey(1001, "", Soft())
	ctx := Scoped(context.Background())

	_ = m.Call(ctx, 404)
	_ = m.Call(ctx, []int{1, 2})
	_ = m.Call(ctx, 1001)
	_ = m.Call(ctx, 1001)
	_ = m.Call(ctx, 2.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.raised.WithLabelValues("404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.raised.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.stashed.WithLabelValues("1001")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.merged.WithLabelValues("1001")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.usage))
}

func TestMetrics_SharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newTestModule(t, WithMetrics(reg))
	second := newTestModule(t, WithMetrics(reg))
	ctx := Scoped(context.Background())

	_ = first.Call(ctx, 7)
	_ = second.Call(ctx, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.metrics.raised.WithLabelValues("7")))
}

func TestMetrics_Disabled(t *testing.T) {
	m := newTestModule(t)
	assert.Nil(t, m.metrics)
	assert.Error(t, m.Call(context.Background(), 1))
}
