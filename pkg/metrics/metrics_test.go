package metrics_test

import (
	"testing"

	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SyncRuns.WithLabelValues("success").Inc()
	m.RecordsChanged.WithLabelValues("create").Add(3)

	gt.Number(t, testutil.ToFloat64(m.SyncRuns.WithLabelValues("success"))).Equal(1)
	gt.Number(t, testutil.ToFloat64(m.SyncRuns.WithLabelValues("failure"))).Equal(0)
	gt.Number(t, testutil.ToFloat64(m.RecordsChanged.WithLabelValues("create"))).Equal(3)

	families, err := reg.Gather()
	gt.NoError(t, err).Required()
	gt.Number(t, len(families)).Greater(0)
}

func TestNewNop(t *testing.T) {
	a := metrics.NewNop()
	b := metrics.NewNop()

	b.SyncRuns.WithLabelValues("success").Inc()
	gt.Number(t, testutil.ToFloat64(a.SyncRuns.WithLabelValues("success"))).Equal(0)
	gt.Number(t, testutil.ToFloat64(b.SyncRuns.WithLabelValues("success"))).Equal(1)
}
