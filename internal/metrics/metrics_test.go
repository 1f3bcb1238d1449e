package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsguard/pkg/fileops"
)

func TestObserve(t *testing.T) {
	m := New()
	start := time.Now()

	m.Observe("read_file", start, nil)
	m.Observe("read_file", start, nil)
	m.Observe("read_file", start, fileops.Errorf("read_file", "/etc/passwd", fileops.KindAccessDenied, "outside"))
	m.Observe("write_file", start, errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("read_file", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("read_file", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDenied.WithLabelValues("read_file")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AccessDenied.WithLabelValues("write_file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsByKind.WithLabelValues("write_file", "i/o error")))

	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationDuration))
}

func TestPrivateRegistry(t *testing.T) {
	a := New()
	b := New()

	a.Observe("list_directory", time.Now(), nil)

	families, err := a.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.OperationsTotal.WithLabelValues("list_directory", ResultOK)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Observe("read_file", time.Now(), nil)
	})
	assert.Nil(t, m.Registry())
}
