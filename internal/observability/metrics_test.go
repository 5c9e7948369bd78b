package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Verifications.WithLabelValues("address", "valid").Inc()
	a.EventsPublished.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.Verifications.WithLabelValues("address", "valid")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Verifications.WithLabelValues("address", "valid")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.EventsPublished), 0)
}
