package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)
	var out dto.Metric
	m := <-ch
	require.NotNil(t, m)
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func TestAssistantMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)

	m.ObserveAnswer("wifi", "LEONINA71")
	m.ObserveAnswer("wifi", "LEONINA71")
	m.ObserveAnswer("", "LEONINA71")
	m.ObservePolish("openai", "polished", false)
	m.ObserveLatency(true, 0.25)
	m.ObserveRejected("unknown_property")

	assert.Equal(t, float64(2), counterValue(t, m.answersTotal.WithLabelValues("wifi", "LEONINA71")))
	assert.Equal(t, float64(1), counterValue(t, m.answersTotal.WithLabelValues("none", "LEONINA71")))
	assert.Equal(t, float64(1), counterValue(t, m.polishTotal.WithLabelValues("openai", "polished", "false")))
	assert.Equal(t, float64(1), counterValue(t, m.rejectedTotal.WithLabelValues("unknown_property")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "guest_assistant_answer_latency_seconds")
}

func TestAssistantMetricsSessions(t *testing.T) {
	m := NewAssistantMetrics(prometheus.NewRegistry())
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	assert.Equal(t, float64(1), counterValue(t, m.wsSessionsOpen))
}

func TestAssistantMetricsNilSafe(t *testing.T) {
	var m *AssistantMetrics
	m.ObserveAnswer("wifi", "p")
	m.ObservePolish("none", "disabled", false)
	m.ObserveLatency(false, 0.1)
	m.ObserveRejected("bad_request")
	m.SessionOpened()
	m.SessionClosed()
}
