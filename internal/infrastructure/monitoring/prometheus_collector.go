package monitoring

import (
	"time"

	"paystream/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements the engine's metrics Recorder.
type PrometheusCollector struct {
	streamsActive     prometheus.Gauge
	streamsCreated    prometheus.Counter
	streamsCompleted  prometheus.Counter
	streamsCancelled  prometheus.Counter
	operationDuration *prometheus.HistogramVec

	valueCommitted *prometheus.CounterVec
	valueWithdrawn *prometheus.CounterVec
	valueRefunded  *prometheus.CounterVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		streamsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "paystream_streams_active",
			Help: "Number of currently active streams",
		}),

		streamsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paystream_streams_created_total",
			Help: "Total number of streams created",
		}),

		streamsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paystream_streams_completed_total",
			Help: "Total number of streams fully vested and withdrawn",
		}),

		streamsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paystream_streams_cancelled_total",
			Help: "Total number of streams cancelled",
		}),

		operationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paystream_operation_duration_seconds",
			Help:    "Duration of engine operations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"operation"}),

		valueCommitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paystream_value_committed_total",
			Help: "Total base units pulled into custody at stream creation",
		}, []string{"token"}),

		valueWithdrawn: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paystream_value_withdrawn_total",
			Help: "Total base units paid out to receivers",
		}, []string{"token"}),

		valueRefunded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paystream_value_refunded_total",
			Help: "Total base units refunded to senders on cancellation",
		}, []string{"token"}),
	}
}

func (p *PrometheusCollector) StreamCreated(token domain.TokenID, total uint64) {
	p.streamsCreated.Inc()
	p.streamsActive.Inc()
	p.valueCommitted.WithLabelValues(string(token)).Add(float64(total))
}

func (p *PrometheusCollector) StreamWithdrawn(token domain.TokenID, amount uint64) {
	p.valueWithdrawn.WithLabelValues(string(token)).Add(float64(amount))
}

func (p *PrometheusCollector) StreamCompleted(token domain.TokenID) {
	p.streamsCompleted.Inc()
	p.streamsActive.Dec()
}

func (p *PrometheusCollector) StreamCancelled(token domain.TokenID, receiverDue, senderRefund uint64) {
	p.streamsCancelled.Inc()
	p.streamsActive.Dec()
	p.valueWithdrawn.WithLabelValues(string(token)).Add(float64(receiverDue))
	p.valueRefunded.WithLabelValues(string(token)).Add(float64(senderRefund))
}

func (p *PrometheusCollector) OperationObserved(op string, d time.Duration) {
	p.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}
