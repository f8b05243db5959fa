package advice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics описывает здоровье самого слоя логирования, а не вызовов, которые он оборачивает.
type Metrics struct {
	// Records: сколько записей ушло в Sink, по уровням
	Records *prometheus.CounterVec

	// SinkFailures: ошибки и паники Sink'а, проглоченные advice
	SinkFailures prometheus.Counter

	// ShipperBufferFill: заполненность буфера асинхронного отправителя (backpressure)
	ShipperBufferFill prometheus.Gauge

	// ShipperDropped: записи, сброшенные при переполнении или после Stop
	ShipperDropped prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - если регистр не передан, используем локальный
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Records: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "httplog_records_total",
			Help: "Total number of log records handed to the sink.",
		}, []string{"level"}),

		SinkFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "httplog_sink_failures_total",
			Help: "Total number of sink errors swallowed by the advice layer.",
		}),

		ShipperBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "httplog_shipper_buffer_utilization",
			Help: "Current number of records waiting in the shipper buffer.",
		}),

		ShipperDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "httplog_shipper_dropped_total",
			Help: "Total number of records dropped by the shipper.",
		}),
	}
}
