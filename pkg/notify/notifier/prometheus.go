package notifier

import (
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	listenersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Number of registered notification listeners",
			Name:      "listeners",
			Subsystem: "notifier",
			Namespace: "dagnotify",
		},
		[]string{"notifier"},
	)
	deliveredCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of notifications delivered to listeners",
			Name:      "delivered_total",
			Subsystem: "notifier",
			Namespace: "dagnotify",
		},
		[]string{"notifier", "event"},
	)
	failedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of notifications that couldn't be delivered to listeners",
			Name:      "delivery_failures_total",
			Subsystem: "notifier",
			Namespace: "dagnotify",
		},
		[]string{"notifier", "reason"},
	)
	queueOverflowCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of notifications rejected because of queue overflow",
			Name:      "queue_overflows_total",
			Subsystem: "notifier",
			Namespace: "dagnotify",
		},
		[]string{"notifier"},
	)
)

func init() {
	prometheus.MustRegister(
		listenersGauge,
		deliveredCounter,
		failedCounter,
		queueOverflowCounter,
	)
}

func setListenersGauge(name string, n int) {
	listenersGauge.WithLabelValues(name).Set(float64(n))
}

func notificationDelivered(name string, t events.Type) {
	deliveredCounter.WithLabelValues(name, t.String()).Inc()
}

func deliveryFailed(name string, reason string) {
	failedCounter.WithLabelValues(name, reason).Inc()
}

func queueOverflowed(name string) {
	queueOverflowCounter.WithLabelValues(name).Inc()
}
