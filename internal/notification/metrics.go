package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghx",
			Name:      "notification_deliveries_total",
			Help:      "Notification deliveries per channel and outcome",
		},
		[]string{"channel", "status"},
	)

	events = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghx",
			Name:      "notification_events_total",
			Help:      "Domain events handled by the notification coordinator",
		},
		[]string{"event", "outcome"},
	)
)

func trackDelivery(channel, status string, n int) {
	if n > 0 {
		deliveries.WithLabelValues(channel, status).Add(float64(n))
	}
}

func trackEvent(event, outcome string) {
	events.WithLabelValues(event, outcome).Inc()
}
