package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指標，透過 /metrics 端點暴露
var (
	metricConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_connections_active",
			Help: "Current number of live WebSocket connections",
		},
	)

	metricRoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_rooms_active",
			Help: "Current number of active rooms",
		},
	)

	metricEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_events_total",
			Help: "Inbound client events by type",
		},
		[]string{"event"},
	)

	metricRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_event_rejections_total",
			Help: "Rejected client events by reason",
		},
		[]string{"reason"},
	)

	metricBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_broadcasts_total",
			Help: "Room snapshot broadcasts delivered",
		},
	)

	metricHTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)
