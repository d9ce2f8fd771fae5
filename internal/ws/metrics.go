// Package ws – Prometheus instrumentation for the socket layer.
//
// Label cardinality is bounded by the closed envelope-type set; no
// per-conversation or per-user labels.
package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messaging_ws_connections",
			Help: "Current number of registered WebSocket connections.",
		},
	)

	wsMessagesIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_ws_messages_in_total",
			Help: "Inbound envelopes by type.",
		},
		[]string{"type"},
	)

	wsMessagesOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_ws_messages_out_total",
			Help: "Outbound envelopes by type.",
		},
		[]string{"type"},
	)

	wsSendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_ws_send_failures_total",
			Help: "Envelopes dropped because a connection's send queue was full or closed.",
		},
	)

	wsRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messaging_ws_rooms",
			Help: "Current number of live rooms.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsMessagesIn, wsMessagesOut, wsSendFailures, wsRooms)
}
