// Package services – notification hand-off.
//
// New-message notifications leave the messaging core through the single
// Notifier call defined here. The hand-off is a post-commit hook: the message
// persistence transaction succeeds unconditionally, and notification delivery
// is attempted afterwards. Failures are logged and counted, never propagated
// to the sender.
package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Recipient kinds understood by the external notification service.
const (
	RecipientEmployer   = "organization_user"
	RecipientCandidate  = "candidate"
	RecipientConsultant = "consultant"
	RecipientAdmin      = "admin"
)

// Notification is the payload handed to the external notification service.
type Notification struct {
	RecipientKind string
	RecipientID   string
	Title         string
	Body          string
	ActionURL     string
	Data          map[string]string
}

// Notifier is the external notification hand-off consumed by the
// conversation gateway. Implementations are expected to be fire-and-forget;
// an error return is observed in metrics/logs only.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NopNotifier discards notifications. Used in tests and when the external
// service is not configured.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Notification) error { return nil }

var notifyFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "messaging_notify_failures_total",
		Help: "Notification hand-off attempts that returned an error.",
	},
	[]string{"recipient_kind"},
)

func init() {
	prometheus.MustRegister(notifyFailures)
}

// dispatchNotification performs one best-effort hand-off, observing failures
// without surfacing them.
func dispatchNotification(ctx context.Context, n Notifier, log zerolog.Logger, note Notification) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, note); err != nil {
		notifyFailures.WithLabelValues(note.RecipientKind).Inc()
		log.Warn().
			Str("recipient_kind", note.RecipientKind).
			Str("recipient_id", note.RecipientID).
			Err(err).
			Msg("notification hand-off failed")
	}
}
