// Package telemetry is the fire-and-forget reporting sink: structured logs,
// Prometheus counters pushed to a Pushgateway at exit and an optional alert
// webhook. Nothing here returns an error to the caller.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/config"
)

type Reporter struct {
	log       *slog.Logger
	sessionID string
	pushURL   string
	job       string
	alerts    *webhook

	registry   *prometheus.Registry
	exceptions *prometheus.CounterVec
	messages   *prometheus.CounterVec
}

// New builds a reporter for one interactive session.
func New(log *slog.Logger, cfg config.TelemetryConfig, sessionID string) *Reporter {
	reg := prometheus.NewRegistry()
	r := &Reporter{
		log:       log,
		sessionID: sessionID,
		pushURL:   cfg.PushgatewayURL,
		job:       cfg.Job,
		registry:  reg,
		exceptions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "epicevents_exceptions_total",
				Help: "Errors reported during the session, by kind",
			},
			[]string{"kind"},
		),
		messages: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "epicevents_messages_total",
				Help: "Messages reported during the session, by level",
			},
			[]string{"level"},
		),
	}
	if cfg.WebhookURL != "" {
		r.alerts = newWebhook(cfg.WebhookURL, 5*time.Second)
	}
	return r
}

// ReportException records err. Backend failures are also sent to the alert
// webhook when one is configured.
func (r *Reporter) ReportException(err error) {
	if err == nil {
		return
	}
	kind := Kind(err)
	r.exceptions.WithLabelValues(kind).Inc()
	r.log.Error("exception", "kind", kind, "session_id", r.sessionID, "error", err)

	if r.alerts != nil && kind == "backend" {
		if sendErr := r.alerts.send(alert{
			Session: r.sessionID,
			Kind:    kind,
			Message: err.Error(),
			Time:    time.Now().UTC(),
		}); sendErr != nil {
			r.log.Warn("alert webhook failed", "error", sendErr)
		}
	}
}

// ReportMessage records an informational event such as a successful update.
func (r *Reporter) ReportMessage(text string, level slog.Level) {
	r.messages.WithLabelValues(level.String()).Inc()
	r.log.Log(context.Background(), level, text, "session_id", r.sessionID)
}

// Flush pushes the session counters to the Pushgateway, if configured.
func (r *Reporter) Flush(ctx context.Context) {
	if r.pushURL == "" {
		return
	}
	err := push.New(r.pushURL, r.job).
		Gatherer(r.registry).
		Grouping("session", r.sessionID).
		PushContext(ctx)
	if err != nil {
		r.log.Warn("pushgateway push failed", "url", r.pushURL, "error", err)
	}
}

// Kind classifies err for the exceptions counter.
func Kind(err error) string {
	switch {
	case errors.Is(err, apperr.ErrPermissionDenied):
		return "permission"
	case errors.Is(err, apperr.ErrValidation):
		return "validation"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrAuthentication):
		return "authentication"
	}
	return "backend"
}
