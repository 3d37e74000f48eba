package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"verifyapi/internal/identity"
	"verifyapi/internal/logging"
	"verifyapi/internal/metrics"
	"verifyapi/internal/notify"
)

var tracer = otel.Tracer("verifyapi/internal/service")

// Option configures the ambient collaborators of a service.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	notifier notify.Notifier
	metrics  *metrics.Workflow
	now      func() time.Time
	urlTTL   time.Duration
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithNotifier sets who hears about terminal transitions. Anything other than
// a *notify.Dispatcher is wrapped in one, so delivery never runs on the
// caller's goroutine.
func WithNotifier(n notify.Notifier) Option { return func(o *options) { o.notifier = n } }

// WithMetrics sets the workflow counters. Without it nothing is recorded.
func WithMetrics(m *metrics.Workflow) Option { return func(o *options) { o.metrics = m } }

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithDownloadTTL sets the lifetime of presigned download URLs.
func WithDownloadTTL(d time.Duration) Option { return func(o *options) { o.urlTTL = d } }

func buildOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		notifier: notify.Noop{},
		now:      func() time.Time { return time.Now().UTC() },
		urlTTL:   15 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := o.notifier.(*notify.Dispatcher); !ok && o.notifier != nil {
		o.notifier = notify.NewDispatcher(o.notifier, o.logger, 0)
	}
	return o
}

// log returns the service logger tagged with the request ID, if any.
func (o options) log(ctx context.Context) *zap.Logger {
	if rid := logging.RequestID(ctx); rid != "" {
		return o.logger.With(zap.String("request_id", rid))
	}
	return o.logger
}

func (o options) emit(ctx context.Context, e notify.Event) {
	notify.Send(ctx, o.notifier, o.logger, e)
}

// finish records err on span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// requireAdmin returns the acting administrator.
func requireAdmin(ctx context.Context) (identity.Actor, error) {
	a, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Actor{}, unauthenticated()
	}
	if !a.IsAdmin() {
		return identity.Actor{}, forbidden("administrator role required")
	}
	return a, nil
}

