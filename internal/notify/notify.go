// Package notify informs outside parties about terminal workflow transitions.
// Delivery is best effort: the workflow never fails because a notifier did.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"verifyapi/internal/config"
)

// EventType names a workflow transition.
type EventType string

const (
	DocumentApproved  EventType = "document.approved"
	DocumentRejected  EventType = "document.rejected"
	RoleGrantApproved EventType = "role_grant.approved"
	RoleGrantRejected EventType = "role_grant.rejected"
)

// Event describes one committed transition.
type Event struct {
	Type     EventType         `json:"type"`
	EntityID string            `json:"entity_id"`
	FarmID   string            `json:"farm_id,omitempty"`
	UserID   string            `json:"user_id,omitempty"`
	ActorID  string            `json:"actor_id"`
	Comment  string            `json:"comment,omitempty"`
	At       time.Time         `json:"at"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }

// Log writes events to a zap logger.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(_ context.Context, e Event) error {
	l.Logger.Info("workflow event",
		zap.String("event", string(e.Type)),
		zap.String("entity_id", e.EntityID),
		zap.String("farm_id", e.FarmID),
		zap.String("user_id", e.UserID),
		zap.String("actor_id", e.ActorID),
		zap.Time("at", e.At),
	)
	return nil
}

// Send delivers e and logs a failure instead of returning it.
func Send(ctx context.Context, n Notifier, logger *zap.Logger, e Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, e); err != nil {
		logger.Warn("notification failed",
			zap.String("event", string(e.Type)),
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
	}
}

const defaultDispatchTimeout = 10 * time.Second

// Dispatcher delivers events in the background so a slow notifier never holds
// up the transition that produced them.
type Dispatcher struct {
	next    Notifier
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps next. Each delivery gets at most timeout; a
// non-positive timeout uses a default of ten seconds.
func NewDispatcher(next Notifier, logger *zap.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{next: next, logger: logger, timeout: timeout}
}

// Notify hands e to a goroutine and returns at once. The delivery keeps ctx's
// values but not its cancellation, so it outlives the request that caused it.
func (d *Dispatcher) Notify(ctx context.Context, e Event) error {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		Send(ctx, d.next, d.logger, e)
	}()
	return nil
}

// Wait blocks until every dispatched event was delivered or gave up.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// New picks the webhook notifier when a URL is configured and the log
// notifier otherwise.
func New(cfg config.NotifyConfig, logger *zap.Logger) Notifier {
	if cfg.WebhookURL == "" {
		return Log{Logger: logger}
	}
	return NewWebhook(cfg.WebhookURL, time.Duration(cfg.TimeoutSec)*time.Second)
}
