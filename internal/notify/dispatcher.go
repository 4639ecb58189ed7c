package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk-service/internal/worker"
)

// Recorder receives notification outcome counts.
type Recorder interface {
	RecordNotification(kind, result string)
}

// Outcome is the final state of one dispatched notification.
type Outcome struct {
	Kind      Kind
	Recipient string
	Skipped   bool
	Err       error
}

// Result names the outcome for metrics and API reports.
func (o Outcome) Result() string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.Err != nil:
		return "failed"
	default:
		return "sent"
	}
}

// Delivery tracks a notification running in the background.
type Delivery struct {
	done    chan struct{}
	outcome Outcome
}

func newDelivery() *Delivery {
	return &Delivery{done: make(chan struct{})}
}

func (d *Delivery) finish(o Outcome) {
	d.outcome = o
	close(d.done)
}

// Done is closed once the outcome is known.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the outcome is known or ctx ends. A ctx error means the send is
// still in flight, not that it failed.
func (d *Delivery) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-d.done:
		return d.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Dispatcher sends notifications asynchronously on a worker pool. It never retries.
type Dispatcher struct {
	notifier Notifier
	pool     *worker.Pool
	timeout  time.Duration
	logger   *zap.Logger
	recorder Recorder
}

// DispatcherDependencies wires a Dispatcher.
type DispatcherDependencies struct {
	Notifier Notifier
	Pool     *worker.Pool
	Timeout  time.Duration
	Logger   *zap.Logger
	Recorder Recorder
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(deps DispatcherDependencies) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		notifier: deps.Notifier,
		pool:     deps.Pool,
		timeout:  timeout,
		logger:   logger,
		recorder: deps.Recorder,
	}
}

// Dispatch schedules msg and returns immediately. The send keeps ctx values but not its
// cancellation, so a finished HTTP request does not abort the email.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) *Delivery {
	delivery := newDelivery()
	if msg.Recipient == "" {
		d.logger.Info("notification skipped: no recipient",
			zap.String("kind", string(msg.Kind)),
			zap.String("ticket_id", msg.TicketID))
		d.complete(delivery, Outcome{Kind: msg.Kind, Skipped: true})
		return delivery
	}

	detached := context.WithoutCancel(ctx)
	job := func(poolCtx context.Context) {
		sendCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()

		err := Send(sendCtx, d.notifier, msg)
		if err != nil {
			d.logger.Warn("notification failed",
				zap.String("kind", string(msg.Kind)),
				zap.String("ticket_id", msg.TicketID),
				zap.String("recipient", msg.Recipient),
				zap.Error(err))
		} else {
			d.logger.Info("notification sent",
				zap.String("kind", string(msg.Kind)),
				zap.String("ticket_id", msg.TicketID),
				zap.String("recipient", msg.Recipient))
		}
		d.complete(delivery, Outcome{Kind: msg.Kind, Recipient: msg.Recipient, Err: err})
	}

	if d.pool == nil || !d.pool.Submit(job) {
		go job(context.Background())
	}
	return delivery
}

func (d *Dispatcher) complete(delivery *Delivery, o Outcome) {
	if d.recorder != nil {
		d.recorder.RecordNotification(string(o.Kind), o.Result())
	}
	delivery.finish(o)
}
