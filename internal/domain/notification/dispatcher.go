package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DispatcherConfig tunes the dispatcher's queue and worker pool.
type DispatcherConfig struct {
	// QueueSize bounds the in-flight event buffer. When full, new events are
	// dropped and logged (at-most-once, never backpressure on producers).
	QueueSize int
	// Workers is the number of goroutines persisting notifications.
	Workers int
	// PersistTimeout bounds each notification write.
	PersistTimeout time.Duration
}

func (c *DispatcherConfig) defaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 5 * time.Second
	}
}

// Dispatcher is the in-process event bus: it implements Publisher and fans
// events out into persisted notifications. Delivery is at-most-once and
// fire-and-forget; a persistence failure is logged and counted, never
// surfaced to the producing request.
type Dispatcher struct {
	repo    Repository
	lg      *zap.Logger
	cfg     DispatcherConfig
	queue   chan Event
	grp     *errgroup.Group
	cancel  context.CancelFunc
	evCount metric.Int64Counter
}

var _ Publisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher and starts its worker pool. Call Close
// to drain the queue and stop the workers.
func NewDispatcher(repo Repository, lg *zap.Logger, meter metric.Meter, cfg DispatcherConfig) *Dispatcher {
	cfg.defaults()

	evCount, err := meter.Int64Counter("souk.notifications.dispatched",
		metric.WithDescription("Domain events processed by the notification dispatcher"),
	)
	if err != nil {
		lg.Warn("Create dispatcher counter", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		repo:    repo,
		lg:      lg.Named("dispatcher"),
		cfg:     cfg,
		queue:   make(chan Event, cfg.QueueSize),
		cancel:  cancel,
		evCount: evCount,
	}

	d.grp, _ = errgroup.WithContext(ctx)
	for range cfg.Workers {
		d.grp.Go(func() error {
			d.work(ctx)
			return nil
		})
	}
	return d
}

// Publish enqueues an event for asynchronous delivery. It never blocks: when
// the queue is full the event is dropped and logged.
func (d *Dispatcher) Publish(_ context.Context, ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.lg.Warn("Event queue full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("recipient", ev.RecipientID),
		)
		d.count(ev, "dropped")
	}
}

// Close drains queued events and stops the workers.
func (d *Dispatcher) Close() {
	close(d.queue)
	_ = d.grp.Wait()
	d.cancel()
}

func (d *Dispatcher) work(ctx context.Context) {
	for ev := range d.queue {
		d.deliver(ctx, ev)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	n := render(ev)
	if n == nil {
		d.lg.Warn("Unknown event type", zap.String("type", string(ev.Type)))
		d.count(ev, "unknown")
		return
	}
	n.ID = uuid.New().String()

	persistCtx, cancel := context.WithTimeout(ctx, d.cfg.PersistTimeout)
	defer cancel()

	if err := d.repo.Create(persistCtx, n); err != nil {
		d.lg.Error("Persist notification",
			zap.String("type", string(ev.Type)),
			zap.String("recipient", ev.RecipientID),
			zap.Error(err),
		)
		d.count(ev, "failed")
		return
	}
	d.count(ev, "delivered")
}

func (d *Dispatcher) count(ev Event, outcome string) {
	if d.evCount == nil {
		return
	}
	d.evCount.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("event.type", string(ev.Type)),
			attribute.String("outcome", outcome),
		),
	)
}
