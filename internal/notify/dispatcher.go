package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ikavin04/canteen/internal/clock"
	"github.com/ikavin04/canteen/internal/domain"
	"github.com/ikavin04/canteen/internal/metrics"
)

// OrderSource yields the signed-in user's recent orders.
type OrderSource interface {
	RecentOrders(ctx context.Context, userID int) ([]domain.Order, error)
}

// Sessions resolves the signed-in user.
type Sessions interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// WatermarkStore records the last status observed per order. It only
// exists to detect transitions; order records stay authoritative.
type WatermarkStore interface {
	GetWatermark(ctx context.Context, orderToken string) (domain.OrderStatus, bool, error)
	SetWatermark(ctx context.Context, orderToken string, status domain.OrderStatus) error
}

// statusMessages maps a new status to its toast text. Statuses without an
// entry advance the watermark silently.
var statusMessages = map[domain.OrderStatus]string{
	domain.StatusPreparing: "Your order #%s is now being prepared!",
	domain.StatusReady:     "Your order #%s is ready for pickup!",
	domain.StatusCompleted: "Your order #%s has been completed.",
	domain.StatusCancelled: "Your order #%s has been cancelled.",
}

const defaultPollInterval = 15 * time.Second

// Dispatcher polls for order-status changes and emits one notification per
// observed transition. It is constructed and started explicitly; there is
// no package-level instance.
type Dispatcher struct {
	source     OrderSource
	sessions   Sessions
	watermarks WatermarkStore
	notifiers  []Notifier
	clock      clock.Clock
	logger     *log.Logger
	metrics    *metrics.Registry
	interval   time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

type Option func(*Dispatcher)

// WithInterval overrides the default 15s poll interval.
func WithInterval(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.interval = d
		}
	}
}

func NewDispatcher(source OrderSource, sessions Sessions, watermarks WatermarkStore, notifiers []Notifier, clk clock.Clock, logger *log.Logger, reg *metrics.Registry, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	d := &Dispatcher{
		source:     source,
		sessions:   sessions,
		watermarks: watermarks,
		notifiers:  notifiers,
		clock:      clk,
		logger:     logger,
		metrics:    reg,
		interval:   defaultPollInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the poll loop. Calling Start on a running dispatcher is a
// no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})

	go d.loop(d.stop, d.done)
}

// Stop cancels the poll loop and releases its timer. Safe to call on a
// stopped dispatcher.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stop)
	done := d.done
	d.mu.Unlock()

	<-done
}

func (d *Dispatcher) active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Dispatcher) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.Tick(context.Background())
		}
	}
}

// Tick performs one poll. A fetch failure skips the tick; the loop keeps
// running. Exported so page controllers can poll on demand.
func (d *Dispatcher) Tick(ctx context.Context) {
	d.metrics.Polls.Inc()
	wasRunning := d.active()

	user, err := d.sessions.CurrentUser(ctx)
	if err != nil {
		d.metrics.PollErrors.Inc()
		d.logger.Printf("notify: resolve session: %v", err)
		return
	}
	if user == nil {
		return
	}

	orders, err := d.source.RecentOrders(ctx, user.ID)
	if err != nil {
		d.metrics.PollErrors.Inc()
		d.logger.Printf("notify: fetch recent orders: %v", err)
		return
	}

	// A response that lands after Stop is discarded.
	if wasRunning && !d.active() {
		return
	}

	for _, order := range orders {
		d.observe(ctx, order)
	}
}

// observe compares one order against its watermark and notifies on a
// transition. The first observation only seeds the watermark.
func (d *Dispatcher) observe(ctx context.Context, order domain.Order) {
	prev, seen, err := d.watermarks.GetWatermark(ctx, order.Token)
	if err != nil {
		d.logger.Printf("notify: read watermark for %s: %v", order.Token, err)
		return
	}

	if seen && prev != order.Status {
		if format, ok := statusMessages[order.Status]; ok {
			n := Notification{
				ID:         newNotificationID(),
				OrderToken: order.Token,
				Status:     order.Status,
				Message:    fmt.Sprintf(format, order.Token),
				CreatedAt:  d.clock.Now(),
			}
			for _, notifier := range d.notifiers {
				notifier.Notify(n)
			}
			d.metrics.Notifications.Inc()
		}
	}

	// Advance regardless of whether anything was emitted.
	if err := d.watermarks.SetWatermark(ctx, order.Token, order.Status); err != nil {
		d.logger.Printf("notify: write watermark for %s: %v", order.Token, err)
	}
}
