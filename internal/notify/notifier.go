package notify

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikavin04/canteen/internal/domain"
)

// Notification is one user-visible message about an order.
type Notification struct {
	ID         string             `json:"id"`
	OrderToken string             `json:"order_id"`
	Status     domain.OrderStatus `json:"status"`
	Message    string             `json:"message"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Notifier delivers a notification over one channel (in-page feed, desktop,
// log). Delivery is best-effort.
type Notifier interface {
	Notify(n Notification)
}

const defaultFeedSize = 50

// Feed keeps the most recent notifications in memory for the UI to poll.
// It is the in-page toast channel.
type Feed struct {
	mu      sync.Mutex
	entries []Notification
	size    int
}

func NewFeed() *Feed {
	return &Feed{size: defaultFeedSize}
}

func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, n)
	if len(f.entries) > f.size {
		f.entries = f.entries[len(f.entries)-f.size:]
	}
}

// Recent returns notifications newest first.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.entries))
	for i, n := range f.entries {
		out[len(f.entries)-1-i] = n
	}
	return out
}

// LogNotifier writes notifications to a logger. It stands in for the
// OS-level notification channel; failures never propagate.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notification) {
	l.logger.Printf("notification order=%s status=%s message=%q", n.OrderToken, n.Status, n.Message)
}

func newNotificationID() string {
	return uuid.NewString()
}
