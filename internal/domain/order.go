package domain

import "time"

type OrderStatus string

const (
	StatusUncompleted OrderStatus = "Uncompleted"
	StatusPreparing   OrderStatus = "Preparing"
	StatusReady       OrderStatus = "Ready"
	StatusCompleted   OrderStatus = "Completed"
	StatusCancelled   OrderStatus = "Cancelled"
)

// transitions is the allowed status graph. Completed and Cancelled are
// terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusUncompleted: {StatusPreparing, StatusCancelled},
	StatusPreparing:   {StatusReady, StatusCancelled},
	StatusReady:       {StatusCompleted},
}

// Known reports whether s is a recognized order status.
func (s OrderStatus) Known() bool {
	switch s {
	case StatusUncompleted, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s.Known() && len(transitions[s]) == 0
}

// Active reports whether an order in this status still needs attention.
// Active orders are the ones surfaced to the notification poller.
func (s OrderStatus) Active() bool {
	switch s {
	case StatusUncompleted, StatusPreparing, StatusReady:
		return true
	}
	return false
}

// Order is a placed order. Lines and TotalAmount are a frozen snapshot of
// the cart at checkout; only Status and its timestamps change afterwards.
type Order struct {
	Token         string
	UserID        int
	Lines         []CartLine
	TotalAmount   float64
	Status        OrderStatus
	PaymentMethod string
	PaymentStatus string
	TransactionID string
	CreatedAt     time.Time
	ReadyAt       *time.Time
	CompletedAt   *time.Time
}

// Validate rejects malformed persisted order records.
func (o Order) Validate() error {
	if o.Token == "" {
		return ErrInvalidID
	}
	if o.UserID <= 0 {
		return ErrInvalidID
	}
	if !o.Status.Known() {
		return ErrUnknownStatus
	}
	if len(o.Lines) == 0 {
		return ErrEmptyCart
	}
	if o.TotalAmount < 0 {
		return ErrInvalidPrice
	}
	return nil
}
