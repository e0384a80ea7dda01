package domain

import "time"

// MenuItem is a canteen dish or beverage offered for ordering.
type MenuItem struct {
	ID          int
	Name        string
	Description string
	Price       float64
	Category    string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate rejects malformed persisted menu records.
func (m MenuItem) Validate() error {
	if m.ID <= 0 {
		return ErrInvalidID
	}
	if m.Name == "" {
		return ErrNameRequired
	}
	if m.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
