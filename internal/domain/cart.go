package domain

// CartLine is one menu item in a cart. Price is a snapshot taken when the
// line was created; later menu edits do not touch it.
type CartLine struct {
	ItemID   int
	Name     string
	Price    float64
	Quantity int
}

// Cart holds the in-progress order for one user. Lines keep insertion order
// and are unique per ItemID.
type Cart struct {
	Lines []CartLine
}

// Find returns the index of the line for itemID, or -1.
func (c Cart) Find(itemID int) int {
	for i, line := range c.Lines {
		if line.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Total is the sum of price×quantity over all lines; 0 for an empty cart.
func (c Cart) Total() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Validate rejects malformed persisted cart records.
func (c Cart) Validate() error {
	seen := make(map[int]struct{}, len(c.Lines))
	for _, line := range c.Lines {
		if line.ItemID <= 0 {
			return ErrInvalidID
		}
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if line.Price < 0 {
			return ErrInvalidPrice
		}
		if _, dup := seen[line.ItemID]; dup {
			return ErrDuplicateLine
		}
		seen[line.ItemID] = struct{}{}
	}
	return nil
}
