package domain

// CartLine is one entry in the cart: a product snapshot plus a quantity.
// Quantity is always >= 1; a command that would drive it below 1 removes the
// line instead of persisting an invalid one.
type CartLine struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// CartSnapshot is the complete persisted cart document. At most one line
// exists per distinct product id.
type CartSnapshot struct {
	Lines []CartLine `json:"lines"`
}

// EmptyCart returns the default cart used when the persisted key is absent.
func EmptyCart() CartSnapshot {
	return CartSnapshot{Lines: []CartLine{}}
}

// Total is the derived sum of price x quantity over all lines.
func (c CartSnapshot) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}

// ItemCount is the derived sum of quantities over all lines.
func (c CartSnapshot) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// LineFor returns the line holding the given product id, if any.
func (c CartSnapshot) LineFor(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.Product.ID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Clone returns an independent copy safe to hand to subscribers.
func (c CartSnapshot) Clone() CartSnapshot {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return CartSnapshot{Lines: lines}
}
