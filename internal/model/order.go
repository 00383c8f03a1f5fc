package model

// LegStatus tracks a single order leg through its lifecycle.
type LegStatus string

const (
	LegPending   LegStatus = "pending"
	LegSubmitted LegStatus = "submitted"
	LegFilled    LegStatus = "filled"
	LegFailed    LegStatus = "failed"
)

// OrderLeg is one partial execution of a split order.
type OrderLeg struct {
	Seq       int
	OrderID   string
	Quantity  float64
	Status    LegStatus
	FillPrice float64
	Error     string
}

// OrderPlan is an approved signal broken into sequential legs for one
// instrument. A plan with some filled and some failed legs is a valid
// terminal state, not an error.
type OrderPlan struct {
	Instrument string
	Direction  Direction
	Total      float64
	Legs       []OrderLeg
}

// Done reports whether every leg reached a terminal status.
func (p *OrderPlan) Done() bool {
	for _, leg := range p.Legs {
		if leg.Status != LegFilled && leg.Status != LegFailed {
			return false
		}
	}
	return true
}

// FilledQuantity sums the quantity of filled legs.
func (p *OrderPlan) FilledQuantity() float64 {
	var total float64
	for _, leg := range p.Legs {
		if leg.Status == LegFilled {
			total += leg.Quantity
		}
	}
	return total
}

// Filled counts legs that ended filled.
func (p *OrderPlan) Filled() int {
	n := 0
	for _, leg := range p.Legs {
		if leg.Status == LegFilled {
			n++
		}
	}
	return n
}

// Failed counts legs that ended failed.
func (p *OrderPlan) Failed() int {
	n := 0
	for _, leg := range p.Legs {
		if leg.Status == LegFailed {
			n++
		}
	}
	return n
}
