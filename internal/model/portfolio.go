package model

// Holding is one open position as reported by the brokerage.
type Holding struct {
	Quantity float64
	AvgCost  float64
	Price    float64
}

// Return is the unrealized return ratio of the holding.
func (h Holding) Return() float64 {
	if h.AvgCost <= 0 {
		return 0
	}
	return (h.Price - h.AvgCost) / h.AvgCost
}

// Value is the current market value of the holding.
func (h Holding) Value() float64 {
	return h.Quantity * h.Price
}

// PortfolioState is a point-in-time snapshot of the brokerage account.
type PortfolioState struct {
	Cash     float64
	Holdings map[string]Holding
}

// Equity is cash plus the market value of all holdings.
func (p *PortfolioState) Equity() float64 {
	total := p.Cash
	for _, h := range p.Holdings {
		total += h.Value()
	}
	return total
}
