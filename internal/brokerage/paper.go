package brokerage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"NewsSentinel/internal/model"
)

// PaperClient fills orders against an in-memory portfolio at fixed quotes.
// Used for dry runs and tests in place of a live brokerage session.
type PaperClient struct {
	mu       sync.Mutex
	cash     float64
	holdings map[string]model.Holding
	quotes   map[string]float64
}

// NewPaperClient creates a paper account with starting cash and quotes.
func NewPaperClient(cash float64, quotes map[string]float64) *PaperClient {
	if quotes == nil {
		quotes = make(map[string]float64)
	}
	return &PaperClient{
		cash:     cash,
		holdings: make(map[string]model.Holding),
		quotes:   quotes,
	}
}

func (p *PaperClient) Name() string { return "paper" }

// SetQuote updates the simulated price for an instrument.
func (p *PaperClient) SetQuote(instrument string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[instrument] = price
}

// SetHolding seeds an open position, used to simulate a carried portfolio.
func (p *PaperClient) SetHolding(instrument string, quantity, avgCost float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.holdings[instrument]
	h.Quantity = quantity
	h.AvgCost = avgCost
	h.Price = p.quotes[instrument]
	p.holdings[instrument] = h
}

func (p *PaperClient) GetQuote(_ context.Context, instrument string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.quotes[instrument]
	if !ok {
		return 0, &RejectedError{Reason: fmt.Sprintf("unknown instrument %s", instrument)}
	}
	return price, nil
}

func (p *PaperClient) GetPortfolio(_ context.Context) (*model.PortfolioState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	holdings := make(map[string]model.Holding, len(p.holdings))
	for instrument, h := range p.holdings {
		if price, ok := p.quotes[instrument]; ok {
			h.Price = price
		}
		holdings[instrument] = h
	}
	return &model.PortfolioState{Cash: p.cash, Holdings: holdings}, nil
}

func (p *PaperClient) SubmitOrder(_ context.Context, instrument string, direction model.Direction, quantity float64) (*Fill, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.quotes[instrument]
	if !ok {
		return nil, &RejectedError{Reason: fmt.Sprintf("unknown instrument %s", instrument)}
	}
	if quantity <= 0 {
		return nil, &RejectedError{Reason: "non-positive quantity"}
	}

	switch direction {
	case model.DirectionBuy:
		cost := quantity * price
		if cost > p.cash {
			return nil, &RejectedError{Reason: "insufficient funds"}
		}
		p.cash -= cost
		h := p.holdings[instrument]
		total := h.Quantity + quantity
		h.AvgCost = (h.AvgCost*h.Quantity + price*quantity) / total
		h.Quantity = total
		h.Price = price
		p.holdings[instrument] = h
	case model.DirectionSell:
		h, held := p.holdings[instrument]
		if !held || h.Quantity < quantity {
			return nil, &RejectedError{Reason: "insufficient shares"}
		}
		h.Quantity -= quantity
		h.Price = price
		if h.Quantity == 0 {
			delete(p.holdings, instrument)
		} else {
			p.holdings[instrument] = h
		}
		p.cash += quantity * price
	default:
		return nil, &RejectedError{Reason: "unknown direction"}
	}

	return &Fill{OrderID: uuid.NewString(), Quantity: quantity, Price: price}, nil
}
