package brokerage

import (
	"context"
	"errors"
	"fmt"

	"NewsSentinel/internal/model"
)

// Fill is a successful order execution report.
type Fill struct {
	OrderID  string
	Quantity float64
	Price    float64
}

// Client is the narrow brokerage contract the executor depends on.
// SubmitOrder is not assumed to deduplicate retries server-side: a retry
// after an ambiguous timeout can double-order. That risk is accepted and
// bounded by the retry budget.
type Client interface {
	SubmitOrder(ctx context.Context, instrument string, direction model.Direction, quantity float64) (*Fill, error)
	GetPortfolio(ctx context.Context) (*model.PortfolioState, error)
	GetQuote(ctx context.Context, instrument string) (float64, error)
	Name() string
}

// TransientError marks a failure worth retrying (network, timeout).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient brokerage error: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// RejectedError marks a terminal brokerage rejection (insufficient funds,
// unknown instrument). Never retried.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "order rejected: " + e.Reason }

// IsTransient reports whether an error should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
