package brokerage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

func TestPaperClient_BuyThenSellRoundTrip(t *testing.T) {
	c := NewPaperClient(100_000, map[string]float64{"8035": 100})
	ctx := context.Background()

	fill, err := c.SubmitOrder(ctx, "8035", model.DirectionBuy, 200)
	require.NoError(t, err)
	assert.InDelta(t, 100, fill.Price, 1e-12)

	pf, err := c.GetPortfolio(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 80_000, pf.Cash, 1e-9)
	assert.InDelta(t, 200, pf.Holdings["8035"].Quantity, 1e-9)
	assert.InDelta(t, 100, pf.Holdings["8035"].AvgCost, 1e-9)

	c.SetQuote("8035", 110)
	_, err = c.SubmitOrder(ctx, "8035", model.DirectionSell, 200)
	require.NoError(t, err)

	pf, err = c.GetPortfolio(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 102_000, pf.Cash, 1e-9)
	_, held := pf.Holdings["8035"]
	assert.False(t, held)
}

func TestPaperClient_AveragesCostAcrossBuys(t *testing.T) {
	c := NewPaperClient(100_000, map[string]float64{"8035": 100})
	ctx := context.Background()

	_, err := c.SubmitOrder(ctx, "8035", model.DirectionBuy, 100)
	require.NoError(t, err)
	c.SetQuote("8035", 120)
	_, err = c.SubmitOrder(ctx, "8035", model.DirectionBuy, 100)
	require.NoError(t, err)

	pf, err := c.GetPortfolio(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 110, pf.Holdings["8035"].AvgCost, 1e-9)
}

func TestPaperClient_Rejections(t *testing.T) {
	c := NewPaperClient(1_000, map[string]float64{"8035": 100})
	ctx := context.Background()

	_, err := c.SubmitOrder(ctx, "8035", model.DirectionBuy, 50)
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.False(t, IsTransient(err))

	_, err = c.SubmitOrder(ctx, "9999", model.DirectionBuy, 1)
	assert.ErrorAs(t, err, &rej)

	_, err = c.SubmitOrder(ctx, "8035", model.DirectionSell, 1)
	assert.ErrorAs(t, err, &rej)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&TransientError{Err: context.DeadlineExceeded}))
	assert.False(t, IsTransient(&RejectedError{Reason: "nope"}))
	assert.False(t, IsTransient(nil))
}
