package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomt5/internal/domain"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	req := &domain.TradeRequest{
		Action: domain.TradeActionDeal,
		Symbol: "EURUSD",
		Volume: 0.1,
		Type:   domain.OrderTypeBuy,
		Price:  1.0852,
		SL:     1.0800,
		Magic:  777,
	}
	res := &domain.TradeResult{
		Retcode: domain.RetcodeDone,
		Order:   100001,
		Deal:    100002,
		Volume:  0.1,
		Price:   1.0852,
		Comment: "done",
	}
	require.NoError(t, j.Record(ctx, "demo", req, res))

	entries, err := j.List(ctx, "demo", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "demo", e.Account)
	assert.Equal(t, "EURUSD", e.Symbol)
	assert.Equal(t, domain.OrderTypeBuy, e.OrderType)
	assert.Equal(t, domain.RetcodeDone, e.Retcode)
	assert.Equal(t, int64(100001), e.OrderTicket)
	assert.Equal(t, 1.0852, e.FillPrice)
	assert.False(t, e.RecordedAt.IsZero())
}

func TestListFiltersByAccount(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	req := &domain.TradeRequest{Action: domain.TradeActionDeal, Symbol: "EURUSD", Type: domain.OrderTypeBuy}
	res := &domain.TradeResult{Retcode: domain.RetcodeDone}
	require.NoError(t, j.Record(ctx, "demo", req, res))
	require.NoError(t, j.Record(ctx, "live", req, res))
	require.NoError(t, j.Record(ctx, "demo", req, res))

	demo, err := j.List(ctx, "demo", 10)
	require.NoError(t, err)
	assert.Len(t, demo, 2)

	all, err := j.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		req := &domain.TradeRequest{Action: domain.TradeActionDeal, Symbol: "EURUSD", Type: domain.OrderTypeBuy}
		res := &domain.TradeResult{Retcode: domain.RetcodeDone, Order: int64(100 + i)}
		require.NoError(t, j.Record(ctx, "demo", req, res))
	}

	entries, err := j.List(ctx, "demo", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(104), entries[0].OrderTicket)
	assert.Equal(t, int64(102), entries[2].OrderTicket)
}

func TestByMagicFiltersStrategies(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	res := &domain.TradeResult{Retcode: domain.RetcodeDone}
	require.NoError(t, j.Record(ctx, "demo",
		&domain.TradeRequest{Action: domain.TradeActionDeal, Symbol: "EURUSD", Type: domain.OrderTypeBuy, Magic: 777}, res))
	require.NoError(t, j.Record(ctx, "demo",
		&domain.TradeRequest{Action: domain.TradeActionDeal, Symbol: "GBPUSD", Type: domain.OrderTypeSell, Magic: 888}, res))
	require.NoError(t, j.Record(ctx, "live",
		&domain.TradeRequest{Action: domain.TradeActionDeal, Symbol: "EURUSD", Type: domain.OrderTypeBuy, Magic: 777}, res))

	entries, err := j.ByMagic(ctx, 777, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, int64(777), e.Magic)
	}
}

func TestBySymbolIncludesRejections(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	req := &domain.TradeRequest{Action: domain.TradeActionDeal, Symbol: "XAUUSD", Type: domain.OrderTypeSell, Volume: 5}
	res := &domain.TradeResult{Retcode: domain.RetcodeNoMoney, Comment: "no money"}
	require.NoError(t, j.Record(ctx, "demo", req, res))

	entries, err := j.BySymbol(ctx, "XAUUSD", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.RetcodeNoMoney, entries[0].Retcode)
	assert.Equal(t, "no money", entries[0].RetcodeComment)
}
