package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

func eurusd() domain.SymbolInfo {
	return domain.SymbolInfo{
		Name:         "EURUSD",
		Digits:       5,
		Point:        0.00001,
		VolumeMin:    0.01,
		VolumeMax:    100,
		VolumeStep:   0.01,
		ContractSize: 100000,
		FillingMode:  domain.SymbolFillingIOC,
	}
}

func newReady(t *testing.T) *Terminal {
	t.Helper()
	term := New()
	term.AddSymbol(eurusd())
	term.SetTick("EURUSD", domain.Tick{Bid: 1.1000, Ask: 1.1002})
	require.NoError(t, term.Initialize(context.Background(), terminal.InitOptions{}))
	return term
}

func TestCallsFailBeforeInitialize(t *testing.T) {
	term := New()
	_, err := term.AccountInfo(context.Background())
	assert.ErrorIs(t, err, terminal.ErrNotConnected)

	_, err = term.SymbolTick(context.Background(), "EURUSD")
	assert.ErrorIs(t, err, terminal.ErrNotConnected)
}

func TestFailInitializes(t *testing.T) {
	term := New()
	term.FailInitializes(2, domain.CodeIPCSendFailed)

	ctx := context.Background()
	err := term.Initialize(ctx, terminal.InitOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.CodeIPCSendFailed, terminal.ErrorCode(err))

	require.Error(t, term.Initialize(ctx, terminal.InitOptions{}))
	require.NoError(t, term.Initialize(ctx, terminal.InitOptions{}))
}

func TestLoginChecksCredentials(t *testing.T) {
	term := newReady(t)
	term.RequireLogin(17221085, "secret")

	ctx := context.Background()
	err := term.Login(ctx, terminal.LoginOptions{Login: 17221085, Password: "wrong"})
	require.Error(t, err)

	var connErr *terminal.ConnectionError
	assert.True(t, errors.As(err, &connErr))

	require.NoError(t, term.Login(ctx, terminal.LoginOptions{Login: 17221085, Password: "secret"}))

	acct, err := term.AccountInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(17221085), acct.Login)
}

func TestMarketDealOpensAndClosesPosition(t *testing.T) {
	term := newReady(t)
	ctx := context.Background()

	res, err := term.OrderSend(ctx, &domain.TradeRequest{
		Action: domain.TradeActionDeal,
		Symbol: "EURUSD",
		Volume: 0.10,
		Type:   domain.OrderTypeBuy,
		Magic:  77,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RetcodeDone, res.Retcode)
	assert.Equal(t, 1.1002, res.Price) // filled at ask

	positions, err := term.Positions(ctx, terminal.PositionFilter{})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, int64(77), positions[0].Magic)

	// Close at a higher bid: 100 points of profit on 0.1 lots.
	term.SetTick("EURUSD", domain.Tick{Bid: 1.1102, Ask: 1.1104})
	balanceBefore := 100000.0

	res, err = term.OrderSend(ctx, &domain.TradeRequest{
		Action:   domain.TradeActionDeal,
		Symbol:   "EURUSD",
		Volume:   0.10,
		Type:     domain.OrderTypeSell,
		Position: positions[0].Ticket,
		Price:    1.1102,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RetcodeDone, res.Retcode)

	total, err := term.PositionsTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	acct, err := term.AccountInfo(ctx)
	require.NoError(t, err)
	assert.InDelta(t, balanceBefore+100.0, acct.Balance, 1e-6)

	deals, err := term.HistoryDeals(ctx, terminal.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, deals, 2) // entry + exit
	assert.InDelta(t, 100.0, deals[1].Profit, 1e-6)
}

func TestPendingOrderLifecycle(t *testing.T) {
	term := newReady(t)
	ctx := context.Background()

	res, err := term.OrderSend(ctx, &domain.TradeRequest{
		Action: domain.TradeActionPending,
		Symbol: "EURUSD",
		Volume: 0.05,
		Price:  1.0950,
		Type:   domain.OrderTypeBuyLimit,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RetcodeDone, res.Retcode)

	orders, err := term.Orders(ctx, terminal.PositionFilter{Symbol: "EURUSD"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderTypeBuyLimit, orders[0].Type)

	res, err = term.OrderSend(ctx, &domain.TradeRequest{
		Action: domain.TradeActionRemove,
		Order:  orders[0].Ticket,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RetcodeDone, res.Retcode)

	total, err := term.OrdersTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	// The cancelled order lands in history.
	hist, err := term.HistoryOrders(ctx, terminal.HistoryFilter{Ticket: orders[0].Ticket})
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestSLTPModify(t *testing.T) {
	term := newReady(t)
	ctx := context.Background()

	ticket := term.SeedPosition(domain.PositionInfo{
		Symbol: "EURUSD", Volume: 0.1, PriceOpen: 1.1000, Type: domain.PositionTypeBuy,
	})

	res, err := term.OrderSend(ctx, &domain.TradeRequest{
		Action:   domain.TradeActionSLTP,
		Position: ticket,
		Symbol:   "EURUSD",
		SL:       1.0950,
		TP:       1.1100,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RetcodeDone, res.Retcode)

	positions, err := term.Positions(ctx, terminal.PositionFilter{Ticket: ticket})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 1.0950, positions[0].SL)
	assert.Equal(t, 1.1100, positions[0].TP)

	// Unknown position is rejected, not an error.
	res, err = term.OrderSend(ctx, &domain.TradeRequest{
		Action:   domain.TradeActionSLTP,
		Position: 999999,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RetcodeReject, res.Retcode)
}

func TestBarsQueryModes(t *testing.T) {
	term := newReady(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var bars []domain.Bar
	for i := 0; i < 10; i++ {
		bars = append(bars, domain.Bar{
			Time: base.Add(time.Duration(i) * time.Hour).Unix(),
			Open: 1.1, High: 1.2, Low: 1.0, Close: 1.15,
		})
	}
	term.SeedBars("EURUSD", bars)

	// StartPos+Count: latest 3 bars.
	got, err := term.Bars(ctx, "EURUSD", domain.TimeframeH1, terminal.BarsQuery{StartPos: 0, Count: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, bars[9].Time, got[2].Time)

	// From+Count.
	got, err = term.Bars(ctx, "EURUSD", domain.TimeframeH1, terminal.BarsQuery{From: base.Add(5 * time.Hour), Count: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bars[5].Time, got[0].Time)

	// Range.
	got, err = term.Bars(ctx, "EURUSD", domain.TimeframeH1, terminal.BarsQuery{From: base.Add(2 * time.Hour), To: base.Add(4 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMatchGroup(t *testing.T) {
	cases := []struct {
		group  string
		symbol string
		want   bool
	}{
		{"*", "EURUSD", true},
		{"", "EURUSD", true},
		{"*USD*", "EURUSD", true},
		{"*USD*", "EURGBP", false},
		{"EUR*,GBP*", "GBPUSD", true},
		{"*,!*JPY*", "USDJPY", false},
		{"*,!*JPY*", "EURUSD", true},
	}
	for _, c := range cases {
		if got := matchGroup(c.group, c.symbol); got != c.want {
			t.Errorf("matchGroup(%q, %q) = %v, want %v", c.group, c.symbol, got, c.want)
		}
	}
}
