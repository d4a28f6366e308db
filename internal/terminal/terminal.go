// Package terminal defines the fixed function surface of the MetaTrader 5
// terminal that the rest of the library delegates to. Implementations live
// in the gateway (HTTP bridge to a live terminal) and sim (in-memory
// terminal for tests and paper mode) subpackages.
package terminal

import (
	"context"
	"time"

	"gomt5/internal/domain"
)

// InitOptions are the parameters of a terminal initialize call.
type InitOptions struct {
	Path     string
	Login    int64
	Password string
	Server   string
	Timeout  time.Duration
	Portable bool
}

// LoginOptions are the parameters of an account login call on an already
// initialized terminal.
type LoginOptions struct {
	Login    int64
	Password string
	Server   string
	Timeout  time.Duration
}

// PositionFilter narrows a positions or pending-orders query. At most one
// field is honored; precedence is Ticket, then Symbol, then Group.
type PositionFilter struct {
	Symbol string
	Group  string
	Ticket int64
}

// HistoryFilter narrows a history orders/deals query. Precedence is Ticket,
// then Position, then the From/To range optionally restricted by Group.
type HistoryFilter struct {
	From     time.Time
	To       time.Time
	Group    string
	Ticket   int64
	Position int64
}

// BarsQuery selects one of the three native bar fetch modes: From+Count,
// StartPos+Count, or From+To.
type BarsQuery struct {
	From     time.Time
	To       time.Time
	StartPos int
	Count    int
}

// TicksQuery selects one of the two native tick fetch modes: From+Count or
// From+To.
type TicksQuery struct {
	From  time.Time
	To    time.Time
	Count int
	Flags domain.CopyTicksFlag
}

// API is the function library exported by the terminal. Every method maps
// one-to-one onto a native terminal function; no method retries or reshapes
// beyond decoding the terminal's records.
type API interface {
	// Lifecycle.
	Initialize(ctx context.Context, opts InitOptions) error
	Login(ctx context.Context, opts LoginOptions) error
	Shutdown(ctx context.Context) error
	TerminalInfo(ctx context.Context) (*domain.TerminalInfo, error)
	Version(ctx context.Context) (*domain.Version, error)

	// Account and symbols.
	AccountInfo(ctx context.Context) (*domain.AccountInfo, error)
	Symbols(ctx context.Context, group string) ([]domain.SymbolInfo, error)
	SymbolInfo(ctx context.Context, symbol string) (*domain.SymbolInfo, error)
	SymbolSelect(ctx context.Context, symbol string, enable bool) error
	SymbolTick(ctx context.Context, symbol string) (*domain.Tick, error)

	// Market history.
	Bars(ctx context.Context, symbol string, tf domain.Timeframe, q BarsQuery) ([]domain.Bar, error)
	Ticks(ctx context.Context, symbol string, q TicksQuery) ([]domain.Tick, error)

	// Open positions and pending orders.
	Positions(ctx context.Context, f PositionFilter) ([]domain.PositionInfo, error)
	PositionsTotal(ctx context.Context) (int, error)
	Orders(ctx context.Context, f PositionFilter) ([]domain.OrderInfo, error)
	OrdersTotal(ctx context.Context) (int, error)

	// Account history.
	HistoryOrders(ctx context.Context, f HistoryFilter) ([]domain.OrderInfo, error)
	HistoryOrdersTotal(ctx context.Context, from, to time.Time) (int, error)
	HistoryDeals(ctx context.Context, f HistoryFilter) ([]domain.DealInfo, error)
	HistoryDealsTotal(ctx context.Context, from, to time.Time) (int, error)

	// Trading.
	OrderSend(ctx context.Context, req *domain.TradeRequest) (*domain.TradeResult, error)
	OrderCheck(ctx context.Context, req *domain.TradeRequest) (*domain.CheckResult, error)
	OrderCalcMargin(ctx context.Context, orderType domain.OrderType, symbol string, volume, price float64) (float64, error)
	OrderCalcProfit(ctx context.Context, orderType domain.OrderType, symbol string, volume, priceOpen, priceClose float64) (float64, error)
}
