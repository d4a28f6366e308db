package info

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// defaultBarCount bounds a bar query that names neither a count nor a range.
const defaultBarCount = 100

// History answers queries for bars, ticks and the account's trading history.
type History struct {
	conn *connection.Manager
	api  terminal.API
	log  *logrus.Entry
}

func NewHistory(conn *connection.Manager, api terminal.API, logger *logrus.Logger) *History {
	return &History{
		conn: conn,
		api:  api,
		log:  logger.WithField("component", "info.history"),
	}
}

// Bars fetches candles for one symbol and timeframe. The query picks one of
// the three native fetch modes:
//
//	From + Count: count bars starting at a time
//	StartPos + Count: count bars starting at a chart position (0 is current)
//	From + To: every bar inside a time range
//
// A query with no count and no range reads defaultBarCount bars from
// position zero.
func (h *History) Bars(ctx context.Context, symbol string, tf domain.Timeframe, q terminal.BarsQuery) ([]domain.Bar, error) {
	if err := guard(h.conn, h.log); err != nil {
		return nil, err
	}
	if q.Count <= 0 && (q.From.IsZero() || q.To.IsZero()) {
		q.StartPos = 0
		q.Count = defaultBarCount
	}
	bars, err := h.api.Bars(ctx, symbol, tf, q)
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"symbol":    symbol,
			"timeframe": tf,
		}).Error("copy_rates failed")
		return nil, err
	}
	for i := range bars {
		bars[i].FillTimes()
	}
	return bars, nil
}

// Ticks fetches raw ticks for one symbol, either Count ticks starting at
// From or every tick between From and To. Zero flags means all ticks.
func (h *History) Ticks(ctx context.Context, symbol string, q terminal.TicksQuery) ([]domain.Tick, error) {
	if err := guard(h.conn, h.log); err != nil {
		return nil, err
	}
	if q.Flags == 0 {
		q.Flags = domain.CopyTicksAll
	}
	ticks, err := h.api.Ticks(ctx, symbol, q)
	if err != nil {
		h.log.WithError(err).WithField("symbol", symbol).Error("copy_ticks failed")
		return nil, err
	}
	for i := range ticks {
		ticks[i].FillTimes()
	}
	return ticks, nil
}

// Orders returns completed and cancelled orders from the account history.
// Filter precedence is Ticket, then Position, then the From/To range
// optionally narrowed by Group.
func (h *History) Orders(ctx context.Context, f terminal.HistoryFilter) ([]domain.OrderInfo, error) {
	if err := guard(h.conn, h.log); err != nil {
		return nil, err
	}
	orders, err := h.api.HistoryOrders(ctx, f)
	if err != nil {
		h.log.WithError(err).Error("history_orders_get failed")
		return nil, err
	}
	for i := range orders {
		orders[i].FillTimes()
	}
	return orders, nil
}

// OrdersTotal returns the number of history orders inside a time range.
func (h *History) OrdersTotal(ctx context.Context, from, to time.Time) (int, error) {
	if err := guard(h.conn, h.log); err != nil {
		return 0, err
	}
	return h.api.HistoryOrdersTotal(ctx, from, to)
}

// Deals returns executed deals from the account history, with the same
// filter precedence as Orders.
func (h *History) Deals(ctx context.Context, f terminal.HistoryFilter) ([]domain.DealInfo, error) {
	if err := guard(h.conn, h.log); err != nil {
		return nil, err
	}
	deals, err := h.api.HistoryDeals(ctx, f)
	if err != nil {
		h.log.WithError(err).Error("history_deals_get failed")
		return nil, err
	}
	for i := range deals {
		deals[i].FillTimes()
	}
	return deals, nil
}

// DealsTotal returns the number of history deals inside a time range.
func (h *History) DealsTotal(ctx context.Context, from, to time.Time) (int, error) {
	if err := guard(h.conn, h.log); err != nil {
		return 0, err
	}
	return h.api.HistoryDealsTotal(ctx, from, to)
}
