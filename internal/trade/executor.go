// Package trade places, checks and manages orders: a request executor with
// client-side volume validation, pre-trade calculators, and a fluent
// request builder.
package trade

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// defaultDeviation is the maximum price slippage, in points, attached to
// market orders that do not set their own.
const defaultDeviation = 20

// Recorder observes every trade server reply, accepted or rejected. The
// execution journal implements it.
type Recorder interface {
	Record(ctx context.Context, account string, req *domain.TradeRequest, res *domain.TradeResult) error
}

// Executor sends trade requests to the terminal.
type Executor struct {
	conn  *connection.Manager
	api   terminal.API
	log   *logrus.Entry
	magic int64

	recorder Recorder
	account  string
}

func NewExecutor(conn *connection.Manager, api terminal.API, logger *logrus.Logger, magic int64) *Executor {
	return &Executor{
		conn:  conn,
		api:   api,
		log:   logger.WithField("component", "trade.executor"),
		magic: magic,
	}
}

// SetRecorder attaches an execution recorder. Every trade server reply is
// handed to it under the given account name.
func (e *Executor) SetRecorder(r Recorder, account string) {
	e.recorder = r
	e.account = account
}

// Send submits a trade request. The trade server's result is returned even
// when the request was rejected; a rejection also surfaces as an OrderError
// carrying the retcode.
func (e *Executor) Send(ctx context.Context, req *domain.TradeRequest) (*domain.TradeResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	res, err := e.api.OrderSend(ctx, req)
	if err != nil {
		e.log.WithError(err).Error("order_send failed")
		return nil, err
	}
	if e.recorder != nil {
		if rerr := e.recorder.Record(ctx, e.account, req, res); rerr != nil {
			e.log.WithError(rerr).Warn("journal write failed")
		}
	}
	if res.Retcode != domain.RetcodeDone {
		e.log.WithFields(logrus.Fields{
			"retcode": res.Retcode,
			"comment": res.Comment,
		}).Error("order_send rejected")
		return res, &terminal.OrderError{Err: terminal.NewError(int(res.Retcode), res.Comment)}
	}
	e.log.WithFields(logrus.Fields{
		"order":  res.Order,
		"deal":   res.Deal,
		"volume": res.Volume,
		"price":  res.Price,
	}).Info("order executed")
	return res, nil
}

// Check validates a request client-side and then asks the trade server to
// verify it without executing: margin requirements, resulting balance and
// free margin.
func (e *Executor) Check(ctx context.Context, req *domain.TradeRequest) (*domain.CheckResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := e.validateVolume(ctx, req); err != nil {
		return nil, err
	}
	res, err := e.api.OrderCheck(ctx, req)
	if err != nil {
		e.log.WithError(err).Error("order_check failed")
		return nil, err
	}
	if res.Retcode != 0 && res.Retcode != domain.RetcodeDone {
		return res, &terminal.OrderError{Err: terminal.NewError(int(res.Retcode), res.Comment)}
	}
	return res, nil
}

// Modify replaces the stop loss and take profit of an open position. A nil
// argument keeps the position's current value.
func (e *Executor) Modify(ctx context.Context, ticket int64, sl, tp *float64) (*domain.TradeResult, error) {
	pos, err := e.position(ctx, ticket)
	if err != nil {
		return nil, err
	}
	newSL := pos.SL
	if sl != nil {
		newSL = *sl
	}
	newTP := pos.TP
	if tp != nil {
		newTP = *tp
	}
	return e.Send(ctx, &domain.TradeRequest{
		Action:   domain.TradeActionSLTP,
		Symbol:   pos.Symbol,
		Position: ticket,
		SL:       newSL,
		TP:       newTP,
		Magic:    e.magic,
	})
}

// Cancel removes a pending order.
func (e *Executor) Cancel(ctx context.Context, ticket int64) (*domain.TradeResult, error) {
	return e.Send(ctx, &domain.TradeRequest{
		Action: domain.TradeActionRemove,
		Order:  ticket,
		Magic:  e.magic,
	})
}

// ClosePosition closes an open position at market, fully or partially.
// Volume zero closes the whole position.
func (e *Executor) ClosePosition(ctx context.Context, ticket int64, volume float64, deviation int) (*domain.TradeResult, error) {
	pos, err := e.position(ctx, ticket)
	if err != nil {
		return nil, err
	}
	tick, err := e.api.SymbolTick(ctx, pos.Symbol)
	if err != nil {
		e.log.WithError(err).WithField("symbol", pos.Symbol).Error("symbol_info_tick failed")
		return nil, err
	}

	// Closing a long sells at bid; closing a short buys at ask.
	orderType := domain.OrderTypeSell
	price := tick.Bid
	if pos.Type == domain.PositionTypeSell {
		orderType = domain.OrderTypeBuy
		price = tick.Ask
	}
	if volume <= 0 {
		volume = pos.Volume
	}
	if deviation <= 0 {
		deviation = defaultDeviation
	}

	return e.Send(ctx, &domain.TradeRequest{
		Action:      domain.TradeActionDeal,
		Symbol:      pos.Symbol,
		Volume:      volume,
		Type:        orderType,
		Price:       price,
		Deviation:   deviation,
		Magic:       e.magic,
		Comment:     fmt.Sprintf("close #%d", ticket),
		TypeTime:    domain.OrderTimeGTC,
		TypeFilling: e.fillingMode(ctx, pos.Symbol),
		Position:    ticket,
	})
}

func (e *Executor) guard() error {
	if e.conn.IsConnected() {
		return nil
	}
	e.log.Error("terminal not connected")
	return terminal.ErrNotConnected
}

func (e *Executor) position(ctx context.Context, ticket int64) (*domain.PositionInfo, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	positions, err := e.api.Positions(ctx, terminal.PositionFilter{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, &terminal.ValidationError{Reason: fmt.Sprintf("position %d not found", ticket)}
	}
	return &positions[0], nil
}

// fillingMode maps the symbol's advertised filling flags onto an order fill
// policy, preferring IOC, then FOK, then Return. Unknown symbols fall back
// to IOC.
func (e *Executor) fillingMode(ctx context.Context, symbol string) domain.OrderFilling {
	info, err := e.api.SymbolInfo(ctx, symbol)
	if err != nil || info == nil {
		return domain.FillingIOC
	}
	switch {
	case info.FillingMode&domain.SymbolFillingIOC != 0:
		return domain.FillingIOC
	case info.FillingMode&domain.SymbolFillingFOK != 0:
		return domain.FillingFOK
	default:
		return domain.FillingReturn
	}
}

// validateVolume rejects deal and pending requests whose volume falls
// outside the symbol's limits or off its volume step grid.
func (e *Executor) validateVolume(ctx context.Context, req *domain.TradeRequest) error {
	if req.Action != domain.TradeActionDeal && req.Action != domain.TradeActionPending {
		return nil
	}
	info, err := e.api.SymbolInfo(ctx, req.Symbol)
	if err != nil || info == nil {
		// Let the trade server be the judge when symbol info is unavailable.
		return nil
	}
	if req.Volume < info.VolumeMin {
		return &terminal.ValidationError{
			Reason: fmt.Sprintf("volume %v below minimum %v", req.Volume, info.VolumeMin),
		}
	}
	if req.Volume > info.VolumeMax {
		return &terminal.ValidationError{
			Reason: fmt.Sprintf("volume %v above maximum %v", req.Volume, info.VolumeMax),
		}
	}
	if info.VolumeStep > 0 {
		vol := decimal.NewFromFloat(req.Volume)
		min := decimal.NewFromFloat(info.VolumeMin)
		step := decimal.NewFromFloat(info.VolumeStep)
		steps := vol.Sub(min).Div(step).Round(0)
		expected := min.Add(steps.Mul(step))
		if !vol.Equal(expected) {
			return &terminal.ValidationError{
				Reason: fmt.Sprintf("volume %v off step %v, nearest valid volume is %s",
					req.Volume, info.VolumeStep, expected),
			}
		}
	}
	return nil
}
