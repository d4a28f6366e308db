package info

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// Position answers queries about open positions and pending orders.
type Position struct {
	conn *connection.Manager
	api  terminal.API
	log  *logrus.Entry
}

func NewPosition(conn *connection.Manager, api terminal.API, logger *logrus.Logger) *Position {
	return &Position{
		conn: conn,
		api:  api,
		log:  logger.WithField("component", "info.position"),
	}
}

// Positions returns the open positions matching the filter. An empty filter
// returns every open position.
func (p *Position) Positions(ctx context.Context, f terminal.PositionFilter) ([]domain.PositionInfo, error) {
	if err := guard(p.conn, p.log); err != nil {
		return nil, err
	}
	positions, err := p.api.Positions(ctx, f)
	if err != nil {
		p.log.WithError(err).Error("positions_get failed")
		return nil, err
	}
	for i := range positions {
		positions[i].FillTimes()
	}
	return positions, nil
}

// ByTicket returns the single open position with the given ticket.
func (p *Position) ByTicket(ctx context.Context, ticket int64) (*domain.PositionInfo, error) {
	positions, err := p.Positions(ctx, terminal.PositionFilter{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, errors.Errorf("position %d not found", ticket)
	}
	return &positions[0], nil
}

// Total returns the number of open positions.
func (p *Position) Total(ctx context.Context) (int, error) {
	if err := guard(p.conn, p.log); err != nil {
		return 0, err
	}
	return p.api.PositionsTotal(ctx)
}

// Orders returns the pending orders matching the filter.
func (p *Position) Orders(ctx context.Context, f terminal.PositionFilter) ([]domain.OrderInfo, error) {
	if err := guard(p.conn, p.log); err != nil {
		return nil, err
	}
	orders, err := p.api.Orders(ctx, f)
	if err != nil {
		p.log.WithError(err).Error("orders_get failed")
		return nil, err
	}
	for i := range orders {
		orders[i].FillTimes()
	}
	return orders, nil
}

// OrderByTicket returns the single pending order with the given ticket.
func (p *Position) OrderByTicket(ctx context.Context, ticket int64) (*domain.OrderInfo, error) {
	orders, err := p.Orders(ctx, terminal.PositionFilter{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, errors.Errorf("order %d not found", ticket)
	}
	return &orders[0], nil
}

// OrdersTotal returns the number of pending orders.
func (p *Position) OrdersTotal(ctx context.Context) (int, error) {
	if err := guard(p.conn, p.log); err != nil {
		return 0, err
	}
	return p.api.OrdersTotal(ctx)
}
