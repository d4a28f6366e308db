package info

import (
	"context"

	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// Symbol answers queries about the broker's symbol catalog and live quotes.
type Symbol struct {
	conn *connection.Manager
	api  terminal.API
	log  *logrus.Entry
}

func NewSymbol(conn *connection.Manager, api terminal.API, logger *logrus.Logger) *Symbol {
	return &Symbol{
		conn: conn,
		api:  api,
		log:  logger.WithField("component", "info.symbol"),
	}
}

// Symbols returns every symbol whose name matches group, a comma-separated
// list of glob patterns where a leading '!' excludes. Group "*" (or empty)
// returns the full catalog.
func (s *Symbol) Symbols(ctx context.Context, group string) ([]domain.SymbolInfo, error) {
	if err := guard(s.conn, s.log); err != nil {
		return nil, err
	}
	if group == "" {
		group = "*"
	}
	syms, err := s.api.Symbols(ctx, group)
	if err != nil {
		s.log.WithError(err).WithField("group", group).Error("symbols_get failed")
		return nil, err
	}
	return syms, nil
}

// Names returns just the names of the symbols matching group.
func (s *Symbol) Names(ctx context.Context, group string) ([]string, error) {
	syms, err := s.Symbols(ctx, group)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(syms))
	for i := range syms {
		names[i] = syms[i].Name
	}
	return names, nil
}

// Info returns the full specification of one symbol: quote and volume
// limits, contract size, filling modes and visibility.
func (s *Symbol) Info(ctx context.Context, symbol string) (*domain.SymbolInfo, error) {
	if err := guard(s.conn, s.log); err != nil {
		return nil, err
	}
	si, err := s.api.SymbolInfo(ctx, symbol)
	if err != nil {
		s.log.WithError(err).WithField("symbol", symbol).Error("symbol_info failed")
		return nil, err
	}
	return si, nil
}

// Select shows or hides a symbol in Market Watch. A symbol must be visible
// before its ticks can be queried or orders placed on it.
func (s *Symbol) Select(ctx context.Context, symbol string, enable bool) error {
	if err := guard(s.conn, s.log); err != nil {
		return err
	}
	if err := s.api.SymbolSelect(ctx, symbol, enable); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"symbol": symbol,
			"enable": enable,
		}).Error("symbol_select failed")
		return err
	}
	return nil
}

// Tick returns the latest quote for a symbol with its UTC time fields
// filled in.
func (s *Symbol) Tick(ctx context.Context, symbol string) (*domain.Tick, error) {
	if err := guard(s.conn, s.log); err != nil {
		return nil, err
	}
	tick, err := s.api.SymbolTick(ctx, symbol)
	if err != nil {
		s.log.WithError(err).WithField("symbol", symbol).Error("symbol_info_tick failed")
		return nil, err
	}
	tick.FillTimes()
	return tick, nil
}
