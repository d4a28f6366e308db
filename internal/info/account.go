package info

import (
	"context"

	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// Account answers queries about the logged-in trade account.
type Account struct {
	conn *connection.Manager
	api  terminal.API
	log  *logrus.Entry
}

func NewAccount(conn *connection.Manager, api terminal.API, logger *logrus.Logger) *Account {
	return &Account{
		conn: conn,
		api:  api,
		log:  logger.WithField("component", "info.account"),
	}
}

// Info returns the full account snapshot: login, balance, equity, margin,
// leverage, currency and trading permissions.
func (a *Account) Info(ctx context.Context) (*domain.AccountInfo, error) {
	if err := guard(a.conn, a.log); err != nil {
		return nil, err
	}
	acc, err := a.api.AccountInfo(ctx)
	if err != nil {
		a.log.WithError(err).Error("account_info failed")
		return nil, err
	}
	return acc, nil
}

// Balance returns just the account balance.
func (a *Account) Balance(ctx context.Context) (float64, error) {
	acc, err := a.Info(ctx)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Equity returns just the account equity.
func (a *Account) Equity(ctx context.Context) (float64, error) {
	acc, err := a.Info(ctx)
	if err != nil {
		return 0, err
	}
	return acc.Equity, nil
}

// FreeMargin returns the margin still available for new positions.
func (a *Account) FreeMargin(ctx context.Context) (float64, error) {
	acc, err := a.Info(ctx)
	if err != nil {
		return 0, err
	}
	return acc.MarginFree, nil
}
