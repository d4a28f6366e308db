package trade

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// RiskReward is the outcome of weighing a planned stop loss against a
// planned take profit.
type RiskReward struct {
	RiskAmount   float64 `json:"risk_amount"`
	RewardAmount float64 `json:"reward_amount"`
	Ratio        float64 `json:"risk_reward_ratio"`
}

// Calculator answers pre-trade money questions: required margin, expected
// profit, risk/reward and position sizing.
type Calculator struct {
	conn *connection.Manager
	api  terminal.API
	log  *logrus.Entry
}

func NewCalculator(conn *connection.Manager, api terminal.API, logger *logrus.Logger) *Calculator {
	return &Calculator{
		conn: conn,
		api:  api,
		log:  logger.WithField("component", "trade.calculator"),
	}
}

// Margin returns the margin required to open a position. Price zero means
// the current market price: ask for buys, bid for sells.
func (c *Calculator) Margin(ctx context.Context, orderType domain.OrderType, symbol string, volume, price float64) (float64, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	if price <= 0 {
		tick, err := c.api.SymbolTick(ctx, symbol)
		if err != nil {
			c.log.WithError(err).WithField("symbol", symbol).Error("symbol_info_tick failed")
			return 0, err
		}
		if orderType.IsBuy() {
			price = tick.Ask
		} else {
			price = tick.Bid
		}
	}
	margin, err := c.api.OrderCalcMargin(ctx, orderType, symbol, volume, price)
	if err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Error("order_calc_margin failed")
		return 0, err
	}
	return margin, nil
}

// Profit returns the profit of a position opened at priceOpen and closed at
// priceClose, in the account currency.
func (c *Calculator) Profit(ctx context.Context, orderType domain.OrderType, symbol string, volume, priceOpen, priceClose float64) (float64, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	profit, err := c.api.OrderCalcProfit(ctx, orderType, symbol, volume, priceOpen, priceClose)
	if err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Error("order_calc_profit failed")
		return 0, err
	}
	return profit, nil
}

// RiskReward weighs the loss at the stop against the gain at the target for
// a planned entry. A stop that produces zero risk is rejected.
func (c *Calculator) RiskReward(ctx context.Context, orderType domain.OrderType, symbol string, volume, entry, sl, tp float64) (*RiskReward, error) {
	slLoss, err := c.Profit(ctx, orderType, symbol, volume, entry, sl)
	if err != nil {
		return nil, err
	}
	tpProfit, err := c.Profit(ctx, orderType, symbol, volume, entry, tp)
	if err != nil {
		return nil, err
	}

	risk := math.Abs(slLoss)
	if risk == 0 {
		return nil, &terminal.ValidationError{Reason: "stop loss produces zero risk"}
	}
	reward := math.Abs(tpProfit)
	return &RiskReward{
		RiskAmount:   risk,
		RewardAmount: reward,
		Ratio:        reward / risk,
	}, nil
}

// PositionSize returns the volume whose loss at the stop equals riskAmount.
// The result is floored onto the symbol's volume step grid, clamped to its
// volume limits and rounded to two decimals.
func (c *Calculator) PositionSize(ctx context.Context, orderType domain.OrderType, symbol string, riskAmount, entry, sl float64) (float64, error) {
	lossPerLot, err := c.Profit(ctx, orderType, symbol, 1.0, entry, sl)
	if err != nil {
		return 0, err
	}
	lossPerLot = math.Abs(lossPerLot)
	if lossPerLot == 0 {
		return 0, &terminal.ValidationError{Reason: "loss per lot is zero, cannot size position"}
	}

	volume := riskAmount / lossPerLot

	info, err := c.api.SymbolInfo(ctx, symbol)
	if err == nil && info != nil {
		if info.VolumeStep > 0 {
			v := decimal.NewFromFloat(volume)
			step := decimal.NewFromFloat(info.VolumeStep)
			volume, _ = v.Div(step).Floor().Mul(step).Float64()
		}
		volume = math.Max(info.VolumeMin, math.Min(volume, info.VolumeMax))
	}

	rounded, _ := decimal.NewFromFloat(volume).Round(2).Float64()
	return rounded, nil
}

func (c *Calculator) guard() error {
	if c.conn.IsConnected() {
		return nil
	}
	c.log.Error("terminal not connected")
	return terminal.ErrNotConnected
}
