package trade

import (
	"context"

	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// OrderBuilder assembles a trade request for one symbol through a fluent
// chain and hands it to the executor. Market orders resolve their price and
// fill policy from the live quote when the request is built.
type OrderBuilder struct {
	exec   *Executor
	symbol string

	action    domain.TradeAction
	orderType domain.OrderType
	market    bool
	volume    float64
	price     float64
	sl        float64
	tp        float64
	deviation int
	magic     int64
	comment   string
	position  int64
	typed     bool
}

// NewOrderBuilder starts a request for the given symbol. The executor's
// default magic number is attached until overridden.
func NewOrderBuilder(exec *Executor, symbol string) *OrderBuilder {
	return &OrderBuilder{
		exec:      exec,
		symbol:    symbol,
		deviation: defaultDeviation,
		magic:     exec.magic,
	}
}

// MarketBuy buys at the current ask.
func (b *OrderBuilder) MarketBuy(volume float64) *OrderBuilder {
	return b.setType(domain.TradeActionDeal, domain.OrderTypeBuy, volume, 0, true)
}

// MarketSell sells at the current bid.
func (b *OrderBuilder) MarketSell(volume float64) *OrderBuilder {
	return b.setType(domain.TradeActionDeal, domain.OrderTypeSell, volume, 0, true)
}

// LimitBuy places a buy limit below the current price.
func (b *OrderBuilder) LimitBuy(volume, price float64) *OrderBuilder {
	return b.setType(domain.TradeActionPending, domain.OrderTypeBuyLimit, volume, price, false)
}

// LimitSell places a sell limit above the current price.
func (b *OrderBuilder) LimitSell(volume, price float64) *OrderBuilder {
	return b.setType(domain.TradeActionPending, domain.OrderTypeSellLimit, volume, price, false)
}

// StopBuy places a buy stop above the current price.
func (b *OrderBuilder) StopBuy(volume, price float64) *OrderBuilder {
	return b.setType(domain.TradeActionPending, domain.OrderTypeBuyStop, volume, price, false)
}

// StopSell places a sell stop below the current price.
func (b *OrderBuilder) StopSell(volume, price float64) *OrderBuilder {
	return b.setType(domain.TradeActionPending, domain.OrderTypeSellStop, volume, price, false)
}

func (b *OrderBuilder) setType(action domain.TradeAction, t domain.OrderType, volume, price float64, market bool) *OrderBuilder {
	b.action = action
	b.orderType = t
	b.volume = volume
	b.price = price
	b.market = market
	b.typed = true
	return b
}

// WithSL attaches a stop loss price.
func (b *OrderBuilder) WithSL(sl float64) *OrderBuilder {
	b.sl = sl
	return b
}

// WithTP attaches a take profit price.
func (b *OrderBuilder) WithTP(tp float64) *OrderBuilder {
	b.tp = tp
	return b
}

// WithSLTP attaches both a stop loss and a take profit price.
func (b *OrderBuilder) WithSLTP(sl, tp float64) *OrderBuilder {
	b.sl = sl
	b.tp = tp
	return b
}

// WithDeviation overrides the maximum price slippage in points.
func (b *OrderBuilder) WithDeviation(points int) *OrderBuilder {
	b.deviation = points
	return b
}

// WithMagic overrides the expert advisor identifier.
func (b *OrderBuilder) WithMagic(magic int64) *OrderBuilder {
	b.magic = magic
	return b
}

// WithComment attaches an order comment. The trade server truncates
// comments past 31 characters.
func (b *OrderBuilder) WithComment(comment string) *OrderBuilder {
	b.comment = comment
	return b
}

// WithPosition targets an existing position, for closing it at market.
func (b *OrderBuilder) WithPosition(ticket int64) *OrderBuilder {
	b.position = ticket
	return b
}

// Build assembles the trade request. Market orders take their price from
// the quote at this moment.
func (b *OrderBuilder) Build(ctx context.Context) (*domain.TradeRequest, error) {
	if !b.typed {
		return nil, &terminal.ValidationError{Reason: "order type not set, call MarketBuy, LimitSell or similar first"}
	}

	price := b.price
	if b.market {
		tick, err := b.exec.api.SymbolTick(ctx, b.symbol)
		if err != nil {
			return nil, err
		}
		if b.orderType == domain.OrderTypeBuy {
			price = tick.Ask
		} else {
			price = tick.Bid
		}
	}

	return &domain.TradeRequest{
		Action:      b.action,
		Symbol:      b.symbol,
		Volume:      b.volume,
		Type:        b.orderType,
		Price:       price,
		SL:          b.sl,
		TP:          b.tp,
		Deviation:   b.deviation,
		Magic:       b.magic,
		Comment:     b.comment,
		TypeTime:    domain.OrderTimeGTC,
		TypeFilling: b.exec.fillingMode(ctx, b.symbol),
		Position:    b.position,
	}, nil
}

// Send builds the request and submits it.
func (b *OrderBuilder) Send(ctx context.Context) (*domain.TradeResult, error) {
	req, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	return b.exec.Send(ctx, req)
}

// Check builds the request and asks the trade server to verify it without
// executing.
func (b *OrderBuilder) Check(ctx context.Context) (*domain.CheckResult, error) {
	req, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	return b.exec.Check(ctx, req)
}
