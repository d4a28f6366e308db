package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Numeric constants mirror the values used by the MetaTrader 5 terminal so
// that records and requests round-trip through the gateway unchanged.

// OrderType identifies the direction and kind of an order.
type OrderType int

const (
	OrderTypeBuy OrderType = iota
	OrderTypeSell
	OrderTypeBuyLimit
	OrderTypeSellLimit
	OrderTypeBuyStop
	OrderTypeSellStop
	OrderTypeBuyStopLimit
	OrderTypeSellStopLimit
	OrderTypeCloseBy
)

// IsBuy reports whether the order type opens long exposure.
func (t OrderType) IsBuy() bool {
	switch t {
	case OrderTypeBuy, OrderTypeBuyLimit, OrderTypeBuyStop, OrderTypeBuyStopLimit:
		return true
	}
	return false
}

// TradeAction selects the kind of trade operation in a TradeRequest.
type TradeAction int

const (
	TradeActionDeal    TradeAction = 1
	TradeActionPending TradeAction = 5
	TradeActionSLTP    TradeAction = 6
	TradeActionModify  TradeAction = 7
	TradeActionRemove  TradeAction = 8
	TradeActionCloseBy TradeAction = 10
)

// OrderFilling is the fill policy attached to a trade request.
type OrderFilling int

const (
	FillingFOK    OrderFilling = 0
	FillingIOC    OrderFilling = 1
	FillingReturn OrderFilling = 2
)

// Symbol filling-mode flags reported by the terminal in SymbolInfo.FillingMode.
const (
	SymbolFillingIOC = 1
	SymbolFillingFOK = 2
)

// OrderTime is the time-in-force attached to a trade request.
type OrderTime int

const (
	OrderTimeGTC OrderTime = iota
	OrderTimeDay
	OrderTimeSpecified
	OrderTimeSpecifiedDay
)

// PositionType is the direction of an open position.
type PositionType int

const (
	PositionTypeBuy PositionType = iota
	PositionTypeSell
)

// Timeframe is a chart period code.
type Timeframe int

const (
	TimeframeM1  Timeframe = 1
	TimeframeM5  Timeframe = 5
	TimeframeM15 Timeframe = 15
	TimeframeM30 Timeframe = 30
	TimeframeH1  Timeframe = 0x4001
	TimeframeH4  Timeframe = 0x4004
	TimeframeD1  Timeframe = 0x4018
	TimeframeW1  Timeframe = 0x8001
	TimeframeMN1 Timeframe = 0xC001
)

// String returns the chart label of the timeframe ("M5", "H1", "D1").
func (tf Timeframe) String() string {
	switch tf {
	case TimeframeM1:
		return "M1"
	case TimeframeM5:
		return "M5"
	case TimeframeM15:
		return "M15"
	case TimeframeM30:
		return "M30"
	case TimeframeH1:
		return "H1"
	case TimeframeH4:
		return "H4"
	case TimeframeD1:
		return "D1"
	case TimeframeW1:
		return "W1"
	case TimeframeMN1:
		return "MN1"
	}
	return fmt.Sprintf("TF%d", int(tf))
}

var timeframeLabels = map[string]Timeframe{
	"M1": TimeframeM1, "M5": TimeframeM5, "M15": TimeframeM15,
	"M30": TimeframeM30, "H1": TimeframeH1, "H4": TimeframeH4,
	"D1": TimeframeD1, "W1": TimeframeW1, "MN1": TimeframeMN1,
}

// ParseTimeframe maps a chart label ("H1", case-insensitive) or a raw
// terminal code ("16385") to a Timeframe. The second return is false when
// the input matches neither.
func ParseTimeframe(s string) (Timeframe, bool) {
	if tf, ok := timeframeLabels[strings.ToUpper(s)]; ok {
		return tf, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return Timeframe(n), true
}

// CopyTicksFlag selects which ticks a history query returns.
type CopyTicksFlag int

const (
	CopyTicksAll   CopyTicksFlag = -1
	CopyTicksInfo  CopyTicksFlag = 1
	CopyTicksTrade CopyTicksFlag = 2
)

// Trade server return codes.
const (
	RetcodeDone         uint32 = 10009
	RetcodeRequote      uint32 = 10004
	RetcodeReject       uint32 = 10006
	RetcodeInvalidPrice uint32 = 10013
	RetcodeInvalidStops uint32 = 10014
	RetcodeMarketClosed uint32 = 10016
	RetcodeNoMoney      uint32 = 10019
)

// Terminal error codes returned by LastError.
const (
	CodeOK            = 1
	CodeInternalFail  = -1
	CodeInvalidParams = -2
	CodeNotFound      = -4
	CodeIPCSendFailed = -10001
)

// Side is the string form of an order type used throughout the public API
// ("buy", "sell_limit", ...).
type Side string

const (
	SideBuy       Side = "buy"
	SideSell      Side = "sell"
	SideBuyLimit  Side = "buy_limit"
	SideSellLimit Side = "sell_limit"
	SideBuyStop   Side = "buy_stop"
	SideSellStop  Side = "sell_stop"
)

var sideTypes = map[Side]OrderType{
	SideBuy:       OrderTypeBuy,
	SideSell:      OrderTypeSell,
	SideBuyLimit:  OrderTypeBuyLimit,
	SideSellLimit: OrderTypeSellLimit,
	SideBuyStop:   OrderTypeBuyStop,
	SideSellStop:  OrderTypeSellStop,
}

// OrderType maps a side string to the terminal order type constant. The
// second return is false for an unknown side.
func (s Side) OrderType() (OrderType, bool) {
	t, ok := sideTypes[s]
	return t, ok
}

// IsBuy reports whether the side opens long exposure.
func (s Side) IsBuy() bool {
	t, ok := s.OrderType()
	return ok && t.IsBuy()
}
