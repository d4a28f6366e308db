// Package domain defines the record types exchanged with the trading
// terminal: account, symbol, tick, bar, position, order, and deal snapshots,
// plus the trade request/result pair used by order execution.
//
// Field names and JSON tags follow the terminal's own field naming so that
// gateway payloads map one-to-one. Records that carry Unix timestamps also
// carry derived time.Time fields (suffix DT) populated by FillTimes; the
// derived fields are excluded from JSON.
package domain

import "time"

// AccountInfo is a snapshot of the trading account.
type AccountInfo struct {
	Login       int64   `json:"login"`
	TradeMode   int     `json:"trade_mode"`
	Leverage    int64   `json:"leverage"`
	LimitOrders int     `json:"limit_orders"`
	Balance     float64 `json:"balance"`
	Credit      float64 `json:"credit"`
	Profit      float64 `json:"profit"`
	Equity      float64 `json:"equity"`
	Margin      float64 `json:"margin"`
	MarginFree  float64 `json:"margin_free"`
	MarginLevel float64 `json:"margin_level"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Server      string  `json:"server"`
	Company     string  `json:"company"`
}

// TerminalInfo describes the terminal process on the other side of the
// gateway.
type TerminalInfo struct {
	Build        int    `json:"build"`
	Connected    bool   `json:"connected"`
	TradeAllowed bool   `json:"trade_allowed"`
	MaxBars      int    `json:"maxbars"`
	PingLast     int    `json:"ping_last"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	DataPath     string `json:"data_path"`
}

// Version is the terminal version triple.
type Version struct {
	Version int    `json:"version"`
	Build   int    `json:"build"`
	Date    string `json:"date"`
}

// SymbolInfo describes a tradeable instrument.
type SymbolInfo struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Path           string  `json:"path"`
	CurrencyBase   string  `json:"currency_base"`
	CurrencyProfit string  `json:"currency_profit"`
	CurrencyMargin string  `json:"currency_margin"`
	Digits         int     `json:"digits"`
	Point          float64 `json:"point"`
	Spread         int     `json:"spread"`
	TradeMode      int     `json:"trade_mode"`
	VolumeMin      float64 `json:"volume_min"`
	VolumeMax      float64 `json:"volume_max"`
	VolumeStep     float64 `json:"volume_step"`
	ContractSize   float64 `json:"trade_contract_size"`
	FillingMode    int     `json:"filling_mode"`
	Visible        bool    `json:"visible"`
	Select         bool    `json:"select"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Time           int64   `json:"time"`
}

// Tick is the latest quote for a symbol.
type Tick struct {
	Time       int64   `json:"time"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Last       float64 `json:"last"`
	Volume     int64   `json:"volume"`
	TimeMsc    int64   `json:"time_msc"`
	Flags      uint32  `json:"flags"`
	VolumeReal float64 `json:"volume_real"`

	TimeDT    time.Time `json:"-"`
	TimeMscDT time.Time `json:"-"`
}

// Bar is a single OHLCV candle.
type Bar struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
	Spread     int     `json:"spread"`
	RealVolume int64   `json:"real_volume"`

	TimeDT time.Time `json:"-"`
}

// PositionInfo is an open position.
type PositionInfo struct {
	Ticket        int64        `json:"ticket"`
	Time          int64        `json:"time"`
	TimeMsc       int64        `json:"time_msc"`
	TimeUpdate    int64        `json:"time_update"`
	TimeUpdateMsc int64        `json:"time_update_msc"`
	Type          PositionType `json:"type"`
	Magic         int64        `json:"magic"`
	Identifier    int64        `json:"identifier"`
	Reason        int          `json:"reason"`
	Volume        float64      `json:"volume"`
	PriceOpen     float64      `json:"price_open"`
	SL            float64      `json:"sl"`
	TP            float64      `json:"tp"`
	PriceCurrent  float64      `json:"price_current"`
	Swap          float64      `json:"swap"`
	Profit        float64      `json:"profit"`
	Symbol        string       `json:"symbol"`
	Comment       string       `json:"comment"`
	ExternalID    string       `json:"external_id"`

	TimeDT       time.Time `json:"-"`
	TimeUpdateDT time.Time `json:"-"`
}

// OrderInfo is a pending or historical order.
type OrderInfo struct {
	Ticket         int64        `json:"ticket"`
	TimeSetup      int64        `json:"time_setup"`
	TimeSetupMsc   int64        `json:"time_setup_msc"`
	TimeDone       int64        `json:"time_done"`
	TimeDoneMsc    int64        `json:"time_done_msc"`
	TimeExpiration int64        `json:"time_expiration"`
	Type           OrderType    `json:"type"`
	TypeTime       OrderTime    `json:"type_time"`
	TypeFilling    OrderFilling `json:"type_filling"`
	State          int          `json:"state"`
	Magic          int64        `json:"magic"`
	PositionID     int64        `json:"position_id"`
	VolumeInitial  float64      `json:"volume_initial"`
	VolumeCurrent  float64      `json:"volume_current"`
	PriceOpen      float64      `json:"price_open"`
	SL             float64      `json:"sl"`
	TP             float64      `json:"tp"`
	PriceCurrent   float64      `json:"price_current"`
	PriceStopLimit float64      `json:"price_stoplimit"`
	Symbol         string       `json:"symbol"`
	Comment        string       `json:"comment"`
	ExternalID     string       `json:"external_id"`

	TimeSetupDT      time.Time `json:"-"`
	TimeDoneDT       time.Time `json:"-"`
	TimeExpirationDT time.Time `json:"-"`
}

// DealInfo is an executed deal from the account history.
type DealInfo struct {
	Ticket     int64   `json:"ticket"`
	Order      int64   `json:"order"`
	Time       int64   `json:"time"`
	TimeMsc    int64   `json:"time_msc"`
	Type       int     `json:"type"`
	Entry      int     `json:"entry"`
	Magic      int64   `json:"magic"`
	PositionID int64   `json:"position_id"`
	Reason     int     `json:"reason"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	Commission float64 `json:"commission"`
	Swap       float64 `json:"swap"`
	Profit     float64 `json:"profit"`
	Fee        float64 `json:"fee"`
	Symbol     string  `json:"symbol"`
	Comment    string  `json:"comment"`
	ExternalID string  `json:"external_id"`

	TimeDT    time.Time `json:"-"`
	TimeMscDT time.Time `json:"-"`
}

// TradeRequest is the order request sent to the trade server.
type TradeRequest struct {
	Action      TradeAction  `json:"action"`
	Magic       int64        `json:"magic"`
	Order       int64        `json:"order,omitempty"`
	Symbol      string       `json:"symbol,omitempty"`
	Volume      float64      `json:"volume,omitempty"`
	Price       float64      `json:"price,omitempty"`
	StopLimit   float64      `json:"stoplimit,omitempty"`
	SL          float64      `json:"sl"`
	TP          float64      `json:"tp"`
	Deviation   int          `json:"deviation,omitempty"`
	Type        OrderType    `json:"type"`
	TypeFilling OrderFilling `json:"type_filling"`
	TypeTime    OrderTime    `json:"type_time"`
	Expiration  int64        `json:"expiration,omitempty"`
	Comment     string       `json:"comment,omitempty"`
	Position    int64        `json:"position,omitempty"`
	PositionBy  int64        `json:"position_by,omitempty"`
}

// TradeResult is the trade server's answer to an order_send request.
type TradeResult struct {
	Retcode         uint32        `json:"retcode"`
	Deal            int64         `json:"deal"`
	Order           int64         `json:"order"`
	Volume          float64       `json:"volume"`
	Price           float64       `json:"price"`
	Bid             float64       `json:"bid"`
	Ask             float64       `json:"ask"`
	Comment         string        `json:"comment"`
	RequestID       uint32        `json:"request_id"`
	RetcodeExternal int           `json:"retcode_external"`
	Request         *TradeRequest `json:"request,omitempty"`
}

// CheckResult is the trade server's answer to an order_check request.
type CheckResult struct {
	Retcode     uint32        `json:"retcode"`
	Balance     float64       `json:"balance"`
	Equity      float64       `json:"equity"`
	Profit      float64       `json:"profit"`
	Margin      float64       `json:"margin"`
	MarginFree  float64       `json:"margin_free"`
	MarginLevel float64       `json:"margin_level"`
	Comment     string        `json:"comment"`
	Request     *TradeRequest `json:"request,omitempty"`
}
