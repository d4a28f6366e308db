// Package gateway implements terminal.API against the HTTP bridge process
// that runs alongside the MetaTrader 5 terminal. Every call maps to one
// bridge endpoint; the bridge answers with a {ok, data, error} envelope where
// error carries the terminal's native last-error code.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gomt5/internal/domain"
	"gomt5/internal/logging"
	"gomt5/internal/terminal"
	"gomt5/internal/util"
)

// Compile-time interface check.
var _ terminal.API = (*Client)(nil)

// Options configure the gateway client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces calls to the bridge; 0 disables pacing.
	RequestsPerSecond float64
	Burst             int
	Logger            *logrus.Logger
}

// Client talks to the terminal bridge over HTTP.
type Client struct {
	http    *resty.Client
	limiter *util.RateLimiter
	log     *logrus.Entry
}

// New creates a gateway client for the bridge at opts.BaseURL.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	httpc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	var limiter *util.RateLimiter
	if opts.RequestsPerSecond > 0 {
		limiter = util.NewRateLimiter(opts.RequestsPerSecond, opts.Burst)
	}

	return &Client{
		http:    httpc,
		limiter: limiter,
		log:     opts.Logger.WithField("component", "gateway"),
	}
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *rpcError       `json:"error"`
}

// call performs one bridge request and decodes the envelope's data into out.
func (c *Client) call(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var env envelope
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetResult(&env)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode(),
		"elapsed": time.Since(start),
	}).Debug("bridge call")

	if resp.IsError() {
		return fmt.Errorf("%s %s: bridge returned %s", method, path, resp.Status())
	}
	if !env.Ok {
		if env.Error != nil {
			return terminal.NewError(env.Error.Code, env.Error.Message)
		}
		return terminal.NewError(domain.CodeInternalFail, "bridge error without detail")
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrapf(err, "decoding %s response", path)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

type initRequest struct {
	Path      string `json:"path,omitempty"`
	Login     int64  `json:"login,omitempty"`
	Password  string `json:"password,omitempty"`
	Server    string `json:"server,omitempty"`
	TimeoutMs int64  `json:"timeout_ms,omitempty"`
	Portable  bool   `json:"portable,omitempty"`
}

func (c *Client) Initialize(ctx context.Context, opts terminal.InitOptions) error {
	req := initRequest{
		Path:      opts.Path,
		Login:     opts.Login,
		Password:  opts.Password,
		Server:    opts.Server,
		TimeoutMs: opts.Timeout.Milliseconds(),
		Portable:  opts.Portable,
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/initialize", nil, req, nil); err != nil {
		return wrapConn(err)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, opts terminal.LoginOptions) error {
	req := initRequest{
		Login:     opts.Login,
		Password:  opts.Password,
		Server:    opts.Server,
		TimeoutMs: opts.Timeout.Milliseconds(),
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/login", nil, req, nil); err != nil {
		return wrapConn(err)
	}
	return nil
}

func (c *Client) Shutdown(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/v1/shutdown", nil, nil, nil)
}

func (c *Client) TerminalInfo(ctx context.Context) (*domain.TerminalInfo, error) {
	var out domain.TerminalInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/terminal", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Version(ctx context.Context) (*domain.Version, error) {
	var out domain.Version
	if err := c.call(ctx, http.MethodGet, "/api/v1/version", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Account and symbols
// ---------------------------------------------------------------------------

func (c *Client) AccountInfo(ctx context.Context) (*domain.AccountInfo, error) {
	var out domain.AccountInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/account", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Symbols(ctx context.Context, group string) ([]domain.SymbolInfo, error) {
	params := map[string]string{}
	if group != "" {
		params["group"] = group
	}
	var out []domain.SymbolInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/symbols", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SymbolInfo(ctx context.Context, symbol string) (*domain.SymbolInfo, error) {
	var out domain.SymbolInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/symbols/"+symbol, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SymbolSelect(ctx context.Context, symbol string, enable bool) error {
	body := map[string]bool{"enable": enable}
	return c.call(ctx, http.MethodPost, "/api/v1/symbols/"+symbol+"/select", nil, body, nil)
}

func (c *Client) SymbolTick(ctx context.Context, symbol string) (*domain.Tick, error) {
	var out domain.Tick
	if err := c.call(ctx, http.MethodGet, "/api/v1/symbols/"+symbol+"/tick", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Market history
// ---------------------------------------------------------------------------

func (c *Client) Bars(ctx context.Context, symbol string, tf domain.Timeframe, q terminal.BarsQuery) ([]domain.Bar, error) {
	params := map[string]string{
		"symbol":    symbol,
		"timeframe": strconv.Itoa(int(tf)),
	}
	if !q.From.IsZero() {
		params["from"] = strconv.FormatInt(q.From.Unix(), 10)
	}
	if !q.To.IsZero() {
		params["to"] = strconv.FormatInt(q.To.Unix(), 10)
	}
	if q.Count > 0 {
		params["count"] = strconv.Itoa(q.Count)
	}
	if q.StartPos > 0 {
		params["start_pos"] = strconv.Itoa(q.StartPos)
	}
	var out []domain.Bar
	if err := c.call(ctx, http.MethodGet, "/api/v1/rates", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ticks(ctx context.Context, symbol string, q terminal.TicksQuery) ([]domain.Tick, error) {
	params := map[string]string{
		"symbol": symbol,
		"flags":  strconv.Itoa(int(q.Flags)),
	}
	if !q.From.IsZero() {
		params["from"] = strconv.FormatInt(q.From.Unix(), 10)
	}
	if !q.To.IsZero() {
		params["to"] = strconv.FormatInt(q.To.Unix(), 10)
	}
	if q.Count > 0 {
		params["count"] = strconv.Itoa(q.Count)
	}
	var out []domain.Tick
	if err := c.call(ctx, http.MethodGet, "/api/v1/ticks", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Positions and pending orders
// ---------------------------------------------------------------------------

func positionParams(f terminal.PositionFilter) map[string]string {
	params := map[string]string{}
	switch {
	case f.Ticket != 0:
		params["ticket"] = strconv.FormatInt(f.Ticket, 10)
	case f.Symbol != "":
		params["symbol"] = f.Symbol
	case f.Group != "":
		params["group"] = f.Group
	}
	return params
}

func (c *Client) Positions(ctx context.Context, f terminal.PositionFilter) ([]domain.PositionInfo, error) {
	var out []domain.PositionInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/positions", positionParams(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PositionsTotal(ctx context.Context) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/positions/total", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

func (c *Client) Orders(ctx context.Context, f terminal.PositionFilter) ([]domain.OrderInfo, error) {
	var out []domain.OrderInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/orders", positionParams(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OrdersTotal(ctx context.Context) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/orders/total", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

// ---------------------------------------------------------------------------
// Account history
// ---------------------------------------------------------------------------

func historyParams(f terminal.HistoryFilter) map[string]string {
	params := map[string]string{}
	switch {
	case f.Ticket != 0:
		params["ticket"] = strconv.FormatInt(f.Ticket, 10)
	case f.Position != 0:
		params["position"] = strconv.FormatInt(f.Position, 10)
	default:
		if !f.From.IsZero() {
			params["from"] = strconv.FormatInt(f.From.Unix(), 10)
		}
		if !f.To.IsZero() {
			params["to"] = strconv.FormatInt(f.To.Unix(), 10)
		}
		if f.Group != "" {
			params["group"] = f.Group
		}
	}
	return params
}

func (c *Client) HistoryOrders(ctx context.Context, f terminal.HistoryFilter) ([]domain.OrderInfo, error) {
	var out []domain.OrderInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/history/orders", historyParams(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) HistoryOrdersTotal(ctx context.Context, from, to time.Time) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	params := historyParams(terminal.HistoryFilter{From: from, To: to})
	if err := c.call(ctx, http.MethodGet, "/api/v1/history/orders/total", params, nil, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

func (c *Client) HistoryDeals(ctx context.Context, f terminal.HistoryFilter) ([]domain.DealInfo, error) {
	var out []domain.DealInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/history/deals", historyParams(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) HistoryDealsTotal(ctx context.Context, from, to time.Time) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	params := historyParams(terminal.HistoryFilter{From: from, To: to})
	if err := c.call(ctx, http.MethodGet, "/api/v1/history/deals/total", params, nil, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

// ---------------------------------------------------------------------------
// Trading
// ---------------------------------------------------------------------------

func (c *Client) OrderSend(ctx context.Context, req *domain.TradeRequest) (*domain.TradeResult, error) {
	var out domain.TradeResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/order/send", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrderCheck(ctx context.Context, req *domain.TradeRequest) (*domain.CheckResult, error) {
	var out domain.CheckResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/order/check", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type calcRequest struct {
	Type       domain.OrderType `json:"type"`
	Symbol     string           `json:"symbol"`
	Volume     float64          `json:"volume"`
	Price      float64          `json:"price"`
	PriceClose float64          `json:"price_close,omitempty"`
}

func (c *Client) OrderCalcMargin(ctx context.Context, orderType domain.OrderType, symbol string, volume, price float64) (float64, error) {
	var out struct {
		Margin float64 `json:"margin"`
	}
	req := calcRequest{Type: orderType, Symbol: symbol, Volume: volume, Price: price}
	if err := c.call(ctx, http.MethodPost, "/api/v1/order/calc_margin", nil, req, &out); err != nil {
		return 0, err
	}
	return out.Margin, nil
}

func (c *Client) OrderCalcProfit(ctx context.Context, orderType domain.OrderType, symbol string, volume, priceOpen, priceClose float64) (float64, error) {
	var out struct {
		Profit float64 `json:"profit"`
	}
	req := calcRequest{Type: orderType, Symbol: symbol, Volume: volume, Price: priceOpen, PriceClose: priceClose}
	if err := c.call(ctx, http.MethodPost, "/api/v1/order/calc_profit", nil, req, &out); err != nil {
		return 0, err
	}
	return out.Profit, nil
}

// wrapConn turns a terminal error into a ConnectionError, leaving transport
// errors untouched.
func wrapConn(err error) error {
	var te *terminal.Error
	if errors.As(err, &te) {
		return &terminal.ConnectionError{Err: te}
	}
	return err
}
