// Package sim provides an in-memory terminal used by tests and paper mode.
// It honors the same call contract as the live gateway: calls fail until
// Initialize succeeds, trade requests answer with retcodes, and history is
// accumulated from executed deals.
package sim

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

// Compile-time interface check.
var _ terminal.API = (*Terminal)(nil)

type symbolState struct {
	info  domain.SymbolInfo
	tick  domain.Tick
	bars  []domain.Bar
	ticks []domain.Tick
}

// Terminal is an in-memory stand-in for the MetaTrader 5 terminal.
type Terminal struct {
	mu          sync.Mutex
	initialized bool
	login       int64
	server      string

	failInits   int
	failCode    int
	validLogins map[int64]string // login -> password; empty means accept all

	account    domain.AccountInfo
	symbols    map[string]*symbolState
	positions  map[int64]*domain.PositionInfo
	pending    map[int64]*domain.OrderInfo
	histOrders []domain.OrderInfo
	deals      []domain.DealInfo
	nextTicket int64

	now func() time.Time
}

// New creates an empty simulated terminal with a 100k USD account at 1:100
// leverage.
func New() *Terminal {
	return &Terminal{
		validLogins: make(map[int64]string),
		account: domain.AccountInfo{
			Login:      1000,
			Leverage:   100,
			Balance:    100000,
			Equity:     100000,
			MarginFree: 100000,
			Currency:   "USD",
			Server:     "Sim-Demo",
			Company:    "Simulated",
		},
		symbols:    make(map[string]*symbolState),
		positions:  make(map[int64]*domain.PositionInfo),
		pending:    make(map[int64]*domain.OrderInfo),
		nextTicket: 100000,
		now:        time.Now,
	}
}

// ---------------------------------------------------------------------------
// Seeding helpers (not part of terminal.API)
// ---------------------------------------------------------------------------

// SetAccount replaces the simulated account snapshot.
func (s *Terminal) SetAccount(a domain.AccountInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = a
}

// AddSymbol registers a tradeable symbol.
func (s *Terminal) AddSymbol(info domain.SymbolInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info.Visible = true
	s.symbols[info.Name] = &symbolState{info: info}
}

// SetTick sets the current quote for a symbol and mirrors it into the
// symbol record.
func (s *Terminal) SetTick(symbol string, tick domain.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return
	}
	if tick.Time == 0 {
		tick.Time = s.now().Unix()
		tick.TimeMsc = s.now().UnixMilli()
	}
	st.tick = tick
	st.info.Bid = tick.Bid
	st.info.Ask = tick.Ask
	st.info.Time = tick.Time
}

// SeedBars installs bar history for a symbol, oldest first.
func (s *Terminal) SeedBars(symbol string, bars []domain.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.symbols[symbol]; ok {
		st.bars = append(st.bars, bars...)
	}
}

// SeedTicks installs tick history for a symbol, oldest first.
func (s *Terminal) SeedTicks(symbol string, ticks []domain.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.symbols[symbol]; ok {
		st.ticks = append(st.ticks, ticks...)
	}
}

// SeedPosition installs an open position, assigning a ticket when absent.
func (s *Terminal) SeedPosition(p domain.PositionInfo) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Ticket == 0 {
		p.Ticket = s.takeTicket()
	}
	if p.Time == 0 {
		p.Time = s.now().Unix()
	}
	cp := p
	s.positions[p.Ticket] = &cp
	return p.Ticket
}

// SeedOrder installs a pending order, assigning a ticket when absent.
func (s *Terminal) SeedOrder(o domain.OrderInfo) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Ticket == 0 {
		o.Ticket = s.takeTicket()
	}
	if o.TimeSetup == 0 {
		o.TimeSetup = s.now().Unix()
	}
	co := o
	s.pending[o.Ticket] = &co
	return o.Ticket
}

// SeedHistory installs historical orders and deals.
func (s *Terminal) SeedHistory(orders []domain.OrderInfo, deals []domain.DealInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histOrders = append(s.histOrders, orders...)
	s.deals = append(s.deals, deals...)
}

// RequireLogin restricts Login to the given credentials.
func (s *Terminal) RequireLogin(login int64, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validLogins[login] = password
}

// FailInitializes makes the next n Initialize calls fail with the given
// terminal error code.
func (s *Terminal) FailInitializes(n, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInits = n
	s.failCode = code
}

// SetClock overrides the simulated wall clock.
func (s *Terminal) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Terminal) takeTicket() int64 {
	s.nextTicket++
	return s.nextTicket
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (s *Terminal) Initialize(_ context.Context, opts terminal.InitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failInits > 0 {
		s.failInits--
		return &terminal.ConnectionError{Err: terminal.NewError(s.failCode, "initialize failed")}
	}

	s.initialized = true
	if opts.Login != 0 {
		s.login = opts.Login
		s.account.Login = opts.Login
	}
	if opts.Server != "" {
		s.server = opts.Server
		s.account.Server = opts.Server
	}
	return nil
}

func (s *Terminal) Login(_ context.Context, opts terminal.LoginOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return terminal.ErrNotConnected
	}
	if want, ok := s.validLogins[opts.Login]; len(s.validLogins) > 0 {
		if !ok || (opts.Password != "" && opts.Password != want) {
			return &terminal.ConnectionError{Err: terminal.NewError(domain.CodeInvalidParams, "authorization failed")}
		}
	}
	s.login = opts.Login
	s.account.Login = opts.Login
	if opts.Server != "" {
		s.server = opts.Server
		s.account.Server = opts.Server
	}
	return nil
}

func (s *Terminal) Shutdown(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	return nil
}

func (s *Terminal) TerminalInfo(_ context.Context) (*domain.TerminalInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	return &domain.TerminalInfo{
		Build:        4400,
		Connected:    true,
		TradeAllowed: true,
		Name:         "Simulated Terminal",
	}, nil
}

func (s *Terminal) Version(_ context.Context) (*domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	return &domain.Version{Version: 500, Build: 4400, Date: "01 Jan 2024"}, nil
}

// ---------------------------------------------------------------------------
// Account and symbols
// ---------------------------------------------------------------------------

func (s *Terminal) AccountInfo(_ context.Context) (*domain.AccountInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	a := s.account
	return &a, nil
}

func (s *Terminal) Symbols(_ context.Context, group string) ([]domain.SymbolInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	var out []domain.SymbolInfo
	for _, st := range s.symbols {
		if matchGroup(group, st.info.Name) {
			out = append(out, st.info)
		}
	}
	return out, nil
}

func (s *Terminal) SymbolInfo(_ context.Context, symbol string) (*domain.SymbolInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	st, ok := s.symbols[symbol]
	if !ok {
		return nil, terminal.NewError(domain.CodeNotFound, fmt.Sprintf("symbol %q not found", symbol))
	}
	info := st.info
	return &info, nil
}

func (s *Terminal) SymbolSelect(_ context.Context, symbol string, enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return terminal.ErrNotConnected
	}
	st, ok := s.symbols[symbol]
	if !ok {
		return terminal.NewError(domain.CodeNotFound, fmt.Sprintf("symbol %q not found", symbol))
	}
	st.info.Select = enable
	return nil
}

func (s *Terminal) SymbolTick(_ context.Context, symbol string) (*domain.Tick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	st, ok := s.symbols[symbol]
	if !ok || st.tick.Time == 0 {
		return nil, terminal.NewError(domain.CodeNotFound, fmt.Sprintf("no tick for %q", symbol))
	}
	tick := st.tick
	return &tick, nil
}

// ---------------------------------------------------------------------------
// Market history
// ---------------------------------------------------------------------------

func (s *Terminal) Bars(_ context.Context, symbol string, _ domain.Timeframe, q terminal.BarsQuery) ([]domain.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	st, ok := s.symbols[symbol]
	if !ok {
		return nil, terminal.NewError(domain.CodeNotFound, fmt.Sprintf("symbol %q not found", symbol))
	}

	switch {
	case !q.From.IsZero() && !q.To.IsZero():
		var out []domain.Bar
		for _, b := range st.bars {
			if b.Time >= q.From.Unix() && b.Time <= q.To.Unix() {
				out = append(out, b)
			}
		}
		return out, nil

	case !q.From.IsZero():
		var out []domain.Bar
		for _, b := range st.bars {
			if b.Time >= q.From.Unix() {
				out = append(out, b)
			}
			if len(out) == q.Count {
				break
			}
		}
		return out, nil

	default:
		// StartPos counts back from the newest bar.
		end := len(st.bars) - q.StartPos
		if end <= 0 {
			return nil, nil
		}
		start := end - q.Count
		if start < 0 {
			start = 0
		}
		out := make([]domain.Bar, end-start)
		copy(out, st.bars[start:end])
		return out, nil
	}
}

func (s *Terminal) Ticks(_ context.Context, symbol string, q terminal.TicksQuery) ([]domain.Tick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	st, ok := s.symbols[symbol]
	if !ok {
		return nil, terminal.NewError(domain.CodeNotFound, fmt.Sprintf("symbol %q not found", symbol))
	}

	var out []domain.Tick
	for _, t := range st.ticks {
		if t.Time < q.From.Unix() {
			continue
		}
		if !q.To.IsZero() {
			if t.Time > q.To.Unix() {
				break
			}
		} else if q.Count > 0 && len(out) == q.Count {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Positions and pending orders
// ---------------------------------------------------------------------------

func (s *Terminal) Positions(_ context.Context, f terminal.PositionFilter) ([]domain.PositionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	var out []domain.PositionInfo
	for _, p := range s.positions {
		if matchPositionFilter(f, p.Ticket, p.Symbol) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Terminal) PositionsTotal(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, terminal.ErrNotConnected
	}
	return len(s.positions), nil
}

func (s *Terminal) Orders(_ context.Context, f terminal.PositionFilter) ([]domain.OrderInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	var out []domain.OrderInfo
	for _, o := range s.pending {
		if matchPositionFilter(f, o.Ticket, o.Symbol) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *Terminal) OrdersTotal(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, terminal.ErrNotConnected
	}
	return len(s.pending), nil
}

// ---------------------------------------------------------------------------
// Account history
// ---------------------------------------------------------------------------

func (s *Terminal) HistoryOrders(_ context.Context, f terminal.HistoryFilter) ([]domain.OrderInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	var out []domain.OrderInfo
	for _, o := range s.histOrders {
		if matchHistoryFilter(f, o.Ticket, o.PositionID, o.Symbol, o.TimeSetup) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Terminal) HistoryOrdersTotal(_ context.Context, from, to time.Time) (int, error) {
	orders, err := s.HistoryOrders(context.Background(), terminal.HistoryFilter{From: from, To: to})
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

func (s *Terminal) HistoryDeals(_ context.Context, f terminal.HistoryFilter) ([]domain.DealInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	var out []domain.DealInfo
	for _, d := range s.deals {
		if matchHistoryFilter(f, d.Ticket, d.PositionID, d.Symbol, d.Time) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Terminal) HistoryDealsTotal(_ context.Context, from, to time.Time) (int, error) {
	deals, err := s.HistoryDeals(context.Background(), terminal.HistoryFilter{From: from, To: to})
	if err != nil {
		return 0, err
	}
	return len(deals), nil
}

// ---------------------------------------------------------------------------
// Trading
// ---------------------------------------------------------------------------

func (s *Terminal) OrderSend(_ context.Context, req *domain.TradeRequest) (*domain.TradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}

	switch req.Action {
	case domain.TradeActionDeal:
		return s.execDeal(req), nil
	case domain.TradeActionPending:
		return s.execPending(req), nil
	case domain.TradeActionSLTP:
		return s.execSLTP(req), nil
	case domain.TradeActionRemove:
		return s.execRemove(req), nil
	default:
		return reject(req, "unsupported action"), nil
	}
}

func (s *Terminal) execDeal(req *domain.TradeRequest) *domain.TradeResult {
	st, ok := s.symbols[req.Symbol]
	if !ok {
		return reject(req, "unknown symbol")
	}
	if req.Volume <= 0 {
		return reject(req, "invalid volume")
	}

	price := req.Price
	if price == 0 {
		if req.Type.IsBuy() {
			price = st.tick.Ask
		} else {
			price = st.tick.Bid
		}
	}
	now := s.now().Unix()

	// Closing (or shrinking) an existing position.
	if req.Position > 0 {
		pos, ok := s.positions[req.Position]
		if !ok {
			return reject(req, "position not found")
		}
		volume := req.Volume
		if volume > pos.Volume {
			volume = pos.Volume
		}
		profit := s.profitFor(pos, price, volume)
		s.account.Balance += profit
		s.account.Equity = s.account.Balance
		s.account.MarginFree = s.account.Balance - s.account.Margin

		if volume >= pos.Volume {
			delete(s.positions, req.Position)
		} else {
			pos.Volume -= volume
		}

		dealTicket := s.takeTicket()
		orderTicket := s.takeTicket()
		s.deals = append(s.deals, domain.DealInfo{
			Ticket: dealTicket, Order: orderTicket, Time: now, TimeMsc: now * 1000,
			Entry: 1, Magic: req.Magic, PositionID: req.Position,
			Volume: volume, Price: price, Profit: profit,
			Symbol: req.Symbol, Comment: req.Comment,
		})
		s.histOrders = append(s.histOrders, domain.OrderInfo{
			Ticket: orderTicket, TimeSetup: now, TimeDone: now,
			Type: req.Type, Magic: req.Magic, PositionID: req.Position,
			VolumeInitial: volume, PriceOpen: price,
			Symbol: req.Symbol, Comment: req.Comment,
		})
		return &domain.TradeResult{
			Retcode: domain.RetcodeDone, Deal: dealTicket, Order: orderTicket,
			Volume: volume, Price: price, Bid: st.tick.Bid, Ask: st.tick.Ask,
			Comment: "done", Request: req,
		}
	}

	// Opening a new position.
	posTicket := s.takeTicket()
	dealTicket := s.takeTicket()
	posType := domain.PositionTypeBuy
	if !req.Type.IsBuy() {
		posType = domain.PositionTypeSell
	}
	s.positions[posTicket] = &domain.PositionInfo{
		Ticket: posTicket, Time: now, TimeUpdate: now,
		Type: posType, Magic: req.Magic, Identifier: posTicket,
		Volume: req.Volume, PriceOpen: price, SL: req.SL, TP: req.TP,
		PriceCurrent: price, Symbol: req.Symbol, Comment: req.Comment,
	}
	s.deals = append(s.deals, domain.DealInfo{
		Ticket: dealTicket, Order: posTicket, Time: now, TimeMsc: now * 1000,
		Entry: 0, Magic: req.Magic, PositionID: posTicket,
		Volume: req.Volume, Price: price,
		Symbol: req.Symbol, Comment: req.Comment,
	})
	return &domain.TradeResult{
		Retcode: domain.RetcodeDone, Deal: dealTicket, Order: posTicket,
		Volume: req.Volume, Price: price, Bid: st.tick.Bid, Ask: st.tick.Ask,
		Comment: "done", Request: req,
	}
}

func (s *Terminal) execPending(req *domain.TradeRequest) *domain.TradeResult {
	if _, ok := s.symbols[req.Symbol]; !ok {
		return reject(req, "unknown symbol")
	}
	if req.Volume <= 0 || req.Price <= 0 {
		return reject(req, "invalid request")
	}
	ticket := s.takeTicket()
	s.pending[ticket] = &domain.OrderInfo{
		Ticket: ticket, TimeSetup: s.now().Unix(),
		Type: req.Type, TypeTime: req.TypeTime, TypeFilling: req.TypeFilling,
		Magic: req.Magic, VolumeInitial: req.Volume, VolumeCurrent: req.Volume,
		PriceOpen: req.Price, SL: req.SL, TP: req.TP,
		Symbol: req.Symbol, Comment: req.Comment,
	}
	return &domain.TradeResult{
		Retcode: domain.RetcodeDone, Order: ticket,
		Volume: req.Volume, Price: req.Price, Comment: "placed", Request: req,
	}
}

func (s *Terminal) execSLTP(req *domain.TradeRequest) *domain.TradeResult {
	pos, ok := s.positions[req.Position]
	if !ok {
		return reject(req, "position not found")
	}
	pos.SL = req.SL
	pos.TP = req.TP
	pos.TimeUpdate = s.now().Unix()
	return &domain.TradeResult{Retcode: domain.RetcodeDone, Comment: "done", Request: req}
}

func (s *Terminal) execRemove(req *domain.TradeRequest) *domain.TradeResult {
	if _, ok := s.pending[req.Order]; !ok {
		return reject(req, "order not found")
	}
	o := s.pending[req.Order]
	delete(s.pending, req.Order)
	now := s.now().Unix()
	o.TimeDone = now
	s.histOrders = append(s.histOrders, *o)
	return &domain.TradeResult{Retcode: domain.RetcodeDone, Order: req.Order, Comment: "canceled", Request: req}
}

func (s *Terminal) OrderCheck(_ context.Context, req *domain.TradeRequest) (*domain.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, terminal.ErrNotConnected
	}
	st, ok := s.symbols[req.Symbol]
	if !ok {
		return &domain.CheckResult{Retcode: domain.RetcodeReject, Comment: "unknown symbol", Request: req}, nil
	}

	price := req.Price
	if price == 0 {
		price = st.tick.Ask
	}
	margin := s.marginFor(&st.info, req.Volume, price)

	res := &domain.CheckResult{
		Balance:     s.account.Balance,
		Equity:      s.account.Equity,
		Margin:      margin,
		MarginFree:  s.account.MarginFree - margin,
		MarginLevel: s.account.MarginLevel,
		Comment:     "done",
		Request:     req,
	}
	if margin > s.account.MarginFree {
		res.Retcode = domain.RetcodeNoMoney
		res.Comment = "no money"
	}
	return res, nil
}

func (s *Terminal) OrderCalcMargin(_ context.Context, _ domain.OrderType, symbol string, volume, price float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, terminal.ErrNotConnected
	}
	st, ok := s.symbols[symbol]
	if !ok {
		return 0, terminal.NewError(domain.CodeNotFound, fmt.Sprintf("symbol %q not found", symbol))
	}
	return s.marginFor(&st.info, volume, price), nil
}

func (s *Terminal) OrderCalcProfit(_ context.Context, orderType domain.OrderType, symbol string, volume, priceOpen, priceClose float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, terminal.ErrNotConnected
	}
	st, ok := s.symbols[symbol]
	if !ok {
		return 0, terminal.NewError(domain.CodeNotFound, fmt.Sprintf("symbol %q not found", symbol))
	}
	contract := st.info.ContractSize
	if contract == 0 {
		contract = 100000
	}
	diff := priceClose - priceOpen
	if !orderType.IsBuy() {
		diff = -diff
	}
	return diff * contract * volume, nil
}

func (s *Terminal) marginFor(info *domain.SymbolInfo, volume, price float64) float64 {
	contract := info.ContractSize
	if contract == 0 {
		contract = 100000
	}
	leverage := s.account.Leverage
	if leverage == 0 {
		leverage = 100
	}
	return volume * contract * price / float64(leverage)
}

func (s *Terminal) profitFor(pos *domain.PositionInfo, closePrice, volume float64) float64 {
	st := s.symbols[pos.Symbol]
	contract := 100000.0
	if st != nil && st.info.ContractSize != 0 {
		contract = st.info.ContractSize
	}
	diff := closePrice - pos.PriceOpen
	if pos.Type == domain.PositionTypeSell {
		diff = -diff
	}
	return diff * contract * volume
}

func reject(req *domain.TradeRequest, comment string) *domain.TradeResult {
	return &domain.TradeResult{Retcode: domain.RetcodeReject, Comment: comment, Request: req}
}

// ---------------------------------------------------------------------------
// Filter matching
// ---------------------------------------------------------------------------

// matchGroup applies the terminal's group syntax: comma-separated glob
// patterns, where a leading '!' excludes matches.
func matchGroup(group, symbol string) bool {
	if group == "" || group == "*" {
		return true
	}
	matched := false
	for _, pat := range strings.Split(group, ",") {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		negate := strings.HasPrefix(pat, "!")
		if negate {
			pat = pat[1:]
		}
		ok, err := path.Match(pat, symbol)
		if err != nil {
			continue
		}
		if ok {
			if negate {
				return false
			}
			matched = true
		}
	}
	return matched
}

func matchPositionFilter(f terminal.PositionFilter, ticket int64, symbol string) bool {
	switch {
	case f.Ticket != 0:
		return ticket == f.Ticket
	case f.Symbol != "":
		return symbol == f.Symbol
	case f.Group != "":
		return matchGroup(f.Group, symbol)
	}
	return true
}

func matchHistoryFilter(f terminal.HistoryFilter, ticket, positionID int64, symbol string, ts int64) bool {
	switch {
	case f.Ticket != 0:
		return ticket == f.Ticket
	case f.Position != 0:
		return positionID == f.Position
	}
	if !f.From.IsZero() && ts < f.From.Unix() {
		return false
	}
	if !f.To.IsZero() && ts > f.To.Unix() {
		return false
	}
	if f.Group != "" && !matchGroup(f.Group, symbol) {
		return false
	}
	return true
}
