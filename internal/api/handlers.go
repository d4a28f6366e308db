package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gomt5/internal/domain"
	"gomt5/internal/journal"
	"gomt5/internal/terminal"
	"gomt5/pkg/gomt5"
)

// envelope mirrors the gateway wire format.
type envelope struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{OK: true, Data: data})
}

func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var verr *terminal.ValidationError
	switch {
	case errors.Is(err, terminal.ErrNotConnected):
		status = http.StatusServiceUnavailable
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
	}
	c.JSON(status, envelope{OK: false, Error: &apiError{
		Code:    terminal.ErrorCode(err),
		Message: err.Error(),
	}})
}

// session resolves the target session: ?session=name, or the current one.
func (s *Server) session(c *gin.Context) (*gomt5.Client, bool) {
	var client *gomt5.Client
	var err error
	if name := c.Query("session"); name != "" {
		client, err = s.manager.Get(name)
	} else {
		client, err = s.manager.Current()
	}
	if err != nil {
		respondErr(c, err)
		return nil, false
	}
	return client, true
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func (s *Server) handleSessionsList(c *gin.Context) {
	current := ""
	if client, err := s.manager.Current(); err == nil {
		current = client.Name()
	}
	respond(c, gin.H{"sessions": s.manager.List(), "current": current})
}

func (s *Server) handleSessionSwitch(c *gin.Context) {
	if err := s.manager.Switch(c.Param("name")); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"current": c.Param("name")})
}

// ---------------------------------------------------------------------------
// Account and symbols
// ---------------------------------------------------------------------------

func (s *Server) handleAccount(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	acc, err := client.Account().Info(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, acc)
}

func (s *Server) handleSymbols(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	symbols, err := client.Symbols().Symbols(c.Request.Context(), c.Query("group"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, symbols)
}

func (s *Server) handleSymbolInfo(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	info, err := client.Symbols().Info(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, info)
}

func (s *Server) handleSymbolTick(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	tick, err := client.Symbols().Tick(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, tick)
}

// ---------------------------------------------------------------------------
// Market history
// ---------------------------------------------------------------------------

func (s *Server) handleBars(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	symbol := c.Query("symbol")
	if symbol == "" {
		respondErr(c, &terminal.ValidationError{Reason: "symbol is required"})
		return
	}
	tf, err := parseTimeframe(c.DefaultQuery("timeframe", "H1"))
	if err != nil {
		respondErr(c, err)
		return
	}
	q := terminal.BarsQuery{
		From:     qTime(c, "from"),
		To:       qTime(c, "to"),
		StartPos: qInt(c, "start_pos"),
		Count:    qInt(c, "count"),
	}
	bars, err := client.History().Bars(c.Request.Context(), symbol, tf, q)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, bars)
}

// ---------------------------------------------------------------------------
// Positions and orders
// ---------------------------------------------------------------------------

func (s *Server) handlePositions(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	positions, err := client.Positions().Positions(c.Request.Context(), terminal.PositionFilter{
		Symbol: c.Query("symbol"),
		Group:  c.Query("group"),
		Ticket: qInt64(c, "ticket"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, positions)
}

func (s *Server) handleOrders(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	orders, err := client.Positions().Orders(c.Request.Context(), terminal.PositionFilter{
		Symbol: c.Query("symbol"),
		Group:  c.Query("group"),
		Ticket: qInt64(c, "ticket"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, orders)
}

func (s *Server) handleOrderSend(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	var req domain.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &terminal.ValidationError{Reason: err.Error()})
		return
	}
	res, err := client.Executor().Send(c.Request.Context(), &req)
	// A rejected request still carries the trade server's reply; let the
	// caller read the retcode.
	if res != nil {
		respond(c, res)
		return
	}
	respondErr(c, err)
}

type closeBody struct {
	Volume    float64 `json:"volume"`
	Deviation int     `json:"deviation"`
}

func (s *Server) handlePositionClose(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	ticket, err := strconv.ParseInt(c.Param("ticket"), 10, 64)
	if err != nil {
		respondErr(c, &terminal.ValidationError{Reason: "bad ticket"})
		return
	}
	var body closeBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondErr(c, &terminal.ValidationError{Reason: err.Error()})
			return
		}
	}
	res, err := client.Executor().ClosePosition(c.Request.Context(), ticket, body.Volume, body.Deviation)
	if res != nil {
		respond(c, res)
		return
	}
	respondErr(c, err)
}

// modifyBody uses pointers so an absent field keeps the position's current
// stop level.
type modifyBody struct {
	SL *float64 `json:"sl"`
	TP *float64 `json:"tp"`
}

func (s *Server) handlePositionModify(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	ticket, err := strconv.ParseInt(c.Param("ticket"), 10, 64)
	if err != nil {
		respondErr(c, &terminal.ValidationError{Reason: "bad ticket"})
		return
	}
	var body modifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErr(c, &terminal.ValidationError{Reason: err.Error()})
		return
	}
	res, err := client.Executor().Modify(c.Request.Context(), ticket, body.SL, body.TP)
	if res != nil {
		respond(c, res)
		return
	}
	respondErr(c, err)
}

func (s *Server) handleOrderCancel(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	ticket, err := strconv.ParseInt(c.Param("ticket"), 10, 64)
	if err != nil {
		respondErr(c, &terminal.ValidationError{Reason: "bad ticket"})
		return
	}
	res, err := client.Executor().Cancel(c.Request.Context(), ticket)
	if res != nil {
		respond(c, res)
		return
	}
	respondErr(c, err)
}

// ---------------------------------------------------------------------------
// Account history and journal
// ---------------------------------------------------------------------------

func (s *Server) historyFilter(c *gin.Context) terminal.HistoryFilter {
	return terminal.HistoryFilter{
		From:     qTime(c, "from"),
		To:       qTime(c, "to"),
		Group:    c.Query("group"),
		Ticket:   qInt64(c, "ticket"),
		Position: qInt64(c, "position"),
	}
}

func (s *Server) handleHistoryOrders(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	orders, err := client.History().Orders(c.Request.Context(), s.historyFilter(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"total": len(orders), "orders": orders})
}

func (s *Server) handleHistoryDeals(c *gin.Context) {
	client, ok := s.session(c)
	if !ok {
		return
	}
	deals, err := client.History().Deals(c.Request.Context(), s.historyFilter(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"total": len(deals), "deals": deals})
}

func (s *Server) handleJournal(c *gin.Context) {
	if s.journal == nil {
		c.JSON(http.StatusNotFound, envelope{OK: false, Error: &apiError{Message: "journal not configured"}})
		return
	}
	var (
		entries []journal.Entry
		err     error
	)
	switch {
	case c.Query("magic") != "":
		entries, err = s.journal.ByMagic(c.Request.Context(), qInt64(c, "magic"), qInt(c, "limit"))
	case c.Query("symbol") != "":
		entries, err = s.journal.BySymbol(c.Request.Context(), c.Query("symbol"), qInt(c, "limit"))
	default:
		entries, err = s.journal.List(c.Request.Context(), c.Query("session"), qInt(c, "limit"))
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, entries)
}

// ---------------------------------------------------------------------------
// Query helpers
// ---------------------------------------------------------------------------

func parseTimeframe(s string) (domain.Timeframe, error) {
	tf, ok := domain.ParseTimeframe(s)
	if !ok {
		return 0, &terminal.ValidationError{Reason: "unknown timeframe " + s}
	}
	return tf, nil
}

func qInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func qInt64(c *gin.Context, key string) int64 {
	n, _ := strconv.ParseInt(c.Query(key), 10, 64)
	return n
}

// qTime parses a Unix-seconds query parameter. Missing or zero means the
// zero time.
func qTime(c *gin.Context, key string) time.Time {
	n, _ := strconv.ParseInt(c.Query(key), 10, 64)
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}
