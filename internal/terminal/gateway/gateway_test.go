package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomt5/internal/domain"
	"gomt5/internal/terminal"
)

func writeOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": json.RawMessage(raw)})
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":    false,
		"error": map[string]any{"code": code, "message": msg},
	})
}

func TestAccountInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/account", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeOK(w, domain.AccountInfo{Login: 12345, Balance: 9876.5, Currency: "USD"})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	acct, err := c.AccountInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12345), acct.Login)
	assert.Equal(t, 9876.5, acct.Balance)
}

func TestInitializeSendsParams(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/initialize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeOK(w, nil)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	err := c.Initialize(context.Background(), terminal.InitOptions{
		Path:    `C:\mt5\terminal64.exe`,
		Login:   17221085,
		Server:  "MetaQuotes-Demo",
		Timeout: time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(17221085), got["login"])
	assert.Equal(t, "MetaQuotes-Demo", got["server"])
	assert.Equal(t, float64(60000), got["timeout_ms"])
}

func TestInitializeErrorCarriesTerminalCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, domain.CodeIPCSendFailed, "IPC send failed")
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	err := c.Initialize(context.Background(), terminal.InitOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.CodeIPCSendFailed, terminal.ErrorCode(err))
}

func TestBarsQueryParams(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "EURUSD", q.Get("symbol"))
		assert.Equal(t, "16385", q.Get("timeframe")) // H1
		assert.Equal(t, "1704067200", q.Get("from"))
		assert.Equal(t, "100", q.Get("count"))
		writeOK(w, []domain.Bar{{Time: from.Unix(), Open: 1.1, Close: 1.2}})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	bars, err := c.Bars(context.Background(), "EURUSD", domain.TimeframeH1, terminal.BarsQuery{From: from, Count: 100})
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, from.Unix(), bars[0].Time)
}

func TestHistoryFilterPrecedence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		// Ticket wins over position and range.
		assert.Equal(t, "42", q.Get("ticket"))
		assert.Empty(t, q.Get("position"))
		assert.Empty(t, q.Get("from"))
		writeOK(w, []domain.DealInfo{})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := c.HistoryDeals(context.Background(), terminal.HistoryFilter{
		Ticket:   42,
		Position: 7,
		From:     time.Now().Add(-time.Hour),
		To:       time.Now(),
	})
	require.NoError(t, err)
}

func TestOrderSendRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.TradeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.TradeActionDeal, req.Action)
		assert.Equal(t, "EURUSD", req.Symbol)
		writeOK(w, domain.TradeResult{Retcode: domain.RetcodeDone, Order: 777, Deal: 778, Price: 1.1002})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	res, err := c.OrderSend(context.Background(), &domain.TradeRequest{
		Action: domain.TradeActionDeal,
		Symbol: "EURUSD",
		Volume: 0.1,
		Type:   domain.OrderTypeBuy,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RetcodeDone, res.Retcode)
	assert.Equal(t, int64(777), res.Order)
}

func TestBridgeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bridge down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := c.Version(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
