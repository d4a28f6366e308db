// Package api exposes connected terminal sessions over HTTP: account and
// market queries, trading, and the execution journal. Responses use the
// same ok/data/error envelope as the terminal gateway, so tooling can speak
// to either end.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gomt5/internal/journal"
	"gomt5/internal/logging"
	"gomt5/pkg/gomt5"
)

// Server fronts a session manager with a REST API.
type Server struct {
	manager *gomt5.Manager
	journal *journal.Journal
	log     *logrus.Entry
}

// NewServer creates a Server over the given sessions. The journal is
// optional.
func NewServer(manager *gomt5.Manager, j *journal.Journal, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		manager: manager,
		journal: j,
		log:     logger.WithField("component", "api"),
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api/v1")

	sessions := api.Group("/sessions")
	sessions.GET("", s.handleSessionsList)
	sessions.POST("/:name/switch", s.handleSessionSwitch)

	api.GET("/account", s.handleAccount)
	api.GET("/symbols", s.handleSymbols)
	api.GET("/symbols/:symbol", s.handleSymbolInfo)
	api.GET("/symbols/:symbol/tick", s.handleSymbolTick)
	api.GET("/bars", s.handleBars)
	api.GET("/positions", s.handlePositions)
	api.POST("/positions/:ticket/close", s.handlePositionClose)
	api.POST("/positions/:ticket/modify", s.handlePositionModify)
	api.GET("/orders", s.handleOrders)
	api.POST("/orders", s.handleOrderSend)
	api.DELETE("/orders/:ticket", s.handleOrderCancel)
	api.GET("/history/orders", s.handleHistoryOrders)
	api.GET("/history/deals", s.handleHistoryDeals)
	api.GET("/journal", s.handleJournal)

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("api listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
