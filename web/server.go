// ABOUTME: Web server exposing the CRM as a JSON API and an embedded pipeline board
// ABOUTME: Builds the gin engine, its middleware and routes, and serves until the context ends
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/notify"
	"github.com/harperreed/dealboard/pipeline"
	"go.uber.org/zap"
)

//go:embed static/index.html
var staticFS embed.FS

const shutdownTimeout = 5 * time.Second

// Options wires the server to its data.
type Options struct {
	DB     *db.Database
	Logger *zap.Logger
	Now    func() time.Time
	// Debug keeps gin's debug mode and route dump.
	Debug bool
}

type Server struct {
	db     *db.Database
	board  *pipeline.Board
	logger *zap.Logger
	now    func() time.Time
	engine *gin.Engine
}

// NewServer loads the pipeline board and builds the routes.
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	board := pipeline.NewBoard(opts.DB.Deals, notify.LogNotifier{Logger: logger},
		pipeline.WithLogger(logger), pipeline.WithClock(now))
	if err := board.Load(ctx); err != nil {
		return nil, err
	}

	s := &Server{
		db:     opts.DB,
		board:  board,
		logger: logger,
		now:    now,
	}
	s.engine = s.routes()
	return s, nil
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(s.logger), Recovery(s.logger))

	r.GET("/", s.handleIndex)

	api := r.Group("/api")
	registerResource(api, "contacts", s.contactResource())
	registerResource(api, "companies", s.companyResource())
	registerResource(api, "deals", s.dealResource())
	registerResource(api, "activities", s.activityResource())
	registerResource(api, "quotes", s.quoteResource())
	registerResource(api, "orders", s.orderResource())
	registerResource(api, "tables", s.tableResource())

	api.POST("/deals/:id/move", s.handleMoveDeal)
	api.POST("/quotes/:id/convert", s.handleConvertQuote)
	api.GET("/orders/summary", s.handleOrderSummary)
	api.POST("/tables/:id/fields", s.handleAddField)
	api.PUT("/tables/:id/fields/:name", s.handleUpdateField)
	api.DELETE("/tables/:id/fields/:name", s.handleDeleteField)

	api.GET("/pipeline", s.handlePipeline)
	api.GET("/reports", s.handleReport)
	api.GET("/reports/export", s.handleExport)
	api.GET("/dashboard", s.handleDashboard)
	return r
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "board page missing")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", "http://localhost"+srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}
