// Package backend serves the board over HTTP.
package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/skypies/util/widget"
	"go.uber.org/zap"

	solari "github.com/skypies/solari1090"
	"github.com/skypies/solari1090/metrics"
)

const (
	APIUrl     = "/api"
	HealthzUrl = "/healthz"
	MetricsUrl = "/metrics"
)

// Board is what the HTTP layer needs from the engine.
type Board interface {
	RunWithRows(ctx context.Context, mode solari.Mode, maxRows int) (solari.Envelope, error)
}

type Server struct {
	echo    *echo.Echo
	board   Board
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewServer(board Board, m *metrics.Collector, logger *zap.Logger) (*Server, error) {
	if board == nil {
		return nil, errors.New("backend: board is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)))
			return err
		}
	})

	s := &Server{echo: e, board: board, metrics: m, logger: logger}

	e.GET(APIUrl, s.handleAPI)
	e.GET(HealthzUrl, s.handleHealthz)
	e.GET(MetricsUrl, echo.WrapHandler(m.Handler()))

	return s, nil
}

func (s *Server) Handler() http.Handler { return s.echo }

// handleAPI runs one cycle. ?mode=arrivals|departures (anything else is departures),
// and ?rows=N shows fewer rows than the configured maximum.
func (s *Server) handleAPI(c echo.Context) error {
	r := c.Request()
	mode := solari.ParseMode(c.QueryParam("mode"))
	rows := int(widget.FormValueInt64(r, "rows"))

	env, err := s.board.RunWithRows(r.Context(), mode, rows)
	if err != nil {
		return c.JSON(http.StatusBadGateway, env)
	}
	return c.JSON(http.StatusOK, env)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
