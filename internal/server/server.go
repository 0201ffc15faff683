// Package server exposes the store's aggregates as a read-only JSON API
// for the dashboard. It never touches the pipeline.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/store"
)

const recentLimit = 50

// AggregateReader is the read side of the store the API needs.
type AggregateReader interface {
	AggregateByLabel(ctx context.Context) ([]store.LabelCount, error)
	AggregateByHour(ctx context.Context) ([]store.BucketCount, error)
	RecentByLabel(ctx context.Context, label models.Label, keyword string, limit int) ([]models.StoredTweet, error)
}

type Server struct {
	echo  *echo.Echo
	store AggregateReader
}

func New(reader AggregateReader) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, store: reader}

	e.GET("/health", s.handleHealth)
	e.GET("/api/summary", s.handleSummary)
	e.GET("/api/trend", s.handleTrend)
	e.GET("/api/tweets", s.handleTweets)

	return s
}

// Handler exposes the routed mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	slog.Info("[Server] Listening", slog.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(c echo.Context) error {
	counts, err := s.store.AggregateByLabel(c.Request().Context())
	if err != nil {
		slog.Error("[Server] Summary query failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "summary unavailable")
	}
	return c.JSON(http.StatusOK, counts)
}

func (s *Server) handleTrend(c echo.Context) error {
	buckets, err := s.store.AggregateByHour(c.Request().Context())
	if err != nil {
		slog.Error("[Server] Trend query failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "trend unavailable")
	}
	if buckets == nil {
		buckets = []store.BucketCount{}
	}
	return c.JSON(http.StatusOK, buckets)
}

func (s *Server) handleTweets(c echo.Context) error {
	label := models.Label(c.QueryParam("label"))
	switch label {
	case "", models.LabelPositive, models.LabelNegative, models.LabelNeutral:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown label")
	}

	tweets, err := s.store.RecentByLabel(c.Request().Context(), label, c.QueryParam("q"), recentLimit)
	if err != nil {
		slog.Error("[Server] Tweets query failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "tweets unavailable")
	}
	if tweets == nil {
		tweets = []models.StoredTweet{}
	}
	return c.JSON(http.StatusOK, tweets)
}
