// Package server exposes the service operations as a local HTTP/JSON bridge
// for a webview shell.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-times/internal/geo"
	"github.com/smokyabdulrahman/salah-times/internal/prayer"
	"github.com/smokyabdulrahman/salah-times/internal/service"
)

// Config controls the listener and CORS policy.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server is the HTTP bridge.
type Server struct {
	log    zerolog.Logger
	svc    *service.Service
	cfg    Config
	engine *gin.Engine
}

// New builds the router. Call Run to start listening.
func New(log zerolog.Logger, svc *service.Service, cfg Config) *Server {
	s := &Server{
		log: log.With().Str("module", "server").Logger(),
		svc: svc,
		cfg: cfg,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	s.registerRoutes(r)
	s.engine = r
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/location/auto", s.locationAuto)
	api.GET("/location/search", s.locationSearch)
	api.GET("/timings", s.timings)
	api.POST("/next", s.next)
}

func (s *Server) locationAuto(c *gin.Context) {
	loc, err := s.svc.LocationAuto(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (s *Server) locationSearch(c *gin.Context) {
	loc, err := s.svc.SearchCity(c.Request.Context(), c.Query("q"))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, geo.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (s *Server) timings(c *gin.Context) {
	lat, err := parseCoord(c.Query("lat"), 90)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat: " + err.Error()})
		return
	}
	lon, err := parseCoord(c.Query("lon"), 180)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon: " + err.Error()})
		return
	}

	times, err := s.svc.PrayerTimes(c.Request.Context(), lat, lon)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, times)
}

func (s *Server) next(c *gin.Context) {
	var times prayer.Times
	if err := c.ShouldBindJSON(&times); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name, at, countdown := s.svc.NextPrayer(times)
	c.JSON(http.StatusOK, []string{name, at, countdown})
}

func parseCoord(raw string, limit float64) (float64, error) {
	if raw == "" {
		return 0, errors.New("required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if v < -limit || v > limit {
		return 0, errors.Errorf("must be between %g and %g", -limit, limit)
	}
	return v, nil
}
