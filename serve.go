package tropiiify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// Server previews an export directory over HTTP.
type Server struct {
	Echo *echo.Echo

	app     *App
	root    string
	log     zerolog.Logger
	limiter *RateLimiter
}

// NewServer creates a preview server for the export written to root.
func (a *App) NewServer(root string) (*Server, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("tropiiify: serve: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("tropiiify: serve: %s is not a directory", root)
	}
	s := &Server{
		Echo: echo.New(),
		app:  a,
		root: root,
		log:  a.Log.With().Str("component", "server").Logger(),
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Filesystem = os.DirFS(root)
	if a.Config.RateLimit > 0 {
		s.limiter = NewRateLimiter(a.Config.RateLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	e := s.Echo
	e.GET("/metrics", s.handleMetrics())
	e.GET("/*", s.handleFile)
	e.HEAD("/*", s.handleFile)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.Echo.Start(s.app.Config.Addr)
	}()
	s.log.Info().Str("addr", s.app.Config.Addr).Str("root", s.root).Msg("serving export")

	select {
	case err := <-errc:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer s.close()
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("tropiiify: shutdown: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}

func (s *Server) close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
