// Package api provides rest-like server serving list feed
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth_chi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/pkg/errors"

	"github.com/umputun/list-feed/app/feed"
	"github.com/umputun/list-feed/app/proc"
)

// FeedMaker makes rss document
type FeedMaker interface {
	Feed(ctx context.Context) (*feed.Rss2, error)
}

// Server provides HTTP API
type Server struct {
	Version string
	Feeds   FeedMaker
	Limit   float64 // requests per second per client, 5 if not set

	metrics *metrics
	httpSrv *http.Server
}

// Run starts http server and blocks until ctx canceled
func (s *Server) Run(ctx context.Context, port int) error {
	log.Printf("[INFO] starting server on port %d", port)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] http shutdown error, %v", err)
		}
		log.Print("[INFO] http server stopped")
	}()

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

func (s *Server) routes() chi.Router {
	if s.metrics == nil {
		s.metrics = newMetrics()
	}
	limit := s.Limit
	if limit <= 0 {
		limit = 5
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.RealIP, rest.Recoverer(log.Default()))
	router.Use(middleware.Throttle(1000), middleware.Timeout(60*time.Second))
	router.Use(rest.AppInfo("list-feed", "umputun", s.Version), rest.Ping)
	router.Use(logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler)

	router.Handle("/metrics", s.metrics.handler())

	router.Group(func(r chi.Router) {
		r.Use(tollbooth_chi.LimitHandler(tollbooth.NewLimiter(limit, nil)))
		r.Get("/", s.getFeedCtrl)
	})
	return router
}

// GET / - returns rss of the configured list
func (s *Server) getFeedCtrl(w http.ResponseWriter, r *http.Request) {
	st := time.Now()
	rss, err := s.Feeds.Feed(r.Context())
	if err != nil {
		code := errorCode(err)
		s.metrics.observe(code, 0, time.Since(st))
		log.Printf("[WARN] failed to make feed, %v", err)
		render.Status(r, code)
		render.JSON(w, r, rest.JSON{"error": err.Error()})
		return
	}

	data, err := rss.Marshal()
	if err != nil {
		s.metrics.observe(http.StatusInternalServerError, 0, time.Since(st))
		log.Printf("[WARN] failed to marshal feed, %v", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, rest.JSON{"error": err.Error()})
		return
	}

	s.metrics.observe(http.StatusOK, len(rss.ItemList), time.Since(st))
	w.Header().Set("Content-Type", "application/rss+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[WARN] failed to send response to %s, %v", r.RemoteAddr, err)
	}
}

// errorCode maps feed failure to http status. Broken status is our problem, anything else is upstream's.
func errorCode(err error) int {
	switch {
	case errors.Is(err, feed.ErrNoAuthor):
		return http.StatusInternalServerError
	case errors.Is(err, proc.ErrAuth):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
