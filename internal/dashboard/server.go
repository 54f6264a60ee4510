// Package dashboard serves the analysis menu, pages, chart images and a
// JSON API over HTTP.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/agridash/internal/analysis"
	"github.com/KaramelBytes/agridash/internal/dataset"
	"github.com/KaramelBytes/agridash/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// DatasetSource yields the shared dataset. *dataset.Cache satisfies it.
type DatasetSource interface {
	Get() (*dataset.Dataset, error)
}

// Options configures the server.
type Options struct {
	Analysis analysis.Options
	Image    render.Options
	// StartYear and EndYear title pages when the dataset is unavailable.
	StartYear int
	EndYear   int
	Logger    *slog.Logger
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server is the dashboard HTTP application.
type Server struct {
	src    DatasetSource
	opt    Options
	log    *slog.Logger
	engine *gin.Engine
}

// New builds the router. Nothing is loaded until the first request.
func New(src DatasetSource, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.ShutdownTimeout <= 0 {
		opt.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{src: src, opt: opt, log: opt.Logger}

	engine := gin.New()
	engine.Use(requestLogger(s.log), recovery(s.log))
	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
	engine.SetHTMLTemplate(tmpl)
	s.RegisterRoutes(engine)
	s.engine = engine
	return s
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler { return s.engine }

// RegisterRoutes mounts every route on router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.index)
	router.GET("/healthz", s.health)
	router.GET("/:selection", s.page)
	router.GET("/charts/:selection/:chart", s.chartImage)

	api := router.Group("/api/v1")
	api.GET("/selections", s.listSelections)
	api.GET("/analyses/:selection", s.getAnalysis)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("dashboard shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opt.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
