package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alexanderramin/promptcanvas/internal/classifier"
	"github.com/alexanderramin/promptcanvas/internal/personalization"
	"github.com/alexanderramin/promptcanvas/internal/plan"
	"github.com/alexanderramin/promptcanvas/internal/recipe"
	"github.com/alexanderramin/promptcanvas/internal/session"
	"github.com/alexanderramin/promptcanvas/internal/signal"
)

// Options configures the HTTP server.
type Options struct {
	Addr            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server hosts the canvas API.
type Server struct {
	opts Options
	http *http.Server
	log  *zap.Logger
}

// Handlers bundles the services the API fronts.
type Handlers struct {
	Resolver   *signal.Resolver
	Classifier *classifier.Classifier
	Engine     *personalization.Engine
	Generator  *plan.Generator
	Sessions   *session.Store
	Registry   *recipe.Registry
	Log        *zap.Logger
}

// New builds a Server with its routes registered.
func New(opts Options, h *Handlers) *Server {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	router := NewRouter(opts, h)
	return &Server{
		opts: opts,
		log:  h.Log,
		http: &http.Server{
			Addr:         opts.Addr,
			Handler:      router,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
	}
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(opts Options, h *Handlers) *gin.Engine {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.Log))

	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/recipes", h.listRecipes)
		api.POST("/canvas/classify", h.classify)
		api.POST("/canvas/plan", h.planNext)

		api.POST("/sessions", h.createSession)
		api.GET("/sessions/:id", h.getSession)
		api.PATCH("/sessions/:id", h.updateSession)
		api.DELETE("/sessions/:id", h.deleteSession)
		api.POST("/sessions/:id/events", h.appendEvent)
	}

	return router
}

// Run serves until ctx is cancelled, then drains with the shutdown
// timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.opts.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("http server draining")
	return s.http.Shutdown(shutdownCtx)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
