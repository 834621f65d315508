// Package api exposes classification and rule management over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hurttlocker/wastesort/internal/api/docs"
	"github.com/hurttlocker/wastesort/internal/classify"
	"github.com/hurttlocker/wastesort/internal/predict"
	"github.com/hurttlocker/wastesort/internal/rules"
)

// Defaults for Config.
const (
	DefaultMaxUploadBytes = 16 << 20
	DefaultVersion        = "2.0.0"
	timestampLayout       = "2006-01-02 15:04:05"
)

// Config wires the server to its collaborators. Images may be nil when image
// classification is not configured.
type Config struct {
	Store    *rules.Store
	Resolver *classify.Resolver
	Images   *predict.Service

	MaxUploadBytes int64
	Version        string

	// DefaultThreshold applies when an upload names no threshold. Nil means
	// predict.DefaultThreshold; zero is a valid setting.
	DefaultThreshold *float64

	// Now stamps responses; tests replace it.
	Now func() time.Time
}

// Server is the HTTP boundary.
type Server struct {
	cfg       Config
	threshold float64
	engine    *gin.Engine
}

// NewServer builds the router.
func NewServer(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	threshold := predict.DefaultThreshold
	if cfg.DefaultThreshold != nil {
		threshold = *cfg.DefaultThreshold
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{cfg: cfg, threshold: threshold}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(), gin.Recovery(), cors())

	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Version = s.cfg.Version

	api := r.Group("/api")
	{
		api.POST("/classify", s.handleClassify)
		api.POST("/batch-classify", s.handleBatchClassify)
		api.GET("/rules", s.handleListRules)
		api.POST("/rules", s.handleAddRule)
		api.PUT("/rules", s.handleUpdateRule)
		api.DELETE("/rules", s.handleDeleteRule)
		api.GET("/statistics", s.handleStatistics)
		api.GET("/similar-items", s.handleSimilarItems)
		api.POST("/classify-image", s.handleClassifyImage)
		api.GET("/image-status", s.handleImageStatus)
		api.GET("/info", s.handleInfo)
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "endpoint not found: " + c.Request.URL.Path})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	r.HandleMethodNotAllowed = true
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) timestamp() string {
	return s.cfg.Now().Format(timestampLayout)
}
