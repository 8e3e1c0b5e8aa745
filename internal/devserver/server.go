// Package devserver runs local stand-ins for the account and model services
// so the client can be exercised without the real backends. Answers are
// deterministic fixtures, not model output.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/carescope/internal/explain"
)

// Options configures a Server.
type Options struct {
	// Secret signs session tokens. Empty picks a fixed development key.
	Secret string
	// TokenTTL is how long issued tokens stay valid. Zero means one hour.
	TokenTTL time.Duration
	// Explainer writes thyroid and scan explanations. Nil uses the fixed
	// fallback texts.
	Explainer *explain.Service
	// Quiet drops the per-request access log.
	Quiet bool
}

// Server holds the in-memory state behind the routes.
type Server struct {
	secret    []byte
	ttl       time.Duration
	explainer *explain.Service
	quiet     bool
	now       func() time.Time

	mu       sync.RWMutex
	accounts map[string]*account // keyed by lower-cased email
	uploads  map[string]upload
}

const devSecret = "carescope-dev-secret"

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		secret:    []byte(opts.Secret),
		ttl:       opts.TokenTTL,
		explainer: opts.Explainer,
		quiet:     opts.Quiet,
		now:       time.Now,
		accounts:  make(map[string]*account),
		uploads:   make(map[string]upload),
	}
	if len(s.secret) == 0 {
		s.secret = []byte(devSecret)
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}
	return s
}

// Router wires every route onto one engine. The real services listen on
// separate ports; their paths do not collide so one engine serves them all.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	if !s.quiet {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery(), limitBodySize(16<<20))

	// account service
	router.POST("/api/auth/register", s.register)
	router.POST("/api/auth/login", s.login)
	router.GET("/api/user", s.requireToken, s.currentUser)

	// symptom scorer and thyroid classifier
	router.POST("/api/assess", s.assess)
	router.POST("/api/predict", s.predictThyroid)
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// lung model
	router.POST("/predict_form", s.predictLung)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// brain scan model
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Brain Tumor Detection API is running. POST an image to analyze."})
	})
	router.POST("/", s.classifyScan)
	router.GET("/uploads/:name", s.serveUpload)

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, s *Server) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("devserver: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: graceful shutdown failed: %v\n", err)
	}
	return nil
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
