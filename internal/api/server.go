// Package api is the HTTP dispatch layer: each data route performs one store
// operation and answers JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/store"
)

// Options configures the dispatch layer.
type Options struct {
	// AllowedOrigin is the single origin browsers may call from.
	AllowedOrigin string
	// CookieName carries the session token.
	CookieName string
	// StoreTimeout bounds each store call; zero leaves only the request context.
	StoreTimeout time.Duration
}

// Server holds dependencies for the API endpoints.
type Server struct {
	R      *gin.Engine
	store  store.Store
	tokens *auth.Tokens
	logger *zap.Logger
	opts   Options
}

// NewServer wires middleware and routes over st.
func NewServer(st store.Store, tokens *auth.Tokens, logger *zap.Logger, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "token"
	}

	g := gin.New()
	g.Use(requestID())
	g.Use(requestLogger(logger))
	g.Use(gin.Recovery())
	g.Use(cors(opts.AllowedOrigin))

	s := &Server{R: g, store: st, tokens: tokens, logger: logger, opts: opts}

	// Authentication routes share the root mount.
	g.POST("/", s.verifyUser)
	g.POST("/signup", s.signup)
	g.POST("/login", s.login)
	g.POST("/logout", s.logout)

	g.GET("/health", s.health)
	g.GET("/allholdings", s.listHoldings)
	g.GET("/allpositions", s.listPositions)
	g.POST("/newOrder", s.newOrder)
	g.GET("/orders", s.listOrders)

	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.R.ServeHTTP(w, r)
}

// storeContext derives the context for one store call from the request.
func (s *Server) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), s.opts.StoreTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

func (s *Server) internalError(where string, err error) {
	s.logger.Error("internal_error", zap.String("where", where), zap.Error(err))
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := s.storeContext(c)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.internalError("Ping", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
