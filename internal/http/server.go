package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"scholarhub/internal/auth"
	"scholarhub/internal/catalog"
	"scholarhub/internal/log"
	"scholarhub/internal/middleware/ratelimit"
	"scholarhub/internal/middleware/security"
	"scholarhub/internal/middleware/trace"
	"scholarhub/internal/services"
)

// HealthChecker reports whether the backing store is usable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the API is built from.
type Deps struct {
	Accounts     *services.AccountService
	Applications *services.ApplicationService
	Reports      *services.ReportService
	Tokens       *auth.TokenService
	Catalog      *catalog.Catalog
	Health       HealthChecker
	Logger       *log.Logger

	LoginRatePerMinute int
	TrustProxyHeaders  bool
}

type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.LoginRatePerMinute}),
		detector: security.NewDetector(deps.TrustProxyHeaders),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		trace.NewMiddleware(s.deps.Logger, s.detector.ClientIP).Handler(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			ctx := c.Request.Context()
			log.FromContext(ctx).ErrorContext(ctx, "Panic recovered", "panic", recovered)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "internal_error"})
		}),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Handler(),
		s.detector.Handler(),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "route not found", Code: "not_found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "method_not_allowed"})
	})

	r.GET("/healthz", s.handleHealth)
	r.GET("/readyz", s.handleReady)

	api := r.Group("/api")
	api.GET("/catalog", s.handleCatalog)

	authGroup := api.Group("/auth", s.limiter.Handler(s.detector.ClientIP))
	authGroup.POST("/signup", s.handleSignup)
	authGroup.POST("/login", s.handleLogin)

	user := api.Group("", s.requireAuth())
	user.GET("/me", s.handleMe)
	user.PUT("/me/profile", s.handleUpdateProfile)
	user.GET("/me/photo", s.handlePhoto)
	user.PUT("/me/password", s.handleChangePassword)
	user.POST("/applications", s.handleSubmitApplication)
	user.GET("/applications/mine", s.handleMyApplications)

	admin := api.Group("/admin", s.requireAuth(), s.requireAdmin())
	admin.GET("/applications", s.handleListApplications)
	admin.POST("/applications/:id/status", s.handleTransition)
	admin.POST("/reconcile", s.handleReconcile)
	admin.GET("/reports/dashboard", s.handleDashboard)
	admin.GET("/reports/scholars", s.handleScholarSummary)
	admin.GET("/reports/scholarships", s.handleProgramSummary)
	admin.GET("/reports/scholarships/:name/colleges", s.handleCollegeBreakdown)
	admin.GET("/reports/scholarships/:name/colleges/:college", s.handleDegreeProgramBreakdown)

	return r
}

// Shutdown stops the rate limiter and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Health.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Catalog)
}
