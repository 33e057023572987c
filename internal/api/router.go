// Package api exposes the todo services over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/nhle/todocal/internal/auth"
	"github.com/nhle/todocal/internal/logging"
	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/service"
	"github.com/nhle/todocal/internal/store"
)

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Todos         *service.TodoService
	Queries       *service.QueryService
	Tags          *service.TagService
	Users         *service.UserService
	Notifications store.NotificationStore
	Tokens        *auth.Tokens

	// Ping reports whether storage is reachable, for /health.
	Ping func(ctx context.Context) error

	Logger      *log.Logger
	CORSOrigins []string
	RateLimit   model.RateLimitConfig
}

type handlers struct {
	Deps
}

// NewRouter builds the gin engine with the full middleware stack.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	h := &handlers{Deps: deps}

	r := gin.New()
	r.Use(RecoveryWithLog(deps.Logger))
	r.Use(RequestLogger(deps.Logger))

	if deps.RateLimit.RequestsPerMin > 0 {
		limit := rate.Limit(float64(deps.RateLimit.RequestsPerMin) / 60.0)
		r.Use(RateLimiter(limit, deps.RateLimit.Burst))
	}

	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", h.health)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.register)
		authRoutes.POST("/login", h.login)
		authRoutes.GET("/me", Authenticate(deps.Tokens), h.me)
	}

	protected := api.Group("")
	protected.Use(Authenticate(deps.Tokens))
	{
		todos := protected.Group("/todos")
		{
			todos.GET("", h.listRoots)
			todos.POST("", h.createTodo)
			todos.PUT("/reorder", h.reorderTodos)
			todos.GET("/status/:completed", h.listByStatus)
			todos.GET("/date/:date", h.listByDate)
			todos.GET("/week", h.listWeek)
			todos.GET("/month", h.listMonth)
			todos.GET("/range", h.listRange)
			todos.GET("/overdue", h.listOverdue)
			todos.GET("/no-date", h.listWithoutDueDate)
			todos.GET("/tag/:tagId", h.listByTag)
			todos.GET("/calendar-counts", h.calendarCounts)
			todos.GET("/statistics", h.statistics)

			todos.GET("/:id", h.getTodo)
			todos.GET("/:id/subtasks", h.listSubtasks)
			todos.PUT("/:id", h.updateTodo)
			todos.PATCH("/:id/toggle", h.toggleTodo)
			todos.PATCH("/:id/due-date", h.updateDueDate)
			todos.DELETE("/:id", h.deleteTodo)
		}

		tags := protected.Group("/tags")
		{
			tags.GET("", h.listTags)
			tags.POST("", h.createTag)
			tags.PUT("/:id", h.updateTag)
			tags.DELETE("/:id", h.deleteTag)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.listNotifications)
			notifications.PATCH("/:id/read", h.markNotificationRead)
		}
	}

	return r
}

func (h *handlers) health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			h.Logger.Warn("health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Serve runs handler on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg model.ServerConfig, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
