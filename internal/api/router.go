package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/thanksrelay/relay/internal/auth"
	"github.com/thanksrelay/relay/internal/cache"
	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/live"
	"github.com/thanksrelay/relay/internal/relay"
	"github.com/thanksrelay/relay/pkg/config"
	"github.com/thanksrelay/relay/pkg/logging"
)

// Post creation is throttled per IP: one post every 3 seconds.
const (
	postRateRPS   = 1.0 / 3.0
	postRateBurst = 1
)

// Router sets up API routes
type Router struct {
	db      *db.DB
	cache   *cache.Cache
	hub     *live.Hub
	cfg     *config.Config
	auth    *AuthHandler
	posts   *PostHandler
	tasks   *TaskHandler
	hidden  *HiddenHandler
	profile *ProfileHandler
	authSvc *auth.Service
	logger  *zap.Logger
}

// NewRouter creates a new API router wired to the database, cache and
// live feed hub
func NewRouter(database *db.DB, redisCache *cache.Cache, hub *live.Hub, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)
	users := db.NewUserRepository(repo)
	posts := db.NewPostRepository(repo)
	tasks := db.NewTaskRepository(repo)
	hidden := db.NewHiddenRepository(repo)

	var notifier relay.Notifier
	if hub != nil {
		notifier = live.NewFeed(hub, posts)
	}

	postService := relay.NewPostService(database.DB, posts, notifier)
	taskService := relay.NewTaskService(database.DB, tasks)
	hiddenService := relay.NewHiddenService(database.DB, hidden, posts, users)
	authService := auth.NewService(users, &cfg.Auth)

	return &Router{
		db:      database,
		cache:   redisCache,
		hub:     hub,
		cfg:     cfg,
		auth:    NewAuthHandler(authService),
		posts:   NewPostHandler(postService, redisCache, &cfg.Ranking),
		tasks:   NewTaskHandler(taskService),
		hidden:  NewHiddenHandler(hiddenService),
		profile: NewProfileHandler(postService),
		authSvc: authService,
		logger:  logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{r.cfg.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// Live feed subscription
	if r.hub != nil {
		engine.GET("/ws", func(c *gin.Context) {
			live.ServeWs(r.hub, c.Writer, c.Request)
		})
	}

	limiter := NewIPRateLimiter(rate.Limit(postRateRPS), postRateBurst)

	api := engine.Group("/api")
	{
		api.POST("/auth/register", r.auth.Register)
		api.POST("/auth/login", r.auth.Login)
		api.POST("/auth/anonymous", r.auth.Anonymous)

		authed := api.Group("", AuthMiddleware(r.authSvc))
		{
			authed.GET("/posts", r.posts.List)
			authed.GET("/posts/thanks", r.posts.ListThanks)
			authed.POST("/posts", RateLimitMiddleware(limiter), r.posts.CreateThanks)
			authed.GET("/posts/:id", r.posts.Get)
			authed.DELETE("/posts/:id", r.posts.Delete)
			authed.GET("/posts/:id/chain", r.posts.Chain)
			authed.GET("/posts/:id/children", r.posts.Children)
			authed.POST("/posts/:id/actions", RateLimitMiddleware(limiter), r.posts.CreateAction)
			authed.POST("/posts/:id/like", r.posts.Like)

			authed.GET("/ranking", r.posts.Ranking)
			authed.GET("/search", r.posts.Search)

			authed.POST("/posts/:id/task", r.tasks.Save)
			authed.GET("/posts/:id/task", r.tasks.IsSaved)
			authed.GET("/tasks", r.tasks.List)
			authed.POST("/tasks/:id/complete", r.tasks.Complete)
			authed.DELETE("/tasks/:id", r.tasks.Delete)

			authed.PUT("/posts/:id/hide", r.hidden.Hide)
			authed.DELETE("/posts/:id/hide", r.hidden.Unhide)
			authed.GET("/hidden", r.hidden.List)
			authed.GET("/hidden/ids", r.hidden.ListIDs)
			authed.POST("/hidden/by-tag", r.hidden.HideByTag)
			authed.POST("/hidden/by-author", r.hidden.HideByAuthor)

			authed.GET("/me/stats", r.profile.Stats)
			authed.GET("/me/posts", r.profile.Posts)
			authed.GET("/me/actions", r.profile.Actions)
			authed.GET("/me/liked", r.profile.Liked)
		}
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.db.Health(c.Request.Context()); err != nil {
		r.logger.Error("database health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "ERROR",
			"service": "thanks-relay-api",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "thanks-relay-api",
	})
}
