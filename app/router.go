// Package app wires the services into a gin engine
package app

import (
	"campusshare/api/app/material"
	"campusshare/api/app/root"
	"campusshare/api/app/user"
	"campusshare/api/internal"
	"campusshare/api/pkg/middleware"
	"context"
	"net/http"
	"slices"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// multipartOverhead leaves room for boundaries and the text fields next to the file
const multipartOverhead = 1 << 20

type Options struct {
	CORSOrigins    []string
	RateLimit      int
	RateWindow     time.Duration
	PublicCacheTTL time.Duration
	MaxUploadSize  int64
}

// NewRouter builds the engine. Background work started here stops with ctx.
func NewRouter(ctx context.Context, d *internal.Deps, o Options) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(corsConfig(o.CORSOrigins)),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 5 << 20

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Not found",
			"requestID": c.GetString("requestID"),
		})
	})

	jwt := middleware.NewJWTMiddleware(d.Tokens, d.Users)
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		Requests: o.RateLimit,
		Window:   o.RateWindow,
	})
	smallBody := middleware.BodySizeLimiter(1 << 20)

	api := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		api.HEAD("/heartbeat", root.Heartbeat)
		api.GET("/heartbeat", root.Heartbeat)

		// POST /api/register		-> Creates an account and returns a session token
		api.POST("/register", smallBody, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/login		-> Returns a session token
		api.POST("/login", smallBody, func(c *gin.Context) { user.UserLogin(c, d) })
	}

	public := api.Group("/public")
	{
		// GET /api/public/materials		-> Summaries of every material, no login needed
		public.GET("/materials", cacheFor(o.PublicCacheTTL), func(c *gin.Context) { material.MaterialListPublic(c, d) })

		// GET /api/public/download/:id	-> Downloads any material without logging in
		public.GET("/download/:id", func(c *gin.Context) { material.MaterialDownload(c, d) })
	}

	auth := api.Group("", jwt)
	{
		// GET /api/profile		-> Profile of the logged in user
		auth.GET("/profile", user.UserProfile)

		// GET /api/materials		-> Every material with all of its details
		auth.GET("/materials", func(c *gin.Context) { material.MaterialList(c, d) })

		// POST /api/upload		-> Stores a new material
		auth.POST("/upload", middleware.BodySizeLimiter(o.MaxUploadSize+multipartOverhead), func(c *gin.Context) { material.MaterialUpload(c, d) })

		// GET /api/download/:id	-> Downloads a material
		auth.GET("/download/:id", func(c *gin.Context) { material.MaterialDownload(c, d) })
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}

	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// cacheFor caches whole responses by URI, so every filter combination is its
// own entry. Headers are not cached, CORS and the request ID belong to the
// current request. A ttl of zero disables caching.
func cacheFor(ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cached := cache.CacheByRequestURI(persist.NewMemoryStore(ttl), ttl, cache.WithoutHeader())

	return func(c *gin.Context) {
		// Cache hits are replayed without headers, only JSON goes through here
		c.Header("Content-Type", "application/json; charset=utf-8")
		cached(c)
	}
}
