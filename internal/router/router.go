package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/handlers"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/middleware"
)

type Deps struct {
	Handler        *handlers.Handler
	Sessions       *auth.SessionManager
	AllowedOrigins []string
	// APIPath prefixes every API route, e.g. "/api".
	APIPath string
	// Limiter guards register and login. Nil disables rate limiting.
	Limiter   *middleware.RateLimiter
	UploadDir string
}

func New(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With", logging.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(logging.RequestLogger(), middleware.Metrics(), gin.Recovery())

	h := d.Handler
	session := middleware.RequireSession(d.Sessions)

	throttle := func(ctx *gin.Context) { ctx.Next() }
	if d.Limiter != nil {
		throttle = middleware.RateLimit(d.Limiter)
	}

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", session, h.WebSocket)

	if d.UploadDir != "" {
		r.StaticFS(handlers.ImagesPath, http.Dir(d.UploadDir))
	}

	api := r.Group(d.APIPath)
	{
		account := api.Group("/users")
		{
			account.POST("/register", throttle, h.Register)
			account.POST("/login", throttle, h.Login)
			account.POST("/logout", session, h.Logout)
			account.GET("/me", session, h.Me)
		}

		users := api.Group("/users", session)
		{
			users.POST("", h.CreateUser)
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
			users.PUT("/:id", h.UpdateUser)
			users.PUT("/email/:email", h.UpdateUserByEmail)
			users.DELETE("/:id", h.DeleteUser)

			users.POST("/:id/shared-contacts", h.AddSharedContact)
			users.GET("/:id/shared-contacts", h.ListSharedContacts)
			users.GET("/:id/shared-contacts/:contactId", h.GetSharedContact)
			users.PUT("/:id/shared-contacts/:contactId", h.UpdateSharedContact)
			users.DELETE("/:id/shared-contacts/:contactId", h.DeleteSharedContact)

			users.POST("/:id/notifications", h.CreateNotification)
			users.GET("/:id/notifications", h.ListNotifications)
			users.PUT("/:id/notifications/:notifId/read", h.MarkNotificationRead)
			users.DELETE("/:id/notifications/:notifId", h.DeleteNotification)

			users.POST("/:id/date-matches", h.CreateDateMatch)
			users.GET("/:id/date-matches", h.ListDateMatches)
		}

		profiles := api.Group("/userProfiles", session)
		{
			profiles.POST("", h.CreateProfile)
			profiles.GET("", h.ListProfiles)
			profiles.GET("/:userId", h.GetProfile)
			profiles.PUT("/:userId", h.UpdateProfile)
			profiles.DELETE("/:userId", h.DeleteProfile)
			profiles.POST("/:userId/avatar", h.UploadAvatar)
		}

		events := api.Group("/events", session)
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/user/:userId", h.ListEventsForUser)
			events.POST("/register/:eventId", h.RegisterParticipant)
			events.DELETE("/register/:eventId", h.UnregisterParticipant)
			events.GET("/:id", h.GetEvent)
			events.PUT("/:id", h.UpdateEvent)
			events.DELETE("/:id", h.DeleteEvent)
			events.POST("/:id/start", h.StartEvent)
			events.POST("/:id/end", h.EndEvent)
			events.POST("/:id/nextRound", h.NextRound)
			events.POST("/:id/endRound", h.EndRound)
		}

		reviews := api.Group("/reviews", session)
		{
			reviews.POST("", h.CreateReview)
			reviews.GET("", h.ListReviews)
			reviews.GET("/:id", h.GetReview)
			reviews.PUT("/:id", h.UpdateReview)
			reviews.DELETE("/:id", h.DeleteReview)
		}
	}

	return r
}
