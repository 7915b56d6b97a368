package main

import (
	"database/sql"
	"net/http"
	"time"

	"contacts-platform/internal/auth"
	"contacts-platform/internal/config"
	"contacts-platform/internal/httpapi"
	"contacts-platform/internal/ratelimit"
	"contacts-platform/internal/rbac"
	"contacts-platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	db         *sql.DB
	verifier   *auth.Verifier
	identities auth.IdentityStore
	limiter    *ratelimit.Limiter
	avatarDir  string
	rate       config.RateLimitConfig
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), deps.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Uploaded avatars are served straight from disk.
	r.Static("/static/avatars", deps.avatarDir)

	authMW := auth.RequireAccessToken(deps.verifier, deps.identities)

	api := r.Group("/api")
	api.Use(deps.limiter.Middleware("api", deps.rate.APIPerMinute))
	{
		// AUTH routes. Unauthenticated ones share a tighter per-IP budget
		// because they are the ones worth brute-forcing.
		authGroup := api.Group("/auth")
		{
			strict := deps.limiter.Middleware("auth", deps.rate.AuthPerMinute)

			authGroup.POST("/signup", strict, h.Signup)
			authGroup.POST("/login", strict, h.Login)
			authGroup.POST("/refresh_token", strict, h.Refresh)
			authGroup.GET("/confirmed_email/:token", h.ConfirmEmail)
			authGroup.POST("/resend_confirm_email", strict, h.ResendConfirmation)
			authGroup.POST("/request_reset_password", strict, h.RequestPasswordReset)
			authGroup.POST("/reset_password/:token", strict, h.ResetPassword)

			authGroup.POST("/logout", authMW, h.Logout)
		}

		// USER routes
		users := api.Group("/users")
		users.Use(authMW)
		{
			users.GET("/me", h.Me)
			users.PUT("/avatar", h.UpdateAvatar)

			admin := users.Group("")
			admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
			{
				admin.GET("", h.ListUsers)
				admin.PATCH("/:user_id/role", h.ChangeRole)
			}
		}

		// CONTACT routes
		contacts := api.Group("/contacts")
		contacts.Use(authMW)
		{
			contacts.POST("", h.CreateContact)
			contacts.GET("", h.ListContacts)
			contacts.GET("/search", h.SearchContacts)
			contacts.GET("/birthdays", h.UpcomingBirthdays)
			contacts.GET("/:contact_id", h.GetContact)
			contacts.PUT("/:contact_id", h.UpdateContact)
			contacts.DELETE("/:contact_id", h.DeleteContact)
		}
	}
}
