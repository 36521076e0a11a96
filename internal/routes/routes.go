package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/access"
	"medica-server/internal/config"
	"medica-server/internal/handlers"
	"medica-server/internal/metrics"
	"medica-server/internal/middleware"
	"medica-server/internal/service"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, svc *service.Services, cfg *config.Config, log *zap.Logger, m *metrics.Collector) {
	authHandler := handlers.NewAuthHandler(svc.Accounts, cfg, log)
	doctorHandler := handlers.NewDoctorHandler(svc.Doctors, log)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Booking, log)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews, log)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications, log)
	adminHandler := handlers.NewAdminHandler(svc.Admin, svc.Accounts, log)
	homeHandler := handlers.NewHomeHandler(svc, log)

	require := func(p access.Policy) gin.HandlerFunc { return middleware.Require(p, log) }

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.GET("/home", homeHandler.Home)
		public.GET("/specialities", doctorHandler.Specialities)
		public.GET("/doctors", doctorHandler.Browse)
		public.GET("/doctors/:id", doctorHandler.Detail)

		authRoutes := public.Group("/auth")
		authRoutes.Use(middleware.RateLimit(cfg.RateLimit))
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/social", authHandler.SocialLogin)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		private.GET("/dashboard", homeHandler.Dashboard)
		private.GET("/appointments/:id", appointmentHandler.GetAppointment)

		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.List)
			notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllRead)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(require(access.AdminOnly))
		{
			adminRoutes.GET("/stats", adminHandler.Stats)
			adminRoutes.GET("/users/:role", adminHandler.UsersByRole)
			adminRoutes.POST("/users/:id/upgrade", adminHandler.UpgradeUser)
		}

		doctorRoutes := private.Group("/doctor")
		doctorRoutes.Use(require(access.DoctorOnly))
		{
			doctorRoutes.GET("/appointments", appointmentHandler.DoctorAppointments)
			doctorRoutes.PATCH("/appointments/:id", appointmentHandler.UpdateAppointment)
			doctorRoutes.PUT("/profile", doctorHandler.UpdateProfile)
			doctorRoutes.GET("/availability", doctorHandler.ListAvailability)
			doctorRoutes.POST("/availability", doctorHandler.AddAvailability)
			doctorRoutes.DELETE("/availability/:id", doctorHandler.DeleteAvailability)
		}

		clientOnly := require(access.ClientOnly)
		private.GET("/client/appointments", clientOnly, appointmentHandler.ClientAppointments)
		private.POST("/client/upgrade", clientOnly, authHandler.UpgradeToDoctor)
		private.POST("/doctors/:id/appointments", clientOnly, appointmentHandler.CreateAppointment)
		private.POST("/appointments/:id/review", clientOnly, reviewHandler.CreateReview)
	}

	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
