// routes/routes.go
package routes

import (
	"time"

	"resqlink/config"
	"resqlink/controllers"
	"resqlink/interfaces"
	"resqlink/middleware"
	"resqlink/repositories"
	"resqlink/services"
	"resqlink/utils"
	"resqlink/websocket"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies carries the externally constructed pieces the router needs.
type Dependencies struct {
	Config      *config.Config
	DB          *mongo.Database
	MongoClient *mongo.Client
	Redis       *redis.Client
	Hub         *websocket.Hub
	FCMClient   interfaces.MulticastSender
	SMSClient   interfaces.SMSSender
	Queue       interfaces.NotificationQueue
	Version     string
}

// Services groups the service layer for reuse outside HTTP, notably the
// dispatch worker.
type Services struct {
	Auth         *services.AuthService
	User         *services.UserService
	Emergency    *services.EmergencyService
	Notification *services.NotificationService
	Dashboard    *services.DashboardService
	Admin        *services.AdminService
}

// BuildServices wires repositories and services from the raw dependencies.
func BuildServices(deps *Dependencies) *Services {
	userRepo := repositories.NewUserRepository(deps.DB)
	emergencyRepo := repositories.NewEmergencyRepository(deps.DB)
	notificationRepo := repositories.NewNotificationRepository(deps.DB)

	jwtService := utils.NewJWTService(deps.Config.JWTSecret)
	passwordService := utils.NewPasswordService()
	pushService := services.NewPushService(deps.FCMClient)

	return &Services{
		Auth:         services.NewAuthService(userRepo, jwtService, passwordService, deps.Config.GoogleClientID),
		User:         services.NewUserService(userRepo),
		Emergency:    services.NewEmergencyService(emergencyRepo, userRepo, deps.Queue, deps.Hub),
		Notification: services.NewNotificationService(notificationRepo, userRepo, pushService, deps.SMSClient),
		Dashboard:    services.NewDashboardService(emergencyRepo, userRepo),
		Admin:        services.NewAdminService(emergencyRepo, userRepo),
	}
}

// SetupRoutes initializes all application routes
func SetupRoutes(deps *Dependencies, svcs *Services) *gin.Engine {
	router := gin.New()

	validator := utils.NewValidationService()
	jwtService := utils.NewJWTService(deps.Config.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	authController := controllers.NewAuthController(svcs.Auth, validator)
	userController := controllers.NewUserController(svcs.User, validator)
	emergencyController := controllers.NewEmergencyController(svcs.Emergency, validator)
	notificationController := controllers.NewNotificationController(svcs.Notification)
	dashboardController := controllers.NewDashboardController(svcs.Dashboard, svcs.Emergency)
	adminController := controllers.NewAdminController(svcs.Admin, validator)
	healthController := controllers.NewHealthController(deps.MongoClient, deps.Redis, deps.Version)

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	globalLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Redis:     deps.Redis,
		Requests:  deps.Config.RateLimitRequests,
		Window:    time.Duration(deps.Config.RateLimitWindow) * time.Minute,
		KeyPrefix: "rl:global",
	})
	router.Use(globalLimiter.Middleware())

	// Tighter limit on emergency creation.
	reportLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Redis:     deps.Redis,
		Requests:  10,
		Window:    time.Minute,
		KeyPrefix: "rl:report",
	})

	// Public routes
	router.GET("/health", healthController.Health)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/google", authController.GoogleAuth)
			auth.POST("/refresh", authController.RefreshToken)
			auth.GET("/me", authMiddleware.RequireAuth(), authController.GetProfile)
		}

		api.GET("/dashboard/public-stats", dashboardController.GetPublicStats)

		// Authenticated routes
		authenticated := api.Group("")
		authenticated.Use(authMiddleware.RequireAuth())
		{
			emergencies := authenticated.Group("/emergencies")
			{
				emergencies.POST("", reportLimiter.Middleware(), emergencyController.Create)
				emergencies.GET("", emergencyController.List)
				emergencies.GET("/nearby", authMiddleware.RequireResponder(), emergencyController.Nearby)
				emergencies.GET("/:id", emergencyController.GetByID)
				emergencies.PUT("/:id/respond", authMiddleware.RequireResponder(), emergencyController.Respond)
				emergencies.PUT("/:id/status", authMiddleware.RequireResponder(), emergencyController.UpdateStatus)
				emergencies.POST("/:id/notes", emergencyController.AddNote)
			}

			users := authenticated.Group("/users")
			{
				users.GET("/me", userController.Me)
				users.PUT("/fcm-token", userController.UpdateFCMToken)
				users.PUT("/availability", userController.UpdateAvailability)
			}

			notifications := authenticated.Group("/notifications")
			{
				notifications.GET("", notificationController.List)
				notifications.GET("/unread-count", notificationController.UnreadCount)
				notifications.PUT("/read-all", notificationController.MarkAllRead)
				notifications.PUT("/:id/read", notificationController.MarkRead)
				notifications.DELETE("/:id", notificationController.Delete)
			}

			dashboard := authenticated.Group("/dashboard")
			{
				dashboard.GET("/stats", authMiddleware.RequireResponder(), dashboardController.GetDashboard)
				dashboard.GET("/my-emergencies", dashboardController.MyEmergencies)
				dashboard.GET("/assigned-emergencies", authMiddleware.RequireResponder(), dashboardController.AssignedEmergencies)
			}
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
		{
			admin.GET("/stats", adminController.GetStats)
			admin.GET("/users", adminController.ListUsers)
			admin.PUT("/users/:id", adminController.UpdateUser)
			admin.DELETE("/users/:id", adminController.DeleteUser)
			admin.GET("/emergencies", adminController.ListEmergencies)
			admin.DELETE("/emergencies/:id", adminController.DeleteEmergency)
		}
	}

	// Live feed for responders
	router.GET("/ws/feed", websocket.ServeWS(deps.Hub, jwtService))

	return router
}
