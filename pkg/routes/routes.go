package routes

import (
	"context"
	"errors"
	"net/http"

	"GHXPortal/internal/admin"
	"GHXPortal/internal/auth"
	"GHXPortal/internal/booking"
	"GHXPortal/internal/config"
	"GHXPortal/internal/mentor"
	"GHXPortal/internal/notification"
	"GHXPortal/internal/placeholder"
	"GHXPortal/internal/profile"
	"GHXPortal/internal/program"
	"GHXPortal/pkg/middleware"
	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEchoServer(lc fx.Lifecycle, cfg *config.AppConfig, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = request.NewValidator()
	e.HTTPErrorHandler = response.ErrorHandler(logger)
	middleware.SetupMiddleware(e, cfg, logger)

	addr := ":" + cfg.Port
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			logger.Info("server listening", zap.String("addr", addr), zap.String("env", cfg.Environment))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

// Handlers collects every route handler for RegisterRoutes.
type Handlers struct {
	fx.In

	Config       *config.AppConfig
	Logger       *zap.Logger
	Redis        *redis.Client `optional:"true"`
	Guard        *middleware.Guard
	Auth         *auth.AuthHandler
	Users        *auth.UserAdminHandler
	Profile      *profile.ProfileHandler
	Mentors      *mentor.MentorHandler
	Programs     *program.ProgramHandler
	ProgramAdmin *program.ProgramAdminHandler
	Bookings     *booking.BookingHandler
	Inbox        *notification.NotificationHandler
	Admin        *admin.AdminHandler
	Placeholder  *placeholder.Handler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	g := h.Guard

	e.GET("/health", h.Admin.Health)
	if h.Config.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api")
	api.GET("/placeholder/:size/:text", h.Placeholder.Serve)
	api.POST("/setup-admin", h.Auth.SetupAdmin)
	if h.Config.IsDevelopment() {
		api.GET("/test-db", h.Admin.TestDatabase)
	}

	limiter := middleware.RateLimit(middleware.NewRateLimiterStore(h.Redis, "auth", h.Config.AuthRateLimit, h.Logger))
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register, limiter)
	authGroup.POST("/login", h.Auth.Login, limiter)
	authGroup.GET("/me", h.Auth.Me, g.RequireAuth)

	// Member routes guard per route or under a prefix; unknown /api paths stay 404.
	api.GET("/profile", h.Profile.GetProfile, g.RequireAuth)
	api.PUT("/profile", h.Profile.UpdateProfile, g.RequireAuth)
	api.GET("/profile/completion", h.Profile.GetCompletion, g.RequireAuth)

	api.GET("/mentors", h.Mentors.ListMentors, g.RequireAuth, g.RequirePermission("mentors", "read"))
	api.GET("/mentors/:id", h.Mentors.GetMentor, g.RequireAuth, g.RequirePermission("mentors", "read"))
	api.GET("/programs", h.Programs.ListPrograms, g.RequireAuth, g.RequirePermission("programs", "read"))
	api.GET("/programs/:id", h.Programs.GetProgram, g.RequireAuth, g.RequirePermission("programs", "read"))

	bookings := api.Group("/bookings", g.RequireAuth, h.Profile.RequireCompleteProfile)
	bookings.GET("", h.Bookings.ListBookings, g.RequirePermission("bookings", "read"))
	bookings.POST("", h.Bookings.CreateBooking, g.RequirePermission("bookings", "write"))
	bookings.POST("/:id/cancel", h.Bookings.CancelBooking, g.RequirePermission("bookings", "write"))

	inbox := api.Group("/notifications", g.RequireAuth)
	inbox.GET("", h.Inbox.List, g.RequirePermission("notifications", "read"))
	inbox.GET("/unread-count", h.Inbox.UnreadCount, g.RequirePermission("notifications", "read"))
	inbox.PATCH("/:id/read", h.Inbox.MarkRead, g.RequirePermission("notifications", "write"))
	inbox.POST("/read-all", h.Inbox.MarkAllRead, g.RequirePermission("notifications", "write"))

	api.POST("/test-notifications", h.Inbox.TestNotification, g.RequireAuth, g.RequireAdmin)

	adm := api.Group("/admin", g.RequireAuth, g.RequireAdmin)

	mentors := adm.Group("/mentors")
	mentors.GET("", h.Mentors.ListMentors, g.RequirePermission("mentors", "read"))
	mentors.POST("", h.Mentors.CreateMentor, g.RequirePermission("mentors", "write"))
	mentors.GET("/:id", h.Mentors.GetMentor, g.RequirePermission("mentors", "read"))
	mentors.PUT("/:id", h.Mentors.UpdateMentor, g.RequirePermission("mentors", "write"))
	mentors.DELETE("/:id", h.Mentors.DeleteMentor, g.RequirePermission("mentors", "delete"))

	programs := adm.Group("/programs")
	programs.GET("", h.ProgramAdmin.ListPrograms, g.RequirePermission("programs", "read"))
	programs.POST("", h.ProgramAdmin.CreateProgram, g.RequirePermission("programs", "write"))
	programs.GET("/:id", h.ProgramAdmin.GetProgram, g.RequirePermission("programs", "read"))
	programs.PUT("/:id", h.ProgramAdmin.UpdateProgram, g.RequirePermission("programs", "write"))
	programs.DELETE("/:id", h.ProgramAdmin.DeleteProgram, g.RequirePermission("programs", "delete"))
	programs.POST("/:id/deadline-reminder", h.ProgramAdmin.SendDeadlineReminder, g.RequirePermission("programs", "notify"))

	users := adm.Group("/users")
	users.GET("", h.Users.ListUsers, g.RequirePermission("users", "read"))
	users.GET("/:id", h.Users.GetUser, g.RequirePermission("users", "read"))
	users.PUT("/:id", h.Users.UpdateUser, g.RequirePermission("users", "write"))
	users.DELETE("/:id", h.Users.DeleteUser, g.RequirePermission("users", "delete"))

	adm.GET("/stats", h.Admin.GetStats, g.RequirePermission("stats", "read"))
}
