package routes

import (
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

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// CoreModule provides configuration, storage and domain services. The CLI
// commands start it without the HTTP server.
var CoreModule = fx.Module("core",
	fx.Provide(
		config.NewAppConfig,
		config.NewLogger,
		config.NewMongoDBConfig,
		config.NewMongoDBClient,
		config.NewRedisConfig,
		config.NewRedisClient,
		config.NewRealtimeConfig,
		config.NewPubNub,
		config.NewEmailConfig,
		config.NewMailer,

		fx.Annotate(auth.NewUserRepository, fx.As(new(auth.UserStore)), fx.As(new(notification.RecipientFinder))),
		fx.Annotate(mentor.NewMentorRepository, fx.As(new(mentor.Store)), fx.As(new(booking.MentorFinder))),
		fx.Annotate(program.NewProgramRepository, fx.As(new(program.Store))),
		fx.Annotate(booking.NewBookingRepository, fx.As(new(booking.Store))),
		fx.Annotate(notification.NewNotificationRepository, fx.As(new(notification.Store))),

		auth.NewTokenManager,
		auth.NewAuthService,
		auth.NewUserService,
		profile.NewProfileService,
		mentor.NewMentorService,
		program.NewProgramService,
		booking.NewBookingService,
		admin.NewStatsService,

		notification.NewPublisher,
		fx.Annotate(notification.NewDispatcher, fx.As(new(notification.Sender))),
		notification.NewCoordinator,
		notification.NewNotificationService,
		func(c *notification.Coordinator) program.Notifier { return c },
		func(c *notification.Coordinator) booking.Notifier { return c },
		func(c *config.MongoDBClient) admin.DatabaseProbe { return c },
	),
)

// HTTPModule serves the JSON API.
var HTTPModule = fx.Module("http",
	fx.Provide(
		NewEchoServer,
		middleware.NewGuard,
		auth.NewAuthHandler,
		auth.NewUserAdminHandler,
		profile.NewProfileHandler,
		mentor.NewMentorHandler,
		program.NewProgramHandler,
		program.NewProgramAdminHandler,
		booking.NewBookingHandler,
		notification.NewNotificationHandler,
		admin.NewAdminHandler,
		placeholder.NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

// WithZapLogger routes fx's own lifecycle events through the application logger.
func WithZapLogger() fx.Option {
	return fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger.Named("fx")}
	})
}
