package main

import (
	"context"
	"time"

	"github.com/gatherly/gatherly/internal/api"
	v1 "github.com/gatherly/gatherly/internal/api/v1"
	"github.com/gatherly/gatherly/internal/cache"
	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/domain/proration"
	stripeintegration "github.com/gatherly/gatherly/internal/integration/stripe"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/gatherly/gatherly/internal/postgres"
	"github.com/gatherly/gatherly/internal/repository"
	"github.com/gatherly/gatherly/internal/service"
	"github.com/gatherly/gatherly/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewClient,

			// Repositories
			repository.NewOwnerRepository,
			repository.NewCommunityRepository,

			// Billing provider
			stripeintegration.NewClient,
			stripeintegration.NewProvider,

			// Proration
			proration.NewCalculator,

			// Services
			service.NewServiceParams,
			service.NewOwnerService,
			service.NewCommunityService,
			service.NewMembershipService,

			// API
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	ownerService service.OwnerService,
	communityService service.CommunityService,
	membershipService service.MembershipService,
) api.Handlers {
	return api.Handlers{
		Owner:     v1.NewOwnerHandler(ownerService, membershipService, logger),
		Community: v1.NewCommunityHandler(communityService, membershipService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
