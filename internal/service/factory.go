package service

import (
	"github.com/gatherly/gatherly/internal/cache"
	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/domain/billing"
	"github.com/gatherly/gatherly/internal/domain/community"
	"github.com/gatherly/gatherly/internal/domain/owner"
	"github.com/gatherly/gatherly/internal/domain/proration"
	"github.com/gatherly/gatherly/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	OwnerRepo     owner.Repository
	CommunityRepo community.Repository

	// External collaborators
	BillingProvider billing.Provider

	// Components
	ProrationCalculator proration.Calculator
	Cache               cache.Cache
}

// NewServiceParams bundles the shared dependencies handed to every service
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	ownerRepo owner.Repository,
	communityRepo community.Repository,
	billingProvider billing.Provider,
	prorationCalculator proration.Calculator,
	cache cache.Cache,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		OwnerRepo:           ownerRepo,
		CommunityRepo:       communityRepo,
		BillingProvider:     billingProvider,
		ProrationCalculator: prorationCalculator,
		Cache:               cache,
	}
}
