package stripe

import (
	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Client handles Stripe API client setup and configuration
type Client struct {
	cfg    *config.StripeConfig
	client *stripe.Client
	logger *logger.Logger
}

// NewClient creates a new Stripe client from the static configuration
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		cfg:    &cfg.Stripe,
		client: stripe.NewClient(cfg.Stripe.SecretKey, nil),
		logger: logger,
	}
}

// API returns the underlying Stripe API client
func (c *Client) API() *stripe.Client {
	return c.client
}

// Config returns the Stripe configuration
func (c *Client) Config() *config.StripeConfig {
	return c.cfg
}
