// Package exchange holds the base type and shared behaviour every exchange
// adapter composes with.
package exchange

import (
	"context"

	"github.com/cryptoadapters/coinsbit/config"
	"github.com/cryptoadapters/coinsbit/exchanges/request"
)

// WarningAuthenticatedRequestWithoutCredentialsSet error message for when an
// authenticated request is attempted without credentials set
const WarningAuthenticatedRequestWithoutCredentialsSet = "%s authenticated HTTP request called but not supported due to unset/default API keys"

// Credentials holds the account API credentials
type Credentials struct {
	Key    string
	Secret string
}

// Endpoints holds the exchange API endpoint URLs
type Endpoints struct {
	URL string
}

// API stores the exchange API settings
type API struct {
	AuthenticatedSupport bool
	Credentials          Credentials
	Endpoints            Endpoints
}

// Base stores the individual exchange information
type Base struct {
	Name      string
	Enabled   bool
	Verbose   bool
	API       API
	Requester *request.Requester
}

// SetAPIKeys is a method that sets the current API keys for the exchange
func (b *Base) SetAPIKeys(apiKey, apiSecret string) {
	b.API.Credentials.Key = apiKey
	b.API.Credentials.Secret = apiSecret
	b.API.AuthenticatedSupport = apiKey != "" && apiSecret != ""
}

// AllowAuthenticatedRequest checks whether authenticated requests are able to
// be signed and sent
func (b *Base) AllowAuthenticatedRequest() bool {
	return b.API.AuthenticatedSupport &&
		b.API.Credentials.Key != "" &&
		b.API.Credentials.Secret != ""
}

// SetEnabled is a method that sets if the exchange is enabled
func (b *Base) SetEnabled(enabled bool) {
	b.Enabled = enabled
}

// SetupDefaults applies the supplied exchange configuration to the base
func (b *Base) SetupDefaults(exch *config.Exchange) error {
	if err := exch.Validate(); err != nil {
		return err
	}
	b.Enabled = exch.Enabled
	b.Verbose = exch.Verbose
	if exch.API.Endpoint != "" {
		b.API.Endpoints.URL = exch.API.Endpoint
	}
	if exch.API.AuthenticatedSupport {
		b.SetAPIKeys(exch.API.Credentials.Key, exch.API.Credentials.Secret)
	}
	return nil
}

// SendPayload forwards a request item to the requester for dispatch
func (b *Base) SendPayload(ctx context.Context, i *request.Item) error {
	return b.Requester.SendPayload(ctx, i)
}
