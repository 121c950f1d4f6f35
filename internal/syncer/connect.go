package syncer

import (
	"context"

	"github.com/profitpeek/shopsync/internal/models"
	"github.com/profitpeek/shopsync/internal/shopify"
	"go.uber.org/zap"
)

// credentialWriter is the only write access the connect flow needs. The sync
// pipeline itself never writes credentials.
type credentialWriter interface {
	UpsertCredential(ctx context.Context, cred *models.Credential) error
}

// Connector verifies a submitted credential against the live store and saves
// it only when the probe succeeds.
type Connector struct {
	store          credentialWriter
	remote         Remote
	defaultVersion string
}

type ConnectorOption func(*Connector)

// WithDefaultAPIVersion sets the API version assumed for credentials
// submitted without one.
func WithDefaultAPIVersion(version string) ConnectorOption {
	return func(c *Connector) {
		if version != "" {
			c.defaultVersion = version
		}
	}
}

func NewConnector(store credentialWriter, remote Remote, opts ...ConnectorOption) *Connector {
	c := &Connector{store: store, remote: remote, defaultVersion: shopify.DefaultAPIVersion}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConnectInput is the credential as submitted by the tenant.
type ConnectInput struct {
	ClientID    string `json:"client_id"`
	StoreDomain string `json:"store_domain"`
	AccessToken string `json:"access_token"`
	APIVersion  string `json:"api_version"`
}

// ConnectResult reports the probe outcome. A failed probe saves nothing.
type ConnectResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	ShopName string `json:"shopName,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// Connect probes the store with the submitted credential and upserts it on
// success.
func (c *Connector) Connect(ctx context.Context, input ConnectInput) ConnectResult {
	version := input.APIVersion
	if version == "" {
		version = c.defaultVersion
	}
	cred := &models.Credential{
		ClientID:    input.ClientID,
		StoreDomain: shopify.NormalizeDomain(input.StoreDomain),
		AccessToken: input.AccessToken,
		APIVersion:  version,
	}

	shop, err := c.remote.ShopInfo(ctx, cred)
	if err != nil {
		return ConnectResult{OK: false, Message: "connection failed: " + err.Error()}
	}

	if err := c.store.UpsertCredential(ctx, cred); err != nil {
		zap.L().Error("save credential failed", zap.String("client_id", input.ClientID), zap.Error(err))
		return ConnectResult{OK: false, Message: "connection verified but saving the credential failed"}
	}

	domain := shop.MyshopifyDomain
	if domain == "" {
		domain = cred.StoreDomain
	}
	return ConnectResult{OK: true, Message: "connection successful", ShopName: shop.Name, Domain: domain}
}
