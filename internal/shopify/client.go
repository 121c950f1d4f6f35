package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/profitpeek/shopsync/internal/models"
)

// DefaultAPIVersion is used when a credential does not pin a version.
const DefaultAPIVersion = "2024-10"

// Client executes GraphQL queries against the Shopify Admin API. It holds no
// per-tenant state; the credential travels with every call, so one client
// serves all tenants and every call is safe to retry.
type Client struct {
	httpClient *http.Client
	scheme     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithScheme overrides the URL scheme. Tests use it to talk to a plain-HTTP
// server; production always speaks https.
func WithScheme(scheme string) Option {
	return func(c *Client) { c.scheme = scheme }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		scheme:     "https",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeDomain lower-cases a store domain and strips any scheme prefix and
// trailing slash, so "HTTPS://Shop.myshopify.com/" and "shop.myshopify.com"
// address the same store.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimSuffix(d, "/")
}

func (c *Client) endpoint(cred *models.Credential) string {
	version := cred.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	return fmt.Sprintf("%s://%s/admin/api/%s/graphql.json", c.scheme, NormalizeDomain(cred.StoreDomain), version)
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// Execute posts a GraphQL document with the credential's access token and
// decodes the data payload into out. Non-2xx responses become a
// *TransportError, in-band errors a *APIError with all messages joined.
func (c *Client) Execute(ctx context.Context, cred *models.Credential, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(cred), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", cred.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read shopify response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &TransportError{Status: resp.StatusCode, Body: string(raw)}
	}

	var env graphqlEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode shopify response: %w", err)
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return &APIError{Message: strings.Join(msgs, "; ")}
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode shopify data: %w", err)
		}
	}
	return nil
}

// ShopInfo runs the minimal pre-flight probe.
func (c *Client) ShopInfo(ctx context.Context, cred *models.Credential) (*Shop, error) {
	var data struct {
		Shop *Shop `json:"shop"`
	}
	if err := c.Execute(ctx, cred, shopQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.Shop == nil {
		return nil, &APIError{Message: "no shop data returned"}
	}
	return data.Shop, nil
}

// ProductPage fetches one page of the product catalog. A nil connection means
// the response carried no usable products payload.
func (c *Client) ProductPage(ctx context.Context, cred *models.Credential, cursor *string) (*ProductConnection, error) {
	var data struct {
		Products *ProductConnection `json:"products"`
	}
	vars := map[string]any{"cursor": cursor}
	if err := c.Execute(ctx, cred, productQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// OrderPage fetches one page of orders, optionally narrowed by a remote
// search filter such as "created_at:>=2024-01-01".
func (c *Client) OrderPage(ctx context.Context, cred *models.Credential, cursor *string, filter string) (*OrderConnection, error) {
	vars := map[string]any{"cursor": cursor}
	if filter != "" {
		vars["query"] = filter
	}
	var data struct {
		Orders *OrderConnection `json:"orders"`
	}
	if err := c.Execute(ctx, cred, orderQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.Orders, nil
}
