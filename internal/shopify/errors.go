package shopify

import (
	"errors"
	"fmt"
)

// ErrEmptyFirstPage reports that the very first page of a paginated query
// carried no connection object. A degraded remote response must not be
// mistaken for "tenant has no data".
var ErrEmptyFirstPage = errors.New("shopify returned no data on first page")

// TransportError is a non-2xx HTTP response from the Shopify API.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("shopify responded with %d: %s", e.Status, e.Body)
}

// APIError carries application-level errors from the GraphQL envelope.
// Control flow treats it the same as a transport failure.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "shopify error: " + e.Message
}
