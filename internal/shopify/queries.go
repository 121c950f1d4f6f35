package shopify

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const shopQuery = `query ShopInfo { shop { name myshopifyDomain } }`

const productQuery = `query Products($cursor: String) {
  products(first: 100, after: $cursor) {
    edges {
      cursor
      node {
        id
        title
        handle
        vendor
        productType
        status
        updatedAt
        variants(first: 100) {
          edges {
            node {
              id
              title
              sku
              barcode
              price
              compareAtPrice
              inventoryQuantity
              inventoryItem { id unitCost { amount currencyCode } }
              updatedAt
            }
          }
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

const orderQuery = `query Orders($cursor: String, $query: String) {
  orders(first: 50, after: $cursor, query: $query) {
    edges {
      cursor
      node {
        id
        name
        processedAt
        updatedAt
        currencyCode
        currentSubtotalLineItemsSet { presentmentMoney { amount } }
        currentTotalDiscountsSet { presentmentMoney { amount } }
        currentTotalTaxSet { presentmentMoney { amount } }
        currentTotalShippingPriceSet { presentmentMoney { amount } }
        currentTotalPriceSet { presentmentMoney { amount } }
        financialStatus
        fulfillmentStatus
        discountCodes { code amount }
        shippingLines { title priceSet { presentmentMoney { amount } } }
        lineItems(first: 100) {
          edges {
            node {
              id
              title
              product { id }
              variant { id sku title }
              quantity
              originalUnitPriceSet { presentmentMoney { amount } }
              totalDiscountSet { presentmentMoney { amount } }
              discountedTotalSet { presentmentMoney { amount } }
              fulfillmentStatus
            }
          }
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// Shop is the payload of the pre-flight probe.
type Shop struct {
	Name            string `json:"name"`
	MyshopifyDomain string `json:"myshopifyDomain"`
}

// PageInfo carries the opaque pagination state. EndCursor is passed back to
// the API verbatim and never parsed.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Edge wraps a node in Shopify's relay-style connections.
type Edge[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

// Connection is one page of a relay-style paginated list.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Nodes flattens the edge wrappers.
func (c *Connection[T]) Nodes() []T {
	nodes := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		nodes = append(nodes, e.Node)
	}
	return nodes
}

type (
	ProductConnection = Connection[ProductNode]
	OrderConnection   = Connection[OrderNode]
)

// MoneySet mirrors Shopify's MoneyBag wrapper around an amount string.
type MoneySet struct {
	PresentmentMoney struct {
		Amount string `json:"amount"`
	} `json:"presentmentMoney"`
}

// Amount parses the presentment amount. An absent set or empty amount is
// zero, matching how order totals behave for stores that omit them.
func (m *MoneySet) Amount() (decimal.Decimal, error) {
	if m == nil || m.PresentmentMoney.Amount == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(m.PresentmentMoney.Amount)
}

type ProductNode struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Handle      *string                 `json:"handle"`
	Vendor      *string                 `json:"vendor"`
	ProductType *string                 `json:"productType"`
	Status      *string                 `json:"status"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	Variants    Connection[VariantNode] `json:"variants"`
}

type VariantNode struct {
	ID                string             `json:"id"`
	Title             *string            `json:"title"`
	SKU               *string            `json:"sku"`
	Barcode           *string            `json:"barcode"`
	Price             *string            `json:"price"`
	CompareAtPrice    *string            `json:"compareAtPrice"`
	InventoryQuantity *int32             `json:"inventoryQuantity"`
	InventoryItem     *InventoryItemNode `json:"inventoryItem"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

type InventoryItemNode struct {
	ID       string    `json:"id"`
	UnitCost *UnitCost `json:"unitCost"`
}

type UnitCost struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type OrderNode struct {
	ID                           string                   `json:"id"`
	Name                         string                   `json:"name"`
	ProcessedAt                  time.Time                `json:"processedAt"`
	UpdatedAt                    *time.Time               `json:"updatedAt"`
	CurrencyCode                 string                   `json:"currencyCode"`
	CurrentSubtotalLineItemsSet  *MoneySet                `json:"currentSubtotalLineItemsSet"`
	CurrentTotalDiscountsSet     *MoneySet                `json:"currentTotalDiscountsSet"`
	CurrentTotalTaxSet           *MoneySet                `json:"currentTotalTaxSet"`
	CurrentTotalShippingPriceSet *MoneySet                `json:"currentTotalShippingPriceSet"`
	CurrentTotalPriceSet         *MoneySet                `json:"currentTotalPriceSet"`
	FinancialStatus              *string                  `json:"financialStatus"`
	FulfillmentStatus            *string                  `json:"fulfillmentStatus"`
	DiscountCodes                json.RawMessage          `json:"discountCodes"`
	ShippingLines                json.RawMessage          `json:"shippingLines"`
	LineItems                    Connection[LineItemNode] `json:"lineItems"`
}

type LineItemNode struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Product              *ProductRef `json:"product"`
	Variant              *VariantRef `json:"variant"`
	Quantity             int32       `json:"quantity"`
	OriginalUnitPriceSet *MoneySet   `json:"originalUnitPriceSet"`
	TotalDiscountSet     *MoneySet   `json:"totalDiscountSet"`
	DiscountedTotalSet   *MoneySet   `json:"discountedTotalSet"`
	FulfillmentStatus    *string     `json:"fulfillmentStatus"`
}

// ProductRef and VariantRef are the shallow references a line item carries
// back to catalog records.
type ProductRef struct {
	ID string `json:"id"`
}

type VariantRef struct {
	ID    string  `json:"id"`
	SKU   *string `json:"sku"`
	Title *string `json:"title"`
}
