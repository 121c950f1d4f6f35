package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/profitpeek/shopsync/internal/models"
	"github.com/profitpeek/shopsync/internal/repository"
	"github.com/profitpeek/shopsync/internal/shopify"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory Store with the same upsert semantics as the
// Postgres repository: rows keyed by remote ID, local ids stable across
// repeated upserts, no deletes.
type fakeStore struct {
	creds     map[string]*models.Credential
	products  map[string]*models.Product
	variants  map[string]*models.Variant
	orders    map[string]*models.Order
	lineItems map[string]*models.LineItem
	nextID    int64
	writes    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		creds:     make(map[string]*models.Credential),
		products:  make(map[string]*models.Product),
		variants:  make(map[string]*models.Variant),
		orders:    make(map[string]*models.Order),
		lineItems: make(map[string]*models.LineItem),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addCredential(clientID string) *models.Credential {
	cred := &models.Credential{
		ID:          s.id(),
		ClientID:    clientID,
		StoreDomain: clientID + ".myshopify.com",
		AccessToken: "shpat_" + clientID,
		APIVersion:  shopify.DefaultAPIVersion,
	}
	s.creds[clientID] = cred
	return cred
}

func (s *fakeStore) GetCredential(ctx context.Context, clientID string) (*models.Credential, error) {
	cred, ok := s.creds[clientID]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	return cred, nil
}

func (s *fakeStore) UpsertCredential(ctx context.Context, cred *models.Credential) error {
	if existing, ok := s.creds[cred.ClientID]; ok {
		cred.ID = existing.ID
	} else {
		cred.ID = s.id()
	}
	cp := *cred
	s.creds[cred.ClientID] = &cp
	s.writes++
	return nil
}

func (s *fakeStore) UpsertProduct(ctx context.Context, p *models.Product) error {
	if existing, ok := s.products[p.ShopifyID]; ok {
		p.ID = existing.ID
	} else {
		p.ID = s.id()
	}
	cp := *p
	s.products[p.ShopifyID] = &cp
	s.writes++
	return nil
}

func (s *fakeStore) UpsertVariant(ctx context.Context, v *models.Variant) error {
	if existing, ok := s.variants[v.ShopifyID]; ok {
		v.ID = existing.ID
	} else {
		v.ID = s.id()
	}
	cp := *v
	s.variants[v.ShopifyID] = &cp
	s.writes++
	return nil
}

func (s *fakeStore) UpsertOrder(ctx context.Context, o *models.Order) error {
	if existing, ok := s.orders[o.ShopifyID]; ok {
		o.ID = existing.ID
		// landing_cost column is untouched by the order upsert itself
		o.LandingCost = existing.LandingCost
	} else {
		o.ID = s.id()
	}
	cp := *o
	s.orders[o.ShopifyID] = &cp
	s.writes++
	return nil
}

func (s *fakeStore) UpsertLineItem(ctx context.Context, li *models.LineItem) error {
	if existing, ok := s.lineItems[li.ShopifyID]; ok {
		li.ID = existing.ID
	} else {
		li.ID = s.id()
	}
	cp := *li
	s.lineItems[li.ShopifyID] = &cp
	s.writes++
	return nil
}

func (s *fakeStore) UpdateOrderLandingCost(ctx context.Context, orderID int64, total decimal.Decimal) error {
	for _, o := range s.orders {
		if o.ID == orderID {
			o.LandingCost = total
			s.writes++
			return nil
		}
	}
	return fmt.Errorf("order %d not found", orderID)
}

func (s *fakeStore) ListVariantCosts(ctx context.Context, clientID string) ([]models.VariantCost, error) {
	productClient := make(map[int64]string, len(s.products))
	for _, p := range s.products {
		productClient[p.ID] = p.ClientID
	}
	var costs []models.VariantCost
	for _, v := range s.variants {
		if productClient[v.ProductID] == clientID {
			costs = append(costs, models.VariantCost{ShopifyID: v.ShopifyID, InventoryCost: v.InventoryCost})
		}
	}
	return costs, nil
}

func (s *fakeStore) CountOrders(ctx context.Context, clientID string) (int64, error) {
	var n int64
	for _, o := range s.orders {
		if o.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

// lineItemsForOrder returns the stored line items belonging to an order.
func (s *fakeStore) lineItemsForOrder(orderID int64) []*models.LineItem {
	var items []*models.LineItem
	for _, li := range s.lineItems {
		if li.OrderID == orderID {
			items = append(items, li)
		}
	}
	return items
}

// fakeRemote serves scripted pages. A nil page entry simulates a response
// without a connection object. reset() rewinds it for a second run.
type fakeRemote struct {
	shop         *shopify.Shop
	shopErr      error
	shopCalls    int
	productPages []*shopify.ProductConnection
	orderPages   []*shopify.OrderConnection
	productCalls int
	orderCalls   int
	lastFilter   string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{shop: &shopify.Shop{Name: "Acme", MyshopifyDomain: "acme.myshopify.com"}}
}

func (f *fakeRemote) reset() {
	f.productCalls = 0
	f.orderCalls = 0
}

func (f *fakeRemote) ShopInfo(ctx context.Context, cred *models.Credential) (*shopify.Shop, error) {
	f.shopCalls++
	if f.shopErr != nil {
		return nil, f.shopErr
	}
	return f.shop, nil
}

func (f *fakeRemote) ProductPage(ctx context.Context, cred *models.Credential, cursor *string) (*shopify.ProductConnection, error) {
	if f.productCalls >= len(f.productPages) {
		return nil, fmt.Errorf("unexpected product page fetch %d", f.productCalls)
	}
	page := f.productPages[f.productCalls]
	f.productCalls++
	return page, nil
}

func (f *fakeRemote) OrderPage(ctx context.Context, cred *models.Credential, cursor *string, filter string) (*shopify.OrderConnection, error) {
	f.lastFilter = filter
	if f.orderCalls >= len(f.orderPages) {
		return nil, fmt.Errorf("unexpected order page fetch %d", f.orderCalls)
	}
	page := f.orderPages[f.orderCalls]
	f.orderCalls++
	return page, nil
}

// Fixture builders.

func strp(s string) *string { return &s }

func moneySet(amount string) *shopify.MoneySet {
	m := &shopify.MoneySet{}
	m.PresentmentMoney.Amount = amount
	return m
}

func productPage(hasNext bool, cursor string, nodes ...shopify.ProductNode) *shopify.ProductConnection {
	conn := &shopify.ProductConnection{
		PageInfo: shopify.PageInfo{HasNextPage: hasNext, EndCursor: strp(cursor)},
	}
	for _, n := range nodes {
		conn.Edges = append(conn.Edges, shopify.Edge[shopify.ProductNode]{Cursor: cursor, Node: n})
	}
	return conn
}

func orderPage(hasNext bool, cursor string, nodes ...shopify.OrderNode) *shopify.OrderConnection {
	conn := &shopify.OrderConnection{
		PageInfo: shopify.PageInfo{HasNextPage: hasNext, EndCursor: strp(cursor)},
	}
	for _, n := range nodes {
		conn.Edges = append(conn.Edges, shopify.Edge[shopify.OrderNode]{Cursor: cursor, Node: n})
	}
	return conn
}

func productNode(id, title string, variants ...shopify.VariantNode) shopify.ProductNode {
	node := shopify.ProductNode{
		ID:        id,
		Title:     title,
		Handle:    strp(title + "-handle"),
		Status:    strp("ACTIVE"),
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, v := range variants {
		node.Variants.Edges = append(node.Variants.Edges, shopify.Edge[shopify.VariantNode]{Node: v})
	}
	return node
}

func variantNode(id, sku string, unitCost *string) shopify.VariantNode {
	node := shopify.VariantNode{
		ID:        id,
		SKU:       strp(sku),
		Price:     strp("29.99"),
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	item := &shopify.InventoryItemNode{ID: id + "-inv"}
	if unitCost != nil {
		item.UnitCost = &shopify.UnitCost{Amount: *unitCost, CurrencyCode: "USD"}
	}
	node.InventoryItem = item
	return node
}

func orderNode(id, name string, lineItems ...shopify.LineItemNode) shopify.OrderNode {
	node := shopify.OrderNode{
		ID:                           id,
		Name:                         name,
		ProcessedAt:                  time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
		CurrencyCode:                 "USD",
		CurrentSubtotalLineItemsSet:  moneySet("100.00"),
		CurrentTotalPriceSet:         moneySet("120.00"),
		CurrentTotalDiscountsSet:     moneySet("10.00"),
		CurrentTotalShippingPriceSet: moneySet("5.00"),
		CurrentTotalTaxSet:           moneySet("8.00"),
		FinancialStatus:              strp("PAID"),
		FulfillmentStatus:            strp("FULFILLED"),
	}
	for _, li := range lineItems {
		node.LineItems.Edges = append(node.LineItems.Edges, shopify.Edge[shopify.LineItemNode]{Node: li})
	}
	return node
}

func lineItemNode(id, variantID string, quantity int32) shopify.LineItemNode {
	node := shopify.LineItemNode{
		ID:                   id,
		Title:                "Widget",
		Quantity:             quantity,
		OriginalUnitPriceSet: moneySet("29.99"),
		TotalDiscountSet:     moneySet("0.00"),
	}
	if variantID != "" {
		node.Variant = &shopify.VariantRef{ID: variantID, SKU: strp("SKU-" + variantID)}
	}
	return node
}
