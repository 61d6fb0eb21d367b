// Package purchases verifies signed in-app purchase transactions and grants
// the purchased credits through the user's ledger.
package purchases

import "time"

type ProductKind string

const (
	KindConsumable   ProductKind = "consumable"
	KindSubscription ProductKind = "subscription"
)

const (
	ProductCredits10  = "com.flygen.credits.10"
	ProductCredits25  = "com.flygen.credits.25"
	ProductCredits60  = "com.flygen.credits.60"
	ProductProMonthly = "com.flygen.pro.monthly"
)

type Product struct {
	ID          string        `json:"id"`
	Kind        ProductKind   `json:"kind"`
	DisplayName string        `json:"display_name"`
	Credits     int           `json:"credits"`
	Period      time.Duration `json:"-"`
}

// Catalog is the fixed list of products sold in the app.
type Catalog struct {
	products []Product
	byID     map[string]Product
}

func DefaultCatalog() *Catalog {
	return NewCatalog([]Product{
		{ID: ProductCredits10, Kind: KindConsumable, DisplayName: "10 Credits", Credits: 10},
		{ID: ProductCredits25, Kind: KindConsumable, DisplayName: "25 Credits", Credits: 25},
		{ID: ProductCredits60, Kind: KindConsumable, DisplayName: "60 Credits", Credits: 60},
		{ID: ProductProMonthly, Kind: KindSubscription, DisplayName: "FlyGen Pro (monthly)", Credits: 50, Period: 30 * 24 * time.Hour},
	})
}

func NewCatalog(products []Product) *Catalog {
	c := &Catalog{byID: make(map[string]Product, len(products))}
	for _, p := range products {
		c.products = append(c.products, p)
		c.byID[p.ID] = p
	}
	return c
}

func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}
