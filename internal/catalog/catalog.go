package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Item is one priced catalog entry. Amounts are in cents; CnAmountCents is the
// CNY price used when the buyer checks out in cny.
type Item struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	AmountCents   int64  `json:"amount_cents"`
	CnAmountCents int64  `json:"cn_amount_cents"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval"` // one-time | month | year
	Credits       int    `json:"credits"`
	ValidMonths   int    `json:"valid_months"`
}

type Catalog struct {
	items []Item
}

func New(items []Item) *Catalog {
	return &Catalog{items: items}
}

// Default is the built-in pricing table, matching the products configured at
// the payment providers.
func Default() *Catalog {
	return New([]Item{
		{ProductID: "starter", ProductName: "Starter", AmountCents: 990, CnAmountCents: 6900, Currency: "usd", Interval: "month", Credits: 50, ValidMonths: 1},
		{ProductID: "starter_yearly", ProductName: "Starter Yearly", AmountCents: 9900, CnAmountCents: 69900, Currency: "usd", Interval: "year", Credits: 600, ValidMonths: 12},
		{ProductID: "standard", ProductName: "Standard", AmountCents: 1990, CnAmountCents: 13900, Currency: "usd", Interval: "month", Credits: 150, ValidMonths: 1},
		{ProductID: "standard_yearly", ProductName: "Standard Yearly", AmountCents: 19900, CnAmountCents: 139900, Currency: "usd", Interval: "year", Credits: 1800, ValidMonths: 12},
		{ProductID: "premium", ProductName: "Premium", AmountCents: 4990, CnAmountCents: 34900, Currency: "usd", Interval: "month", Credits: 500, ValidMonths: 1},
		{ProductID: "premium_yearly", ProductName: "Premium Yearly", AmountCents: 49900, CnAmountCents: 349900, Currency: "usd", Interval: "year", Credits: 6000, ValidMonths: 12},
		{ProductID: "credits_pack", ProductName: "Credits Pack", AmountCents: 500, CnAmountCents: 3500, Currency: "usd", Interval: "one-time", Credits: 30, ValidMonths: 1},
	})
}

// LoadFile reads a JSON array of items, replacing the built-in table.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog %s has no items", path)
	}
	return New(items), nil
}

func (c *Catalog) Items() []Item {
	return c.items
}

// Match finds the entry for product_id whose price matches the submitted
// amount exactly. cny buyers are matched against the CNY price; everyone else
// must match both amount and currency.
func (c *Catalog) Match(productID, currency string, amountCents int64) *Item {
	for i := range c.items {
		item := &c.items[i]
		if item.ProductID != productID {
			continue
		}
		if currency == "cny" {
			if item.CnAmountCents == amountCents {
				return item
			}
			continue
		}
		if item.AmountCents == amountCents && item.Currency == currency {
			return item
		}
	}
	return nil
}
