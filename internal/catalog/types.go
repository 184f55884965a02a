package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidItem marks a decoded item that violates the catalog invariants.
var ErrInvalidItem = errors.New("invalid catalog item")

// Item is one product row of a category listing.
type Item struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	ThumbnailURL string          `json:"thumbnail"`
}

// ItemDetail is the full product record returned by /products/{id}.
type ItemDetail struct {
	Item
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Images             []string `json:"images"`
}

// ListResponse is the payload of /products/category/{name}.
type ListResponse struct {
	Products []Item `json:"products"`
	Total    int    `json:"total"`
	Skip     int    `json:"skip"`
	Limit    int    `json:"limit"`
}

// Validate reports whether the item satisfies the catalog invariants.
func (i Item) Validate() error {
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: item %d has negative price %s", ErrInvalidItem, i.ID, i.Price)
	}
	return nil
}

// Validate checks the listing fields plus rating and stock bounds.
func (d ItemDetail) Validate() error {
	if err := d.Item.Validate(); err != nil {
		return err
	}
	if d.Rating < 0 || d.Rating > 5 {
		return fmt.Errorf("%w: item %d rating %.2f outside 0..5", ErrInvalidItem, d.ID, d.Rating)
	}
	if d.Stock < 0 {
		return fmt.Errorf("%w: item %d has negative stock %d", ErrInvalidItem, d.ID, d.Stock)
	}
	return nil
}

// DisplayImage returns the first gallery image, or the thumbnail when the
// gallery is empty.
func (d ItemDetail) DisplayImage() string {
	for _, img := range d.Images {
		if img != "" {
			return img
		}
	}
	return d.ThumbnailURL
}

// FormattedPrice renders the price with two decimals, e.g. "$129.99".
func (i Item) FormattedPrice() string {
	return "$" + i.Price.StringFixed(2)
}

func validateList(items []Item) error {
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidItem, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
