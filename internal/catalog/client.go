package catalog

import "context"

// Product is a catalog record as returned by the product service.
// Price is the current unit price; callers snapshot it at order time.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Client validates a batch of product ids against the catalog service.
// Validate must fail when any requested id is unknown; it never silently
// omits records.
type Client interface {
	Validate(ctx context.Context, ids []string) ([]Product, error)
}
