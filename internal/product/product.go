package product

// Product categories offered by the shop.
const (
	CategoryCandles    = "candles"
	CategoryCookies    = "cookies"
	CategoryChocolates = "chocolates"
)

// Product is a catalog entry. Identity is immutable; attributes change only
// through the admin path, which owns catalog cache invalidation.
type Product struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Category   string  `json:"category"`
	Stock      int     `json:"stock"`
	Image      string  `json:"image"`
	IsFeatured bool    `json:"isFeatured"`
	CreatedAt  string  `json:"createdAt,omitempty"`
	UpdatedAt  string  `json:"updatedAt,omitempty"`
}

func validCategory(c string) bool {
	switch c {
	case CategoryCandles, CategoryCookies, CategoryChocolates:
		return true
	}
	return false
}
