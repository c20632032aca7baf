package wishlist

import "github.com/flamecrumble/storefront-backend/internal/product"

// Item marks a product as wished for. Presence is boolean: there is no
// quantity and duplicates are rejected.
type Item struct {
	ProductID int             `json:"productId"`
	AddedAt   string          `json:"addedAt"`
	Product   product.Product `json:"product"`
}

// Wishlist is the single wishlist of one user, created lazily and never
// auto-destroyed.
type Wishlist struct {
	ID     int    `json:"wishlistId,omitempty"`
	UserID int    `json:"userId,omitempty"`
	Items  []Item `json:"items"`
}
