package cart

import "github.com/flamecrumble/storefront-backend/internal/product"

// Item is a cart line. Its id is assigned at creation and stays stable
// across quantity merges; updates and removals address lines by this id,
// not by product.
type Item struct {
	ID        int             `json:"itemId"`
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   product.Product `json:"product"`
}

// Cart holds the open cart of one user. At most one cart exists per owner;
// it is created lazily on the first add and deleted wholesale on checkout.
type Cart struct {
	ID     int    `json:"cartId,omitempty"`
	UserID int    `json:"userId,omitempty"`
	Items  []Item `json:"items"`
}
