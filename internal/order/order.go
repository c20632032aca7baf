package order

// Order statuses. Orders start pending and only an administrative action
// moves them along.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Item is an immutable order line. Name and price are snapshotted at
// creation and never re-read from the catalog.
type Item struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// ShippingAddress is the delivery snapshot taken at checkout.
type ShippingAddress struct {
	FullName string `json:"fullName,omitempty"`
	Line1    string `json:"line1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Order is an immutable historical record of a checkout. After creation only
// Status ever changes.
type Order struct {
	ID              int             `json:"orderId"`
	UserID          int             `json:"userId"`
	Items           []Item          `json:"items"`
	Total           float64         `json:"total"`
	Status          string          `json:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}

func validStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
