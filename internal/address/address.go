package address

// Address types selectable by the user.
const (
	TypeHome  = "Home"
	TypeWork  = "Work"
	TypeOther = "Other"
)

// Address is a delivery address owned by exactly one user. Among all
// addresses of an owner at most one carries IsDefault, and whenever the
// owner has any address exactly one must be default after a mutation
// completes.
type Address struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Type      string `json:"type"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func validType(t string) bool {
	switch t {
	case TypeHome, TypeWork, TypeOther:
		return true
	}
	return false
}
