package user

// User is an account record. Password and verification code are stored as
// bcrypt hashes and never serialized.
type User struct {
	ID         int    `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`

	// pending email verification state
	VerificationCode    string `json:"-"`
	VerificationExpires string `json:"-"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
