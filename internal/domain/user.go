package domain

type Role string

const (
	RoleBuyer Role = "buyer"
	RoleShop  Role = "shop"
)

type User struct {
	ID    int64  `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
	Role  Role   `db:"role" json:"type"`
}

// Registration is a sign-up request. Type defaults to buyer.
type Registration struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Name      string `json:"name" validate:"required,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Password2 string `json:"password2" validate:"required"`
	Type      Role   `json:"type" validate:"omitempty,oneof=buyer shop"`
}
