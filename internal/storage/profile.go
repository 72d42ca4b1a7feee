package storage

const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

type Profile struct {
	ID           string `json:"id"`
	Login        string `json:"login"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	IsActive     bool   `json:"is_active"`
	PasswordHash string `json:"-"`
}
