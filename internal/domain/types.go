package domain

import "time"

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category"`
	IsAvailable bool    `json:"is_available"`
	BranchID    *string `json:"branchId,omitempty"`
	Ingredients []any   `json:"ingredients"`
}

// Raw renders the item back into an untyped record using the canonical keys.
func (m *MenuItem) Raw() map[string]any {
	raw := map[string]any{
		"id":           m.ID,
		"name":         m.Name,
		"price":        m.Price,
		"description":  m.Description,
		"imageUrl":     m.ImageURL,
		"category":     m.Category,
		"is_available": m.IsAvailable,
		"ingredients":  m.Ingredients,
	}
	if m.BranchID != nil {
		raw["branchId"] = *m.BranchID
	}
	return raw
}

type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BranchRef is the nested branch record carried by a permission grant. Every
// field is optional on the wire.
type BranchRef struct {
	Name      *string    `json:"name,omitempty"`
	Location  *string    `json:"location,omitempty"`
	Address   *string    `json:"address,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Email     *string    `json:"email,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type BranchPermission struct {
	BranchID        int64           `json:"branch_id"`
	PermissionLevel PermissionLevel `json:"permission_level"`
	Branch          *BranchRef      `json:"branch,omitempty"`
}

type User struct {
	ID                int64              `json:"id"`
	Username          string             `json:"username"`
	Email             string             `json:"email"`
	FullName          string             `json:"full_name,omitempty"`
	Role              Role               `json:"role"`
	BranchID          *int64             `json:"branch_id,omitempty"`
	IsActive          bool               `json:"is_active"`
	IsSuperuser       bool               `json:"is_superuser"`
	CreatedAt         *time.Time         `json:"created_at,omitempty"`
	LastLogin         *time.Time         `json:"last_login,omitempty"`
	BranchPermissions []BranchPermission `json:"branch_permissions"`
}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}
