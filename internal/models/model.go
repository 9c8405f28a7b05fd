package models

import "time"

// Item status values. Sale items are available until their owner marks them
// sold; lost-and-found reports derive their status from DateFound.
const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusLost      = "lost"
	StatusFound     = "found"
)

// User is the identity supplied by the external auth provider.
type User struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Item represents a sale listing or a lost-and-found report.
type Item struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Price          *float64   `json:"price,omitempty"` // sale items only, never negative
	Images         []string   `json:"images"`
	ImagePaths     []string   `json:"imagePaths,omitempty"` // blob paths backing Images, for cascade delete
	WhatsAppNumber string     `json:"whatsappNumber"`
	Status         string     `json:"status,omitempty"`
	Location       string     `json:"location,omitempty"`  // lost-and-found only
	DateFound      *time.Time `json:"dateFound,omitempty"` // presence means the item was found
	UserID         string     `json:"userId"`
	UserEmail      string     `json:"userEmail"`
	UserName       string     `json:"userName,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsOwnedBy reports whether the item belongs to the given user.
func (it Item) IsOwnedBy(userID string) bool {
	return userID != "" && it.UserID == userID
}
