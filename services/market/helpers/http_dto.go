package helpers

import (
	"time"

	"localmart/internal/models"
)

// Request/Response DTOs
type ListingRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	Category       string     `json:"category" binding:"required"`
	Price          *float64   `json:"price"`
	Images         []string   `json:"images" binding:"required,min=1,max=5"`
	ImagePaths     []string   `json:"image_paths"`
	WhatsAppNumber string     `json:"whatsapp_number" binding:"required"`
	Status         string     `json:"status"`
	Location       string     `json:"location"`
	DateFound      *time.Time `json:"date_found"`
}

type ItemResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Price          *float64 `json:"price,omitempty"`
	Images         []string `json:"images"`
	ImagePaths     []string `json:"image_paths,omitempty"`
	WhatsAppNumber string   `json:"whatsapp_number"`
	Status         string   `json:"status,omitempty"`
	Location       string   `json:"location,omitempty"`
	DateFound      string   `json:"date_found,omitempty"`
	UserID         string   `json:"user_id"`
	UserName       string   `json:"user_name,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type ListingPageResponse struct {
	Items      []ItemResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

// NewItemResponse converts a domain item to its wire shape.
func NewItemResponse(item models.Item) ItemResponse {
	resp := ItemResponse{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		Category:       item.Category,
		Price:          item.Price,
		Images:         item.Images,
		ImagePaths:     item.ImagePaths,
		WhatsAppNumber: item.WhatsAppNumber,
		Status:         item.Status,
		Location:       item.Location,
		UserID:         item.UserID,
		UserName:       item.UserName,
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.DateFound != nil {
		resp.DateFound = item.DateFound.UTC().Format(time.RFC3339)
	}
	return resp
}

// NewListingPageResponse converts a page of listings to its wire shape.
func NewListingPageResponse(items []models.Item, nextCursor string, hasMore bool) ListingPageResponse {
	resp := ListingPageResponse{
		Items:      make([]ItemResponse, 0, len(items)),
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, NewItemResponse(item))
	}
	return resp
}
