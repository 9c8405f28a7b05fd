// Package catalog implements the marketplace business logic: sale listings
// and lost-and-found reports on top of the data access layer.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"localmart/internal/backend"
	"localmart/internal/dataaccess"
	"localmart/internal/marketerrors"
	"localmart/internal/models"
	"localmart/utils"
)

// Section selects the marketplace area a listing belongs to.
type Section string

const (
	SectionSell      Section = "sell"
	SectionLostFound Section = "lostfound"
)

// DefaultWatchLimit caps live subscription result sets.
const DefaultWatchLimit = 50

// Collections maps sections to backend collection paths.
type Collections struct {
	SellItems      string
	LostFoundItems string
}

// DefaultCollections returns the collection layout for an app id.
func DefaultCollections(appID string) Collections {
	return Collections{
		SellItems:      fmt.Sprintf("artifacts/%s/public/data/sell_items", appID),
		LostFoundItems: fmt.Sprintf("artifacts/%s/public/data/lostfound_items", appID),
	}
}

// DataAccess is the slice of the data access layer the catalog consumes.
type DataAccess interface {
	QueryPage(ctx context.Context, collection string, filters []backend.Filter, sortSpec backend.Sort, pageSize int, cursor string, useCache bool) (dataaccess.Page, error)
	GetByIDs(ctx context.Context, collection string, ids []string) ([]backend.Document, error)
	Create(ctx context.Context, collection string, payload backend.Document) (string, error)
	Update(ctx context.Context, collection, id string, patch backend.Document) error
	Delete(ctx context.Context, collection, id string, blobPaths []string) error
	UploadImages(ctx context.Context, files []dataaccess.File, tag string, onProgress func(float64)) dataaccess.UploadResult
	Subscribe(ctx context.Context, collection string, filters []backend.Filter, sortSpec backend.Sort, limit int, onUpdate func([]backend.Document), onError func(error)) func()
}

// Service is the marketplace domain service.
type Service struct {
	data DataAccess
	cols Collections
}

// NewService creates a Service instance.
func NewService(data DataAccess, cols Collections) *Service {
	return &Service{data: data, cols: cols}
}

// ListingFilter carries listing query parameters. Category and Status are
// pushed to the backend; Search and the price range are applied locally to
// the fetched slice.
type ListingFilter struct {
	Category string
	Status   string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string // newest, oldest, price-low, price-high, alphabetical
	PageSize int
	Cursor   string
}

// ListingPage is one page of decoded listings.
type ListingPage struct {
	Items      []models.Item
	NextCursor string
	HasMore    bool
}

// ListingInput carries the caller-editable fields of a listing.
type ListingInput struct {
	Name           string
	Description    string
	Category       string
	Price          *float64
	Images         []string
	ImagePaths     []string
	WhatsAppNumber string
	Status         string // sale items only; lost-and-found status is derived
	Location       string
	DateFound      *time.Time
}

// ListListings returns a page of a section's listings with local search,
// price-range filtering and sorting applied.
func (s *Service) ListListings(ctx context.Context, section Section, f ListingFilter) (ListingPage, error) {
	col, err := s.collection(section)
	if err != nil {
		return ListingPage{}, err
	}

	page, err := s.data.QueryPage(ctx, col, sectionFilters(f), sortSpec(f.SortBy), f.PageSize, f.Cursor, true)
	if err != nil {
		return ListingPage{}, fmt.Errorf("service: failed to list %s listings: %w", section, err)
	}

	items := filterLocal(decodeItems(page.Items), f.Search, f.MinPrice, f.MaxPrice)
	sortItems(items, f.SortBy)

	return ListingPage{Items: items, NextCursor: page.NextCursor, HasMore: page.HasMore}, nil
}

// MyListings returns a page of the user's own listings, newest first.
func (s *Service) MyListings(ctx context.Context, section Section, userID string, pageSize int, cursor string) (ListingPage, error) {
	if userID == "" {
		return ListingPage{}, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidItem)
	}
	col, err := s.collection(section)
	if err != nil {
		return ListingPage{}, err
	}

	filters := []backend.Filter{{Field: "userId", Op: backend.OpEqual, Value: userID}}
	page, err := s.data.QueryPage(ctx, col, filters, sortSpec("newest"), pageSize, cursor, true)
	if err != nil {
		return ListingPage{}, fmt.Errorf("service: failed to list listings for user %s: %w", userID, err)
	}
	return ListingPage{Items: decodeItems(page.Items), NextCursor: page.NextCursor, HasMore: page.HasMore}, nil
}

// GetListing fetches a single listing by id.
func (s *Service) GetListing(ctx context.Context, section Section, id string) (models.Item, error) {
	if id == "" {
		return models.Item{}, fmt.Errorf("service: %w - empty listing ID", marketerrors.ErrInvalidItem)
	}
	col, err := s.collection(section)
	if err != nil {
		return models.Item{}, err
	}

	docs, err := s.data.GetByIDs(ctx, col, []string{id})
	if err != nil {
		return models.Item{}, fmt.Errorf("service: failed to get listing %s: %w", id, err)
	}
	if len(docs) == 0 {
		return models.Item{}, fmt.Errorf("service: listing %s: %w", id, marketerrors.ErrNotFound)
	}
	return decodeItem(docs[0]), nil
}

// CreateListing validates the input and stores a new listing owned by user.
func (s *Service) CreateListing(ctx context.Context, section Section, user models.User, in ListingInput) (string, error) {
	col, err := s.collection(section)
	if err != nil {
		return "", err
	}
	if err := validateListing(section, &in); err != nil {
		return "", err
	}

	doc := listingDoc(section, in)
	doc["userId"] = user.UserID
	doc["userEmail"] = user.Email
	doc["userName"] = user.DisplayName

	id, err := s.data.Create(ctx, col, doc)
	if err != nil {
		return "", fmt.Errorf("service: failed to create %s listing: %w", section, err)
	}
	return id, nil
}

// UpdateListing validates the input and merge-patches an existing listing.
// Only the owner may update.
func (s *Service) UpdateListing(ctx context.Context, section Section, id string, user models.User, in ListingInput) error {
	current, err := s.GetListing(ctx, section, id)
	if err != nil {
		return err
	}
	if !current.IsOwnedBy(user.UserID) {
		return fmt.Errorf("service: update listing %s: %w", id, marketerrors.ErrNotOwner)
	}
	if err := validateListing(section, &in); err != nil {
		return err
	}

	col, err := s.collection(section)
	if err != nil {
		return err
	}
	if err := s.data.Update(ctx, col, id, listingDoc(section, in)); err != nil {
		return fmt.Errorf("service: failed to update listing %s: %w", id, err)
	}
	return nil
}

// DeleteListing removes a listing and cascades to its image blobs. Only the
// owner may delete.
func (s *Service) DeleteListing(ctx context.Context, section Section, id string, user models.User) error {
	current, err := s.GetListing(ctx, section, id)
	if err != nil {
		return err
	}
	if !current.IsOwnedBy(user.UserID) {
		return fmt.Errorf("service: delete listing %s: %w", id, marketerrors.ErrNotOwner)
	}

	col, err := s.collection(section)
	if err != nil {
		return err
	}
	if err := s.data.Delete(ctx, col, id, current.ImagePaths); err != nil {
		return fmt.Errorf("service: failed to delete listing %s: %w", id, err)
	}
	return nil
}

// UploadImages validates the batch size and uploads the files under the
// user's tag. Per-file validation happens in the data access layer.
func (s *Service) UploadImages(ctx context.Context, user models.User, files []dataaccess.File, onProgress func(float64)) (dataaccess.UploadResult, error) {
	if len(files) == 0 {
		return dataaccess.UploadResult{}, fmt.Errorf("service: %w - no files supplied", marketerrors.ErrInvalidItem)
	}
	if len(files) > MaxImages {
		return dataaccess.UploadResult{}, fmt.Errorf("service: %w - at most %d images per upload", marketerrors.ErrInvalidItem, MaxImages)
	}
	return s.data.UploadImages(ctx, files, user.UserID, onProgress), nil
}

// WatchListings subscribes to live updates of a section slice. Snapshots are
// decoded and locally filtered before delivery. The returned stop function
// tears the subscription down.
func (s *Service) WatchListings(ctx context.Context, section Section, f ListingFilter, onUpdate func([]models.Item), onError func(error)) (func(), error) {
	col, err := s.collection(section)
	if err != nil {
		return nil, err
	}
	limit := f.PageSize
	if limit <= 0 {
		limit = DefaultWatchLimit
	}

	stop := s.data.Subscribe(ctx, col, sectionFilters(f), sortSpec(f.SortBy), limit, func(docs []backend.Document) {
		items := filterLocal(decodeItems(docs), f.Search, f.MinPrice, f.MaxPrice)
		sortItems(items, f.SortBy)
		onUpdate(items)
	}, onError)
	return stop, nil
}

func (s *Service) collection(section Section) (string, error) {
	switch section {
	case SectionSell:
		return s.cols.SellItems, nil
	case SectionLostFound:
		return s.cols.LostFoundItems, nil
	default:
		return "", fmt.Errorf("service: %w - unknown section %q", marketerrors.ErrInvalidItem, section)
	}
}

func sectionFilters(f ListingFilter) []backend.Filter {
	return []backend.Filter{
		{Field: "category", Op: backend.OpEqual, Value: f.Category},
		{Field: "status", Op: backend.OpEqual, Value: f.Status},
	}
}

// listingDoc renders the editable fields as a backend document.
func listingDoc(section Section, in ListingInput) backend.Document {
	doc := backend.Document{
		"name":           in.Name,
		"description":    in.Description,
		"category":       in.Category,
		"images":         in.Images,
		"imagePaths":     in.ImagePaths,
		"whatsappNumber": in.WhatsAppNumber,
		"status":         in.Status,
	}
	switch section {
	case SectionSell:
		if in.Price != nil {
			doc["price"] = *in.Price
		}
	case SectionLostFound:
		doc["location"] = in.Location
		if in.DateFound != nil {
			doc["dateFound"] = in.DateFound.UTC()
		} else {
			// Explicit null so a merge patch clears a previous found-date;
			// omitting the field would leave a found item marked lost.
			doc["dateFound"] = nil
		}
	}
	return doc
}

func decodeItems(docs []backend.Document) []models.Item {
	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeItem(doc))
	}
	return items
}

// decodeItem converts a schemaless document into an Item. The JSON round
// trip normalizes value types regardless of whether the document came off the
// wire or from an in-process store.
func decodeItem(doc backend.Document) models.Item {
	var item models.Item
	data, err := json.Marshal(doc)
	if err != nil {
		utils.Warn("skipping undecodable listing document", map[string]any{"error": err.Error()})
		return item
	}
	if err := json.Unmarshal(data, &item); err != nil {
		utils.Warn("skipping malformed listing document", map[string]any{
			"id":    doc.ID(),
			"error": err.Error(),
		})
	}
	return item
}
