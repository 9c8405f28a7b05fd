package handler

import (
	"context"
	"io"
	"net/http"
	"sync"

	"localmart/internal/catalog"
	"localmart/internal/dataaccess"
	"localmart/internal/models"
	"localmart/services/market/helpers"
	"localmart/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type MarketServiceInterface interface {
	ListListings(ctx context.Context, section catalog.Section, f catalog.ListingFilter) (catalog.ListingPage, error)
	MyListings(ctx context.Context, section catalog.Section, userID string, pageSize int, cursor string) (catalog.ListingPage, error)
	CreateListing(ctx context.Context, section catalog.Section, user models.User, in catalog.ListingInput) (string, error)
	UpdateListing(ctx context.Context, section catalog.Section, id string, user models.User, in catalog.ListingInput) error
	DeleteListing(ctx context.Context, section catalog.Section, id string, user models.User) error
	UploadImages(ctx context.Context, user models.User, files []dataaccess.File, onProgress func(float64)) (dataaccess.UploadResult, error)
	WatchListings(ctx context.Context, section catalog.Section, f catalog.ListingFilter, onUpdate func([]models.Item), onError func(error)) (func(), error)
}

type MarketHandler struct {
	service  MarketServiceInterface
	upgrader websocket.Upgrader
}

func NewMarketHandler(service MarketServiceInterface) *MarketHandler {
	return &MarketHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// ListListingsHandler handles GET /items and GET /lostfound
func (h *MarketHandler) ListListingsHandler(section catalog.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := helpers.ParseListingFilter(c)
		page, err := h.service.ListListings(c.Request.Context(), section, filter)
		if err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONError(c, status, err, message)
			utils.Warn("ListListingsHandler: error listing listings", map[string]any{
				"section": string(section),
				"error":   err.Error(),
			})
			return
		}

		utils.JSONResponse(c, http.StatusOK, helpers.NewListingPageResponse(page.Items, page.NextCursor, page.HasMore), "listings retrieved successfully")
		helpers.LogSuccess("ListListingsHandler", "listings retrieved successfully", map[string]any{
			"section": string(section),
			"count":   len(page.Items),
		})
	}
}

// MyListingsHandler handles GET /my/items and GET /my/lostfound
func (h *MarketHandler) MyListingsHandler(section catalog.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := helpers.UserFromContext(c)
		filter := helpers.ParseListingFilter(c)
		page, err := h.service.MyListings(c.Request.Context(), section, user.UserID, filter.PageSize, filter.Cursor)
		if err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONError(c, status, err, message)
			utils.Warn("MyListingsHandler: error listing own listings", map[string]any{
				"section": string(section),
				"user_id": user.UserID,
				"error":   err.Error(),
			})
			return
		}

		utils.JSONResponse(c, http.StatusOK, helpers.NewListingPageResponse(page.Items, page.NextCursor, page.HasMore), "listings retrieved successfully")
		helpers.LogSuccess("MyListingsHandler", "listings retrieved successfully", map[string]any{
			"section": string(section),
			"user_id": user.UserID,
			"count":   len(page.Items),
		})
	}
}

// CreateListingHandler handles POST /items and POST /lostfound
func (h *MarketHandler) CreateListingHandler(section catalog.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req helpers.ListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.HandleBindError(c, "CreateListingHandler", err)
			return
		}

		user, _ := helpers.UserFromContext(c)
		id, err := h.service.CreateListing(c.Request.Context(), section, user, listingInput(req))
		if err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONError(c, status, err, message)
			utils.Error("CreateListingHandler: failed to create listing", map[string]any{
				"section": string(section),
				"user_id": user.UserID,
				"error":   err.Error(),
			})
			return
		}

		utils.JSONResponse(c, http.StatusCreated, helpers.CreatedResponse{ID: id}, "listing created successfully")
		helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
			"section":    string(section),
			"listing_id": id,
			"user_id":    user.UserID,
		})
	}
}

// UpdateListingHandler handles PUT /items/:listing_id and PUT /lostfound/:listing_id
func (h *MarketHandler) UpdateListingHandler(section catalog.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req helpers.ListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.HandleBindError(c, "UpdateListingHandler", err)
			return
		}

		id := c.Param("listing_id")
		user, _ := helpers.UserFromContext(c)
		if err := h.service.UpdateListing(c.Request.Context(), section, id, user, listingInput(req)); err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONError(c, status, err, message)
			utils.Warn("UpdateListingHandler: failed to update listing", map[string]any{
				"section":    string(section),
				"listing_id": id,
				"user_id":    user.UserID,
				"error":      err.Error(),
			})
			return
		}

		utils.JSONResponse(c, http.StatusOK, nil, "listing updated successfully")
		helpers.LogSuccess("UpdateListingHandler", "listing updated successfully", map[string]any{
			"section":    string(section),
			"listing_id": id,
			"user_id":    user.UserID,
		})
	}
}

// DeleteListingHandler handles DELETE /items/:listing_id and DELETE /lostfound/:listing_id
func (h *MarketHandler) DeleteListingHandler(section catalog.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("listing_id")
		user, _ := helpers.UserFromContext(c)
		if err := h.service.DeleteListing(c.Request.Context(), section, id, user); err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONError(c, status, err, message)
			utils.Warn("DeleteListingHandler: failed to delete listing", map[string]any{
				"section":    string(section),
				"listing_id": id,
				"user_id":    user.UserID,
				"error":      err.Error(),
			})
			return
		}

		utils.JSONResponse(c, http.StatusOK, nil, "listing deleted successfully")
		helpers.LogSuccess("DeleteListingHandler", "listing deleted successfully", map[string]any{
			"section":    string(section),
			"listing_id": id,
			"user_id":    user.UserID,
		})
	}
}

// UploadImagesHandler handles POST /images (multipart form, field "images")
func (h *MarketHandler) UploadImagesHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		helpers.HandleBindError(c, "UploadImagesHandler", err)
		return
	}

	var files []dataaccess.File
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			helpers.HandleBindError(c, "UploadImagesHandler", err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			helpers.HandleBindError(c, "UploadImagesHandler", err)
			return
		}
		files = append(files, dataaccess.File{Name: fh.Filename, Data: data})
	}

	user, _ := helpers.UserFromContext(c)
	result, err := h.service.UploadImages(c.Request.Context(), user, files, nil)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		utils.Warn("UploadImagesHandler: upload rejected", map[string]any{
			"user_id": user.UserID,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, result, "images processed")
	helpers.LogSuccess("UploadImagesHandler", "images processed", map[string]any{
		"user_id":    user.UserID,
		"successful": len(result.Successful),
		"failed":     len(result.Failed),
	})
}

// liveFrame is one websocket message on a live listings stream.
type liveFrame struct {
	Items []helpers.ItemResponse `json:"items"`
	Error string                 `json:"error,omitempty"`
}

// LiveListingsHandler handles GET /items/live and GET /lostfound/live. It
// upgrades to a websocket and streams full listing snapshots as they change.
func (h *MarketHandler) LiveListingsHandler(section catalog.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := helpers.ParseListingFilter(c)

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.Warn("LiveListingsHandler: upgrade failed", map[string]any{"error": err.Error()})
			return
		}
		defer conn.Close()

		// Websocket writes must not interleave; snapshots and errors can
		// arrive from different goroutines across reconnects.
		var writeMu sync.Mutex
		writeFrame := func(frame liveFrame) {
			writeMu.Lock()
			defer writeMu.Unlock()
			conn.WriteJSON(frame)
		}

		stop, err := h.service.WatchListings(c.Request.Context(), section, filter,
			func(items []models.Item) {
				page := helpers.NewListingPageResponse(items, "", false)
				writeFrame(liveFrame{Items: page.Items})
			},
			func(err error) {
				writeFrame(liveFrame{Error: err.Error()})
			},
		)
		if err != nil {
			writeFrame(liveFrame{Error: err.Error()})
			return
		}
		defer stop()

		// Block until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func listingInput(req helpers.ListingRequest) catalog.ListingInput {
	return catalog.ListingInput{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price,
		Images:         req.Images,
		ImagePaths:     req.ImagePaths,
		WhatsAppNumber: req.WhatsAppNumber,
		Status:         req.Status,
		Location:       req.Location,
		DateFound:      req.DateFound,
	}
}
