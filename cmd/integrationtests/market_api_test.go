package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"localmart/services/market/helpers"

	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func validListingRequest(name string) helpers.ListingRequest {
	return helpers.ListingRequest{
		Name:           name,
		Description:    "a perfectly fine " + name,
		Category:       "Electronics",
		Price:          floatPtr(25),
		Images:         []string{"https://blobs.localmart.dev/images/test/" + name + ".jpg"},
		WhatsAppNumber: "+386 40 111 222",
	}
}

// CreateListingHandler Tests
func TestCreateListingHandler(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		request    any
		wantStatus int
	}{
		{
			name:       "Valid_Listing",
			token:      testToken,
			request:    validListingRequest("headphones"),
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Invalid_JSON",
			token:      testToken,
			request:    []byte("{name: 'missing quotes'}"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Missing_Token",
			token:      "",
			request:    validListingRequest("headphones"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "Unknown_Category",
			token: testToken,
			request: func() helpers.ListingRequest {
				r := validListingRequest("headphones")
				r.Category = "Spaceships"
				return r
			}(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "Missing_Price",
			token: testToken,
			request: func() helpers.ListingRequest {
				r := validListingRequest("headphones")
				r.Price = nil
				return r
			}(),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := SetupTestRouter(t)
			resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/items", tt.token, tt.request)
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.NotEmpty(t, data["id"])
			}
		})
	}
}

// ListListingsHandler Tests
func TestListListingsHandler(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantNames []string
	}{
		{
			name:      "All_Listings",
			url:       "/items",
			wantNames: []string{"bike", "kettle"},
		},
		{
			name:      "Search_Filter",
			url:       "/items?q=bike",
			wantNames: []string{"bike"},
		},
		{
			name:      "Min_Price_Filter",
			url:       "/items?min_price=100",
			wantNames: []string{"bike"},
		},
		{
			name:      "No_Match",
			url:       "/items?q=zeppelin",
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mem := SetupTestRouter(t)
			SeedListing(mem, "l1", SellListingDoc("bike", "user2", 180))
			SeedListing(mem, "l2", SellListingDoc("kettle", "user2", 15))

			resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, tt.url, "", nil)
			require.Equal(t, http.StatusOK, w.Code)

			data := resp["data"].(map[string]any)
			items := data["items"].([]any)
			require.Len(t, items, len(tt.wantNames))

			names := map[string]bool{}
			for _, i := range items {
				it := i.(map[string]any)
				names[it["name"].(string)] = true
			}
			for _, n := range tt.wantNames {
				require.True(t, names[n], "expected listing %q in response", n)
			}
		})
	}
}

// UpdateListingHandler Tests
func TestUpdateListingHandler(t *testing.T) {
	tests := []struct {
		name       string
		listingID  string
		owner      string
		wantStatus int
	}{
		{
			name:       "Owner_Can_Update",
			listingID:  "l1",
			owner:      testUser.UserID,
			wantStatus: http.StatusOK,
		},
		{
			name:       "Non_Owner_Rejected",
			listingID:  "l1",
			owner:      "someone-else",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "Not_Found",
			listingID:  "missing",
			owner:      testUser.UserID,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mem := SetupTestRouter(t)
			SeedListing(mem, "l1", SellListingDoc("bike", tt.owner, 180))

			update := validListingRequest("bike")
			update.Price = floatPtr(150)

			_, w := ExecuteRequestAndParse(t, router, http.MethodPut, "/items/"+tt.listingID, testToken, update)
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/items", "", nil)
				require.Equal(t, http.StatusOK, w.Code)
				items := resp["data"].(map[string]any)["items"].([]any)
				require.Len(t, items, 1)
				require.Equal(t, 150.0, items[0].(map[string]any)["price"])
			}
		})
	}
}

// DeleteListingHandler Tests
func TestDeleteListingHandler(t *testing.T) {
	router, mem := SetupTestRouter(t)
	SeedListing(mem, "l1", SellListingDoc("bike", testUser.UserID, 180))

	_, w := ExecuteRequestAndParse(t, router, http.MethodDelete, "/items/l1", testToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := resp["data"].(map[string]any)["items"].([]any)
	require.Empty(t, items)

	_, w = ExecuteRequestAndParse(t, router, http.MethodDelete, "/items/l1", testToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

// MyListingsHandler Tests
func TestMyListingsHandler(t *testing.T) {
	router, mem := SetupTestRouter(t)
	SeedListing(mem, "mine", SellListingDoc("bike", testUser.UserID, 180))
	SeedListing(mem, "theirs", SellListingDoc("kettle", "user2", 15))

	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/my/items", testToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	items := resp["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, "bike", items[0].(map[string]any)["name"])

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/my/items", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// Full round trip through create and list, exercising cache invalidation.
func TestCreateThenListRoundTrip(t *testing.T) {
	router, _ := SetupTestRouter(t)

	// Prime the list cache with an empty first page.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"].(map[string]any)["items"])

	created, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/items", testToken, validListingRequest("lamp"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := created["data"].(map[string]any)["id"].(string)

	// The new listing must be visible immediately despite the cached page.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := resp["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)

	got := items[0].(map[string]any)
	require.Equal(t, id, got["id"])
	require.Equal(t, "lamp", got["name"])
	require.Equal(t, testUser.UserID, got["user_id"])
	require.Equal(t, "+38640111222", got["whatsapp_number"])

	_, err := time.Parse(time.RFC3339, got["created_at"].(string))
	require.NoError(t, err)
}
