package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"localmart/internal/backend"
	"localmart/internal/catalog"
	"localmart/internal/dataaccess"
	"localmart/internal/models"
	"localmart/internal/pending"
	"localmart/internal/server"

	"github.com/gin-gonic/gin"
)

const (
	testAppID = "testapp"
	testToken = "test-token"
)

var testUser = models.User{
	UserID:      "user1",
	Email:       "user1@example.com",
	DisplayName: "User One",
}

// SetupTestRouter initializes the full stack over the in-memory store for
// integration testing. The returned store can be used for seeding.
func SetupTestRouter(t *testing.T) (*gin.Engine, *backend.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := backend.NewMemoryStore()
	mem.RegisterToken(testToken, testUser)

	plog, err := pending.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open pending log: %v", err)
	}
	t.Cleanup(func() { plog.Close() })

	data := dataaccess.New(mem, mem, plog)
	t.Cleanup(data.Close)

	service := catalog.NewService(data, catalog.DefaultCollections(testAppID))
	return server.SetupRouter(service, mem), mem
}

// SeedListing inserts a document directly into the sell collection.
func SeedListing(mem *backend.MemoryStore, id string, doc backend.Document) {
	cols := catalog.DefaultCollections(testAppID)
	mem.AddDocument(cols.SellItems, id, doc)
}

// SellListingDoc builds a minimal valid sell listing owned by the given user.
func SellListingDoc(name, userID string, price float64) backend.Document {
	return backend.Document{
		"name":           name,
		"description":    "description of " + name,
		"category":       "Electronics",
		"price":          price,
		"status":         "available",
		"whatsappNumber": "+38640111222",
		"images":         []any{"https://blobs.localmart.dev/images/test/" + name + ".jpg"},
		"userId":         userID,
		"userEmail":      userID + "@example.com",
		"userName":       "User " + userID,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and
// parses the response envelope. An empty token leaves the request anonymous.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}
