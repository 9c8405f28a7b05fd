package main

import (
	"context"
	"os"

	"localmart/internal/backend"
	"localmart/internal/catalog"
	"localmart/internal/config"
	"localmart/internal/dataaccess"
	"localmart/internal/models"
	"localmart/internal/pending"
	"localmart/internal/server"
	"localmart/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}

	docs, blobs, identity := buildBackend(cfg)

	plog, err := pending.Open(cfg.DataDir)
	if err != nil {
		utils.Fatal("failed to open pending write log", map[string]any{
			"dataDir": cfg.DataDir,
			"error":   err.Error(),
		})
	}
	defer plog.Close()

	data := dataaccess.New(docs, blobs, plog,
		dataaccess.WithQueryTTL(cfg.Cache.QueryTTL),
		dataaccess.WithSnapshotTTL(cfg.Cache.SnapshotTTL),
		dataaccess.WithReconnectDelay(cfg.Cache.ReconnectDelay),
	)
	defer data.Close()

	if err := data.ReplayPending(context.Background()); err != nil {
		utils.Warn("pending write replay incomplete", map[string]any{"error": err.Error()})
	}

	marketSvc := catalog.NewService(data, catalog.DefaultCollections(cfg.AppID))

	router := server.SetupRouter(marketSvc, identity)

	utils.Info("starting marketplace server", map[string]any{"addr": cfg.Addr()})
	if err := router.Run(cfg.Addr()); err != nil {
		utils.Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// buildBackend wires the configured remote backend, or falls back to the
// in-memory store for local development when BACKEND_URL is unset.
func buildBackend(cfg *config.Config) (backend.DocumentStore, backend.BlobStore, backend.Identity) {
	if cfg.Backend.URL == "" {
		utils.Warn("BACKEND_URL not set, using in-memory store", nil)
		mem := backend.NewMemoryStore()
		prepopulate(mem, cfg.AppID)
		return mem, mem, mem
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.URL,
		APIKey:  cfg.Backend.APIKey,
	})
	if err != nil {
		utils.Fatal("failed to build backend client", map[string]any{"error": err.Error()})
	}
	return client, client, client
}

// prepopulate seeds the in-memory store with sample listings and a dev token.
func prepopulate(mem *backend.MemoryStore, appID string) {
	cols := catalog.DefaultCollections(appID)

	mem.AddDocument(cols.SellItems, "sample1", backend.Document{
		"name":           "Mountain bike",
		"description":    "Hardtail, recently serviced",
		"category":       "Vehicles",
		"price":          180.0,
		"status":         "available",
		"whatsappNumber": "+386401234567",
		"images":         []any{"https://blobs.localmart.dev/images/sample/bike.jpg"},
		"userId":         "dev-user",
		"userEmail":      "dev@localmart.dev",
		"userName":       "Dev User",
	})
	mem.AddDocument(cols.LostFoundItems, "sample2", backend.Document{
		"name":           "House keys",
		"description":    "Found near the market entrance",
		"category":       "Keys",
		"status":         "found",
		"whatsappNumber": "+386401234567",
		"images":         []any{"https://blobs.localmart.dev/images/sample/keys.jpg"},
		"userId":         "dev-user",
		"userEmail":      "dev@localmart.dev",
		"userName":       "Dev User",
	})

	token := utils.GenerateID()
	mem.RegisterToken(token, models.User{
		UserID:      "dev-user",
		Email:       "dev@localmart.dev",
		DisplayName: "Dev User",
	})
	utils.Info("registered development token", map[string]any{"token": token})
}
