package server

import (
	"localmart/internal/backend"
	"localmart/internal/catalog"
	handler "localmart/services/market/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(service handler.MarketServiceInterface, identity backend.Identity) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	marketHandler := handler.NewMarketHandler(service)
	auth := AuthMiddleware(identity)

	items := router.Group("/items")
	{
		items.GET("", marketHandler.ListListingsHandler(catalog.SectionSell))
		items.GET("/live", marketHandler.LiveListingsHandler(catalog.SectionSell))
		items.POST("", auth, marketHandler.CreateListingHandler(catalog.SectionSell))
		items.PUT("/:listing_id", auth, marketHandler.UpdateListingHandler(catalog.SectionSell))
		items.DELETE("/:listing_id", auth, marketHandler.DeleteListingHandler(catalog.SectionSell))
	}

	lostfound := router.Group("/lostfound")
	{
		lostfound.GET("", marketHandler.ListListingsHandler(catalog.SectionLostFound))
		lostfound.GET("/live", marketHandler.LiveListingsHandler(catalog.SectionLostFound))
		lostfound.POST("", auth, marketHandler.CreateListingHandler(catalog.SectionLostFound))
		lostfound.PUT("/:listing_id", auth, marketHandler.UpdateListingHandler(catalog.SectionLostFound))
		lostfound.DELETE("/:listing_id", auth, marketHandler.DeleteListingHandler(catalog.SectionLostFound))
	}

	my := router.Group("/my", auth)
	{
		my.GET("/items", marketHandler.MyListingsHandler(catalog.SectionSell))
		my.GET("/lostfound", marketHandler.MyListingsHandler(catalog.SectionLostFound))
	}

	router.POST("/images", auth, marketHandler.UploadImagesHandler)

	return router
}
