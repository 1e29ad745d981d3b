package routes

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"business-assistant-backend/services"
	"business-assistant-backend/utils"
)

// SetupCatalogRoutes wires product search, lookup, and stock checks.
func SetupCatalogRoutes(router *gin.Engine, catalog *services.CatalogService) {
	group := router.Group("/catalog")

	group.GET("/search", func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			utils.RespondWithBadRequest(c, "Query parameter 'q' is required", nil)
			return
		}

		products, err := catalog.SearchProducts(c.Request.Context(), q, c.Query("category"))
		if err != nil {
			utils.RespondWithInternalError(c, "Product search failed", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	})

	group.GET("/categories", func(c *gin.Context) {
		categories, err := catalog.ListCategories(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list categories", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	})

	group.GET("/inventory", func(c *gin.Context) {
		lowStock := c.Query("low_stock") == "true"
		items, err := catalog.CheckInventory(c.Request.Context(), c.Query("category"), lowStock)
		if err != nil {
			utils.RespondWithInternalError(c, "Inventory check failed", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	})

	group.GET("/inventory/summary", func(c *gin.Context) {
		summary, err := catalog.GetInventorySummary(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Inventory summary failed", nil)
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	group.GET("/products/:sku", func(c *gin.Context) {
		product, err := catalog.GetProduct(c.Request.Context(), c.Param("sku"))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.RespondWithNotFound(c, "Product not found")
				return
			}
			utils.RespondWithInternalError(c, "Product lookup failed", nil)
			return
		}
		c.JSON(http.StatusOK, product)
	})

	group.GET("/products/:sku/stock", func(c *gin.Context) {
		stock, err := catalog.CheckStock(c.Request.Context(), c.Param("sku"))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.RespondWithNotFound(c, "Product not found")
				return
			}
			utils.RespondWithInternalError(c, "Stock check failed", nil)
			return
		}
		c.JSON(http.StatusOK, stock)
	})
}
