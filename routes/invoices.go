package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"business-assistant-backend/middleware"
	"business-assistant-backend/services"
	"business-assistant-backend/utils"
)

// SetupInvoiceRoutes wires invoice generation and listing. Creation is
// restricted to authenticated callers.
func SetupInvoiceRoutes(router *gin.Engine, invoices *services.InvoiceService, orders *services.OrderService, authMiddleware *middleware.AuthMiddleware) {
	group := router.Group("/invoices")
	group.Use(authMiddleware.RequireAuth())

	group.GET("", func(c *gin.Context) {
		numbers, err := invoices.ListInvoices()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list invoices", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invoices": numbers})
	})

	group.POST("/orders/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			utils.RespondWithBadRequest(c, "Order ID must be an integer", nil)
			return
		}

		order, err := orders.GetOrder(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.RespondWithNotFound(c, "Order not found")
				return
			}
			utils.RespondWithInternalError(c, "Order lookup failed", nil)
			return
		}

		invoice, err := invoices.CreateInvoiceForOrder(c.Request.Context(), order)
		if err != nil {
			utils.RespondWithInternalError(c, "Invoice generation failed", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"number":    invoice.Number,
			"subtotal":  invoice.Subtotal,
			"tax":       invoice.Tax,
			"total":     invoice.Total,
			"file_path": invoice.FilePath,
		})
	})
}
