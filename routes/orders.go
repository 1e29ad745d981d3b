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

// SetupOrderRoutes wires order lookup and status updates. Status
// changes require an authenticated caller.
func SetupOrderRoutes(router *gin.Engine, orders *services.OrderService, authMiddleware *middleware.AuthMiddleware) {
	group := router.Group("/orders")

	group.GET("", func(c *gin.Context) {
		email := c.Query("customer_email")
		if email == "" {
			utils.RespondWithBadRequest(c, "Query parameter 'customer_email' is required", nil)
			return
		}

		list, err := orders.ListOrdersByCustomer(c.Request.Context(), email)
		if err != nil {
			utils.RespondWithInternalError(c, "Order lookup failed", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})

	group.GET("/:id", func(c *gin.Context) {
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
		c.JSON(http.StatusOK, order)
	})

	group.PATCH("/:id/status", authMiddleware.RequireAuth(), func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			utils.RespondWithBadRequest(c, "Order ID must be an integer", nil)
			return
		}

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if err := orders.UpdateOrderStatus(c.Request.Context(), id, req.Status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.RespondWithNotFound(c, "Order not found")
				return
			}
			utils.RespondWithBadRequest(c, "Status update rejected", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": req.Status})
	})
}
