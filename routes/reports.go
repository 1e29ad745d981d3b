package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"business-assistant-backend/middleware"
	"business-assistant-backend/services"
	"business-assistant-backend/utils"
)

// SetupReportRoutes wires sales reporting. Reports are admin-only.
func SetupReportRoutes(router *gin.Engine, reports *services.ReportService, authMiddleware *middleware.AuthMiddleware) {
	group := router.Group("/reports")
	group.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())

	group.GET("/sales", func(c *gin.Context) {
		days := 0
		if raw := c.Query("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				utils.RespondWithBadRequest(c, "Parameter 'days' must be a positive integer", nil)
				return
			}
			days = parsed
		}

		summary, err := reports.GetSalesSummary(c.Request.Context(), days)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build sales summary", nil)
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	group.POST("/sales/export", func(c *gin.Context) {
		days := 0
		if raw := c.Query("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				utils.RespondWithBadRequest(c, "Parameter 'days' must be a positive integer", nil)
				return
			}
			days = parsed
		}

		summary, err := reports.GetSalesSummary(c.Request.Context(), days)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build sales summary", nil)
			return
		}

		path, err := reports.ExportSalesSummary(c.Request.Context(), summary)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to export sales summary", nil)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"file_path": path})
	})
}
