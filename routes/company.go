package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"business-assistant-backend/services"
	"business-assistant-backend/utils"
)

// SetupCompanyRoutes serves static company facts, delivery rules, and
// the market-data helpers behind delivery and pricing questions. The
// info service may be nil when the YAML files are absent; the external
// endpoints stay up regardless.
func SetupCompanyRoutes(router *gin.Engine, company *services.CompanyInfoService, external *services.ExternalService) {
	group := router.Group("/company")

	if company != nil {
		group.GET("/info", func(c *gin.Context) {
			c.JSON(http.StatusOK, company.Info())
		})

		group.GET("/delivery", func(c *gin.Context) {
			zone := c.Query("zone")
			if zone == "" {
				c.JSON(http.StatusOK, gin.H{"rules": company.DeliveryRules()})
				return
			}

			rule := company.DeliveryEstimate(zone)
			if rule == nil {
				utils.RespondWithNotFound(c, "No delivery rule for that zone")
				return
			}
			c.JSON(http.StatusOK, rule)
		})
	}

	group.GET("/currency/rates", func(c *gin.Context) {
		base := c.DefaultQuery("base", "USD")
		rates, err := external.GetCurrencyRates(c.Request.Context(), base)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadGateway, "exchange_rates_unavailable",
				"Failed to fetch exchange rates", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rates)
	})

	group.GET("/currency/convert", func(c *gin.Context) {
		amount, err := strconv.ParseFloat(c.Query("amount"), 64)
		if err != nil || amount < 0 {
			utils.RespondWithBadRequest(c, "Parameter 'amount' must be a non-negative number", nil)
			return
		}
		from := c.DefaultQuery("from", "USD")
		to := c.DefaultQuery("to", "USD")

		conversion, err := external.ConvertCurrency(c.Request.Context(), amount, from, to)
		if err != nil {
			if strings.Contains(err.Error(), "not supported") {
				utils.RespondWithBadRequest(c, "Unsupported currency code", gin.H{"error": err.Error()})
				return
			}
			utils.RespondWithError(c, http.StatusBadGateway, "exchange_rates_unavailable",
				"Failed to fetch exchange rates", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, conversion)
	})

	group.GET("/delivery/delays", func(c *gin.Context) {
		country := c.DefaultQuery("country", "US")
		check, err := external.CheckDeliveryDelays(c.Request.Context(), country, c.Query("date"))
		if err != nil {
			if strings.Contains(err.Error(), "invalid delivery date") {
				utils.RespondWithBadRequest(c, "Parameter 'date' must be YYYY-MM-DD", nil)
				return
			}
			utils.RespondWithError(c, http.StatusBadGateway, "holiday_calendar_unavailable",
				"Failed to fetch the holiday calendar", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, check)
	})

	group.GET("/delivery/eta", func(c *gin.Context) {
		start := time.Now()
		if raw := c.Query("start"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				utils.RespondWithBadRequest(c, "Parameter 'start' must be YYYY-MM-DD", nil)
				return
			}
			start = parsed
		}

		businessDays, err := strconv.Atoi(c.Query("business_days"))
		if err != nil || businessDays < 0 {
			utils.RespondWithBadRequest(c, "Parameter 'business_days' must be a non-negative integer", nil)
			return
		}
		country := c.DefaultQuery("country", "US")

		eta, err := external.BusinessDaysAfter(c.Request.Context(), start, businessDays, country)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadGateway, "holiday_calendar_unavailable",
				"Failed to fetch the holiday calendar", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"start":         start.Format("2006-01-02"),
			"business_days": businessDays,
			"country":       strings.ToUpper(country),
			"eta":           eta.Format("2006-01-02"),
		})
	})
}
