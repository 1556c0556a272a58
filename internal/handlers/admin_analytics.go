package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"canteen/internal/analytics"
	"canteen/internal/inventory"
)

func parseDateParam(raw string, fallback time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

/*
GET /admin/api/reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD
Defaults to the last 30 days.
*/
func SalesReport(stats *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		from, ok := parseDateParam(c.Query("from"), now.AddDate(0, 0, -30))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		to, ok := parseDateParam(c.Query("to"), now)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
			return
		}

		summary, err := stats.Sales(c.Request.Context(), from, to)
		if err != nil {
			log.Println("[ANALYTICS] [ERROR] sales report failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}

// Dashboard bundles today's sales with the low-stock list for the admin
// landing screen.
func Dashboard(stats *analytics.Service, inv *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		summary, err := stats.Sales(c.Request.Context(), startOfDay, now)
		if err != nil {
			log.Println("[ANALYTICS] [ERROR] dashboard sales failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
			return
		}

		lowStock, err := inv.LowStock(c.Request.Context(), 5)
		if err != nil {
			log.Println("[ANALYTICS] [ERROR] dashboard low stock failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"today":    summary,
			"lowStock": lowStock,
		})
	}
}
