package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen/internal/notify"
)

// TrackOrder streams status updates for one of the caller's orders as
// server-sent events until the client disconnects.
func TrackOrder(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		orderID := c.Param("id")

		updates, cancel := hub.Subscribe()
		defer cancel()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.WriteHeader(http.StatusOK)

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case update, open := <-updates:
				if !open {
					return false
				}
				if update.OrderID != orderID || update.UserID != userID.Hex() {
					return true
				}
				c.SSEvent("status", gin.H{
					"orderId": update.OrderID,
					"status":  update.Status,
					"message": update.Message,
					"at":      update.At,
				})
				return true
			}
		})
	}
}
