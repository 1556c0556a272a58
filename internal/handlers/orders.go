package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"canteen/internal/models"
	"canteen/internal/notify"
	"canteen/internal/payment"
)

// GetMyOrders lists the caller's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrder returns one order with its status history, owner-only.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{
			"_id":    orderID,
			"userId": userID,
		}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// CancelOrder cancels a pending or confirmed order. Paid orders are refunded
// through the gateway and end up refunded instead of cancelled.
func CancelOrder(db *mongo.Database, gateway payment.Gateway, hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/cancel"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{
			"_id":    orderID,
			"userId": userID,
		}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if !order.CanBeCancelled() {
			c.JSON(http.StatusConflict, gin.H{"error": "order can no longer be cancelled"})
			return
		}

		target := models.OrderCancelled
		if order.Payment != nil {
			refund, refundErr := gateway.Refund(ctx, order.Payment.TransactionID, order.Payment.Amount)
			if refundErr != nil {
				log.Printf("[%s] refund failed: %s", route, refundErr)
				c.JSON(http.StatusBadGateway, gin.H{"error": "refund failed"})
				return
			}
			order.Payment.RefundID = refund.RefundID
			target = models.OrderRefunded
		}

		if err := order.SetStatus(target); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		set := bson.M{
			"status":        order.Status,
			"statusTimes":   order.StatusTimes,
			"lastUpdatedAt": order.LastUpdatedAt,
		}
		if order.Payment != nil {
			set["payment"] = order.Payment
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{"$set": set}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		restoreStock(db, order)

		hub.Publish(notify.OrderUpdate{
			OrderID: orderID.Hex(),
			UserID:  userID.Hex(),
			Status:  string(order.Status),
			Message: "order " + string(order.Status),
			At:      time.Now(),
		})

		c.JSON(http.StatusOK, order)
	}
}

// restoreStock returns a cancelled order's quantities to the shelf.
// Best effort: a failure leaves the counts low rather than blocking the
// cancellation.
func restoreStock(db *mongo.Database, order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, line := range order.Items {
		_, err := db.Collection("menu_items").UpdateOne(
			ctx,
			bson.M{"_id": line.FoodItem.ID},
			bson.M{"$inc": bson.M{"stock": line.Quantity}},
		)
		if err != nil {
			log.Println("[ORDER] [ERROR] stock restore failed:", err)
		}
	}
}

// GetOrders lists all orders for the admin dashboard, optionally filtered by
// status.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			if !models.ValidOrderStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "orders could not be fetched"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse orders"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus moves an order through its lifecycle from the admin
// dashboard.
func UpdateOrderStatus(db *mongo.Database, hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		status := strings.ToLower(strings.TrimSpace(req.Status))
		if !models.ValidOrderStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := order.SetStatus(models.OrderStatus(status)); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		_, err = db.Collection("orders").UpdateByID(ctx, orderID, bson.M{"$set": bson.M{
			"status":        order.Status,
			"statusTimes":   order.StatusTimes,
			"lastUpdatedAt": order.LastUpdatedAt,
		}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		hub.Publish(notify.OrderUpdate{
			OrderID: orderID.Hex(),
			UserID:  order.UserID.Hex(),
			Status:  string(order.Status),
			Message: "order " + string(order.Status),
			At:      time.Now(),
		})

		log.Printf("[ORDER] [INFO] order %s moved to %s", orderID.Hex(), order.Status)
		c.JSON(http.StatusOK, order)
	}
}
