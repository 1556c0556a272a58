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

	"canteen/internal/cart"
	"canteen/internal/models"
	"canteen/internal/pricing"
)

type addCartItemRequest struct {
	ItemID       string `json:"itemId" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
	Instructions string `json:"instructions"`
}

type updateCartItemRequest struct {
	Quantity     *int    `json:"quantity"`
	Instructions *string `json:"instructions"`
}

type cartDiscountRequest struct {
	Amount  *float64 `json:"amount"`
	Percent *float64 `json:"percent"`
}

// GetCart returns the cart lines plus the derived aggregates the checkout
// screen shows.
func GetCart(carts *cart.Service, policy pricing.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		uid := userID.Hex()

		subtotal := carts.TotalPrice(uid)
		delivery := strings.EqualFold(c.Query("deliveryType"), string(models.DeliveryDelivery))
		deliveryCharge := policy.DeliveryCharge(subtotal, delivery)
		tax := policy.Tax(subtotal)

		c.JSON(http.StatusOK, gin.H{
			"items":            carts.Items(uid),
			"itemCount":        carts.ItemCount(uid),
			"uniqueItemCount":  carts.UniqueItemCount(uid),
			"totalPrice":       subtotal,
			"originalTotal":    carts.OriginalTotalPrice(uid),
			"totalDiscount":    carts.TotalDiscount(uid),
			"prepTimeMinutes":  carts.TotalPreparationTime(uid),
			"taxAmount":        tax,
			"deliveryCharges":  deliveryCharge,
			"estimatedPayable": subtotal + tax + deliveryCharge,
		})
	}
}

func GetCartByCategory(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": carts.ItemsByCategory(userID.Hex())})
	}
}

// AddCartItem adds a menu item to the cart, folding into an existing line
// when the item is already there.
func AddCartItem(db *mongo.Database, carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be greater than zero"})
			return
		}

		itemID, err := primitive.ObjectIDFromHex(req.ItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid itemId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var item models.FoodItem
		err = db.Collection("menu_items").FindOne(ctx, bson.M{
			"_id":       itemID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&item)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !item.IsAvailable || item.Stock <= 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "item is not available"})
			return
		}

		line := carts.AddItem(ctx, userID.Hex(), item, req.Quantity, strings.TrimSpace(req.Instructions))
		log.Printf("[%s] line %s qty %d", route, line.CartItemID, line.Quantity)
		c.JSON(http.StatusCreated, line)
	}
}

// UpdateCartItem changes quantity and/or instructions on one line. Setting
// quantity to zero removes the line.
func UpdateCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if req.Quantity == nil && req.Instructions == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity or instructions required"})
			return
		}

		uid := userID.Hex()
		cartItemID := c.Param("id")
		ctx := c.Request.Context()

		if req.Quantity != nil {
			if !carts.UpdateQuantity(ctx, uid, cartItemID, *req.Quantity) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
				return
			}
		}
		if req.Instructions != nil {
			if !carts.UpdateInstructions(ctx, uid, cartItemID, strings.TrimSpace(*req.Instructions)) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart updated"})
	}
}

func RemoveCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		if !carts.RemoveItem(c.Request.Context(), userID.Hex(), c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "item removed"})
	}
}

// ApplyCartItemDiscount puts an absolute or percentage discount on a line.
func ApplyCartItemDiscount(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var req cartDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if req.Amount == nil && req.Percent == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount or percent required"})
			return
		}

		uid := userID.Hex()
		cartItemID := c.Param("id")
		ctx := c.Request.Context()

		var applied bool
		if req.Percent != nil {
			applied = carts.ApplyItemPercentageDiscount(ctx, uid, cartItemID, *req.Percent)
		} else {
			applied = carts.ApplyItemDiscount(ctx, uid, cartItemID, *req.Amount)
		}
		if !applied {
			c.JSON(http.StatusBadRequest, gin.H{"error": "discount rejected"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "discount applied"})
	}
}

func RemoveCartItemDiscount(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		if !carts.RemoveItemDiscount(c.Request.Context(), userID.Hex(), c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "discount removed"})
	}
}

func ClearCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		carts.Clear(c.Request.Context(), userID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}
