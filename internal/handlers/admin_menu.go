package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"canteen/internal/inventory"
	"canteen/internal/models"
)

type MenuItemCreateRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"required"`
	DiscountPercent float64 `json:"discountPercent"`
	Category        string  `json:"category" binding:"required"`
	ImageURL        string  `json:"imageUrl"`
	IsVegetarian    bool    `json:"isVegetarian"`
	PrepTimeMinutes int     `json:"prepTimeMinutes"`
	Stock           int     `json:"stock"`
}

type MenuItemUpdateRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DiscountPercent *float64 `json:"discountPercent"`
	Category        *string  `json:"category"`
	ImageURL        *string  `json:"imageUrl"`
	IsVegetarian    *bool    `json:"isVegetarian"`
	PrepTimeMinutes *int     `json:"prepTimeMinutes"`
	IsAvailable     *bool    `json:"isAvailable"`
	Stock           *int     `json:"stock"`
}

func GetAllMenuItems(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{
			"isDeleted": bson.M{"$ne": true},
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		if isAvailable := strings.TrimSpace(c.Query("isAvailable")); isAvailable != "" {
			filter["isAvailable"] = strings.EqualFold(isAvailable, "true")
		}

		ctx := context.Background()

		total, err := db.Collection("menu_items").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("menu_items").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		items, err := decodeMenuItems(ctx, cursor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": items,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

func CreateMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MenuItemCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		if err := validateDiscountFields(req.Price, req.DiscountPercent); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		category := strings.TrimSpace(req.Category)
		if category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category required"})
			return
		}

		if req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or greater"})
			return
		}

		if req.PrepTimeMinutes < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "prepTimeMinutes must be zero or greater"})
			return
		}

		now := time.Now()
		item := models.FoodItem{
			Name:            name,
			Description:     strings.TrimSpace(req.Description),
			Price:           req.Price,
			DiscountPercent: req.DiscountPercent,
			Category:        category,
			ImageURL:        strings.TrimSpace(req.ImageURL),
			IsVegetarian:    req.IsVegetarian,
			PrepTimeMinutes: req.PrepTimeMinutes,
			IsAvailable:     req.Stock > 0,
			Stock:           req.Stock,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("menu_items").InsertOne(ctx, item)
		if err != nil {
			log.Println("[MENU] [ERROR] create failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			item.ID = id
		}
		item.InStock = item.Stock > 0
		item.IsOnDiscount = item.HasActiveDiscount()

		log.Println("[MENU] [INFO] item created:", item.Name)
		c.JSON(http.StatusCreated, item)
	}
}

func UpdateMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req MenuItemUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.FoodItem
		err = db.Collection("menu_items").FindOne(ctx, bson.M{
			"_id":       itemID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		resolved, err := resolveDiscountUpdate(existing.Price, existing.DiscountPercent, discountUpdateInput{
			Price:           req.Price,
			DiscountPercent: req.DiscountPercent,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		set := bson.M{
			"price":     resolved.Price,
			"updatedAt": time.Now(),
		}
		if resolved.SetDiscountPercent {
			set["discountPercent"] = resolved.DiscountPercent
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
				return
			}
			set["name"] = name
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Category != nil {
			category := strings.TrimSpace(*req.Category)
			if category == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "category required"})
				return
			}
			set["category"] = category
		}
		if req.ImageURL != nil {
			set["imageUrl"] = strings.TrimSpace(*req.ImageURL)
		}
		if req.IsVegetarian != nil {
			set["isVegetarian"] = *req.IsVegetarian
		}
		if req.PrepTimeMinutes != nil {
			if *req.PrepTimeMinutes < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "prepTimeMinutes must be zero or greater"})
				return
			}
			set["prepTimeMinutes"] = *req.PrepTimeMinutes
		}
		if req.IsAvailable != nil {
			set["isAvailable"] = *req.IsAvailable
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or greater"})
				return
			}
			set["stock"] = *req.Stock
		}

		res, err := db.Collection("menu_items").UpdateByID(ctx, itemID, bson.M{"$set": set})
		if err != nil {
			log.Println("[MENU] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "item updated"})
	}
}

// DeleteMenuItem soft-deletes, so historical orders keep a resolvable item.
func DeleteMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("menu_items").UpdateByID(ctx, itemID, bson.M{
			"$set": bson.M{
				"isDeleted":   true,
				"isAvailable": false,
				"deletedAt":   now,
				"updatedAt":   now,
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
	}
}

type stockUpdateRequest struct {
	Stock *int `json:"stock"`
	Delta *int `json:"delta"`
}

// UpdateStock sets or adjusts an item's stock through the inventory service.
func UpdateStock(inv *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req stockUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if req.Stock == nil && req.Delta == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock or delta required"})
			return
		}

		if req.Stock != nil {
			err = inv.SetStock(c.Request.Context(), itemID, *req.Stock)
		} else {
			err = inv.AdjustStock(c.Request.Context(), itemID, *req.Delta)
		}

		if err == inventory.ErrItemNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		if err != nil {
			log.Println("[INVENTORY] [ERROR] stock update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "stock updated"})
	}
}

type availabilityRequest struct {
	IsAvailable bool `json:"isAvailable"`
}

func UpdateAvailability(inv *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req availabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		err = inv.SetAvailability(c.Request.Context(), itemID, req.IsAvailable)
		if err == inventory.ErrItemNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "availability updated"})
	}
}

// LowStockReport lists items at or below the threshold (default 5).
func LowStockReport(inv *inventory.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold := 5
		if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
				return
			}
			threshold = parsed
		}

		items, err := inv.LowStock(c.Request.Context(), threshold)
		if err != nil {
			log.Println("[INVENTORY] [ERROR] low stock scan failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"threshold": threshold,
			"items":     items,
		})
	}
}
