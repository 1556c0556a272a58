package handlers

import (
	"context"
	"errors"
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
	"canteen/internal/notify"
	"canteen/internal/payment"
	"canteen/internal/pricing"
)

type checkoutPaymentRequest struct {
	Method     string `json:"method" binding:"required"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	UPIID      string `json:"upiId"`
}

type checkoutRequest struct {
	DeliveryType string                 `json:"deliveryType" binding:"required"`
	AddressID    string                 `json:"addressId"`
	Payment      checkoutPaymentRequest `json:"payment" binding:"required"`
}

type outOfStockError struct {
	ItemID    primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "item out of stock"
}

type itemNotFoundError struct {
	ItemID primitive.ObjectID
}

func (e itemNotFoundError) Error() string {
	return "item not found"
}

/*
Checkout turns the cart into an order:
 1. snapshot the cart into a priced order (policy decides tax and delivery)
 2. charge the gateway (skipped for cash)
 3. decrement stock and insert the order in one transaction
 4. clear the cart and announce the order

A stock conflict after a successful charge triggers a best-effort refund.
*/
func Checkout(db *mongo.Database, carts *cart.Service, gateway payment.Gateway, policy pricing.Policy, hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		uid := userID.Hex()

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		deliveryType := models.DeliveryType(strings.ToLower(strings.TrimSpace(req.DeliveryType)))
		if deliveryType != models.DeliveryPickup && deliveryType != models.DeliveryDelivery {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deliveryType"})
			return
		}

		if !models.ValidPaymentMethod(req.Payment.Method) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
			return
		}
		method := models.PaymentMethod(req.Payment.Method)

		items := carts.Items(uid)
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			return
		}

		order := models.NewOrder(userID, items, deliveryType, policy)
		order.PaymentMethod = string(method)

		if deliveryType == models.DeliveryDelivery {
			address, err := resolveAddress(c.Request.Context(), db, userID, req.AddressID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order.Address = address
		}

		if method != models.PaymentCash {
			result, payErr := chargeGateway(c.Request.Context(), gateway, method, req.Payment, order.FinalAmount)
			if payErr != nil {
				log.Printf("[%s] payment failed: %s", route, payErr)
				c.JSON(http.StatusPaymentRequired, gin.H{
					"error": "payment failed",
					"code":  string(payErr.Code),
					"detail": payErr.Message,
				})
				return
			}
			order.Payment = result
			// A captured payment confirms the order immediately; cash orders
			// wait for staff confirmation.
			_ = order.SetStatus(models.OrderConfirmed)
		}

		orderID, err := persistOrder(c.Request.Context(), db, &order)
		if err != nil {
			if order.Payment != nil {
				if _, refundErr := gateway.Refund(context.Background(), order.Payment.TransactionID, order.Payment.Amount); refundErr != nil {
					log.Printf("[%s] refund after failed persist also failed: %s", route, refundErr)
				}
			}

			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusConflict, gin.H{
					"error":     "insufficient stock",
					"itemId":    stockErr.ItemID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr itemNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "item no longer on the menu",
					"itemId": notFoundErr.ItemID.Hex(),
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		order.ID = orderID

		carts.Clear(c.Request.Context(), uid)

		hub.Publish(notify.OrderUpdate{
			OrderID: orderID.Hex(),
			UserID:  uid,
			Status:  string(order.Status),
			Message: "order placed",
			At:      time.Now(),
		})

		log.Printf("[%s] order %s created for user %s", route, orderID.Hex(), uid)
		c.JSON(http.StatusCreated, order)
	}
}

// chargeGateway runs one payment attempt to completion, draining progress
// updates into the log.
func chargeGateway(ctx context.Context, gateway payment.Gateway, method models.PaymentMethod, req checkoutPaymentRequest, amount float64) (*models.PaymentResult, *payment.Error) {
	details := payment.Details{
		Method:     method,
		Amount:     amount,
		CardNumber: req.CardNumber,
		CardHolder: req.CardHolder,
		Expiry:     req.Expiry,
		CVV:        req.CVV,
		UPIID:      req.UPIID,
	}

	progress, outcome, err := gateway.Process(ctx, details)
	if err != nil {
		return nil, err
	}

	go func() {
		for p := range progress {
			log.Printf("[PAYMENT] [INFO] processing %d%%", p.Percent)
		}
	}()

	result := <-outcome
	if result.Err != nil {
		return nil, result.Err
	}
	return result.Result, nil
}

// persistOrder checks and decrements stock for every line and inserts the
// order, all inside one transaction.
func persistOrder(ctx context.Context, db *mongo.Database, order *models.Order) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	session, err := db.Client().StartSession()
	if err != nil {
		return primitive.NilObjectID, err
	}
	defer session.EndSession(ctx)

	var orderID primitive.ObjectID
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		for _, line := range order.Items {
			var item models.FoodItem
			err := db.Collection("menu_items").FindOne(
				sessCtx,
				bson.M{
					"_id":       line.FoodItem.ID,
					"isDeleted": bson.M{"$ne": true},
				},
			).Decode(&item)
			if err == mongo.ErrNoDocuments {
				return nil, itemNotFoundError{ItemID: line.FoodItem.ID}
			}
			if err != nil {
				return nil, err
			}

			if item.Stock < line.Quantity {
				return nil, outOfStockError{
					ItemID:    line.FoodItem.ID,
					Available: item.Stock,
					Requested: line.Quantity,
				}
			}

			filter := bson.M{
				"_id":       line.FoodItem.ID,
				"isDeleted": bson.M{"$ne": true},
				"stock":     bson.M{"$gte": line.Quantity},
			}
			update := bson.M{"$inc": bson.M{"stock": -line.Quantity}}

			res, err := db.Collection("menu_items").UpdateOne(sessCtx, filter, update)
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, outOfStockError{
					ItemID:    line.FoodItem.ID,
					Available: item.Stock,
					Requested: line.Quantity,
				}
			}
		}

		res, err := db.Collection("orders").InsertOne(sessCtx, order)
		if err != nil {
			return nil, err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			orderID = id
		}
		return nil, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return orderID, nil
}

func resolveAddress(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, addressID string) (*models.OrderAddress, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, errors.New("user not found")
	}

	addressID = strings.TrimSpace(addressID)
	for _, address := range user.Addresses {
		if address.ID == addressID || (addressID == "" && address.IsDefault) {
			return &models.OrderAddress{
				Title:  address.Title,
				Detail: address.Detail,
				Note:   address.Note,
			}, nil
		}
	}
	return nil, errors.New("delivery address required")
}
