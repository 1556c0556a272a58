// Package inventory tracks stock and availability for the menu catalog.
package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"canteen/internal/models"
	"canteen/internal/workers"
)

var ErrItemNotFound = errors.New("menu item not found")

// StockChange is delivered to subscribers after a stock or availability
// mutation.
type StockChange struct {
	ItemID    string
	Stock     int
	Available bool
}

type subscriber struct {
	id int
	fn func(StockChange)
}

type Service struct {
	db   *mongo.Database
	pool *workers.Pool

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

func NewService(db *mongo.Database, pool *workers.Pool) *Service {
	return &Service{db: db, pool: pool}
}

// Subscribe registers a stock change listener and returns its cancel
// function.
func (s *Service) Subscribe(fn func(StockChange)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Service) notifyChange(change StockChange) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(change)
	}
}

// SetStock replaces an item's stock count and refreshes availability.
func (s *Service) SetStock(ctx context.Context, itemID primitive.ObjectID, stock int) error {
	if stock < 0 {
		stock = 0
	}
	return s.updateStock(ctx, itemID, bson.M{"$set": bson.M{
		"stock":       stock,
		"isAvailable": stock > 0,
		"updatedAt":   time.Now(),
	}})
}

// AdjustStock adds delta (which may be negative) to an item's stock. The
// update is guarded so stock never goes below zero.
func (s *Service) AdjustStock(ctx context.Context, itemID primitive.ObjectID, delta int) error {
	if delta == 0 {
		return nil
	}

	filter := bson.M{"_id": itemID, "isDeleted": bson.M{"$ne": true}}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res := s.db.Collection("menu_items").FindOneAndUpdate(
		ctx,
		filter,
		bson.M{
			"$inc": bson.M{"stock": delta},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var item models.FoodItem
	if err := res.Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrItemNotFound
		}
		return err
	}

	s.notifyChange(StockChange{
		ItemID:    itemID.Hex(),
		Stock:     item.Stock,
		Available: item.IsAvailable && item.Stock > 0,
	})
	return nil
}

// SetAvailability toggles whether an item can be ordered at all, independent
// of stock.
func (s *Service) SetAvailability(ctx context.Context, itemID primitive.ObjectID, available bool) error {
	return s.updateStock(ctx, itemID, bson.M{"$set": bson.M{
		"isAvailable": available,
		"updatedAt":   time.Now(),
	}})
}

func (s *Service) updateStock(ctx context.Context, itemID primitive.ObjectID, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res := s.db.Collection("menu_items").FindOneAndUpdate(
		ctx,
		bson.M{"_id": itemID, "isDeleted": bson.M{"$ne": true}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var item models.FoodItem
	if err := res.Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrItemNotFound
		}
		return err
	}

	s.notifyChange(StockChange{
		ItemID:    itemID.Hex(),
		Stock:     item.Stock,
		Available: item.IsAvailable && item.Stock > 0,
	})
	return nil
}

// LowStock reports items at or below the threshold, computed on the shared
// worker pool. The scan runs to completion even if the caller stops waiting.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]models.FoodItem, error) {
	type result struct {
		items []models.FoodItem
		err   error
	}
	done := make(chan result, 1)

	s.pool.Submit(func() {
		items, err := s.scanLowStock(threshold)
		done <- result{items: items, err: err}
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.items, r.err
	}
}

func (s *Service) scanLowStock(threshold int) ([]models.FoodItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{
		"isDeleted": bson.M{"$ne": true},
		"stock":     bson.M{"$lte": threshold},
	}
	opts := options.Find().SetSort(bson.D{{Key: "stock", Value: 1}})

	cursor, err := s.db.Collection("menu_items").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.FoodItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].InStock = items[i].Stock > 0
		items[i].IsOnDiscount = items[i].HasActiveDiscount()
	}
	return items, nil
}
