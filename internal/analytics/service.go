// Package analytics computes the admin dashboard figures: revenue, order
// counts and top-selling items over a date range.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"canteen/internal/models"
	"canteen/internal/workers"
)

type ItemSales struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type DayRevenue struct {
	Day     string  `json:"day"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type SalesSummary struct {
	From              time.Time      `json:"from"`
	To                time.Time      `json:"to"`
	TotalOrders       int            `json:"totalOrders"`
	TotalRevenue      float64        `json:"totalRevenue"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	OrdersByStatus    map[string]int `json:"ordersByStatus"`
	RevenueByDay      []DayRevenue   `json:"revenueByDay"`
	TopItems          []ItemSales    `json:"topItems"`
}

type cacheEntry struct {
	summary   SalesSummary
	expiresAt time.Time
}

// Service runs summaries on the shared worker pool and memoizes results for
// a short window so dashboard refreshes do not re-scan orders.
type Service struct {
	db       *mongo.Database
	pool     *workers.Pool
	cache    sync.Map
	cacheTTL time.Duration
}

func NewService(db *mongo.Database, pool *workers.Pool) *Service {
	return &Service{db: db, pool: pool, cacheTTL: time.Minute}
}

func cacheKey(from, to time.Time) string {
	return fmt.Sprintf("sales:%d:%d", from.Unix(), to.Unix())
}

// Sales returns the summary for [from, to). The computation is dispatched to
// the worker pool; if the caller's context ends first the job still finishes
// and warms the cache.
func (s *Service) Sales(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	key := cacheKey(from, to)
	if cached, ok := s.cache.Load(key); ok {
		entry := cached.(cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			return entry.summary, nil
		}
		s.cache.Delete(key)
	}

	type result struct {
		summary SalesSummary
		err     error
	}
	done := make(chan result, 1)

	s.pool.Submit(func() {
		summary, err := s.computeSales(from, to)
		if err == nil {
			s.cache.Store(key, cacheEntry{summary: summary, expiresAt: time.Now().Add(s.cacheTTL)})
		}
		done <- result{summary: summary, err: err}
	})

	select {
	case <-ctx.Done():
		return SalesSummary{}, ctx.Err()
	case r := <-done:
		return r.summary, r.err
	}
}

func (s *Service) computeSales(from, to time.Time) (SalesSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}
	cursor, err := s.db.Collection("orders").Find(ctx, filter)
	if err != nil {
		return SalesSummary{}, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return SalesSummary{}, err
	}

	return Summarize(from, to, orders), nil
}

// Summarize aggregates the given orders. Cancelled and refunded orders count
// toward order totals by status but are excluded from revenue.
func Summarize(from, to time.Time, orders []models.Order) SalesSummary {
	summary := SalesSummary{
		From:           from,
		To:             to,
		OrdersByStatus: make(map[string]int),
	}

	byDay := make(map[string]*DayRevenue)
	byItem := make(map[string]*ItemSales)
	revenueOrders := 0

	for _, order := range orders {
		summary.TotalOrders++
		summary.OrdersByStatus[string(order.Status)]++

		if order.Status == models.OrderCancelled || order.Status == models.OrderRefunded {
			continue
		}

		summary.TotalRevenue += order.FinalAmount
		revenueOrders++

		day := order.CreatedAt.Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &DayRevenue{Day: day}
			byDay[day] = entry
		}
		entry.Orders++
		entry.Revenue += order.FinalAmount

		for _, line := range order.Items {
			id := line.FoodItem.ID.Hex()
			item, ok := byItem[id]
			if !ok {
				item = &ItemSales{ItemID: id, Name: line.FoodItem.Name}
				byItem[id] = item
			}
			item.Quantity += line.Quantity
			item.Revenue += line.TotalPrice
		}
	}

	if revenueOrders > 0 {
		summary.AverageOrderValue = summary.TotalRevenue / float64(revenueOrders)
	}

	for _, entry := range byDay {
		summary.RevenueByDay = append(summary.RevenueByDay, *entry)
	}
	sort.Slice(summary.RevenueByDay, func(i, j int) bool {
		return summary.RevenueByDay[i].Day < summary.RevenueByDay[j].Day
	})

	for _, item := range byItem {
		summary.TopItems = append(summary.TopItems, *item)
	}
	sort.Slice(summary.TopItems, func(i, j int) bool {
		if summary.TopItems[i].Quantity != summary.TopItems[j].Quantity {
			return summary.TopItems[i].Quantity > summary.TopItems[j].Quantity
		}
		return summary.TopItems[i].Revenue > summary.TopItems[j].Revenue
	})
	if len(summary.TopItems) > 10 {
		summary.TopItems = summary.TopItems[:10]
	}

	return summary
}
