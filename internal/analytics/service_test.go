package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"canteen/internal/models"
	"canteen/internal/pricing"
)

func placedOrder(t *testing.T, name string, price float64, qty int, day time.Time, status models.OrderStatus) models.Order {
	t.Helper()

	item := models.FoodItem{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Price:    price,
		Category: "Snacks",
	}
	order := models.NewOrder(
		primitive.NewObjectID(),
		[]models.CartItem{models.NewCartItem(item, qty)},
		models.DeliveryPickup,
		pricing.DefaultPolicy(),
	)
	order.CreatedAt = day
	require.NoError(t, order.SetStatus(status))
	return order
}

func TestSummarizeExcludesCancelledRevenue(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	day1 := from.Add(10 * time.Hour)
	day2 := from.AddDate(0, 0, 1).Add(12 * time.Hour)

	orders := []models.Order{
		placedOrder(t, "Samosa", 100, 2, day1, models.OrderDelivered),  // final 216
		placedOrder(t, "Dosa", 50, 1, day2, models.OrderConfirmed),     // final 54
		placedOrder(t, "Chai", 500, 1, day2, models.OrderCancelled),    // excluded
		placedOrder(t, "Idli", 300, 1, day1, models.OrderRefunded),     // excluded
	}

	summary := Summarize(from, to, orders)

	assert.Equal(t, 4, summary.TotalOrders)
	assert.InDelta(t, 270, summary.TotalRevenue, 0.001)
	assert.InDelta(t, 135, summary.AverageOrderValue, 0.001)
	assert.Equal(t, 1, summary.OrdersByStatus["cancelled"])
	assert.Equal(t, 1, summary.OrdersByStatus["refunded"])
	assert.Equal(t, 1, summary.OrdersByStatus["delivered"])

	require.Len(t, summary.RevenueByDay, 2)
	assert.Equal(t, "2026-08-01", summary.RevenueByDay[0].Day)
	assert.InDelta(t, 216, summary.RevenueByDay[0].Revenue, 0.001)
	assert.Equal(t, "2026-08-02", summary.RevenueByDay[1].Day)
	assert.InDelta(t, 54, summary.RevenueByDay[1].Revenue, 0.001)

	// Only the two revenue orders contribute item sales.
	require.Len(t, summary.TopItems, 2)
	assert.Equal(t, "Samosa", summary.TopItems[0].Name)
	assert.Equal(t, 2, summary.TopItems[0].Quantity)
}

func TestSummarizeEmpty(t *testing.T) {
	from := time.Now().AddDate(0, 0, -1)
	summary := Summarize(from, time.Now(), nil)

	assert.Equal(t, 0, summary.TotalOrders)
	assert.Equal(t, 0.0, summary.TotalRevenue)
	assert.Equal(t, 0.0, summary.AverageOrderValue)
	assert.Empty(t, summary.TopItems)
	assert.Empty(t, summary.RevenueByDay)
}

func TestSummarizeTopItemsCapped(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	day := from.Add(time.Hour)

	var orders []models.Order
	for i := 0; i < 12; i++ {
		orders = append(orders, placedOrder(t, "Item", 100, i+1, day, models.OrderDelivered))
	}

	summary := Summarize(from, from.AddDate(0, 0, 1), orders)

	require.Len(t, summary.TopItems, 10)
	// Sorted by quantity descending, so the smallest sellers fall off.
	assert.Equal(t, 12, summary.TopItems[0].Quantity)
	assert.Equal(t, 3, summary.TopItems[9].Quantity)
}
