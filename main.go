package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"canteen/internal/analytics"
	"canteen/internal/cart"
	"canteen/internal/config"
	"canteen/internal/database"
	"canteen/internal/handlers"
	"canteen/internal/inventory"
	"canteen/internal/middleware"
	"canteen/internal/notify"
	"canteen/internal/payment"
	"canteen/internal/pricing"
	"canteen/internal/workers"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureMenuIndexes(db); err != nil {
		log.Printf("menu index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("review index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.AppEnv.RedisAddr})

	policy := pricing.DefaultPolicy()
	carts := cart.NewService(
		cart.NewRedisStore(redisClient, 7*24*time.Hour),
		cart.NewMongoMirror(db),
	)
	gateway := payment.NewSimulatedGateway(policy)
	hub := notify.NewHub()

	pool := workers.NewPool(3)
	defer pool.Close()
	stats := analytics.NewService(db, pool)
	inv := inventory.NewService(db, pool)

	unsubscribe := carts.Subscribe(func(n cart.Notice) {
		if n.Event == cart.EventChanged {
			return
		}
		log.Printf("[CART] [INFO] %s user=%s line=%s", n.Event, n.UserID, n.CartItemID)
	})
	defer unsubscribe()

	r := gin.Default()

	r.POST("/auth/register", handlers.Register(db))
	r.POST("/auth/login", handlers.Login(
		db,
		carts,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/logout", handlers.Logout(db))

	r.GET("/menu", handlers.GetMenu(db))
	r.GET("/menu/categories", handlers.GetCategories(db))
	r.GET("/menu/:id", handlers.GetMenuItem(db))
	r.GET("/menu/:id/reviews", handlers.GetItemReviews(db))

	user := r.Group("/")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("/auth/me", handlers.GetMe(db))

		user.GET("/user/addresses", handlers.GetUserAddresses(db))
		user.POST("/user/addresses", handlers.CreateUserAddress(db))
		user.PUT("/user/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/user/addresses/:id", handlers.DeleteUserAddress(db))

		user.GET("/cart", handlers.GetCart(carts, policy))
		user.GET("/cart/categories", handlers.GetCartByCategory(carts))
		user.POST("/cart/items", handlers.AddCartItem(db, carts))
		user.PUT("/cart/items/:id", handlers.UpdateCartItem(carts))
		user.DELETE("/cart/items/:id", handlers.RemoveCartItem(carts))
		user.POST("/cart/items/:id/discount", handlers.ApplyCartItemDiscount(carts))
		user.DELETE("/cart/items/:id/discount", handlers.RemoveCartItemDiscount(carts))
		user.DELETE("/cart", handlers.ClearCart(carts))

		user.POST("/orders", handlers.Checkout(db, carts, gateway, policy, hub))
		user.GET("/orders", handlers.GetMyOrders(db))
		user.GET("/orders/:id", handlers.GetOrder(db))
		user.POST("/orders/:id/cancel", handlers.CancelOrder(db, gateway, hub))
		user.GET("/orders/:id/track", handlers.TrackOrder(hub))

		user.POST("/menu/:id/reviews", handlers.CreateReview(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/menu", handlers.GetAllMenuItems(db))
		admin.POST("/menu", handlers.CreateMenuItem(db))
		admin.PUT("/menu/:id", handlers.UpdateMenuItem(db))
		admin.DELETE("/menu/:id", handlers.DeleteMenuItem(db))
		admin.PUT("/menu/:id/stock", handlers.UpdateStock(inv))
		admin.PUT("/menu/:id/availability", handlers.UpdateAvailability(inv))

		admin.GET("/orders", handlers.GetOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db, hub))

		admin.GET("/reports/sales", handlers.SalesReport(stats))
		admin.GET("/reports/low-stock", handlers.LowStockReport(inv))
		admin.GET("/dashboard", handlers.Dashboard(stats, inv))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
