package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/flamecrumble/storefront-backend/internal/address"
	"github.com/flamecrumble/storefront-backend/internal/admin"
	"github.com/flamecrumble/storefront-backend/internal/auth"
	"github.com/flamecrumble/storefront-backend/internal/cache"
	"github.com/flamecrumble/storefront-backend/internal/cart"
	"github.com/flamecrumble/storefront-backend/internal/config"
	"github.com/flamecrumble/storefront-backend/internal/mail"
	"github.com/flamecrumble/storefront-backend/internal/order"
	"github.com/flamecrumble/storefront-backend/internal/product"
	"github.com/flamecrumble/storefront-backend/internal/upload"
	"github.com/flamecrumble/storefront-backend/internal/user"
	"github.com/flamecrumble/storefront-backend/internal/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	bootstrapSchema(db)

	store := openCache(cfg.RedisURL)
	if rc, ok := store.(*cache.RedisCache); ok {
		defer rc.Close()
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg)
	}

	productService := product.NewService(product.NewPostgresRepository(db), store)
	userService := user.NewService(user.NewPostgresRepository(db), mailer)
	addressService := address.NewService(address.NewPostgresRepository(db))
	cartService := cart.NewService(cart.NewPostgresRepository(db), productService, store)
	wishlistService := wishlist.NewService(wishlist.NewPostgresRepository(db), productService, store)
	orderService := order.NewService(order.NewPostgresRepository(db), store)

	productHandler := product.NewHandler(productService)
	userHandler := user.NewHandler(userService, cfg.JWTSecret)
	addressHandler := address.NewHandler(addressService)
	cartHandler := cart.NewHandler(cartService)
	wishlistHandler := wishlist.NewHandler(wishlistService)
	orderHandler := order.NewHandler(orderService)
	adminHandler := admin.NewHandler(productService, userService, orderService)
	uploadHandler := upload.NewHandler(cfg.UploadDir)

	app := fiber.New()
	app.Use(requestLogger)
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Static("/uploads", cfg.UploadDir)

	// public routes first; everything registered after the jwt middleware
	// requires a token
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "missing or invalid token"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	wishlistHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	adminGroup := app.Group("/api/admin", auth.RequireAdmin)
	productHandler.RegisterAdminRoutes(adminGroup)
	orderHandler.RegisterAdminRoutes(adminGroup)
	adminHandler.RegisterAdminRoutes(adminGroup)
	uploadHandler.RegisterAdminRoutes(adminGroup)

	log.Fatal(app.Listen(cfg.Addr))
}

func mustOpenDB(databaseURL string) *sql.DB {
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	return db
}

// openCache prefers Redis and degrades to an in-process cache when Redis is
// unreachable. The cache is an accelerator, never a second source of truth.
func openCache(redisURL string) cache.Cache {
	store, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("redis unavailable (%v), using in-memory cache", err)
		return cache.NewMemoryCache()
	}
	return store
}

func bootstrapSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			price NUMERIC NOT NULL,
			category TEXT NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			image TEXT NOT NULL DEFAULT '',
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			verification_code TEXT,
			verification_expires TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			address_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			type TEXT NOT NULL DEFAULT 'home',
			full_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			line1 TEXT NOT NULL,
			line2 TEXT,
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			zip TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			cart_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			item_id SERIAL PRIMARY KEY,
			cart_id INT NOT NULL REFERENCES carts(cart_id) ON DELETE CASCADE,
			product_id INT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			UNIQUE (cart_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS wishlists (
			wishlist_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS wishlist_items (
			wishlist_id INT NOT NULL REFERENCES wishlists(wishlist_id) ON DELETE CASCADE,
			product_id INT NOT NULL,
			added_at TEXT,
			PRIMARY KEY (wishlist_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			total NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			shipping_address JSONB NOT NULL DEFAULT '{}',
			payment_method TEXT NOT NULL DEFAULT '',
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id INT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
			product_id INT NOT NULL,
			name TEXT NOT NULL,
			quantity INT NOT NULL,
			price NUMERIC NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("schema bootstrap: %v", err)
		}
	}
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s -> %d (%s)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}
