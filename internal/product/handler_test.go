package product

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/flamecrumble/storefront-backend/internal/cache"
)

func makeCatalogApp() *fiber.App {
	svc := NewService(NewInMemoryRepository(seedProducts()), cache.NewMemoryCache())
	handler := NewHandler(svc)
	app := fiber.New()
	handler.RegisterPublicRoutes(app)
	handler.RegisterAdminRoutes(app.Group("/api/admin"))
	return app
}

func TestPublicCatalogRoutes(t *testing.T) {
	app := makeCatalogApp()

	res, _ := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for list, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Beeswax Candle") {
		t.Fatalf("unexpected list body: %s", string(b))
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products?category=cookies", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for category filter, got %d", res.StatusCode)
	}
	b, _ = io.ReadAll(res.Body)
	if strings.Contains(string(b), "Beeswax Candle") || !strings.Contains(string(b), "Ginger Cookie") {
		t.Fatalf("category filter leaked other categories: %s", string(b))
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products?category=soap", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/featured", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for featured, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/1", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for get, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/products/999", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}
}

func TestAdminCatalogRoutes(t *testing.T) {
	app := makeCatalogApp()

	body := `{"name":"Dark Truffle","price":4.5,"category":"chocolates","stock":5,"image":"truffle.png"}`
	req := httptest.NewRequest("POST", "/api/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for create, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/admin/products", strings.NewReader(`{"name":"","price":1,"category":"candles","image":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for invalid product, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("PATCH", "/api/admin/products/1", strings.NewReader(`{"name":"Taper Candle","price":9,"category":"candles","stock":3,"image":"taper.png"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for update, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/admin/products/2", nil)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for delete, got %d", res.StatusCode)
	}
	req = httptest.NewRequest("DELETE", "/api/admin/products/2", nil)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for repeated delete, got %d", res.StatusCode)
	}
}
