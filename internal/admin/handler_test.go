package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/flamecrumble/storefront-backend/internal/auth"
	"github.com/flamecrumble/storefront-backend/internal/order"
)

type fixedCounter int

func (n fixedCounter) Count(ctx context.Context) (int, error) { return int(n), nil }

type fakeOrders struct {
	fixedCounter
	recent []order.Order
}

func (f fakeOrders) Recent(ctx context.Context, limit int) ([]order.Order, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func makeAdminApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Role"); role != "" {
			claims := jwt.MapClaims{"user_id": 1, "role": role}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	h.RegisterAdminRoutes(app.Group("/api/admin", auth.RequireAdmin))
	return app
}

func TestDashboard(t *testing.T) {
	orders := fakeOrders{
		fixedCounter: 3,
		recent: []order.Order{
			{ID: 3, Status: order.StatusPending},
			{ID: 2, Status: order.StatusShipped},
		},
	}
	h := NewHandler(fixedCounter(12), fixedCounter(5), orders)
	app := makeAdminApp(h)

	req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
	req.Header.Set("X-Role", auth.RoleAdmin)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	b, _ := io.ReadAll(res.Body)
	var body struct {
		ProductCount int           `json:"productCount"`
		UserCount    int           `json:"userCount"`
		OrderCount   int           `json:"orderCount"`
		RecentOrders []order.Order `json:"recentOrders"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.ProductCount != 12 || body.UserCount != 5 || body.OrderCount != 3 {
		t.Fatalf("unexpected counts: %+v", body)
	}
	if len(body.RecentOrders) != 2 || body.RecentOrders[0].ID != 3 {
		t.Fatalf("unexpected recent orders: %+v", body.RecentOrders)
	}
}

func TestDashboardRequiresAdminRole(t *testing.T) {
	h := NewHandler(fixedCounter(0), fixedCounter(0), fakeOrders{})
	app := makeAdminApp(h)

	// no token at all
	res, _ := app.Test(httptest.NewRequest("GET", "/api/admin/dashboard", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}

	// authenticated but not admin
	req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
	req.Header.Set("X-Role", auth.RoleUser)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", res.StatusCode)
	}
}
