package cart

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithCartHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func TestCartRoutes(t *testing.T) {
	svc, _ := newTestService()
	app := makeAppWithCartHandler(NewHandler(svc))

	// unauthorized
	res, _ := app.Test(httptest.NewRequest("GET", "/api/cart", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	// empty cart reads as an empty list
	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"items":[]`) {
		t.Fatalf("expected empty items, got %s", string(b))
	}

	// quantity defaults to 1 when omitted
	req = httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"productId":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for add, got %d", res.StatusCode)
	}

	// adding the same product merges quantities
	req = httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"productId":1,"quantity":4}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for merge add, got %d", res.StatusCode)
	}
	b, _ = io.ReadAll(res.Body)
	var crt Cart
	if err := json.Unmarshal(b, &crt); err != nil {
		t.Fatalf("bad cart body: %v", err)
	}
	if len(crt.Items) != 1 || crt.Items[0].Quantity != 5 {
		t.Fatalf("expected one merged line with quantity 5, got %+v", crt.Items)
	}

	// update by item id
	itemID := strconv.Itoa(crt.Items[0].ID)
	req = httptest.NewRequest("PATCH", "/api/cart/"+itemID, strings.NewReader(`{"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for update, got %d", res.StatusCode)
	}

	// zero quantity is rejected
	req = httptest.NewRequest("PATCH", "/api/cart/"+itemID, strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", res.StatusCode)
	}

	// remove, then removing again is 404
	req = httptest.NewRequest("DELETE", "/api/cart/"+itemID, nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for remove, got %d", res.StatusCode)
	}
	req = httptest.NewRequest("DELETE", "/api/cart/"+itemID, nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for repeated remove, got %d", res.StatusCode)
	}
}

func TestAddUnknownProductIs404(t *testing.T) {
	svc, _ := newTestService()
	app := makeAppWithCartHandler(NewHandler(svc))

	req := httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"productId":999}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}
}
