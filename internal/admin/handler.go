package admin

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/flamecrumble/storefront-backend/internal/order"
)

// recentOrders is how many orders the dashboard shows.
const recentOrders = 5

// Counter is the slice of a service the dashboard needs for a headline
// number.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// OrderStats extends Counter with the recent-orders feed.
type OrderStats interface {
	Counter
	Recent(ctx context.Context, limit int) ([]order.Order, error)
}

// Handler serves the admin dashboard. It is mounted behind the admin gate,
// so every request here already carries an admin token.
type Handler struct {
	products Counter
	users    Counter
	orders   OrderStats
}

func NewHandler(products, users Counter, orders OrderStats) *Handler {
	return &Handler{products: products, users: users, orders: orders}
}

func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/dashboard", h.dashboard)
}

func (h *Handler) dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	productCount, err := h.products.Count(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	userCount, err := h.users.Count(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	orderCount, err := h.orders.Count(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	recent, err := h.orders.Recent(ctx, recentOrders)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"productCount": productCount,
		"userCount":    userCount,
		"orderCount":   orderCount,
		"recentOrders": recent,
	})
}
