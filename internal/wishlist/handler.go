package wishlist

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/flamecrumble/storefront-backend/internal/auth"
	"github.com/flamecrumble/storefront-backend/internal/product"
)

// Handler delegates wishlist operations to the wishlist service. Unlike the
// cart, removal addresses the product id directly since presence is boolean.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/wishlist", h.getWishlist)
	app.Post("/api/wishlist", h.addToWishlist)
	app.Delete("/api/wishlist/:productId<[0-9]+>", h.removeFromWishlist)
}

type addRequest struct {
	ProductID int `json:"productId"`
}

func (h *Handler) getWishlist(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	wl, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(wl)
}

func (h *Handler) addToWishlist(c *fiber.Ctx) error {
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	wl, err := h.service.AddItem(c.UserContext(), userID, payload.ProductID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(wl)
}

func (h *Handler) removeFromWishlist(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	wl, err := h.service.RemoveItem(c.UserContext(), userID, productID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"message": "product removed from wishlist", "wishlist": wl})
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "wishlist not found"})
	case errors.Is(err, ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found in wishlist"})
	case errors.Is(err, product.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case errors.Is(err, ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
