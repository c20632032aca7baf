package address

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/flamecrumble/storefront-backend/internal/auth"
)

// Handler delegates address operations to the address service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/addresses", h.listAddresses)
	app.Post("/api/addresses", h.createAddress)
	app.Put("/api/addresses/:id<[0-9]+>", h.updateAddress)
	app.Delete("/api/addresses/:id<[0-9]+>", h.deleteAddress)
	app.Patch("/api/addresses/:id<[0-9]+>/set-default", h.setDefault)
}

type addressRequest struct {
	Type      string `json:"type"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

func (req *addressRequest) toInput() CreateInput {
	t := req.Type
	if t == "" {
		t = TypeHome
	}
	return CreateInput{
		Type:      t,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}
}

func (h *Handler) listAddresses(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addrs, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"addresses": addrs})
}

func (h *Handler) createAddress(c *fiber.Ctx) error {
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	created, err := h.service.Create(c.UserContext(), userID, payload.toInput())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "address added", "address": created})
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid address id"})
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	updated, err := h.service.Update(c.UserContext(), userID, id, payload.toInput())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"message": "address updated", "address": updated})
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid address id"})
	}
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"message": "address deleted"})
}

func (h *Handler) setDefault(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid address id"})
	}
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addr, err := h.service.SetDefault(c.UserContext(), userID, id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(fiber.Map{"message": "address set as default", "address": addr})
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
	case errors.Is(err, ErrDefaultInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
