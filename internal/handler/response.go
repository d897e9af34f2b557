package handler

import (
	"errors"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/model"
	"go-warehouse/internal/worker"

	"github.com/gofiber/fiber/v2"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	var (
		valid *apperror.ValidationError
		nf    *apperror.ProductNotFoundError
		stock *apperror.InsufficientStockError
	)
	switch {
	case errors.As(err, &valid):
		return fiber.StatusBadRequest
	case errors.As(err, &nf):
		return fiber.StatusNotFound
	case errors.As(err, &stock), errors.Is(err, worker.ErrBusy):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	msg := apperror.Message(err)
	if errors.Is(err, worker.ErrBusy) {
		msg = err.Error()
	}
	return c.Status(statusOf(err)).JSON(fiber.Map{"error": msg})
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}

// idParam reads a positive numeric :id.
func idParam(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// productView adds the derived fields clients display next to a product.
type productView struct {
	model.Product
	Display  string `json:"display"`
	LowStock bool   `json:"low_stock"`
}

func viewOf(p *model.Product) productView {
	return productView{Product: *p, Display: p.DisplayText(), LowStock: p.IsLowStock()}
}

func viewsOf(products []model.Product) []productView {
	out := make([]productView, len(products))
	for i := range products {
		out[i] = viewOf(&products[i])
	}
	return out
}
