package handler

import (
	"strconv"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/model"
	"go-warehouse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
	ledger  service.StockLedger
}

func NewInventoryHandler(s service.InventoryService, ledger service.StockLedger) *InventoryHandler {
	return &InventoryHandler{service: s, ledger: ledger}
}

// GetProducts lists products, optionally filtered by ?search= on the name.
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetProducts(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(viewsOf(products))
}

func (h *InventoryHandler) GetLowStockProducts(c *fiber.Ctx) error {
	products, err := h.service.GetLowStockProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(viewsOf(products))
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(viewOf(product))
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidJSON(c)
	}
	product.ID = 0

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": viewOf(&product)})
}

// UpdateProduct edits the descriptive fields; quantity only moves through
// the stock adjustment endpoint.
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidJSON(c)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &product)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": viewOf(updated)})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

type adjustRequest struct {
	ProductID uint             `json:"product_id"`
	Code      string           `json:"code"`
	Count     int              `json:"count"`
	Direction *model.Direction `json:"direction"`
	Remark    string           `json:"remark"`
}

// AdjustStock moves stock in or out of one product, addressed by
// product_id or code.
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.Direction == nil {
		return respondError(c, &apperror.ValidationError{Field: "direction", Message: "is required"})
	}

	var (
		adj *service.Adjustment
		err error
	)
	if req.Code != "" {
		adj, err = h.ledger.AdjustStockByCode(c.UserContext(), req.Code, req.Count, *req.Direction, req.Remark)
	} else {
		adj, err = h.ledger.AdjustStock(c.UserContext(), req.ProductID, req.Count, *req.Direction, req.Remark)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock adjusted", "data": adj})
}

// GetRecords lists stock records newest first, for one product when
// ?product_id= is given.
func (h *InventoryHandler) GetRecords(c *fiber.Ctx) error {
	var (
		records []model.Record
		err     error
	)
	if raw := c.Query("product_id"); raw != "" {
		id, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil || id == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
		}
		records, err = h.service.GetProductRecords(c.UserContext(), uint(id))
	} else {
		records, err = h.service.GetRecords(c.UserContext())
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(records)
}
