package handler

import (
	"strings"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"
	"tobaku-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// InventoryHandler serves the catalog and the stock ledger.
type InventoryHandler struct {
	catalog service.CatalogService
	stock   service.StockService
}

func NewInventoryHandler(catalog service.CatalogService, stock service.StockService) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, stock: stock}
}

// GetProducts lists the catalog
// GET /api/v1/products?q=&category=&in_stock=&low_stock=
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Query:        c.Query("q"),
		Category:     c.Query("category"),
		InStockOnly:  c.QueryBool("in_stock", false),
		LowStockOnly: c.QueryBool("low_stock", false),
	}
	products, err := h.catalog.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.catalog.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	var patch service.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.catalog.Update(c.UserContext(), actor(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.catalog.Delete(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// RecordMovement adds or removes stock by hand
// POST /api/v1/stock/movements
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req.Type = model.StockType(strings.ToUpper(string(req.Type)))

	entry, err := h.stock.RecordMovement(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock movement recorded", "data": entry})
}

// GetStockLogs returns the ledger newest first
// GET /api/v1/stock/logs?product_id=&type=&limit=
func (h *InventoryHandler) GetStockLogs(c *fiber.Ctx) error {
	filter := repository.StockLogFilter{
		Type:  model.StockType(strings.ToUpper(c.Query("type"))),
		Limit: c.QueryInt("limit", 100),
	}
	if filter.Type != "" && filter.Type != model.StockIn && filter.Type != model.StockOut {
		return badRequest(c, "type must be IN or OUT")
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid product ID")
		}
		filter.ProductID = &id
	}

	logs, err := h.stock.ListLogs(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(logs)
}
