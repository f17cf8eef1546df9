package handler

import (
	"time"

	"tobaku-pos/internal/middleware"
	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"
	"tobaku-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IdempotencyHeader lets a register retry a sale without charging twice.
const IdempotencyHeader = "Idempotency-Key"

type TransactionHandler struct {
	checkout service.CheckoutService
	loc      *time.Location
}

func NewTransactionHandler(checkout service.CheckoutService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{checkout: checkout, loc: loc}
}

// Quote prices a cart without saving it
// POST /api/v1/checkout/quote
func (h *TransactionHandler) Quote(c *fiber.Ctx) error {
	var req service.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	quote, err := h.checkout.Quote(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

// CreateTransaction submits a sale
// POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if key := c.Get(IdempotencyHeader); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}

	tx, err := h.checkout.Submit(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction recorded", "data": tx})
}

// GetTransactions lists sales newest first. Without transaction:view_all only
// the caller's own sales are returned.
// GET /api/v1/transactions?from=&to=&cashier_id=&limit=
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter := repository.TransactionFilter{
		CashierID: c.Query("cashier_id"),
		Limit:     c.QueryInt("limit", 0),
	}
	if !middleware.HasPrivilege(c, model.PrivTransactionViewAll) {
		filter.CashierID = actor(c).ID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw, h.loc, false)
		if err != nil {
			return badRequest(c, "Invalid from date, use YYYY-MM-DD")
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw, h.loc, true)
		if err != nil {
			return badRequest(c, "Invalid to date, use YYYY-MM-DD")
		}
		filter.To = to
	}

	transactions, err := h.checkout.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	tx, err := h.checkout.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	// other cashiers' sales look like missing ones
	if tx.CashierID != actor(c).ID && !middleware.HasPrivilege(c, model.PrivTransactionViewAll) {
		return respondError(c, &service.Error{Kind: service.ErrNotFound, Message: "transaction not found"})
	}
	return c.JSON(tx)
}
