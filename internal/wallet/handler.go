package wallet

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/anamboary/anamboary/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type amountRequest struct {
	Amount json.Number `json:"amount"`
}

type transactionResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type investmentResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	DailyProfit string `json:"daily_profit"`
	Status      string `json:"status"`
	Reference   string `json:"reference"`
}

// Deposit credits the authenticated user's wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	amount, err := parseAmount(c)
	if err != nil {
		return err
	}
	result, err := h.service.Deposit(c.UserContext(), currentUser(c), amount)
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":     result.Balance.StringFixed(2),
		"transaction": toTransactionResponse(result.Transaction),
	})
}

// Withdraw debits the authenticated user's wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	amount, err := parseAmount(c)
	if err != nil {
		return err
	}
	result, err := h.service.Withdraw(c.UserContext(), currentUser(c), amount)
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":     result.Balance.StringFixed(2),
		"transaction": toTransactionResponse(result.Transaction),
	})
}

// Invest opens a fixed-yield position funded from the wallet.
func (h *Handler) Invest(c *fiber.Ctx) error {
	amount, err := parseAmount(c)
	if err != nil {
		return err
	}
	result, err := h.service.Invest(c.UserContext(), currentUser(c), amount)
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":      result.Balance.StringFixed(2),
		"daily_profit": result.Investment.DailyProfit.StringFixed(2),
		"transaction":  toTransactionResponse(result.Transaction),
		"investment":   toInvestmentResponse(result.Investment),
	})
}

// Dashboard returns the balance with recent transactions and investments.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	overview, err := h.service.Dashboard(c.UserContext(), currentUser(c))
	if err != nil {
		return ledgerError(err)
	}

	transactions := make([]transactionResponse, 0, len(overview.Transactions))
	for _, txn := range overview.Transactions {
		transactions = append(transactions, toTransactionResponse(txn))
	}
	investments := make([]investmentResponse, 0, len(overview.Investments))
	for _, inv := range overview.Investments {
		investments = append(investments, toInvestmentResponse(inv))
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":      overview.Balance.StringFixed(2),
		"transactions": transactions,
		"investments":  investments,
	})
}

func currentUser(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}

func parseAmount(c *fiber.Ctx) (decimal.Decimal, error) {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return decimal.Zero, fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount.String()))
	if err != nil {
		return decimal.Zero, fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	return amount, nil
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ledger.ErrWalletNotFound):
		return fiber.NewError(http.StatusNotFound, "wallet not found")
	default:
		return fiber.NewError(http.StatusInternalServerError, "operation failed")
	}
}

func toTransactionResponse(txn ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:        txn.ID,
		Kind:      txn.Kind,
		Amount:    txn.Amount.StringFixed(2),
		Reference: txn.Reference,
		Status:    txn.Status,
		CreatedAt: txn.CreatedAt.Format(time.RFC3339),
	}
}

func toInvestmentResponse(inv ledger.Investment) investmentResponse {
	return investmentResponse{
		ID:          inv.ID,
		Amount:      inv.Amount.StringFixed(2),
		Date:        inv.Date.Format("2006-01-02"),
		DailyProfit: inv.DailyProfit.StringFixed(2),
		Status:      inv.Status,
		Reference:   inv.Reference,
	}
}
