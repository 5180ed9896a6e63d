package handler

import (
	"log"
	"net/http"

	"supportly/internal/middleware"
	"supportly/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	payouts *service.PayoutService
}

func NewWithdrawalHandler(payouts *service.PayoutService) *WithdrawalHandler {
	return &WithdrawalHandler{payouts: payouts}
}

// Create handles POST /me/withdrawals. Mobile-money payouts always go to the
// creator's verified payment info; bank payouts carry their own details.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	creatorID := middleware.GetCreatorID(c)
	var req struct {
		Amount        int64  `json:"amount" binding:"required,min=1"`
		Method        string `json:"method"` // defaults to mobile_money
		AccountName   string `json:"account_name"`
		BankName      string `json:"bank_name"`
		AccountNumber string `json:"account_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.payouts.SubmitWithdrawal(c.Request.Context(), creatorID, req.Amount, service.Destination{
		Method:        req.Method,
		AccountName:   req.AccountName,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		respondError(c, "WITHDRAWAL", err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// List handles GET /me/withdrawals.
func (h *WithdrawalHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, err := h.payouts.ListWithdrawals(c.Request.Context(), middleware.GetCreatorID(c), limit, (page-1)*limit)
	if err != nil {
		respondError(c, "WITHDRAWAL", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "page": page, "limit": limit})
}

// Get handles GET /me/withdrawals/:id. Pass ?refresh=true to poll the gateway first.
func (h *WithdrawalHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	creatorID := middleware.GetCreatorID(c)
	ctx := c.Request.Context()
	if c.Query("refresh") == "true" {
		w, err := h.payouts.RefreshWithdrawal(ctx, creatorID, id)
		if err == nil {
			c.JSON(http.StatusOK, w)
			return
		}
		log.Printf("[WITHDRAWAL] refresh %d failed: %v", id, err)
	}
	w, err := h.payouts.GetWithdrawal(ctx, creatorID, id)
	if err != nil {
		respondError(c, "WITHDRAWAL", err)
		return
	}
	c.JSON(http.StatusOK, w)
}
