package handler

import (
	"net/http"

	"supportly/internal/middleware"
	"supportly/internal/service"

	"github.com/gin-gonic/gin"
)

type BalanceHandler struct {
	balances *service.BalanceService
	policy   *service.Policy
	currency string
}

func NewBalanceHandler(balances *service.BalanceService, policy *service.Policy, currency string) *BalanceHandler {
	return &BalanceHandler{balances: balances, policy: policy, currency: currency}
}

// Get handles GET /me/balance. The balance is derived from the ledger on every call.
func (h *BalanceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	b, err := h.balances.ComputeBalance(ctx, middleware.GetCreatorID(c))
	if err != nil {
		respondError(c, "BALANCE", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":        b,
		"currency":       h.currency,
		"commission_bps": h.policy.CommissionBps(ctx),
		"min_withdrawal": h.policy.MinWithdrawal(ctx),
	})
}
