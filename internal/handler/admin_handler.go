package handler

import (
	"net/http"
	"strconv"
	"time"

	"supportly/internal/domain"
	"supportly/internal/repository"
	"supportly/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminRepo   *repository.AdminRepository
	settingRepo *repository.SettingRepository
	payouts     *service.PayoutService
	orders      *service.OrderService
	expiry      *service.WishlistExpiryService
	pending     *service.PendingReconciler
}

func NewAdminHandler(
	adminRepo *repository.AdminRepository,
	settingRepo *repository.SettingRepository,
	payouts *service.PayoutService,
	orders *service.OrderService,
	expiry *service.WishlistExpiryService,
	pending *service.PendingReconciler,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:   adminRepo,
		settingRepo: settingRepo,
		payouts:     payouts,
		orders:      orders,
		expiry:      expiry,
		pending:     pending,
	}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListWithdrawals handles GET /admin/withdrawals?status=PENDING.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.adminRepo.ListWithdrawals(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// ResolveWithdrawal handles POST /admin/withdrawals/:id/resolve for bank payouts
// and mobile-money payouts held for review.
func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Outcome string `json:"outcome" binding:"required,oneof=completed cancelled"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.payouts.ResolveManualWithdrawal(c.Request.Context(), id, req.Outcome, req.Reason)
	if err != nil {
		respondError(c, "ADMIN", err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// RefundOrder handles POST /admin/orders/:id/refund.
func (h *AdminHandler) RefundOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.Refund(c.Request.Context(), id)
	if err != nil {
		respondError(c, "ADMIN", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ExpireWishlists handles POST /admin/wishlists/expire.
func (h *AdminHandler) ExpireWishlists(c *gin.Context) {
	n, err := h.expiry.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, "ADMIN", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": n})
}

// MigrateWishlists handles POST /admin/wishlists/migrate.
func (h *AdminHandler) MigrateWishlists(c *gin.Context) {
	n, err := h.expiry.Migrate(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, "ADMIN", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduled": n})
}

// ReconcilePending handles POST /admin/reconcile: one catch-up pass now.
func (h *AdminHandler) ReconcilePending(c *gin.Context) {
	n, err := h.pending.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, "ADMIN", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked": n})
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettings handles PUT /admin/settings. All values are validated
// before any is written.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		Settings map[string]string `json:"settings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for k, v := range req.Settings {
		if msg := validateSetting(k, v); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}
	for k, v := range req.Settings {
		if err := h.settingRepo.Set(c.Request.Context(), k, v); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update setting: " + k})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func validateSetting(key, value string) string {
	switch key {
	case domain.SettingCommissionBps, domain.SettingMinWithdrawal, domain.SettingMinPaymentAmount:
	default:
		return "unknown setting: " + key
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return key + " must be a non-negative integer"
	}
	if key == domain.SettingCommissionBps && n > 10000 {
		return key + " must not exceed 10000"
	}
	return ""
}
