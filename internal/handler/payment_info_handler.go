package handler

import (
	"errors"
	"net/http"

	"supportly/internal/domain"
	"supportly/internal/middleware"
	"supportly/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentInfoHandler struct {
	svc *service.PaymentInfoService
}

func NewPaymentInfoHandler(svc *service.PaymentInfoService) *PaymentInfoHandler {
	return &PaymentInfoHandler{svc: svc}
}

// Get handles GET /me/payment-info.
func (h *PaymentInfoHandler) Get(c *gin.Context) {
	info, err := h.svc.Get(c.Request.Context(), middleware.GetCreatorID(c))
	if errors.Is(err, domain.ErrPaymentInfoMissing) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no payment info on file"})
		return
	}
	if err != nil {
		respondError(c, "PAYMENT_INFO", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Save handles PUT /me/payment-info. Rejected with 409 once verified.
func (h *PaymentInfoHandler) Save(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required"`
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, err := h.svc.Save(c.Request.Context(), middleware.GetCreatorID(c), req.Provider, req.FullName, req.Phone)
	if err != nil {
		respondError(c, "PAYMENT_INFO", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Verify handles POST /me/payment-info/verify and locks the record.
func (h *PaymentInfoHandler) Verify(c *gin.Context) {
	info, err := h.svc.Verify(c.Request.Context(), middleware.GetCreatorID(c))
	if err != nil {
		respondError(c, "PAYMENT_INFO", err)
		return
	}
	c.JSON(http.StatusOK, info)
}
