package handler

import (
	"log"
	"net/http"

	"supportly/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	intents *service.IntentService
	poller  *service.IntentPoller
}

func NewPaymentHandler(intents *service.IntentService, poller *service.IntentPoller) *PaymentHandler {
	return &PaymentHandler{intents: intents, poller: poller}
}

type createIntentRequest struct {
	Kind       string `json:"kind" binding:"required"`
	CreatorID  uint   `json:"creator_id" binding:"required"`
	Amount     int64  `json:"amount"`
	PayerName  string `json:"payer_name"`
	PayerPhone string `json:"payer_phone" binding:"required"`
	Provider   string `json:"provider" binding:"required"`
	WishlistID *uint  `json:"wishlist_id"`
	ProductID  *uint  `json:"product_id"`
	Quantity   int    `json:"quantity"`
	Message    string `json:"message"`
}

// CreateIntent handles POST /payments/intents. Supporters pay without an account.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	intent, err := h.intents.CreateIntent(c.Request.Context(), service.CreateIntentInput{
		Kind:       req.Kind,
		CreatorID:  req.CreatorID,
		Amount:     req.Amount,
		PayerName:  req.PayerName,
		PayerPhone: req.PayerPhone,
		Provider:   req.Provider,
		WishlistID: req.WishlistID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Message:    req.Message,
	})
	if err != nil {
		respondError(c, "PAYMENT", err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// GetIntent handles GET /payments/intents/:deposit_id. With ?wait=true it
// blocks until the intent settles or the poll window closes.
func (h *PaymentHandler) GetIntent(c *gin.Context) {
	depositID := c.Param("deposit_id")
	ctx := c.Request.Context()
	if c.Query("wait") == "true" {
		intent, err := h.poller.Await(ctx, depositID)
		if err != nil {
			respondError(c, "PAYMENT", err)
			return
		}
		c.JSON(http.StatusOK, intent)
		return
	}
	intent, err := h.poller.Refresh(ctx, depositID)
	if intent == nil {
		respondError(c, "PAYMENT", err)
		return
	}
	if err != nil {
		log.Printf("[PAYMENT] status refresh for %s failed: %v", depositID, err)
	}
	c.JSON(http.StatusOK, intent)
}
