package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"supportly/internal/domain"
	"supportly/internal/service"

	"github.com/gin-gonic/gin"
)

// GatewayWebhookHandler receives collection and payout callbacks. Callbacks
// are matched on the gateway reference, falling back to the merchant reference
// we sent. It acks every well-formed callback, including ones it cannot match,
// so the gateway stops retrying; only storage failures return 5xx.
type GatewayWebhookHandler struct {
	reconciler *service.Reconciler
	payouts    *service.PayoutService
	secret     string
}

func NewGatewayWebhookHandler(reconciler *service.Reconciler, payouts *service.PayoutService, secret string) *GatewayWebhookHandler {
	return &GatewayWebhookHandler{reconciler: reconciler, payouts: payouts, secret: secret}
}

type gatewayCallback struct {
	Type string `json:"type"` // payment.*, payout.*
	Data struct {
		Reference         string `json:"reference"`
		MerchantReference string `json:"merchant_reference"` // our deposit id or payout order ref
		Status            string `json:"status"`
		FailureReason     string `json:"failure_reason"`
	} `json:"data"`
}

func (h *GatewayWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.secret != "" && !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		log.Printf("[WEBHOOK] rejected callback with bad signature from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	var cb gatewayCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ref := cb.Data.Reference
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference required"})
		return
	}
	log.Printf("[WEBHOOK] %s ref=%s status=%s", cb.Type, ref, cb.Data.Status)

	ctx := c.Request.Context()
	switch {
	case strings.HasPrefix(cb.Type, "payout"):
		_, err = h.payouts.ReconcileCallback(ctx, ref, cb.Data.MerchantReference, cb.Data.Status, cb.Data.FailureReason)
	case strings.HasPrefix(cb.Type, "payment"), strings.HasPrefix(cb.Type, "collection"):
		_, err = h.reconciler.SettleCallback(ctx, ref, cb.Data.MerchantReference, cb.Data.Status, cb.Data.FailureReason)
	default:
		log.Printf("[WEBHOOK] ignoring event type %q", cb.Type)
	}
	if err != nil && !domain.IsNotFound(err) && !domain.IsValidation(err) {
		log.Printf("[WEBHOOK] %s ref=%s: %v", cb.Type, ref, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}
	if err != nil {
		log.Printf("[WEBHOOK] %s ref=%s acknowledged without effect: %v", cb.Type, ref, err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *GatewayWebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature the gateway sends; exported for tooling and tests.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
