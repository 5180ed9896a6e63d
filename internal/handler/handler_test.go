package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supportly/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrBelowMinimumAmount, http.StatusUnprocessableEntity},
		{domain.ErrBelowMinimumWithdrawal, http.StatusUnprocessableEntity},
		{domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{domain.ErrPaymentInfoMissing, http.StatusUnprocessableEntity},
		{domain.ErrCapacityExhausted, http.StatusConflict},
		{domain.ErrPaymentInfoLocked, http.StatusConflict},
		{domain.ErrInvalidPhone, http.StatusBadRequest},
		{domain.ErrWishlistUnavailable, http.StatusBadRequest},
		{domain.ErrIntentNotFound, http.StatusNotFound},
		{domain.ErrCreatorNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: timeout", domain.ErrGatewayRejected), http.StatusBadGateway},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, "TEST", tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRespondErrorKeepsDistinctMessages(t *testing.T) {
	msgs := map[string]bool{}
	for _, err := range []error{domain.ErrBelowMinimumAmount, domain.ErrBelowMinimumWithdrawal, domain.ErrInsufficientBalance, domain.ErrPaymentInfoMissing} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, "TEST", err)
		msgs[w.Body.String()] = true
	}
	assert.Len(t, msgs, 4)
}

func TestValidateSetting(t *testing.T) {
	assert.Empty(t, validateSetting(domain.SettingCommissionBps, "1800"))
	assert.Empty(t, validateSetting(domain.SettingMinWithdrawal, "0"))
	assert.NotEmpty(t, validateSetting(domain.SettingCommissionBps, "10001"))
	assert.NotEmpty(t, validateSetting(domain.SettingMinPaymentAmount, "-1"))
	assert.NotEmpty(t, validateSetting(domain.SettingMinPaymentAmount, "abc"))
	assert.NotEmpty(t, validateSetting("site_name", "x"))
}

func TestWebhookRejectsBadInput(t *testing.T) {
	h := NewGatewayWebhookHandler(nil, nil, "whsec")
	r := gin.New()
	r.POST("/hook", h.Handle)

	post := func(body, sig string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
		if sig != "" {
			req.Header.Set("X-Webhook-Signature", sig)
		}
		r.ServeHTTP(w, req)
		return w
	}

	body := `{"type":"payment.completed","data":{"reference":"r1","status":"completed"}}`
	assert.Equal(t, http.StatusUnauthorized, post(body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(body, Sign("other", []byte(body))).Code)

	bad := `{"type":`
	assert.Equal(t, http.StatusBadRequest, post(bad, Sign("whsec", []byte(bad))).Code)

	noRef := `{"type":"payment.completed","data":{}}`
	assert.Equal(t, http.StatusBadRequest, post(noRef, Sign("whsec", []byte(noRef))).Code)

	other := `{"type":"merchant.updated","data":{"reference":"r1"}}`
	w := post(other, Sign("whsec", []byte(other)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}
