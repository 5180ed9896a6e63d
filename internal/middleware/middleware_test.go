package middleware

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"supportly/config"
	"supportly/internal/auth"
	"supportly/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthRequired(t *testing.T) {
	cfg := &config.JWTConfig{AccessSecret: "s3cret", AccessExpiry: time.Minute, Issuer: "supportly"}
	r := gin.New()
	r.GET("/me", AuthRequired(cfg), CreatorRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"creator_id": GetCreatorID(c), "user_id": GetUserID(c)})
	})
	r.GET("/inbox", AuthRequired(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"creator_id": GetCreatorID(c), "user_id": GetUserID(c)})
	})
	r.GET("/admin", AuthRequired(cfg), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	creator, err := auth.GenerateAccessToken(cfg, 7, "c@example.com", domain.RoleCreator)
	require.NoError(t, err)
	fan, err := auth.GenerateAccessToken(cfg, 8, "f@example.com", domain.RoleSupporter)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		header  string
		want    int
		creator uint
		user    uint
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, 0, 0},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized, 0, 0},
		{"garbage token", "/me", "Bearer abc", http.StatusUnauthorized, 0, 0},
		{"supporter on creator route", "/me", "Bearer " + fan, http.StatusForbidden, 0, 0},
		{"creator scoped", "/me", "Bearer " + creator, http.StatusOK, 7, 7},
		{"supporter has no creator scope", "/inbox", "Bearer " + fan, http.StatusOK, 0, 8},
		{"admin only", "/admin", "Bearer " + creator, http.StatusForbidden, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				return
			}
			var got struct {
				CreatorID uint `json:"creator_id"`
				UserID    uint `json:"user_id"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.creator, got.CreatorID)
			assert.Equal(t, tt.user, got.UserID)
		})
	}
}

func TestAdminRequired_LogsStateChanges(t *testing.T) {
	cfg := &config.JWTConfig{AccessSecret: "s3cret", AccessExpiry: time.Minute, Issuer: "supportly"}
	r := gin.New()
	r.POST("/admin/withdrawals/:id/resolve", AuthRequired(cfg), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	admin, err := auth.GenerateAccessToken(cfg, 1, "ops@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/withdrawals/9/resolve", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, buf.String(), "[ADMIN] admin=1 POST /admin/withdrawals/9/resolve -> 202")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewInMemoryRateLimiter(2, time.Minute)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}
