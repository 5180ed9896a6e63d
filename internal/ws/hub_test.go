package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"supportly/config"
	"supportly/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastToUser(t *testing.T) {
	h := NewHub()
	a := NewClient(1, "CREATOR")
	b := NewClient(2, "CREATOR")
	h.Register(a)
	h.Register(b)
	assert.Equal(t, 2, h.ClientCount())

	h.BroadcastToUser(1, map[string]string{"type": "support"})
	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"type":"support"}`, string(msg))
	default:
		t.Fatal("expected a message for user 1")
	}
	assert.Len(t, b.Send, 0)

	a.Close()
	a.Close()
	assert.Equal(t, 1, h.ClientCount())
	h.BroadcastToUser(1, map[string]string{"type": "ignored"})
}

func TestUpgradeFeedWS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Minute, Issuer: "test"}
	hub := NewHub()
	r := gin.New()
	r.GET("/ws/feed", UpgradeFeedWS(cfg, hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	token, err := auth.GenerateAccessToken(cfg, 9, "c@example.com", "CREATOR")
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, hello, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"connected"}`, string(hello))

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.BroadcastToUser(9, map[string]interface{}{"type": "withdrawal", "status": "COMPLETED"})

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "COMPLETED", got["status"])
}
