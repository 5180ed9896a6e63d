package ws

import (
	"encoding/json"
	"sync"
)

// Client is one live-feed connection of a creator.
type Client struct {
	UserID uint
	Role   string
	Send   chan []byte
	Hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(userID uint, role string) *Client {
	return &Client{UserID: userID, Role: role, Send: make(chan []byte, 256)}
}

// Close unregisters before taking c.mu; BroadcastToUser locks hub then client.
func (c *Client) Close() {
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Hub fans feed events out to every connection a creator has open.
type Hub struct {
	mu     sync.RWMutex
	byUser map[uint]map[*Client]struct{}
	count  int
}

func NewHub() *Hub {
	return &Hub{byUser: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	if _, ok := h.byUser[c.UserID][c]; !ok {
		h.byUser[c.UserID][c] = struct{}{}
		h.count++
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.byUser[c.UserID]
	if m == nil {
		return
	}
	if _, ok := m[c]; ok {
		delete(m, c)
		h.count--
	}
	if len(m) == 0 {
		delete(h.byUser, c.UserID)
	}
}

// BroadcastToUser never blocks: a slow client misses messages rather than
// stalling settlement.
func (h *Hub) BroadcastToUser(userID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		c.mu.Lock()
		if !c.closed {
			select {
			case c.Send <- data:
			default:
			}
		}
		c.mu.Unlock()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
