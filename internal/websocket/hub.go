package websocket

import (
	"encoding/json"
	"sync"
)

// SettlementUpdate is pushed to connected circle members when an obligation
// changes payment state.
type SettlementUpdate struct {
	CircleID       string `json:"circle_id"`
	ExpenseID      string `json:"expense_id"`
	ObligationID   string `json:"obligation_id"`
	UserID         string `json:"user_id"`
	Amount         string `json:"amount"`
	IsPaid         bool   `json:"is_paid"`
	ExpenseSettled bool   `json:"expense_settled"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) BroadcastSettlement(userID string, update SettlementUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
