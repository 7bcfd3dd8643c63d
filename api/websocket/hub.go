package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Inbound messages from clients
	broadcast chan []byte

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Latest snapshots, rebroadcast on the push interval
	rateBuffer  *RateMessage
	statsBuffer *StatsMessage

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Configuration
	config *HubConfig
}

// HubConfig contains hub configuration
type HubConfig struct {
	// Push interval for rate and stats snapshots
	PushInterval time.Duration

	// Connection limits
	MaxClientsPerIP  int
	MaxSubscriptions int

	// Rate limiting
	MessageRateLimit int // Messages per second per client
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		PushInterval:     time.Second,
		MaxClientsPerIP:  10,
		MaxSubscriptions: 20,
		MessageRateLimit: 50,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
	Action  string // "subscribe" or "unsubscribe"
}

// NewHub creates a new Hub
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:     make(map[*Client]bool),
		channels:    make(map[string]map[*Client]bool),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *SubscriptionRequest, 256),
		unsubscribe: make(chan *SubscriptionRequest, 256),
		config:      config,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	pushTicker := time.NewTicker(h.config.PushInterval)
	defer pushTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-pushTicker.C:
			h.pushSnapshots()
		}
	}
}

// registerClient adds a new client
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		// Remove from all channels
		for channel, clients := range h.channels {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}

		close(client.send)
	}
}

// handleSubscription handles a subscription request
func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true

	// Send subscription confirmation
	confirmation := &WSMessage{
		Type:    "subscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// handleUnsubscription handles an unsubscription request
func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	// Send unsubscription confirmation
	confirmation := &WSMessage{
		Type:    "unsubscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// broadcastMessage sends a message to all connected clients
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client buffer is full, skip
		}
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	h.mu.RLock()
	clients, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Make a copy of clients to avoid holding lock during send
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	for _, client := range clientList {
		select {
		case client.send <- data:
		default:
			// Client buffer is full, skip
		}
	}
}

// ============ Channel-specific broadcasts ============

// UpdateRate replaces the exchange-rate snapshot pushed to subscribers
func (h *Hub) UpdateRate(rate *RateMessage) {
	h.mu.Lock()
	h.rateBuffer = rate
	h.mu.Unlock()
}

// UpdateStats replaces the stats snapshot pushed to subscribers
func (h *Hub) UpdateStats(stats *StatsMessage) {
	h.mu.Lock()
	h.statsBuffer = stats
	h.mu.Unlock()
}

// pushSnapshots broadcasts the buffered rate and stats snapshots
func (h *Hub) pushSnapshots() {
	h.mu.RLock()
	rate := h.rateBuffer
	stats := h.statsBuffer
	h.mu.RUnlock()

	if rate != nil {
		h.BroadcastToChannel("rate", &WSMessage{
			Type:    "rate",
			Channel: "rate",
			Data:    rate,
		})
	}
	if stats != nil {
		h.BroadcastToChannel("stats", &WSMessage{
			Type:    "stats",
			Channel: "stats",
			Data:    stats,
		})
	}
}

// BroadcastActivity broadcasts a deposit or withdrawal event
func (h *Hub) BroadcastActivity(activity *ActivityMessage) {
	msg := &WSMessage{
		Type:    "activity",
		Channel: "activity",
		Data:    activity,
	}
	h.BroadcastToChannel("activity", msg)
}

// BroadcastAccount broadcasts a balance update to a specific holder
func (h *Hub) BroadcastAccount(address string, account *AccountMessage) {
	channel := "account:" + address
	msg := &WSMessage{
		Type:    "account",
		Channel: channel,
		Data:    account,
	}
	h.BroadcastToChannel(channel, msg)
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    interface{} `json:"data,omitempty"`
}

// RateMessage represents an exchange-rate update
type RateMessage struct {
	Rate        string `json:"rate"`
	TotalAssets string `json:"total_assets"`
	TotalShares string `json:"total_shares"`
	BlockHeight int64  `json:"block_height"`
	Timestamp   int64  `json:"timestamp"`
}

// StatsMessage represents a pool stats update
type StatsMessage struct {
	TotalValueLocked string `json:"total_value_locked"`
	TotalDepositors  int64  `json:"total_depositors"`
	TotalDeposited   string `json:"total_deposited"`
	TotalWithdrawn   string `json:"total_withdrawn"`
	StrategyPulls    int64  `json:"strategy_pulls"`
	Paused           bool   `json:"paused"`
	Timestamp        int64  `json:"timestamp"`
}

// ActivityMessage represents a completed deposit or withdrawal
type ActivityMessage struct {
	Kind      string `json:"kind"` // "deposit" or "withdrawal"
	ID        string `json:"id"`
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Shares    string `json:"shares"`
	Timestamp int64  `json:"timestamp"`
}

// AccountMessage represents a holder balance update
type AccountMessage struct {
	Address   string `json:"address"`
	Shares    string `json:"shares"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelCount returns the number of active channels
func (h *Hub) GetChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		return len(clients)
	}
	return 0
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = generateID()
	}

	address := r.URL.Query().Get("address")
	ip := getClientIPFromRequest(r)

	client := NewClient(h, conn, clientID, address, ip)

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Helper function to get client IP
func getClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

// Generate a simple ID
func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
