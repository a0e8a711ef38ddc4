package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/benchline/benchline-core/internal/auth"
	"github.com/benchline/benchline-core/internal/infrastructure/config"
	"github.com/benchline/benchline-core/internal/infrastructure/logging"
	"github.com/benchline/benchline-core/internal/infrastructure/mqtt"
)

// Channels a client can subscribe to over the event stream.
const (
	ChannelDeviceEvents = "device.event"
	ChannelEnvCheck     = "env.check"
)

// Client protocol message types.
const (
	wsTypeSubscribe   = "subscribe"
	wsTypeUnsubscribe = "unsubscribe"
	wsTypePing        = "ping"
	wsTypePong        = "pong"
	wsTypeEvent       = "event"
	wsTypeResponse    = "response"
	wsTypeError       = "error"
)

// wsSendBuffer is the per-client outbound queue. A client that falls this
// far behind starts losing events rather than stalling the hub.
const wsSendBuffer = 256

// wsMessage is the envelope exchanged with event stream clients.
type wsMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

type wsSubscribePayload struct {
	Channels []string `json:"channels"`
}

// broadcastMsg is a marshalled event addressed to one channel.
type broadcastMsg struct {
	channel string
	data    []byte
}

// Hub fans station events out to connected WebSocket clients. The client
// set is owned exclusively by the Run goroutine; registration, removal and
// broadcast all go through channels, so no lock guards the map.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	register   chan *wsClient
	unregister chan *wsClient
	events     chan broadcastMsg

	// done is closed when Run returns, unblocking registrations that
	// would otherwise wait on a stopped hub.
	done chan struct{}

	count atomic.Int64
}

// wsClient is one authenticated event stream connection.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte

	mu   sync.RWMutex
	subs map[string]struct{}

	// Identity from the bearer token presented at upgrade.
	subject string
	role    auth.Role
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement lives in the CORS middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub creates an event stream hub. It does nothing until Run is started.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		events:     make(chan broadcastMsg, wsSendBuffer),
		done:       make(chan struct{}),
	}
}

// Run owns the client set. It blocks until ctx is cancelled, then closes
// every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*wsClient]struct{})

	defer func() {
		close(h.done)
		for c := range clients {
			close(c.out)
			c.conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			clients[c] = struct{}{}
			h.count.Store(int64(len(clients)))
			h.logger.Debug("websocket client connected", "clients", len(clients))

		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.out)
			}
			h.count.Store(int64(len(clients)))
			h.logger.Debug("websocket client disconnected", "clients", len(clients))

		case msg := <-h.events:
			for c := range clients {
				if !c.isSubscribed(msg.channel) {
					continue
				}
				select {
				case c.out <- msg.data:
				default:
					// Slow client; drop the event for it.
				}
			}
		}
	}
}

// Broadcast queues an event for every client subscribed to channel. Events
// are dropped when the hub is not running or its queue is full.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(wsMessage{
		Type:      wsTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return
	}

	select {
	case h.events <- broadcastMsg{channel: channel, data: data}:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// subscribeStationEvents relays bus topics onto WebSocket channels:
// device lifecycle events and environment check verdicts.
func (s *Server) subscribeStationEvents() error {
	if s.mqtt == nil {
		return nil
	}

	relay := func(channel string) mqtt.MessageHandler {
		return func(_ string, payload []byte) error {
			if s.hub == nil {
				return nil
			}
			var msg map[string]any
			if err := json.Unmarshal(payload, &msg); err != nil {
				s.logger.Warn("failed to parse event for WebSocket relay", "channel", channel, "error", err)
				return nil
			}
			s.hub.Broadcast(channel, msg)
			return nil
		}
	}

	topics := mqtt.Topics{}
	if err := s.mqtt.Subscribe(topics.AllDeviceEvents(), 1, relay(ChannelDeviceEvents)); err != nil {
		return err
	}
	return s.mqtt.Subscribe(topics.EnvCheck(), 1, relay(ChannelEnvCheck))
}

// handleWebSocket upgrades the connection and starts the client pumps.
//
// Browsers cannot set the Authorization header on WebSocket requests, so
// the bearer token arrives as a "token" query parameter instead.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeUnauthorized(w, "token query parameter is required")
		return
	}
	claims, err := auth.ParseToken(token, s.secCfg.JWT.Secret)
	if err != nil {
		writeUnauthorized(w, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		hub:     s.hub,
		conn:    conn,
		out:     make(chan []byte, wsSendBuffer),
		subs:    make(map[string]struct{}),
		subject: claims.Subject,
		role:    claims.Role,
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump consumes client messages until the connection dies, then hands
// the client back to the hub for removal.
func (c *wsClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	deadline := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Any traffic from the client counts as liveness.
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(deadline))
		c.handleMessage(message)
	}
}

// writePump drains the outbound queue and keeps the connection alive with
// protocol-level pings.
func (c *wsClient) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	writeWait := time.Duration(cfg.PongTimeout) * time.Second

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.out:
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) handleMessage(data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case wsTypeSubscribe, wsTypeUnsubscribe:
		c.handleSubscription(msg)
	case wsTypePing:
		c.sendResponse(msg.ID, wsTypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// handleSubscription applies a subscribe or unsubscribe request and echoes
// the affected channels back.
func (c *wsClient) handleSubscription(msg wsMessage) {
	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}
	var sub wsSubscribePayload
	if err := json.Unmarshal(payloadBytes, &sub); err != nil {
		c.sendError(msg.ID, "invalid "+msg.Type+" payload")
		return
	}

	c.mu.Lock()
	for _, ch := range sub.Channels {
		if msg.Type == wsTypeSubscribe {
			c.subs[ch] = struct{}{}
		} else {
			delete(c.subs, ch)
		}
	}
	c.mu.Unlock()

	key := "subscribed"
	if msg.Type == wsTypeUnsubscribe {
		key = "unsubscribed"
	} else {
		c.hub.logger.Info("websocket client subscribed", "subject", c.subject, "channels", sub.Channels)
	}
	c.sendResponse(msg.ID, wsTypeResponse, map[string]any{key: sub.Channels})
}

func (c *wsClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subs[channel]
	return ok
}

// sendResponse queues a protocol reply, dropping it if the client cannot
// keep up or has been disconnected by the hub.
func (c *wsClient) sendResponse(id, msgType string, payload any) {
	data, err := json.Marshal(wsMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}

	defer func() {
		recover() // out may be closed during shutdown
	}()
	select {
	case c.out <- data:
	default:
	}
}

func (c *wsClient) sendError(id, message string) {
	c.sendResponse(id, wsTypeError, map[string]string{"message": message})
}
