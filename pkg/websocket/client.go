package websocket

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
)

var ErrNotConnected = errors.New("not connected")

// Config holds realtime client configuration
type Config struct {
	URL                  string
	APIKey               string
	ConnectTimeoutMs     int
	HeartbeatIntervalMs  int
	ReconnectBaseDelayMs int
	ReconnectMaxDelayMs  int
	MaxReconnectAttempts int
}

// DefaultConfig returns a development configuration
func DefaultConfig() Config {
	return Config{
		URL:                  "ws://localhost:54321/realtime/v1/websocket",
		ConnectTimeoutMs:     15000,
		HeartbeatIntervalMs:  30000,
		ReconnectBaseDelayMs: 2000,
		ReconnectMaxDelayMs:  30000,
		MaxReconnectAttempts: -1, // unlimited
	}
}

// ConfigFromSettings reads the realtime endpoint from the loaded config.
func ConfigFromSettings() Config {
	cfg := DefaultConfig()
	if u := config.GetString("backend.realtime_url"); u != "" {
		cfg.URL = u
	}
	cfg.APIKey = config.GetString("backend.anon_key")
	return cfg
}

// Listener receives the payload of a channel event.
type Listener func(topic string, payload json.RawMessage)

type listener struct {
	id    uint64
	event string
	fn    Listener
}

// Client manages one realtime socket and the channels joined on it.
type Client struct {
	config Config
	dialer *websocket.Dialer

	mu       sync.RWMutex
	conn     *websocket.Conn
	token    string
	channels map[string]joinPayload
	writeMu  sync.Mutex

	state             atomic.Value // ConnectionState
	ref               atomic.Uint64
	reconnectAttempts int
	reconnectDelay    int

	listenersMu sync.RWMutex
	listeners   []listener
	nextID      uint64

	ctx    context.Context
	cancel context.CancelFunc

	statsLock sync.RWMutex
	stats     ConnectionStats
}

// ConnectionState represents the state of the realtime connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

// NewClient creates a new realtime client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		config:         config,
		dialer:         &websocket.Dialer{HandshakeTimeout: time.Duration(config.ConnectTimeoutMs) * time.Millisecond},
		channels:       make(map[string]joinPayload),
		ctx:            ctx,
		cancel:         cancel,
		reconnectDelay: config.ReconnectBaseDelayMs,
	}
	client.state.Store(StateDisconnected)
	return client
}

// SetAuthToken sets the access token sent with channel joins
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Connect establishes the socket and starts the read and heartbeat loops.
func (c *Client) Connect(token string) error {
	c.SetAuthToken(token)
	c.setState(StateConnecting)

	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		c.recordError(err.Error())
		return err
	}
	c.attach(conn)

	logger.Debug("Realtime connected", "url", c.config.URL)
	return nil
}

// Disconnect closes the socket and stops reconnecting.
func (c *Client) Disconnect() error {
	c.cancel()

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateDisconnected)
	c.recordDisconnected()

	logger.Debug("Realtime disconnected")
	return nil
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.getState() == StateConnected
}

// On registers fn for event on any joined topic. An empty event receives
// every message. The returned func removes the listener.
func (c *Client) On(event string, fn Listener) func() {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listener{id: id, event: event, fn: fn})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Join subscribes to topic with the given row-change filters. Joined topics
// are rejoined after a reconnect.
func (c *Client) Join(topic string, filters ...ChangeFilter) error {
	c.mu.Lock()
	p := joinPayload{Config: joinConfig{PostgresChanges: filters}, AccessToken: c.token}
	c.channels[topic] = p
	c.mu.Unlock()

	return c.Send(topic, EventJoin, p)
}

// Leave unsubscribes from topic.
func (c *Client) Leave(topic string) error {
	c.mu.Lock()
	delete(c.channels, topic)
	c.mu.Unlock()

	return c.Send(topic, EventLeave, struct{}{})
}

// Send writes one frame to the socket.
func (c *Client) Send(topic, event string, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Message{
		Topic:   topic,
		Event:   event,
		Payload: raw,
		Ref:     strconv.FormatUint(c.ref.Add(1), 10),
	})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.recordMessageSent()
	return nil
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if c.config.APIKey != "" {
		q.Set("apikey", c.config.APIKey)
	}
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	endpoint, err := c.endpoint()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(c.config.ConnectTimeoutMs) * time.Millisecond
	dialCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, endpoint, nil)
	return conn, err
}

// attach installs conn, rejoins known channels and starts the loops.
func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	topics := make(map[string]joinPayload, len(c.channels))
	for topic, p := range c.channels {
		p.AccessToken = c.token
		topics[topic] = p
	}
	c.mu.Unlock()

	c.setState(StateConnected)
	c.reconnectAttempts = 0
	c.reconnectDelay = c.config.ReconnectBaseDelayMs
	c.recordConnected()

	for topic, p := range topics {
		if err := c.Send(topic, EventJoin, p); err != nil {
			logger.Warn("Failed to rejoin channel", "topic", topic, "error", err)
		}
	}

	done := make(chan struct{})
	go c.readLoop(conn, done)
	go c.heartbeatLoop(done)
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		close(done)
		c.handleDisconnect(conn)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				c.recordError(err.Error())
				logger.Error("Realtime read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("Dropping malformed realtime frame", "error", err)
			continue
		}
		c.recordMessageReceived()

		if msg.Event == EventReply {
			c.logReply(msg)
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	var fns []Listener
	for _, l := range c.listeners {
		if l.event == "" || l.event == msg.Event {
			fns = append(fns, l.fn)
		}
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(msg.Topic, msg.Payload)
	}
}

func (c *Client) logReply(msg Message) {
	var reply ReplyPayload
	if err := json.Unmarshal(msg.Payload, &reply); err != nil {
		return
	}
	if reply.Status != "ok" {
		logger.Warn("Realtime request rejected", "topic", msg.Topic, "ref", msg.Ref, "response", string(reply.Response))
	}
}

func (c *Client) heartbeatLoop(done chan struct{}) {
	ticker := time.NewTicker(time.Duration(c.config.HeartbeatIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := c.Send(heartbeatTopic, EventHeartbeat, struct{}{}); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

func (c *Client) handleDisconnect(dead *websocket.Conn) {
	c.mu.Lock()
	if c.conn == dead {
		c.conn = nil
	}
	c.mu.Unlock()
	dead.Close()

	if c.ctx.Err() != nil {
		return
	}

	c.setState(StateReconnecting)
	c.recordDisconnected()

	// Attempt reconnection with exponential backoff
	for {
		if c.config.MaxReconnectAttempts >= 0 && c.reconnectAttempts >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			return
		}

		backoff := time.Duration(c.reconnectDelay) * time.Millisecond
		jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
		waitTime := backoff + jitter

		logger.Debug("Reconnecting realtime", "attempt", c.reconnectAttempts+1, "wait_ms", waitTime.Milliseconds())

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(waitTime):
		}

		conn, err := c.dial()
		if err != nil {
			c.reconnectAttempts++
			c.recordError(err.Error())
			c.reconnectDelay = int(math.Min(
				float64(c.reconnectDelay*2),
				float64(c.config.ReconnectMaxDelayMs),
			))
			continue
		}

		c.statsLock.Lock()
		c.stats.ReconnectCount++
		c.statsLock.Unlock()

		c.attach(conn)
		logger.Info("Realtime reconnected")
		return
	}
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(state)
}

func (c *Client) getState() ConnectionState {
	return c.state.Load().(ConnectionState)
}

func (c *Client) recordMessageReceived() {
	c.statsLock.Lock()
	c.stats.MessagesReceived++
	c.statsLock.Unlock()
}

func (c *Client) recordMessageSent() {
	c.statsLock.Lock()
	c.stats.MessagesSent++
	c.statsLock.Unlock()
}

func (c *Client) recordError(errMsg string) {
	c.statsLock.Lock()
	c.stats.LastError = errMsg
	c.statsLock.Unlock()
}

func (c *Client) recordConnected() {
	c.statsLock.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsLock.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsLock.Unlock()
}
