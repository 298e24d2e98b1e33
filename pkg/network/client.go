// pkg/network/client.go
package network

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/opd-ai/go-trajectory/pkg/config"
	"github.com/opd-ai/go-trajectory/pkg/event"
)

// Client event types
const (
	ViewerDisconnected    event.Type = "viewer_disconnected"
	ViewerReconnected     event.Type = "viewer_reconnected"
	ViewerReconnectFailed event.Type = "viewer_reconnect_failed"
)

// FeedClient subscribes to a trajectory feed and republishes the
// received updates on a local event bus. Renderers bound to that bus
// draw the remote trajectory exactly as they would a local one.
type FeedClient struct {
	conn          net.Conn
	viewerID      uint64
	viewerName    string
	serverAddress string
	connected     bool
	eventBus      *event.Bus
	mu            sync.Mutex
	latency       time.Duration
	pingInterval  time.Duration

	// Cadence reported by the server at subscription
	timeStep      float64
	traceInterval float64

	reconnectDelay       time.Duration
	maxReconnectAttempts int

	ctx               context.Context
	cancel            context.CancelFunc
	connectionTimeout time.Duration
	readTimeout       time.Duration
	writeTimeout      time.Duration
}

// NewFeedClient creates a new feed client publishing to the given bus
func NewFeedClient(eventBus *event.Bus) *FeedClient {
	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		envConfig = &config.EnvironmentConfig{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
	}

	return &FeedClient{
		eventBus:             eventBus,
		pingInterval:         5 * time.Second,
		reconnectDelay:       3 * time.Second,
		maxReconnectAttempts: 5,
		connectionTimeout:    30 * time.Second,
		readTimeout:          envConfig.ReadTimeout,
		writeTimeout:         envConfig.WriteTimeout,
	}
}

// Connect subscribes to the feed server at the given address
func (c *FeedClient) Connect(address, viewerName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.prepareConnection(address, viewerName)

	if err := c.establishTCPConnection(address); err != nil {
		return err
	}

	if err := c.performHandshake(viewerName); err != nil {
		return err
	}

	go c.messageLoop()
	go c.pingLoop()
	return nil
}

// prepareConnection closes any existing connection and records the
// subscription details for later reconnects
func (c *FeedClient) prepareConnection(address, viewerName string) {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	c.serverAddress = address
	c.viewerName = viewerName
}

// establishTCPConnection creates a TCP connection to the server
func (c *FeedClient) establishTCPConnection(address string) error {
	ctx, cancel := context.WithTimeout(c.ctx, c.connectionTimeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to feed: %w", err)
	}

	c.conn = conn
	return nil
}

// performHandshake sends the subscribe request and processes the
// server's response
func (c *FeedClient) performHandshake(viewerName string) error {
	req := SubscribeRequestData{ViewerName: viewerName}
	if err := c.writeFrame(SubscribeRequest, req); err != nil {
		c.cleanupConnection()
		return fmt.Errorf("failed to send subscribe request: %w", err)
	}

	msgType, data, err := c.readFrame()
	if err != nil {
		c.cleanupConnection()
		return fmt.Errorf("failed to read subscribe response: %w", err)
	}
	if msgType != SubscribeResponse {
		c.cleanupConnection()
		return fmt.Errorf("unexpected response type: %d", msgType)
	}

	var resp SubscribeResponseData
	if err := json.Unmarshal(data, &resp); err != nil {
		c.cleanupConnection()
		return fmt.Errorf("failed to parse subscribe response: %w", err)
	}
	if !resp.Success {
		c.cleanupConnection()
		return fmt.Errorf("feed rejected subscription: %s", resp.Error)
	}

	c.viewerID = resp.ViewerID
	c.timeStep = resp.TimeStep
	c.traceInterval = resp.TraceInterval
	c.connected = true
	return nil
}

// cleanupConnection safely closes the connection and resets state
// (must be called with lock held)
func (c *FeedClient) cleanupConnection() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Disconnect leaves the feed gracefully
func (c *FeedClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.writeFrame(DisconnectNotification, nil)
	c.cleanupConnection()
	return nil
}

// Connected reports whether the client currently has a live feed
func (c *FeedClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ViewerID returns the ID assigned at subscription
func (c *FeedClient) ViewerID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewerID
}

// Cadence returns the time step and trace interval the feed was
// produced with
func (c *FeedClient) Cadence() (timeStep, traceInterval float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeStep, c.traceInterval
}

// GetLatency returns the most recently measured round trip time
func (c *FeedClient) GetLatency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

// messageLoop handles incoming messages from the server
func (c *FeedClient) messageLoop() {
	for c.Connected() {
		msgType, data, err := c.readFrame()
		if err != nil {
			if c.Connected() {
				c.handleDisconnect()
			}
			return
		}

		switch msgType {
		case TracerSampleUpdate:
			c.handleTracerSample(data)

		case BodyUpdate:
			c.handleBodyUpdate(data)

		case TrajectoryResetUpdate:
			c.handleTrajectoryReset(data)

		case PingResponse:
			c.handlePingResponse(data)

		default:
			// Ignore unknown message types
		}
	}
}

// handleTracerSample republishes a tracer marker on the local bus
func (c *FeedClient) handleTracerSample(data []byte) {
	var sample TracerSampleData
	if err := json.Unmarshal(data, &sample); err != nil {
		return
	}
	c.eventBus.Publish(event.NewTracerEvent(c, sample.Position, sample.Tick))
}

// handleBodyUpdate republishes a body snapshot on the local bus
func (c *FeedClient) handleBodyUpdate(data []byte) {
	var update BodyUpdateData
	if err := json.Unmarshal(data, &update); err != nil {
		return
	}
	c.eventBus.Publish(event.NewBodyEvent(event.BodyUpdated, c, update.Body, update.Tick))
}

// handleTrajectoryReset republishes a session restart on the local bus
func (c *FeedClient) handleTrajectoryReset(data []byte) {
	var reset TrajectoryResetData
	if err := json.Unmarshal(data, &reset); err != nil {
		return
	}
	c.eventBus.Publish(event.NewBodyEvent(event.TrajectoryReset, c, reset.Body, reset.Tick))
}

// handlePingResponse measures the round trip from the echoed send time
func (c *FeedClient) handlePingResponse(data []byte) {
	var pingTime time.Time
	if err := json.Unmarshal(data, &pingTime); err != nil {
		return
	}

	c.mu.Lock()
	c.latency = time.Since(pingTime)
	c.mu.Unlock()
}

// pingLoop periodically sends ping requests to the server
func (c *FeedClient) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for c.Connected() {
		<-ticker.C
		c.writeFrame(PingRequest, time.Now())
	}
}

// handleDisconnect handles an unexpected disconnection
func (c *FeedClient) handleDisconnect() {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if !wasConnected {
		return
	}

	c.eventBus.Publish(&event.BaseEvent{EventType: ViewerDisconnected, Source: c})
	go c.attemptReconnect()
}

// attemptReconnect tries to resubscribe with the original viewer name
func (c *FeedClient) attemptReconnect() {
	for attempt := 0; attempt < c.maxReconnectAttempts; attempt++ {
		time.Sleep(c.reconnectDelay)

		if err := c.Connect(c.serverAddress, c.viewerName); err == nil {
			c.eventBus.Publish(&event.BaseEvent{EventType: ViewerReconnected, Source: c})
			return
		}
	}

	c.eventBus.Publish(&event.BaseEvent{EventType: ViewerReconnectFailed, Source: c})
}

// readFrame reads one framed message, honoring the read timeout
func (c *FeedClient) readFrame() (MessageType, []byte, error) {
	conn := c.conn
	if conn == nil {
		return 0, nil, errors.New("not connected")
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	defer conn.SetReadDeadline(time.Time{})

	var msgType MessageType
	if err := binary.Read(conn, binary.BigEndian, &msgType); err != nil {
		return 0, nil, err
	}

	var msgLen uint16
	if err := binary.Read(conn, binary.BigEndian, &msgLen); err != nil {
		return 0, nil, err
	}

	data := make([]byte, msgLen)
	if _, err := io.ReadFull(conn, data); err != nil {
		return 0, nil, err
	}

	return msgType, data, nil
}

// writeFrame serializes and sends one framed message, honoring the
// write timeout
func (c *FeedClient) writeFrame(msgType MessageType, payload interface{}) error {
	conn := c.conn
	if conn == nil {
		return errors.New("not connected")
	}

	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
	}
	if len(data) > maxMessageSize {
		return errors.New("message too large")
	}

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	defer conn.SetWriteDeadline(time.Time{})

	if err := binary.Write(conn, binary.BigEndian, msgType); err != nil {
		return err
	}
	if err := binary.Write(conn, binary.BigEndian, uint16(len(data))); err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return err
	}
	return nil
}
