// pkg/network/server.go
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

	"github.com/opd-ai/go-trajectory/pkg/event"
	"github.com/opd-ai/go-trajectory/pkg/logging"
	"github.com/opd-ai/go-trajectory/pkg/sim"
	"github.com/opd-ai/go-trajectory/pkg/validation"
)

// FeedServer publishes a running simulation's trajectory over TCP.
// Viewers subscribe by name and then receive every reset, tracer
// sample, and body update the simulation emits. The feed is one-way:
// viewers cannot influence the simulation.
type FeedServer struct {
	listener    net.Listener
	simulation  *sim.Simulation
	viewers     map[uint64]*Viewer
	viewersLock sync.RWMutex
	running     bool
	maxViewers  int
	nextViewer  uint64
	writeWait   time.Duration
	logger      *logging.Logger
}

// Viewer represents a connected feed subscriber
type Viewer struct {
	ID        uint64
	Conn      net.Conn
	Name      string
	Connected bool
	LastSeen  time.Time

	// Guards the connection against interleaved frames: broadcasts
	// and ping responses come from different goroutines
	writeLock sync.Mutex
}

// NewFeedServer creates a feed server around an existing simulation.
// The server subscribes to the simulation's event bus immediately;
// broadcasts are no-ops until viewers connect.
func NewFeedServer(simulation *sim.Simulation, maxViewers int) *FeedServer {
	s := &FeedServer{
		simulation: simulation,
		viewers:    make(map[uint64]*Viewer),
		maxViewers: maxViewers,
		writeWait:  5 * time.Second,
		logger:     logging.NewLogger(),
	}

	bus := simulation.EventBus
	bus.Subscribe(event.TrajectoryReset, func(e event.Event) {
		if be, ok := e.(*event.BodyEvent); ok {
			s.broadcast(TrajectoryResetUpdate, TrajectoryResetData{Body: be.Body, Tick: be.Tick})
		}
	})
	bus.Subscribe(event.TracerSampled, func(e event.Event) {
		if te, ok := e.(*event.TracerEvent); ok {
			s.broadcast(TracerSampleUpdate, TracerSampleData{Position: te.Position, Tick: te.Tick})
		}
	})
	bus.Subscribe(event.BodyUpdated, func(e event.Event) {
		if be, ok := e.(*event.BodyEvent); ok {
			s.broadcast(BodyUpdate, BodyUpdateData{Body: be.Body, Tick: be.Tick, Time: simulation.Time})
		}
	})

	return s
}

// Start begins listening for viewer connections
func (s *FeedServer) Start(address string) error {
	var err error
	s.listener, err = net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start feed server: %w", err)
	}

	s.running = true
	go s.acceptConnections()

	s.logger.Info(context.Background(), "feed server started",
		"address", s.listener.Addr().String(),
		"max_viewers", s.maxViewers,
	)
	return nil
}

// Addr returns the address the server is listening on, or empty before
// Start
func (s *FeedServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes the listener and all viewer connections
func (s *FeedServer) Stop() {
	s.running = false

	s.viewersLock.Lock()
	for _, viewer := range s.viewers {
		viewer.Conn.Close()
	}
	s.viewersLock.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}

	s.logger.Info(context.Background(), "feed server stopped")
}

// ViewerCount returns the number of connected viewers
func (s *FeedServer) ViewerCount() int {
	s.viewersLock.RLock()
	defer s.viewersLock.RUnlock()
	return len(s.viewers)
}

// acceptConnections accepts new viewer connections
func (s *FeedServer) acceptConnections() {
	for s.running {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running {
				s.logger.Error(context.Background(), "error accepting connection", err)
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection performs the subscribe handshake and then serves
// the viewer until it disconnects
func (s *FeedServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	viewer, err := s.subscribeViewer(ctx, conn)
	if err != nil {
		s.logger.Warn(ctx, "subscription rejected", "error", err.Error())
		return
	}

	// New viewers immediately get the current state so they can draw
	// without waiting for the next step
	state := s.simulation.State()
	s.sendToViewer(viewer, BodyUpdate, BodyUpdateData{Body: state.Body, Tick: state.Tick, Time: state.Time})

	s.handleViewerMessages(ctx, viewer)
}

// subscribeViewer reads and validates the subscribe request and
// registers the viewer
func (s *FeedServer) subscribeViewer(ctx context.Context, conn net.Conn) (*Viewer, error) {
	msgType, data, err := s.readMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscribe request: %w", err)
	}
	if msgType != SubscribeRequest {
		return nil, fmt.Errorf("expected subscribe request, got %d", msgType)
	}

	var req SubscribeRequestData
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse subscribe request: %w", err)
	}

	name, err := validation.ValidateViewerName(req.ViewerName)
	if err != nil {
		s.sendMessage(conn, SubscribeResponse, SubscribeResponseData{Success: false, Error: err.Error()})
		return nil, err
	}

	s.viewersLock.Lock()
	if len(s.viewers) >= s.maxViewers {
		s.viewersLock.Unlock()
		err := errors.New("feed is full")
		s.sendMessage(conn, SubscribeResponse, SubscribeResponseData{Success: false, Error: err.Error()})
		return nil, err
	}
	s.nextViewer++
	viewer := &Viewer{
		ID:        s.nextViewer,
		Conn:      conn,
		Name:      name,
		Connected: true,
		LastSeen:  time.Now(),
	}
	s.viewers[viewer.ID] = viewer
	s.viewersLock.Unlock()

	resp := SubscribeResponseData{
		Success:       true,
		ViewerID:      viewer.ID,
		TimeStep:      s.simulation.TimeStep,
		TraceInterval: s.simulation.TraceInterval,
	}
	if err := s.sendToViewer(viewer, SubscribeResponse, resp); err != nil {
		s.removeViewer(viewer)
		return nil, fmt.Errorf("failed to send subscribe response: %w", err)
	}

	s.logger.Info(ctx, "viewer subscribed",
		"viewer_id", viewer.ID,
		"viewer_name", viewer.Name,
	)
	return viewer, nil
}

// handleViewerMessages processes messages from a connected viewer
func (s *FeedServer) handleViewerMessages(ctx context.Context, viewer *Viewer) {
	for viewer.Connected && s.running {
		msgType, data, err := s.readMessage(viewer.Conn)
		if err != nil {
			if err != io.EOF {
				s.logger.Warn(ctx, "error reading from viewer",
					"viewer_id", viewer.ID,
					"error", err.Error(),
				)
			}
			break
		}

		viewer.LastSeen = time.Now()

		switch msgType {
		case PingRequest:
			s.sendRawToViewer(viewer, PingResponse, data)

		case DisconnectNotification:
			viewer.Connected = false

		default:
			s.logger.Warn(ctx, "unknown message type from viewer",
				"viewer_id", viewer.ID,
				"message_type", int(msgType),
			)
		}
	}

	s.removeViewer(viewer)
	s.logger.Info(ctx, "viewer disconnected", "viewer_id", viewer.ID)
}

// removeViewer removes a viewer from the server
func (s *FeedServer) removeViewer(viewer *Viewer) {
	s.viewersLock.Lock()
	delete(s.viewers, viewer.ID)
	s.viewersLock.Unlock()
}

// broadcast sends a message to all connected viewers. Viewers whose
// connection fails are dropped.
func (s *FeedServer) broadcast(msgType MessageType, payload interface{}) {
	s.viewersLock.RLock()
	viewers := make([]*Viewer, 0, len(s.viewers))
	for _, viewer := range s.viewers {
		if viewer.Connected {
			viewers = append(viewers, viewer)
		}
	}
	s.viewersLock.RUnlock()

	for _, viewer := range viewers {
		if err := s.sendToViewer(viewer, msgType, payload); err != nil {
			viewer.Connected = false
			viewer.Conn.Close()
		}
	}
}

// sendToViewer serializes and sends a message to one viewer
func (s *FeedServer) sendToViewer(viewer *Viewer, msgType MessageType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.writeFrame(viewer, msgType, data)
}

// sendRawToViewer sends already serialized data to one viewer
func (s *FeedServer) sendRawToViewer(viewer *Viewer, msgType MessageType, data []byte) error {
	return s.writeFrame(viewer, msgType, data)
}

// writeFrame writes one framed message under the viewer's write lock
func (s *FeedServer) writeFrame(viewer *Viewer, msgType MessageType, data []byte) error {
	if len(data) > maxMessageSize {
		return errors.New("message too large")
	}

	viewer.writeLock.Lock()
	defer viewer.writeLock.Unlock()

	viewer.Conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	defer viewer.Conn.SetWriteDeadline(time.Time{})

	if err := binary.Write(viewer.Conn, binary.BigEndian, msgType); err != nil {
		return err
	}
	if err := binary.Write(viewer.Conn, binary.BigEndian, uint16(len(data))); err != nil {
		return err
	}
	if _, err := viewer.Conn.Write(data); err != nil {
		return err
	}
	return nil
}

// readMessage reads one framed message from a connection
func (s *FeedServer) readMessage(conn net.Conn) (MessageType, []byte, error) {
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

// sendMessage serializes and sends a message on a bare connection,
// used before a viewer is registered
func (s *FeedServer) sendMessage(conn net.Conn, msgType MessageType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if len(data) > maxMessageSize {
		return errors.New("message too large")
	}

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
