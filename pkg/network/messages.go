// pkg/network/messages.go
package network

import (
	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// MessageType defines the type of network message
type MessageType byte

const (
	SubscribeRequest MessageType = iota
	SubscribeResponse
	DisconnectNotification
	TrajectoryResetUpdate
	TracerSampleUpdate
	BodyUpdate
	PingRequest
	PingResponse
)

// maxMessageSize bounds a single frame; the length prefix is a uint16
const maxMessageSize = 65535

// SubscribeRequestData is sent by a viewer to join the feed
type SubscribeRequestData struct {
	ViewerName string `json:"viewerName"`
}

// SubscribeResponseData acknowledges a subscription. TimeStep and
// TraceInterval describe the cadence the feed was produced with so
// viewers can label what they draw.
type SubscribeResponseData struct {
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
	ViewerID      uint64  `json:"viewerID"`
	TimeStep      float64 `json:"timeStep"`
	TraceInterval float64 `json:"traceInterval"`
}

// TracerSampleData carries one interpolated trajectory marker
type TracerSampleData struct {
	Position physics.Vector2D `json:"position"`
	Tick     uint64           `json:"tick"`
}

// BodyUpdateData carries the projectile state after one step
type BodyUpdateData struct {
	Body entity.Body `json:"body"`
	Tick uint64      `json:"tick"`
	Time float64     `json:"time"`
}

// TrajectoryResetData announces a new trajectory session
type TrajectoryResetData struct {
	Body entity.Body `json:"body"`
	Tick uint64      `json:"tick"`
}
