// pkg/sim/state.go
package sim

import (
	"github.com/opd-ai/go-trajectory/pkg/entity"
)

// State is a snapshot of the externally observable simulation state, used
// by the trajectory feed and by health checks. It carries finished values
// only; nothing in it can influence the numeric core.
type State struct {
	Tick uint64      `json:"tick"`
	Time float64     `json:"time"`
	Body entity.Body `json:"body"`
}
