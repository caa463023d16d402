package gw

import (
	"fmt"
	"sync/atomic"
)

// dialStats tracks how many gateway connections a Pool has dialed in
// total, and how many of those are currently live, for status logging.
type dialStats struct {
	dialed int32
	live   int32
}

// Dialed records that a new connection was successfully dialed.
func (s *dialStats) Dialed() int32 {
	return atomic.AddInt32(&s.dialed, 1)
}

// Opened marks a freshly dialed connection as live.
func (s *dialStats) Opened() {
	atomic.AddInt32(&s.live, 1)
}

// Closed marks a live connection as retired.
func (s *dialStats) Closed() {
	atomic.AddInt32(&s.live, -1)
}

func (s *dialStats) String() string {
	return fmt.Sprintf("[%d/%d]", atomic.LoadInt32(&s.live), atomic.LoadInt32(&s.dialed))
}
