package gw

import (
	"fmt"
	"sync/atomic"
)

var nextBasicConnID int32

// AllocBasicConnID allocates a unique connection ID number, for logging
// purposes. InitBasicConn calls it, so every outbound Connection in the
// process gets a distinct ID.
func AllocBasicConnID() int32 {
	return atomic.AddInt32(&nextBasicConnID, 1)
}

// BasicConn is a base common implementation for a logged, lifecycle
// managed TCP session: an ID, a display name, and byte counters,
// embedded by Connection. CallbackServer's inbound sessions do not use
// it.
type BasicConn struct {
	ShutdownHelper
	ID              int32
	Strname         string
	NumBytesRead    int64
	NumBytesWritten int64
}

// InitBasicConn initializes the BasicConn portion of a new connection object
func (c *BasicConn) InitBasicConn(
	logger Logger,
	shutdownHandler OnceShutdownHandler,
	namef string, args ...interface{}) {
	c.ID = AllocBasicConnID()
	c.Strname = fmt.Sprintf("[%d]", c.ID) + fmt.Sprintf(namef, args...)
	c.InitShutdownHelper(logger.Fork("%s", c.Strname), shutdownHandler)
}

// GetNumBytesRead returns the number of bytes read so far on this connection
func (c *BasicConn) GetNumBytesRead() int64 {
	return atomic.LoadInt64(&c.NumBytesRead)
}

// GetNumBytesWritten returns the number of bytes written so far on this connection
func (c *BasicConn) GetNumBytesWritten() int64 {
	return atomic.LoadInt64(&c.NumBytesWritten)
}

// String returns the connection's display name
func (c *BasicConn) String() string {
	return c.Strname
}
