package gw

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

// Connection is a single TCP session to the gateway, enforcing a
// write-one-read-one discipline: at most one write is in flight, and
// the next write may not begin until exactly one newline-terminated
// response line has been read.
type Connection struct {
	BasicConn

	netConn net.Conn
	reader  *bufio.Reader

	// turn serializes send() calls onto this connection: a single
	// buffered slot acts as a mutex. "Dead" state is recorded
	// separately, in closed/closeErr under mu.
	turn chan struct{}

	mu       sync.Mutex
	closed   bool
	closeErr error
}

// dialConnection opens a new TCP socket to addr, disables Nagle, and —
// if token is non-empty — performs the auth handshake. logger is the
// Pool's logger; the returned Connection forks its own sub-logger per
// BasicConn convention.
func dialConnection(logger Logger, addr string, token string, dialTimeout time.Duration) (*Connection, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	netConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, newNetworkError("dial failed", err)
	}
	if tcpConn, ok := netConn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}

	c := &Connection{
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
		turn:    make(chan struct{}, 1),
	}
	c.InitBasicConn(logger, c, "conn(%s)", addr)
	c.turn <- struct{}{}

	if token != "" {
		if err := c.authenticate(token); err != nil {
			netConn.Close()
			return nil, err
		}
	}

	return c, nil
}

// authenticate performs "A\n<token>\n e\n".
func (c *Connection) authenticate(token string) error {
	cmd := "A\n" + token + "\n" + "e\n"
	line, err := c.roundTrip(cmd)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, "y") && !strings.HasPrefix(line, "!y") {
		return newAuthenticationError("auth handshake rejected: " + line)
	}
	return nil
}

// Send writes cmd (a complete, already-terminated command) and returns
// exactly one response line (without its trailing newline). It is safe
// for concurrent use: calls are serialized by the internal turn token.
func (c *Connection) Send(cmd string) (string, error) {
	return c.roundTrip(cmd)
}

func (c *Connection) roundTrip(cmd string) (string, error) {
	select {
	case <-c.turn:
	case <-c.ShutdownStartedChan():
		return "", c.deadErr()
	}
	defer func() { c.turn <- struct{}{} }()

	if c.isDead() {
		return "", c.deadErr()
	}

	n, err := c.netConn.Write([]byte(cmd))
	if err != nil {
		c.markDead(newNetworkError("write failed", err))
		return "", c.deadErr()
	}
	c.addBytesWritten(int64(n))

	line, err := c.reader.ReadString('\n')
	if err != nil {
		c.markDead(newNetworkError("read failed", err))
		return "", c.deadErr()
	}
	c.addBytesRead(int64(len(line)))
	line = strings.TrimSuffix(line, "\n")
	if len(line) == 0 {
		err := newNetworkError("empty response", nil)
		c.markDead(err)
		return "", err
	}
	return line, nil
}

func (c *Connection) addBytesWritten(n int64) {
	c.mu.Lock()
	c.NumBytesWritten += n
	c.mu.Unlock()
}

func (c *Connection) addBytesRead(n int64) {
	c.mu.Lock()
	c.NumBytesRead += n
	c.mu.Unlock()
}

func (c *Connection) markDead(err error) {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.closeErr = err
	}
	c.mu.Unlock()
}

func (c *Connection) isDead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Connection) deadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return c.closeErr
	}
	return newNetworkError("connection closed", nil)
}

// IsLive reports whether the connection has not yet observed a
// transport failure. The pool uses this to decide whether to return a
// connection to the idle set or discard it.
func (c *Connection) IsLive() bool {
	return !c.isDead()
}

// HandleOnceShutdown closes the underlying socket exactly once.
func (c *Connection) HandleOnceShutdown(completionErr error) error {
	c.markDead(completionErr)
	err := c.netConn.Close()
	if completionErr == nil {
		completionErr = err
	}
	return completionErr
}
