package gw

import (
	"sync"
	"time"

	"github.com/jpillora/sizestr"
)

// DefaultMaxConnections is the default bound on concurrently open
// connections in a Pool.
const DefaultMaxConnections = 4

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Addr is the gateway's outbound TCP address ("host:port").
	Addr string
	// Token, if non-empty, is sent during each Connection's auth
	// handshake. Ignored if TokenSource is set.
	Token string
	// TokenSource, if set, supplies the auth token for each new
	// Connection dynamically — e.g. a TokenFile that hot-reloads on
	// rotation. Takes precedence over Token.
	TokenSource TokenSource
	// MaxConnections bounds the number of simultaneously open
	// connections. Zero means DefaultMaxConnections.
	MaxConnections int
	// DialTimeout bounds how long a new Connection's dial may take.
	DialTimeout time.Duration
}

// Pool is the bounded set of Connections: a configured maximum, idle
// connections available for reuse, and a FIFO waiter queue for callers
// that arrive when the pool is saturated.
type Pool struct {
	ShutdownHelper

	cfg   PoolConfig
	stats dialStats

	mu      sync.Mutex
	active  int
	idle    []*Connection
	waiters []chan *Connection
}

// NewPool creates a Pool that dials cfg.Addr on demand, up to
// cfg.MaxConnections at a time.
func NewPool(logger Logger, cfg PoolConfig) *Pool {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = DefaultMaxConnections
	}
	p := &Pool{cfg: cfg}
	p.InitShutdownHelper(logger.Fork("pool"), p)
	return p
}

// Acquire hands the caller an idle, live Connection if one is available;
// otherwise, if the pool has not yet reached its configured maximum, it
// dials and authenticates a new Connection. Otherwise, it parks the
// caller on the FIFO waiter queue until another caller releases one.
func (p *Pool) Acquire() (*Connection, error) {
	for {
		p.mu.Lock()
		for len(p.idle) > 0 {
			c := p.idle[len(p.idle)-1]
			p.idle = p.idle[:len(p.idle)-1]
			if c.IsLive() {
				p.mu.Unlock()
				return c, nil
			}
			// dead idle connection: drop it and keep looking
			p.stats.Closed()
			p.active--
		}
		if p.active < p.cfg.MaxConnections {
			p.active++
			p.mu.Unlock()
			c, err := dialConnection(p.Logger, p.cfg.Addr, p.currentToken(), p.cfg.DialTimeout)
			if err != nil {
				p.mu.Lock()
				p.active--
				p.mu.Unlock()
				return nil, err
			}
			p.stats.Dialed()
			p.stats.Opened()
			p.DLogf("dialed new connection, pool now %s", p.stats.String())
			return c, nil
		}
		wait := make(chan *Connection, 1)
		p.waiters = append(p.waiters, wait)
		p.mu.Unlock()

		c, ok := <-wait
		if !ok {
			return nil, newNetworkError("pool closed while waiting for a connection", nil)
		}
		if c.IsLive() {
			return c, nil
		}
		// the connection handed to us died between release and
		// delivery; loop around and try again.
		p.mu.Lock()
		p.active--
		p.stats.Closed()
		p.mu.Unlock()
	}
}

// Release returns c to the pool. If a waiter is parked, c is handed
// directly to it, bypassing the idle set. Otherwise, a live connection
// is returned to the idle set and a dead one is discarded. Once pool
// shutdown has started, a live connection is closed instead of idled.
func (p *Pool) Release(c *Connection) {
	p.mu.Lock()
	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.mu.Unlock()
		w <- c
		return
	}
	if c.IsLive() {
		if !p.IsStartedShutdown() {
			p.idle = append(p.idle, c)
			p.mu.Unlock()
			return
		}
		p.active--
		p.stats.Closed()
		p.mu.Unlock()
		c.Close()
		return
	}
	p.active--
	p.stats.Closed()
	p.mu.Unlock()
}

// WithConnection acquires a Connection, invokes f with it, and
// guarantees release on both the success and failure paths.
func (p *Pool) WithConnection(f func(*Connection) (string, error)) (string, error) {
	c, err := p.Acquire()
	if err != nil {
		return "", err
	}
	defer p.Release(c)
	return f(c)
}

// Stats returns a human-readable live/dialed connection count, in
// dialStats's [live/dialed] form, followed by the active and idle counts
// and, via sizestr, the bytes sent and received by the currently idle
// connections (connections checked out at the time are not counted).
func (p *Pool) Stats() string {
	p.mu.Lock()
	idle := len(p.idle)
	active := p.active
	p.mu.Unlock()
	var sent, recv int64
	for _, c := range p.idleSnapshot() {
		sent += c.GetNumBytesWritten()
		recv += c.GetNumBytesRead()
	}
	return p.stats.String() + " active=" + itoa(active) + " idle=" + itoa(idle) +
		" sent=" + sizestr.ToString(sent) + " received=" + sizestr.ToString(recv)
}

func (p *Pool) currentToken() string {
	if p.cfg.TokenSource != nil {
		return p.cfg.TokenSource.Token()
	}
	return p.cfg.Token
}

func (p *Pool) idleSnapshot() []*Connection {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Connection, len(p.idle))
	copy(out, p.idle)
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// HandleOnceShutdown closes idle connections. Active connections are not
// forcibly severed; Release closes each one when its in-flight work
// returns.
func (p *Pool) HandleOnceShutdown(completionErr error) error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
	for _, c := range idle {
		c.Close()
	}
	return completionErr
}
