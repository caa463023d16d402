package gw

import (
	"strconv"
	"strings"
	"time"
)

// Config configures a Client.
type Config struct {
	// Addr is the gateway's outbound TCP address. Defaults to
	// "127.0.0.1:25333".
	Addr string
	// Token, if non-empty, is presented during each connection's auth
	// handshake. Ignored if TokenSource is set.
	Token string
	// TokenSource, if set, supplies the auth token dynamically — e.g. a
	// TokenFile that hot-reloads on rotation. Takes precedence over
	// Token.
	TokenSource TokenSource
	// MaxConnections bounds the Pool's concurrently open connections.
	MaxConnections int
	// DialTimeout bounds how long opening a new Connection may take.
	DialTimeout time.Duration
}

// DefaultGatewayAddr is the default outbound gateway endpoint.
const DefaultGatewayAddr = "127.0.0.1:25333"

// Client implements the high-level command builders, dispatching each
// one through a Pool and decoding the response with the Codec.
type Client struct {
	ShutdownHelper

	pool      *Pool
	proxyPool *ProxyPool
	ns        *NamespaceView
}

// NewClient creates a Client dialing cfg.Addr (or DefaultGatewayAddr).
func NewClient(logger Logger, cfg Config) *Client {
	if cfg.Addr == "" {
		cfg.Addr = DefaultGatewayAddr
	}
	c := &Client{
		proxyPool: NewProxyPool(),
	}
	c.InitShutdownHelper(logger.Fork("client"), c)
	c.pool = NewPool(c.Logger, PoolConfig{
		Addr:           cfg.Addr,
		Token:          cfg.Token,
		TokenSource:    cfg.TokenSource,
		MaxConnections: cfg.MaxConnections,
		DialTimeout:    cfg.DialTimeout,
	})
	c.AddShutdownChild(c.pool)
	c.ns = newNamespaceView(c, DefaultNamespaceID)
	return c
}

// ProxyPool returns the Client's callback registry, shared with any
// CallbackServer constructed over this Client.
func (c *Client) ProxyPool() *ProxyPool {
	return c.proxyPool
}

// Namespace returns the default namespace view ("rj").
func (c *Client) Namespace() *NamespaceView {
	return c.ns
}

// EntryPoint returns an ObjectProxy for the gateway's entry-point object
// ("t").
func (c *Client) EntryPoint() *ObjectProxy {
	return newObjectProxy(c, EntryPointID)
}

// send runs cmd through the pool and returns the raw response line.
func (c *Client) send(cmd string) (string, error) {
	return c.pool.WithConnection(func(conn *Connection) (string, error) {
		return conn.Send(cmd)
	})
}

func encodeArgs(args []Value, pool *ProxyPool) (string, error) {
	var b strings.Builder
	for _, a := range args {
		part, err := EncodeValue(a, pool)
		if err != nil {
			return "", err
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

// requireToken validates that an identifier token (target ID, method
// name, field name, FQN, pattern) contains no newline — the wire
// format has no escaping for command-part boundaries, only for string
// values, so a raw newline here would desynchronize the line parser on
// the other end.
func requireToken(kind, tok string) error {
	if strings.ContainsRune(tok, '\n') {
		return newUsageError("%s must not contain a newline: %q", kind, tok)
	}
	return nil
}

func (c *Client) roundTrip(cmd string) (Value, error) {
	line, err := c.send(cmd)
	if err != nil {
		return Value{}, err
	}
	return DecodeResponse(line, c, c.proxyPool)
}

// CallMethod performs `c\n TARGET\n METHOD\n ARGPARTS… e\n`.
func (c *Client) CallMethod(targetID, method string, args ...Value) (Value, error) {
	if err := requireToken("target", targetID); err != nil {
		return Value{}, err
	}
	if err := requireToken("method", method); err != nil {
		return Value{}, err
	}
	argParts, err := encodeArgs(args, c.proxyPool)
	if err != nil {
		return Value{}, err
	}
	cmd := "c\n" + targetID + "\n" + method + "\n" + argParts + "e\n"
	return c.roundTrip(cmd)
}

// CallConstructor performs `i\n FQN\n ARGPARTS… e\n` and returns an
// object proxy for the newly constructed instance.
func (c *Client) CallConstructor(classFqn string, args ...Value) (Value, error) {
	if err := requireToken("class", classFqn); err != nil {
		return Value{}, err
	}
	argParts, err := encodeArgs(args, c.proxyPool)
	if err != nil {
		return Value{}, err
	}
	cmd := "i\n" + classFqn + "\n" + argParts + "e\n"
	return c.roundTrip(cmd)
}

// GetField performs a field get: for an ordinary instance
// target, `f\ng\n TARGET\n FIELD\n e\n`; for a static-dispatch target
// (prefix "z:"), it's routed through reflection get-member instead:
// `r\nm\n FQN\n FIELD\n e\n`.
func (c *Client) GetField(targetID, field string) (Value, error) {
	if err := requireToken("target", targetID); err != nil {
		return Value{}, err
	}
	if err := requireToken("field", field); err != nil {
		return Value{}, err
	}
	if fqn, ok := IsStaticTargetID(targetID); ok {
		cmd := "r\nm\n" + fqn + "\n" + field + "\n" + "e\n"
		return c.roundTrip(cmd)
	}
	cmd := "f\ng\n" + targetID + "\n" + field + "\n" + "e\n"
	return c.roundTrip(cmd)
}

// SetField performs `f\ns\n TARGET\n FIELD\n VALUEPART e\n`.
func (c *Client) SetField(targetID, field string, value Value) error {
	if err := requireToken("target", targetID); err != nil {
		return err
	}
	if err := requireToken("field", field); err != nil {
		return err
	}
	part, err := EncodeValue(value, c.proxyPool)
	if err != nil {
		return err
	}
	cmd := "f\ns\n" + targetID + "\n" + field + "\n" + part + "e\n"
	_, err = c.roundTrip(cmd)
	return err
}

// ReleaseObject sends the memory-delete command for targetID, best
// effort: transport errors are silently swallowed.
func (c *Client) ReleaseObject(targetID string) {
	cmd := "m\nd\n" + targetID + "\n" + "e\n"
	c.roundTrip(cmd) //nolint:errcheck
}

// memberKind selects the dir/introspect subcommand.
type memberKind byte

const (
	memberFields  memberKind = 'f'
	memberMethods memberKind = 'm'
	memberStatics memberKind = 's'
)

// getMembers performs `d\n {m,f,s}\n TARGET\n e\n` and splits a
// newline-joined string response into a list of names, dropping empties.
func (c *Client) getMembers(kind memberKind, target string) ([]string, error) {
	cmd := "d\n" + string(kind) + "\n" + target + "\n" + "e\n"
	v, err := c.roundTrip(cmd)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindString {
		return nil, nil
	}
	var names []string
	for _, n := range strings.Split(v.Str, "\n") {
		if n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}

// GetMethods lists the method names of target.
func (c *Client) GetMethods(target string) ([]string, error) { return c.getMembers(memberMethods, target) }

// GetFields lists the field names of target.
func (c *Client) GetFields(target string) ([]string, error) { return c.getMembers(memberFields, target) }

// GetStaticMembers lists the static member names of a class.
func (c *Client) GetStaticMembers(target string) ([]string, error) {
	return c.getMembers(memberStatics, target)
}

// Help performs `h\n{o,c}\n TARGET\n [PATTERN\n] e\n`.
func (c *Client) Help(target string, isClass bool, pattern string) (string, error) {
	sub := "o"
	if isClass {
		sub = "c"
	}
	cmd := "h\n" + sub + "\n" + target + "\n"
	if pattern != "" {
		cmd += pattern + "\n"
	}
	cmd += "e\n"
	v, err := c.roundTrip(cmd)
	if err != nil {
		return "", err
	}
	return v.Str, nil
}

// NewArray performs `a\nc\n s<FQN>\n DIMPARTS… e\n` and returns an array
// proxy. At least one dimension is required.
func (c *Client) NewArray(classFqn string, dims ...int) (Value, error) {
	if len(dims) == 0 {
		return Value{}, newUsageError("newArray requires at least one dimension")
	}
	cmd := "a\nc\n" + "s" + EscapeString(classFqn) + "\n"
	for _, d := range dims {
		cmd += "i" + strconv.Itoa(d) + "\n"
	}
	cmd += "e\n"
	return c.roundTrip(cmd)
}

// ShutdownGateway sends the shutdown command, best effort.
func (c *Client) ShutdownGateway() {
	c.roundTrip("s\n" + "e\n") //nolint:errcheck
}

// Wrap dispatches on tag to construct the appropriate container proxy.
// Unrecognized tags fall back to a generic ObjectProxy.
func (c *Client) Wrap(targetID string, tag Tag) Proxy {
	switch tag {
	case TagList:
		return newListProxy(c, targetID)
	case TagSet:
		return newSetProxy(c, targetID)
	case TagMap:
		return newMapProxy(c, targetID)
	case TagArray:
		return newArrayProxy(c, targetID)
	case TagIterator:
		return newIteratorProxy(c, targetID)
	default:
		return newObjectProxy(c, targetID)
	}
}

// LookupProxy resolves a callback-proxy ID to the local object
// registered in the pool, or nil if absent.
func (c *Client) LookupProxy(id string) interface{} {
	obj, ok := c.proxyPool.Lookup(id)
	if !ok {
		return nil
	}
	return obj
}

// Stats returns a human-readable pool status string, for status logging.
func (c *Client) Stats() string {
	return c.pool.Stats()
}

// HandleOnceShutdown is a no-op beyond what ShutdownHelper already does
// via the Pool shutdown-child; Client owns no other direct resources.
func (c *Client) HandleOnceShutdown(completionErr error) error {
	return completionErr
}

// Close closes all idle pool connections.
func (c *Client) Close() error {
	return c.Shutdown(nil)
}

// ShutdownGatewayAndClose additionally sends the shutdown command to
// the host before closing local resources.
func (c *Client) ShutdownGatewayAndClose() error {
	c.ShutdownGateway()
	return c.Close()
}
