package gw

import (
	"bufio"
	"context"
	"net"
	"reflect"
	"time"

	"github.com/jpillora/backoff"
)

// DefaultCallbackAddr is the default inbound callback endpoint.
const DefaultCallbackAddr = "127.0.0.1:25334"

// CallbackServer is the inbound TCP acceptor for host-initiated calls
// into locally registered Go objects: a ShutdownHelper-managed listener
// whose HandleOnceShutdown closes it, and whose accept loop backs off
// on transient Accept() errors rather than spinning.
type CallbackServer struct {
	ShutdownHelper

	client   wrapper
	pool     *ProxyPool
	listener net.Listener

	// Addr is populated with the listener's actual address after
	// ListenAndServe binds — needed when the configured port is 0 and
	// the kernel assigns an ephemeral one.
	Addr string
}

// NewCallbackServer creates a CallbackServer dispatching inbound
// invocations against pool, using client to wrap any reference-tagged
// arguments a host call carries. The server is handed both a Client
// handle and the shared ProxyPool at construction and owns neither.
func NewCallbackServer(logger Logger, client wrapper, pool *ProxyPool) *CallbackServer {
	s := &CallbackServer{client: client, pool: pool}
	s.InitShutdownHelper(logger.Fork("callback"), s)
	return s
}

// HandleOnceShutdown closes the listener, unblocking the accept loop.
func (s *CallbackServer) HandleOnceShutdown(completionErr error) error {
	s.DLogf("HandleOnceShutdown")
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.DLogf("callback server: close of listener failed, ignoring: %s", err)
		}
	}
	return completionErr
}

// ListenAndServe binds addr (or DefaultCallbackAddr if empty) and runs
// the accept loop until the context is cancelled or Shutdown is called.
func (s *CallbackServer) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	err := s.DoOnceActivate(
		func() error {
			s.ShutdownOnContext(ctx)

			l, err := net.Listen("tcp", addr)
			if err != nil {
				return s.DLogErrorf("listen failed: %s", err)
			}
			s.listener = l
			s.Addr = l.Addr().String()

			go s.acceptLoop(l)

			return nil
		},
		true,
	)
	if err == nil {
		err = s.WaitShutdown()
	}
	return err
}

// acceptLoop mirrors net/http.Server's own retry behavior on transient
// Accept errors, using jpillora/backoff in place of the stdlib's
// hand-rolled doubling sleep.
func (s *CallbackServer) acceptLoop(l net.Listener) {
	b := &backoff.Backoff{Min: 5 * time.Millisecond, Max: time.Second}
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.IsStartedShutdown() {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() { //nolint:staticcheck
				d := b.Duration()
				s.DLogf("accept: transient error, retrying in %s: %s", d, err)
				time.Sleep(d)
				continue
			}
			s.DLogf("accept: permanent error, stopping: %s", err)
			return
		}
		b.Reset()
		s.ShutdownWG().Add(1)
		go func() {
			defer s.ShutdownWG().Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn is the line-accumulating command parser for one inbound
// connection: read lines, accumulate until a bare "e" line, dispatch
// the accumulated command, write the reply, and repeat until EOF.
func (s *CallbackServer) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	var parts []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = line[:len(line)-1]
		if line == "e" {
			reply := s.dispatch(parts)
			parts = nil
			if _, err := conn.Write([]byte(reply)); err != nil {
				return
			}
			continue
		}
		parts = append(parts, line)
	}
}

// dispatch interprets one accumulated command (discriminator plus
// remaining parts, terminator already stripped) and returns the encoded
// reply, always newline-terminated.
func (s *CallbackServer) dispatch(parts []string) string {
	if len(parts) == 0 {
		return "!xempty command\n"
	}
	switch parts[0] {
	case "c":
		return s.dispatchCall(parts[1:])
	case "g":
		return s.dispatchGC(parts[1:])
	default:
		return "!xunknown callback command discriminator " + EscapeString(parts[0]) + "\n"
	}
}

// dispatchCall implements the `c` command: proxyId, methodName, arg1,
// arg2, ….
func (s *CallbackServer) dispatchCall(parts []string) string {
	if len(parts) < 2 {
		return "!xmalformed call command\n"
	}
	proxyID, method := parts[0], parts[1]
	obj, ok := s.pool.Lookup(proxyID)
	if !ok {
		return "!xno such callback proxy: " + EscapeString(proxyID) + "\n"
	}

	args := make([]Value, 0, len(parts)-2)
	for _, part := range parts[2:] {
		if len(part) == 0 {
			return "!xempty argument part\n"
		}
		v, err := decodeTagged(Tag(part[0]), part[1:], s.client, s.pool)
		if err != nil {
			return "!x" + EscapeString(err.Error()) + "\n"
		}
		args = append(args, v)
	}

	result, err := invokeMethod(obj, method, args)
	if err != nil {
		return "!x" + EscapeString(err.Error()) + "\n"
	}
	if result.IsAbsent() {
		return "!yv\n"
	}
	part, err := EncodeValue(result, s.pool)
	if err != nil {
		return "!x" + EscapeString(err.Error()) + "\n"
	}
	return "!y" + part
}

// dispatchGC implements the `g` command: line 2 is a proxy ID; removal
// is idempotent.
func (s *CallbackServer) dispatchGC(parts []string) string {
	if len(parts) < 1 {
		return "!xmalformed gc command\n"
	}
	s.pool.Remove(parts[0])
	return "!yv\n"
}

// invokeMethod calls the named exported method on obj by reflection,
// converting decoded Values to the method's declared parameter types and
// its single return value (or first of two, with the second treated as
// an error) back to a Value. Methods registered for callback dispatch
// are expected to take basic Go types (bool, int32, int64, float64,
// string, []byte) or Value itself.
func invokeMethod(obj interface{}, method string, args []Value) (Value, error) {
	rv := reflect.ValueOf(obj)
	m := rv.MethodByName(method)
	if !m.IsValid() {
		return Value{}, newUsageError("callback object has no method %q", method)
	}
	mt := m.Type()
	if mt.NumIn() != len(args) {
		return Value{}, newUsageError("method %q expects %d arguments, got %d", method, mt.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		conv, err := convertArg(a, mt.In(i))
		if err != nil {
			return Value{}, err
		}
		in[i] = conv
	}
	out := m.Call(in)
	return convertResult(out)
}

func convertArg(v Value, want reflect.Type) (reflect.Value, error) {
	if want == reflect.TypeOf(Value{}) {
		return reflect.ValueOf(v), nil
	}
	switch want.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(v.Bool), nil
	case reflect.Int32, reflect.Int64, reflect.Int:
		n, err := valueAsInt(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(want), nil
	case reflect.Float64:
		return reflect.ValueOf(v.Double), nil
	case reflect.String:
		return reflect.ValueOf(v.Str), nil
	case reflect.Slice:
		if want.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf(v.Bytes), nil
		}
	}
	return reflect.Value{}, newUsageError("cannot convert decoded value to parameter type %s", want)
}

func convertResult(out []reflect.Value) (Value, error) {
	switch len(out) {
	case 0:
		return VoidValue(), nil
	case 1:
		return goValueToValue(out[0])
	case 2:
		if errVal, ok := out[1].Interface().(error); ok && errVal != nil {
			return Value{}, errVal
		}
		return goValueToValue(out[0])
	default:
		return Value{}, newUsageError("callback method returned %d values, expected 0, 1, or (value, error)", len(out))
	}
}

func goValueToValue(rv reflect.Value) (Value, error) {
	if v, ok := rv.Interface().(Value); ok {
		return v, nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int32:
		return Int32Value(int32(rv.Int())), nil
	case reflect.Int64, reflect.Int:
		return Int64Value(rv.Int()), nil
	case reflect.Float64:
		return DoubleValue(rv.Float()), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return BytesValue(rv.Bytes()), nil
		}
	}
	return Value{}, newUsageError("cannot convert callback return type %s to a Value", rv.Type())
}
