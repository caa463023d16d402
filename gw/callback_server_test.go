package gw

import (
	"errors"
	"strings"
	"testing"
)

type fakeCallback struct{}

func (f *fakeCallback) Add(a, b int32) int32 { return a + b }

func (f *fakeCallback) Greet(name string) string { return "hello, " + name }

func (f *fakeCallback) Fail() (int32, error) { return 0, errors.New("boom") }

func (f *fakeCallback) Noop() {}

func newTestCallbackServer() (*CallbackServer, *ProxyPool) {
	pool := NewProxyPool()
	logger := NewLogger("test", LogLevelTrace)
	s := NewCallbackServer(logger, nil, pool)
	return s, pool
}

func TestDispatchCallSuccess(t *testing.T) {
	s, pool := newTestCallbackServer()
	id := pool.Register(&fakeCallback{})

	reply := s.dispatch([]string{"c", id, "Add", "i3", "i4"})
	if reply != "!yi7\n" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestDispatchCallString(t *testing.T) {
	s, pool := newTestCallbackServer()
	id := pool.Register(&fakeCallback{})

	reply := s.dispatch([]string{"c", id, "Greet", "sworld"})
	if reply != "!yshello, world\n" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestDispatchCallVoidResult(t *testing.T) {
	s, pool := newTestCallbackServer()
	id := pool.Register(&fakeCallback{})

	reply := s.dispatch([]string{"c", id, "Noop"})
	if reply != "!yv\n" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestDispatchCallError(t *testing.T) {
	s, pool := newTestCallbackServer()
	id := pool.Register(&fakeCallback{})

	reply := s.dispatch([]string{"c", id, "Fail"})
	if !strings.HasPrefix(reply, "!xboom") {
		t.Errorf("expected an error reply prefixed with \"!xboom\", got %q", reply)
	}
}

func TestDispatchCallUnknownProxy(t *testing.T) {
	s, _ := newTestCallbackServer()

	reply := s.dispatch([]string{"c", "p999", "Add", "i1", "i2"})
	if !strings.HasPrefix(reply, "!x") {
		t.Errorf("expected an error reply for an unregistered proxy, got %q", reply)
	}
}

func TestDispatchGC(t *testing.T) {
	s, pool := newTestCallbackServer()
	id := pool.Register(&fakeCallback{})

	reply := s.dispatch([]string{"g", id})
	if reply != "!yv\n" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if _, ok := pool.Lookup(id); ok {
		t.Error("expected the proxy to be removed from the pool after gc")
	}

	// Removing an already-absent entry is idempotent.
	reply = s.dispatch([]string{"g", id})
	if reply != "!yv\n" {
		t.Errorf("expected idempotent gc to still succeed, got %q", reply)
	}
}

func TestDispatchUnknownDiscriminator(t *testing.T) {
	s, _ := newTestCallbackServer()
	reply := s.dispatch([]string{"q"})
	if !strings.HasPrefix(reply, "!x") {
		t.Errorf("expected an error reply for an unknown discriminator, got %q", reply)
	}
}
