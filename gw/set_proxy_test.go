package gw

import "testing"

func TestSetProxyToSet(t *testing.T) {
	// iterator() returns a g-tagged (iterator) proxy id "o9"; then the
	// set materializes by draining it.
	addr, received := startScriptedGateway(t, []string{
		"!ygo9",
		"!ybtrue", "!ysa",
		"!ybtrue", "!ysb",
		"!ybfalse",
	})
	c := newTestClient(t, addr)
	defer c.Close()

	set := newSetProxy(c, "o1")
	vals, err := set.ToSet()
	if err != nil {
		t.Fatalf("ToSet failed: %s", err)
	}
	if len(vals) != 2 || vals[0].Str != "a" || vals[1].Str != "b" {
		t.Errorf("unexpected materialized set: %+v", vals)
	}

	iterCmd := <-received
	if !stringSlicesEqual(iterCmd, []string{"c", "o1", "iterator"}) {
		t.Errorf("unexpected iterator() command: %v", iterCmd)
	}
}
