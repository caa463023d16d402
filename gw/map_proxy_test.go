package gw

import "testing"

func TestMapProxyToMap(t *testing.T) {
	addr, received := startScriptedGateway(t, []string{
		"!yho2",    // entrySet() -> set o2
		"!ygo9",    // o2.iterator() -> iterator o9
		"!ybtrue",  // hasNext -> true
		"!yro10",   // next -> entry o10
		"!ybtrue",  // hasNext -> true
		"!yro11",   // next -> entry o11
		"!ybfalse", // hasNext -> false
		"!ysk1",    // o10.getKey()
		"!ysv1",    // o10.getValue()
		"!ysk2",    // o11.getKey()
		"!ysv2",    // o11.getValue()
	})
	c := newTestClient(t, addr)
	defer c.Close()

	m := newMapProxy(c, "o1")
	entries, err := m.ToMap()
	if err != nil {
		t.Fatalf("ToMap failed: %s", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key.Str != "k1" || entries[0].Value.Str != "v1" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Key.Str != "k2" || entries[1].Value.Str != "v2" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}

	entrySetCmd := <-received
	if !stringSlicesEqual(entrySetCmd, []string{"c", "o1", "entrySet"}) {
		t.Errorf("unexpected entrySet command: %v", entrySetCmd)
	}
}

func TestMapProxyToObject(t *testing.T) {
	addr, _ := startScriptedGateway(t, []string{
		"!yho2",
		"!ygo9",
		"!ybtrue",
		"!yro10",
		"!ybfalse",
		"!ysname",
		"!ysAlice",
	})
	c := newTestClient(t, addr)
	defer c.Close()

	m := newMapProxy(c, "o1")
	obj, err := m.ToObject()
	if err != nil {
		t.Fatalf("ToObject failed: %s", err)
	}
	if obj["name"].Str != "Alice" {
		t.Errorf("unexpected ToObject result: %+v", obj)
	}
}
