package gw

import "testing"

func TestListProxySize(t *testing.T) {
	addr, received := startScriptedGateway(t, []string{"!yi2"})
	c := newTestClient(t, addr)
	defer c.Close()

	list := newListProxy(c, "o1")
	sz, err := list.Size()
	if err != nil {
		t.Fatalf("Size failed: %s", err)
	}
	n, _ := valueAsInt(sz)
	if n != 2 {
		t.Fatalf("expected size 2, got %d", n)
	}

	sizeCmd := <-received
	if !stringSlicesEqual(sizeCmd, []string{"c", "o1", "size"}) {
		t.Errorf("unexpected size command: %v", sizeCmd)
	}
}

func TestListProxyToArray(t *testing.T) {
	addr, received := startScriptedGateway(t, []string{"!yi2", "!ysa", "!ysb"})
	c := newTestClient(t, addr)
	defer c.Close()

	list := newListProxy(c, "o1")
	arr, err := list.ToArray()
	if err != nil {
		t.Fatalf("ToArray failed: %s", err)
	}
	if len(arr) != 2 || arr[0].Str != "a" || arr[1].Str != "b" {
		t.Errorf("unexpected ToArray result: %+v", arr)
	}

	<-received // size()
	get0 := <-received
	if !stringSlicesEqual(get0, []string{"c", "o1", "get", "i0"}) {
		t.Errorf("unexpected get(0) command: %v", get0)
	}
	get1 := <-received
	if !stringSlicesEqual(get1, []string{"c", "o1", "get", "i1"}) {
		t.Errorf("unexpected get(1) command: %v", get1)
	}
}

func TestListProxySortAndReverse(t *testing.T) {
	addr, received := startScriptedGateway(t, []string{"!yv", "!yv"})
	c := newTestClient(t, addr)
	defer c.Close()

	list := newListProxy(c, "o1")
	if err := list.Sort(); err != nil {
		t.Fatalf("Sort failed: %s", err)
	}
	if err := list.Reverse(); err != nil {
		t.Fatalf("Reverse failed: %s", err)
	}

	sortCmd := <-received
	if !stringSlicesEqual(sortCmd, []string{"l", "s", "o1"}) {
		t.Errorf("unexpected sort command: %v", sortCmd)
	}
	reverseCmd := <-received
	if !stringSlicesEqual(reverseCmd, []string{"l", "r", "o1"}) {
		t.Errorf("unexpected reverse command: %v", reverseCmd)
	}
}

func TestArrayProxyGetSetLength(t *testing.T) {
	addr, received := startScriptedGateway(t, []string{"!yi3", "!yv", "!yi7"})
	c := newTestClient(t, addr)
	defer c.Close()

	arr := newArrayProxy(c, "o2")
	n, err := arr.Length()
	if err != nil {
		t.Fatalf("Length failed: %s", err)
	}
	if n.Int32 != 3 {
		t.Errorf("unexpected length: %+v", n)
	}
	if err := arr.Set(0, Int32Value(7)); err != nil {
		t.Fatalf("Set failed: %s", err)
	}
	v, err := arr.Get(0)
	if err != nil {
		t.Fatalf("Get failed: %s", err)
	}
	if v.Int32 != 7 {
		t.Errorf("unexpected value: %+v", v)
	}

	lengthCmd := <-received
	if !stringSlicesEqual(lengthCmd, []string{"a", "e", "o2"}) {
		t.Errorf("unexpected length command: %v", lengthCmd)
	}
	setCmd := <-received
	if !stringSlicesEqual(setCmd, []string{"a", "s", "o2", "i0", "i7"}) {
		t.Errorf("unexpected set command: %v", setCmd)
	}
	getCmd := <-received
	if !stringSlicesEqual(getCmd, []string{"a", "g", "o2", "i0"}) {
		t.Errorf("unexpected get command: %v", getCmd)
	}
}

func TestIteratorProxyDrain(t *testing.T) {
	addr, _ := startScriptedGateway(t, []string{"!ybtrue", "!ysx", "!ybtrue", "!ysy", "!ybfalse"})
	c := newTestClient(t, addr)
	defer c.Close()

	it := newIteratorProxy(c, "o3")
	vals, err := it.Drain()
	if err != nil {
		t.Fatalf("Drain failed: %s", err)
	}
	if len(vals) != 2 || vals[0].Str != "x" || vals[1].Str != "y" {
		t.Errorf("unexpected drained values: %+v", vals)
	}
}
