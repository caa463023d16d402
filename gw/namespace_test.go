package gw

import "testing"

func TestNamespaceViewDotPromotion(t *testing.T) {
	c := &Client{proxyPool: NewProxyPool()}
	ns := newNamespaceView(c, DefaultNamespaceID)

	if _, ok := ns.Dot("Math").(*ClassProxy); !ok {
		t.Error("expected an upper-case-first property to produce a Class proxy")
	}
	if _, ok := ns.Dot("java").(*PackageProxy); !ok {
		t.Error("expected a lower-case-first property to produce a Package proxy")
	}
	if ns.Dot("then") != nil {
		t.Error("expected \"then\" to be refused on the namespace view")
	}
}

func TestNamespaceViewImportShortcut(t *testing.T) {
	c := &Client{proxyPool: NewProxyPool()}
	ns := newNamespaceView(c, DefaultNamespaceID)
	ns.shortcuts["ArrayList"] = "java.util.ArrayList"

	cp, ok := ns.Dot("ArrayList").(*ClassProxy)
	if !ok {
		t.Fatal("expected a registered shortcut to produce a Class proxy")
	}
	if cp.FQN() != "java.util.ArrayList" {
		t.Errorf("expected shortcut to resolve to the imported FQN, got %q", cp.FQN())
	}
}

func TestPackageProxyDotConcatenation(t *testing.T) {
	c := &Client{proxyPool: NewProxyPool()}
	pkg := newPackageProxy(c, "java")
	child := pkg.Dot("util")
	sub, ok := child.(*PackageProxy)
	if !ok {
		t.Fatalf("expected a Package proxy, got %T", child)
	}
	if sub.FQN() != "java.util" {
		t.Errorf("expected concatenated FQN \"java.util\", got %q", sub.FQN())
	}

	cls := sub.Dot("ArrayList")
	cp, ok := cls.(*ClassProxy)
	if !ok {
		t.Fatalf("expected a Class proxy, got %T", cls)
	}
	if cp.FQN() != "java.util.ArrayList" {
		t.Errorf("expected FQN \"java.util.ArrayList\", got %q", cp.FQN())
	}
	if cp.TargetID() != "z:java.util.ArrayList" {
		t.Errorf("expected static target ID, got %q", cp.TargetID())
	}
}

func TestPackageProxyNotInvocable(t *testing.T) {
	c := &Client{proxyPool: NewProxyPool()}
	pkg := newPackageProxy(c, "java.util")
	_, err := pkg.Invoke()
	if _, ok := err.(*UsageError); !ok {
		t.Errorf("expected a *UsageError calling a package proxy, got %T (%v)", err, err)
	}
}

func TestLastDotSegment(t *testing.T) {
	cases := map[string]string{
		"java.util.ArrayList": "ArrayList",
		"java.util.*":         "*",
		"Foo":                 "Foo",
	}
	for fqn, want := range cases {
		if got := lastDotSegment(fqn); got != want {
			t.Errorf("lastDotSegment(%q) = %q, want %q", fqn, got, want)
		}
	}
}
