package gw

import (
	"strings"
	"sync"
	"unicode"
)

// NamespaceView holds a name (default "rj"), a Client reference, and a
// mapping from short name to fully-qualified class name populated by
// imports.
type NamespaceView struct {
	client *Client
	viewID string

	mu        sync.Mutex
	shortcuts map[string]string
}

func newNamespaceView(c *Client, viewID string) *NamespaceView {
	return &NamespaceView{client: c, viewID: viewID, shortcuts: make(map[string]string)}
}

// ViewID returns the namespace view's target ID.
func (v *NamespaceView) ViewID() string { return v.viewID }

// Dot resolves a property name against the namespace view:
//  1. if prop has been registered via an import shortcut, produce a
//     Class proxy for that FQN;
//  2. else if prop's first character is upper-case, produce a Class
//     proxy with FQN equal to prop;
//  3. else produce a Package proxy with FQN equal to prop.
func (v *NamespaceView) Dot(prop string) Proxy {
	if prop == "then" {
		return nil
	}
	v.mu.Lock()
	fqn, ok := v.shortcuts[prop]
	v.mu.Unlock()
	if ok {
		return newClassProxy(v.client, fqn)
	}
	if isUpperFirst(prop) {
		return newClassProxy(v.client, prop)
	}
	return newPackageProxy(v.client, prop)
}

// Class resolves fqn directly to a Class proxy, bypassing the
// upper/lower-case convention — a convenience for callers that already
// know the FQN names a class.
func (v *NamespaceView) Class(fqn string) *ClassProxy {
	return newClassProxy(v.client, fqn)
}

// Package resolves name directly to a Package proxy.
func (v *NamespaceView) Package(name string) *PackageProxy {
	return newPackageProxy(v.client, name)
}

// JavaImport sends `j\ni\n<viewId>\n<fqn>\n e\n`; on success it registers
// lastDotSegment(fqn) -> fqn in the shortcut map, unless the last segment
// is "*".
func (v *NamespaceView) JavaImport(fqn string) error {
	cmd := "j\ni\n" + v.viewID + "\n" + fqn + "\n" + "e\n"
	if _, err := v.client.roundTrip(cmd); err != nil {
		return err
	}
	last := lastDotSegment(fqn)
	if last != "*" {
		v.mu.Lock()
		v.shortcuts[last] = fqn
		v.mu.Unlock()
	}
	return nil
}

// RemoveImport is symmetric with JavaImport, using sub-command `r`.
func (v *NamespaceView) RemoveImport(fqn string) error {
	cmd := "j\nr\n" + v.viewID + "\n" + fqn + "\n" + "e\n"
	if _, err := v.client.roundTrip(cmd); err != nil {
		return err
	}
	last := lastDotSegment(fqn)
	v.mu.Lock()
	delete(v.shortcuts, last)
	v.mu.Unlock()
	return nil
}

func lastDotSegment(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}

func isUpperFirst(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return unicode.IsUpper(r)
}

// PackageProxy is the namespace-node proxy kind: property access
// concatenates "<parent>.<prop>" and recurses. It is not invocable.
type PackageProxy struct {
	client *Client
	fqn    string
}

func newPackageProxy(c *Client, fqn string) *PackageProxy {
	return &PackageProxy{client: c, fqn: fqn}
}

// FQN returns the dotted path accumulated so far.
func (p *PackageProxy) FQN() string { return p.fqn }

// TargetID implements Proxy. A package proxy has no host-side target; it
// reports its accumulated dotted path for diagnostic purposes only.
func (p *PackageProxy) TargetID() string { return p.fqn }

// Dot concatenates "<parent>.<prop>" and returns a Class proxy if prop's
// first character is upper-case, otherwise a new Package proxy. "then"
// is always refused.
func (p *PackageProxy) Dot(prop string) Proxy {
	if prop == "then" {
		return nil
	}
	child := p.fqn + "." + prop
	if isUpperFirst(prop) {
		return newClassProxy(p.client, child)
	}
	return newPackageProxy(p.client, child)
}

// Invoke always fails: a package proxy is not invocable. The error
// names the accumulated path so callers can see what they tried to
// call.
func (p *PackageProxy) Invoke(args ...Value) (Value, error) {
	return Value{}, newUsageError("package %q is not callable", p.fqn)
}

// ClassProxy is polymorphic over "constructor callable" and "static
// member namespace": it carries the class's fully-qualified name and a
// synthesized static target ID ("z:" + fqn).
type ClassProxy struct {
	client   *Client
	fqn      string
	targetID string
}

func newClassProxy(c *Client, fqn string) *ClassProxy {
	return &ClassProxy{client: c, fqn: fqn, targetID: StaticTargetID(fqn)}
}

// FQN returns the class's fully qualified name.
func (p *ClassProxy) FQN() string { return p.fqn }

// TargetID implements Proxy; always "z:" + fqn.
func (p *ClassProxy) TargetID() string { return p.targetID }

// Call performs callMethod("z:"+fqn, method, args): property access on
// a class proxy returns a callable that dispatches statically.
func (p *ClassProxy) Call(method string, args ...Value) (Value, error) {
	return p.client.CallMethod(p.targetID, method, args...)
}

// New performs callConstructor(fqn, args): invoking the class proxy
// itself constructs a new instance.
func (p *ClassProxy) New(args ...Value) (Value, error) {
	return p.client.CallConstructor(p.fqn, args...)
}

// StaticField performs a static field get, routed by the Client through
// reflection get-member.
func (p *ClassProxy) StaticField(name string) (Value, error) {
	return p.client.GetField(p.targetID, name)
}

// StaticMembers lists the class's static member names.
func (p *ClassProxy) StaticMembers() ([]string, error) {
	return p.client.GetStaticMembers(p.targetID)
}

// Note: ClassProxy intentionally exposes no inherited runtime-level
// properties (toString, valueOf, etc.) of whatever container would
// otherwise back it in a dynamic-language implementation — only its
// declared fields (FQN, TargetID) and the operations above.
