package gw

// Proxy is the common interface satisfied by every local handle that
// forwards operations to a host-side object. Each concrete proxy kind
// carries a stable targetID and a Client reference; the targetID is
// never mutated after assignment.
type Proxy interface {
	// TargetID returns the opaque or synthesized target identifier this
	// proxy forwards operations to.
	TargetID() string
}

// baseProxy is embedded by every concrete proxy kind to provide the
// targetID/Client pair common to all of them.
type baseProxy struct {
	client   *Client
	targetID string
}

// TargetID implements Proxy.
func (p *baseProxy) TargetID() string { return p.targetID }

// ObjectProxy is the generic proxy kind: any property access becomes a
// remote method call. This statically-typed implementation exposes
// that as two explicit operations, Call and Field, rather than dynamic
// property interception.
type ObjectProxy struct {
	baseProxy
}

func newObjectProxy(c *Client, targetID string) *ObjectProxy {
	return &ObjectProxy{baseProxy{client: c, targetID: targetID}}
}

// Call performs callMethod(targetID, method, args).
func (p *ObjectProxy) Call(method string, args ...Value) (Value, error) {
	return p.client.CallMethod(p.targetID, method, args...)
}

// Field performs getField(targetID, name). Fields are assigned with
// SetField.
func (p *ObjectProxy) Field(name string) (Value, error) {
	return p.client.GetField(p.targetID, name)
}

// SetField performs setField(targetID, name, value).
func (p *ObjectProxy) SetField(name string, value Value) error {
	return p.client.SetField(p.targetID, name, value)
}

// Release sends a best-effort memory-release command for this proxy's
// target.
func (p *ObjectProxy) Release() {
	p.client.ReleaseObject(p.targetID)
}

// then reports the well-known property name "then" as absent, without
// a network round-trip. It is unexported; the lookups that refuse
// "then" are NamespaceView.Dot and PackageProxy.Dot. Call("then") is
// not intercepted and is dispatched to the host like any other method.
func (p *ObjectProxy) then() (Value, bool) {
	return Value{}, false
}
