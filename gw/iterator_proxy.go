package gw

// IteratorProxy wraps a host iterator: `hasNext`, `next`, and `remove`
// map to generic method calls; enumeration drains until `hasNext` is
// false.
type IteratorProxy struct {
	baseProxy
}

func newIteratorProxy(c *Client, targetID string) *IteratorProxy {
	return &IteratorProxy{baseProxy{client: c, targetID: targetID}}
}

// HasNext performs `hasNext()` and converts the boolean result.
func (p *IteratorProxy) HasNext() (bool, error) {
	v, err := p.client.CallMethod(p.targetID, "hasNext")
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, newUsageError("hasNext() did not return a boolean")
	}
	return v.Bool, nil
}

// Next performs `next()`.
func (p *IteratorProxy) Next() (Value, error) {
	return p.client.CallMethod(p.targetID, "next")
}

// Remove performs `remove()` — removes the element most recently
// returned by Next.
func (p *IteratorProxy) Remove() (Value, error) {
	return p.client.CallMethod(p.targetID, "remove")
}

// Drain consumes the iterator to exhaustion and returns every element
// in enumeration order.
func (p *IteratorProxy) Drain() ([]Value, error) {
	return drainIterator(p)
}
