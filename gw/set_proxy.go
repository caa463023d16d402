package gw

// SetProxy is the unordered-unique container proxy: all operations map
// to remote method calls; enumeration goes through a host-provided
// Iterator proxy.
type SetProxy struct {
	baseProxy
}

func newSetProxy(c *Client, targetID string) *SetProxy {
	return &SetProxy{baseProxy{client: c, targetID: targetID}}
}

// Size performs `size()`.
func (p *SetProxy) Size() (Value, error) {
	return p.client.CallMethod(p.targetID, "size")
}

// Add performs `add(e)`.
func (p *SetProxy) Add(e Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "add", e)
}

// Remove performs `remove(e)`.
func (p *SetProxy) Remove(e Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "remove", e)
}

// Contains performs `contains(e)`.
func (p *SetProxy) Contains(e Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "contains", e)
}

// Clear performs `clear()`.
func (p *SetProxy) Clear() (Value, error) {
	return p.client.CallMethod(p.targetID, "clear")
}

// Iterator obtains a host iterator by calling `iterator()`.
func (p *SetProxy) Iterator() (*IteratorProxy, error) {
	v, err := p.client.CallMethod(p.targetID, "iterator")
	if err != nil {
		return nil, err
	}
	it, ok := v.Proxy.(*IteratorProxy)
	if !ok {
		return nil, newUsageError("iterator() did not return an iterator proxy")
	}
	return it, nil
}

// ToSet materializes the set locally to a slice, in the host iterator's
// order, by draining the host iterator. No local de-duplication is done;
// the slice holds exactly the elements the host iterator yields.
func (p *SetProxy) ToSet() ([]Value, error) {
	it, err := p.Iterator()
	if err != nil {
		return nil, err
	}
	return drainIterator(it)
}

func drainIterator(it *IteratorProxy) ([]Value, error) {
	var out []Value
	for {
		has, err := it.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			return out, nil
		}
		v, err := it.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}
