package gw

// MapProxy is the key-to-value container proxy: all operations map to
// remote method calls; keys/values/entries are obtained as sub-proxies.
type MapProxy struct {
	baseProxy
}

func newMapProxy(c *Client, targetID string) *MapProxy {
	return &MapProxy{baseProxy{client: c, targetID: targetID}}
}

// Size performs `size()`.
func (p *MapProxy) Size() (Value, error) {
	return p.client.CallMethod(p.targetID, "size")
}

// Get performs `get(key)`.
func (p *MapProxy) Get(key Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "get", key)
}

// Put performs `put(key,value)`.
func (p *MapProxy) Put(key, value Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "put", key, value)
}

// Remove performs `remove(key)`.
func (p *MapProxy) Remove(key Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "remove", key)
}

// ContainsKey performs `containsKey(key)`.
func (p *MapProxy) ContainsKey(key Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "containsKey", key)
}

// ContainsValue performs `containsValue(value)`.
func (p *MapProxy) ContainsValue(value Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "containsValue", value)
}

// Clear performs `clear()`.
func (p *MapProxy) Clear() (Value, error) {
	return p.client.CallMethod(p.targetID, "clear")
}

// KeySet performs `keySet()`, returning a Set proxy.
func (p *MapProxy) KeySet() (Value, error) {
	return p.client.CallMethod(p.targetID, "keySet")
}

// Values performs `values()`, returning whatever proxy kind the host
// tags its Collection result as. No reshaping is done here: callers
// needing deterministic ordering should use ToMap or ToObject instead.
func (p *MapProxy) Values() (Value, error) {
	return p.client.CallMethod(p.targetID, "values")
}

// EntrySet performs `entrySet()`, returning a Set proxy of entry
// objects, each exposing getKey()/getValue() methods.
func (p *MapProxy) EntrySet() (Value, error) {
	return p.client.CallMethod(p.targetID, "entrySet")
}

// MapEntry is a materialized (key, value) pair.
type MapEntry struct {
	Key   Value
	Value Value
}

// ToMap materializes the map locally by iterating entrySet(), preserving
// arbitrary key values.
func (p *MapProxy) ToMap() ([]MapEntry, error) {
	entries, err := p.EntrySet()
	if err != nil {
		return nil, err
	}
	set, ok := entries.Proxy.(*SetProxy)
	if !ok {
		return nil, newUsageError("entrySet() did not return a set proxy")
	}
	raw, err := set.ToSet()
	if err != nil {
		return nil, err
	}
	out := make([]MapEntry, 0, len(raw))
	for _, e := range raw {
		obj, ok := e.Proxy.(*ObjectProxy)
		if !ok {
			return nil, newUsageError("entrySet() element was not an object proxy")
		}
		k, err := obj.Call("getKey")
		if err != nil {
			return nil, err
		}
		v, err := obj.Call("getValue")
		if err != nil {
			return nil, err
		}
		out = append(out, MapEntry{Key: k, Value: v})
	}
	return out, nil
}

// ToObject materializes the map locally with string keys, using each
// entry's key Str field.
func (p *MapProxy) ToObject() (map[string]Value, error) {
	entries, err := p.ToMap()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Value, len(entries))
	for _, e := range entries {
		if e.Key.Kind != KindString {
			return nil, newUsageError("toObject requires string keys, got kind %d", e.Key.Kind)
		}
		out[e.Key.Str] = e.Value
	}
	return out, nil
}
