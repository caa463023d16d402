package gw

import "strconv"

// ListProxy is the ordered-sequence container proxy: indexed access and
// common mutations map to remote method calls by name, while
// sort/reverse/subList/count use dedicated `l`-prefixed subcommands.
type ListProxy struct {
	baseProxy
}

func newListProxy(c *Client, targetID string) *ListProxy {
	return &ListProxy{baseProxy{client: c, targetID: targetID}}
}

// Size performs `size()`.
func (p *ListProxy) Size() (Value, error) {
	return p.client.CallMethod(p.targetID, "size")
}

// Get performs `get(i)`.
func (p *ListProxy) Get(i int) (Value, error) {
	return p.client.CallMethod(p.targetID, "get", Int32Value(int32(i)))
}

// Add performs `add(e)`.
func (p *ListProxy) Add(e Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "add", e)
}

// AddAt performs `addAt(i,e)`.
func (p *ListProxy) AddAt(i int, e Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "addAt", Int32Value(int32(i)), e)
}

// Remove performs `remove(iOrV)`, accepting either an index or a value.
func (p *ListProxy) Remove(iOrV Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "remove", iOrV)
}

// Set performs `set(i,e)`.
func (p *ListProxy) Set(i int, e Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "set", Int32Value(int32(i)), e)
}

// Clear performs `clear()`.
func (p *ListProxy) Clear() (Value, error) {
	return p.client.CallMethod(p.targetID, "clear")
}

// Contains performs `contains(v)`.
func (p *ListProxy) Contains(v Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "contains", v)
}

// IndexOf performs `indexOf(v)`.
func (p *ListProxy) IndexOf(v Value) (Value, error) {
	return p.client.CallMethod(p.targetID, "indexOf", v)
}

// Sort sends the dedicated `l\ns\n<target>\n e\n` subcommand.
func (p *ListProxy) Sort() error {
	cmd := "l\ns\n" + p.targetID + "\n" + "e\n"
	_, err := p.client.roundTrip(cmd)
	return err
}

// Reverse sends the dedicated `l\nr\n<target>\n e\n` subcommand.
func (p *ListProxy) Reverse() error {
	cmd := "l\nr\n" + p.targetID + "\n" + "e\n"
	_, err := p.client.roundTrip(cmd)
	return err
}

// SubList sends `l\nl\n<target>\n <i>from\n <i>to\n e\n` and returns the
// resulting proxy.
func (p *ListProxy) SubList(from, to int) (Value, error) {
	cmd := "l\nl\n" + p.targetID + "\n" +
		"i" + strconv.Itoa(from) + "\n" +
		"i" + strconv.Itoa(to) + "\n" + "e\n"
	return p.client.roundTrip(cmd)
}

// Count sends `l\nf\n<target>\n VALUEPART e\n`.
func (p *ListProxy) Count(v Value) (Value, error) {
	part, err := EncodeValue(v, p.client.proxyPool)
	if err != nil {
		return Value{}, err
	}
	cmd := "l\nf\n" + p.targetID + "\n" + part + "e\n"
	return p.client.roundTrip(cmd)
}

// ToArray materializes the list locally by size() followed by get(i) in
// order.
func (p *ListProxy) ToArray() ([]Value, error) {
	sz, err := p.Size()
	if err != nil {
		return nil, err
	}
	n, err := valueAsInt(sz)
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := p.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func valueAsInt(v Value) (int, error) {
	switch v.Kind {
	case KindInt32:
		return int(v.Int32), nil
	case KindInt64:
		return int(v.Int64), nil
	default:
		return 0, newUsageError("expected an integer value, got kind %d", v.Kind)
	}
}
