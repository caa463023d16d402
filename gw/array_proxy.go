package gw

import "strconv"

// ArrayProxy is the fixed-length indexable container proxy: unlike
// List/Set/Map, every operation uses a dedicated `a` subcommand rather
// than a generic method call.
type ArrayProxy struct {
	baseProxy
}

func newArrayProxy(c *Client, targetID string) *ArrayProxy {
	return &ArrayProxy{baseProxy{client: c, targetID: targetID}}
}

// Get sends `a\ng\n<target>\n <i>i\n e\n`.
func (p *ArrayProxy) Get(i int) (Value, error) {
	cmd := "a\ng\n" + p.targetID + "\n" + "i" + strconv.Itoa(i) + "\n" + "e\n"
	return p.client.roundTrip(cmd)
}

// Set sends `a\ns\n<target>\n <i>i\n VALUEPART e\n`.
func (p *ArrayProxy) Set(i int, v Value) error {
	part, err := EncodeValue(v, p.client.proxyPool)
	if err != nil {
		return err
	}
	cmd := "a\ns\n" + p.targetID + "\n" + "i" + strconv.Itoa(i) + "\n" + part + "e\n"
	_, err = p.client.roundTrip(cmd)
	return err
}

// Length sends `a\ne\n<target>\n e\n`.
func (p *ArrayProxy) Length() (Value, error) {
	cmd := "a\ne\n" + p.targetID + "\n" + "e\n"
	return p.client.roundTrip(cmd)
}

// Slice sends `a\nl\n<target>\n <i>i\n <i>j\n e\n`.
func (p *ArrayProxy) Slice(i, j int) (Value, error) {
	cmd := "a\nl\n" + p.targetID + "\n" +
		"i" + strconv.Itoa(i) + "\n" +
		"i" + strconv.Itoa(j) + "\n" + "e\n"
	return p.client.roundTrip(cmd)
}

// ToArray materializes the array locally via Length + Get, in order.
func (p *ArrayProxy) ToArray() ([]Value, error) {
	lv, err := p.Length()
	if err != nil {
		return nil, err
	}
	n, err := valueAsInt(lv)
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
