package gw

import (
	"fmt"
	"sync"
)

// ProxyPool is the callback registry: a monotone counter mapping IDs
// (`p<n>`) to locally-held objects that implement one or more named
// host interfaces. IDs are never reused within a session, the same
// guarantee AllocBasicConnID gives connection IDs.
type ProxyPool struct {
	mu      sync.Mutex
	nextID  int64
	entries map[string]*poolEntry
}

type poolEntry struct {
	impl       interface{}
	interfaces []string
}

// NewProxyPool creates an empty ProxyPool.
func NewProxyPool() *ProxyPool {
	return &ProxyPool{entries: make(map[string]*poolEntry)}
}

// Register allocates a new ID for obj and stores it, returning the ID.
// Registration happens transparently inside the Codec's encoder whenever
// a KindLocalProxy value appears as an argument.
func (p *ProxyPool) Register(obj interface{}, interfaces ...string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := fmt.Sprintf("p%d", p.nextID)
	p.nextID++
	p.entries[id] = &poolEntry{impl: obj, interfaces: interfaces}
	return id
}

// Lookup resolves a callback-proxy ID to the local object registered
// under it, or reports ok == false if no such entry exists.
func (p *ProxyPool) Lookup(id string) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok {
		return nil, false
	}
	return e.impl, true
}

// Remove deletes the entry for id, if any. Removing an absent entry is a
// no-op — removal is idempotent.
func (p *ProxyPool) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, id)
}

// Len returns the number of currently registered entries, for status
// logging.
func (p *ProxyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
