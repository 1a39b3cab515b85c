package rpc

import (
	"sync"
)

// ClientPool caches clients by endpoint so commands that touch the same
// endpoint more than once (crosscheck probes metadata first, then fans
// the allowance read out) reuse one client and its HTTP transport.
type ClientPool struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewClientPool() *ClientPool {
	return &ClientPool{
		clients: make(map[string]*Client),
	}
}

// GetOrCreate returns the cached client for cfg's endpoint, creating it
// on first use. Safe for concurrent callers; the double check under the
// write lock keeps two racing callers from building two clients.
func (p *ClientPool) GetOrCreate(cfg ClientConfig) *Client {
	key := cfg.Name
	if key == "" {
		key = cfg.URL
	}

	p.mu.RLock()
	if client, ok := p.clients[key]; ok {
		p.mu.RUnlock()
		return client
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[key]; ok {
		return client
	}
	client := NewClient(cfg)
	p.clients[key] = client
	return client
}

// Size reports how many clients the pool holds.
func (p *ClientPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}
