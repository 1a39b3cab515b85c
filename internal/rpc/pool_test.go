package rpc

import (
	"sync"
	"testing"
)

func TestClientPoolReuses(t *testing.T) {
	pool := NewClientPool()

	a := pool.GetOrCreate(ClientConfig{Name: "primary", URL: "https://a.example.com"})
	b := pool.GetOrCreate(ClientConfig{Name: "primary", URL: "https://a.example.com"})
	if a != b {
		t.Error("GetOrCreate() built a second client for the same endpoint")
	}
	if got := pool.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}

	c := pool.GetOrCreate(ClientConfig{Name: "backup", URL: "https://b.example.com"})
	if c == a {
		t.Error("GetOrCreate() returned the same client for a different endpoint")
	}
	if got := pool.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestClientPoolKeysByURLWhenUnnamed(t *testing.T) {
	pool := NewClientPool()

	a := pool.GetOrCreate(ClientConfig{URL: "https://a.example.com"})
	b := pool.GetOrCreate(ClientConfig{URL: "https://a.example.com"})
	if a != b {
		t.Error("GetOrCreate() did not key unnamed clients by URL")
	}
}

func TestClientPoolConcurrent(t *testing.T) {
	pool := NewClientPool()

	var wg sync.WaitGroup
	clients := make([]*Client, 16)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i] = pool.GetOrCreate(ClientConfig{Name: "shared", URL: "https://a.example.com"})
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(clients); i++ {
		if clients[i] != clients[0] {
			t.Fatal("concurrent GetOrCreate() returned different clients")
		}
	}
	if got := pool.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
}
