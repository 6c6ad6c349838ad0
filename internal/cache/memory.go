package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a process local cache holding at most size entries, each for ttl.
type Memory struct {
	mu  sync.RWMutex
	gen uint64
	lru *expirable.LRU[string, Entry]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{
		lru: expirable.NewLRU[string, Entry](size, nil, ttl),
	}
}

func (m *Memory) Get(_ context.Context, key string) (*Entry, uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, m.gen, false
	}

	if entry.Hostname != nil {
		hostname := *entry.Hostname
		entry.Hostname = &hostname
	}

	return &entry, m.gen, true
}

// Set holds the read lock only: the LRU is safe for concurrent use and Purge
// takes the write lock, so no purge can slip between the check and the add.
func (m *Memory) Set(_ context.Context, gen uint64, key string, entry *Entry) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if gen != m.gen {
		return
	}

	stored := *entry
	if entry.Hostname != nil {
		hostname := *entry.Hostname
		stored.Hostname = &hostname
	}

	m.lru.Add(key, stored)
}

func (m *Memory) Purge(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.lru.Purge()
}

func (m *Memory) Changed(ctx context.Context) {
	m.Purge(ctx)
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}
