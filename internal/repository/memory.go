package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
)

// MemoryCart keeps encoded records in a map. Records go through the same
// JSON codec as the database storages.
type MemoryCart struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemory() *MemoryCart {
	return &MemoryCart{records: map[string][]byte{}}
}

func (m *MemoryCart) Load(_ context.Context, key string) ([]domain.CartLine, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	m.mu.RLock()
	payload, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return []domain.CartLine{}, nil
	}

	lines, err := DecodeLines(payload)
	if err != nil {
		return nil, fmt.Errorf("DecodeLines: %w", err)
	}
	return lines, nil
}

func (m *MemoryCart) Save(_ context.Context, key string, lines []domain.CartLine) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	payload, err := EncodeLines(lines)
	if err != nil {
		return fmt.Errorf("EncodeLines: %w", err)
	}

	m.mu.Lock()
	m.records[key] = payload
	m.mu.Unlock()
	return nil
}

func (m *MemoryCart) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[key]
	delete(m.records, key)
	return ok, nil
}

// Put stores a raw payload under key, bypassing the codec.
func (m *MemoryCart) Put(key string, payload []byte) {
	m.mu.Lock()
	m.records[key] = payload
	m.mu.Unlock()
}
