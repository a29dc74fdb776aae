package storage

import (
	"context"
	"sync"

	"github.com/JaimeStill/market-board/pkg/lifecycle"
)

// Memory is a process-local System. Values do not survive a restart.
type Memory struct {
	mu       sync.RWMutex
	values   map[string]string
	maxValue int64
}

// NewMemory creates an empty in-memory store. cfg may be nil.
func NewMemory(cfg *Config) *Memory {
	m := &Memory{values: make(map[string]string)}
	if cfg != nil {
		m.maxValue = cfg.MaxValueSizeBytes()
	}
	return m
}

func (m *Memory) Start(lc *lifecycle.Coordinator) error {
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := checkSize(value, m.maxValue); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
