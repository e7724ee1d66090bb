// Package kv provee un almacén clave-valor con TTL para datos blandos y
// recuperables: marcadores de idempotencia de webhooks, contadores de
// backoff de polling y rate limiting. No es almacenamiento durable; perder
// una clave solo fuerza una verificación fresca.
package kv

import (
	"context"
	"sync"
	"time"
)

// Store define las operaciones del almacén. SetNX e Incr son atómicos, lo
// que permite usar el almacén para dedup check-and-mark y contadores bajo
// entregas concurrentes.
type Store interface {
	GetInt64(ctx context.Context, key string) (value int64, ok bool, err error)
	SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error
	// SetNX fija el valor solo si la clave no existe. Devuelve true si la fijó.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Incr incrementa el contador; si la clave es nueva le fija el TTL.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// MemoryStore implementación en memoria (desarrollo y tests).
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]memoryItem
	// now permite inyectar el reloj en tests.
	now func() time.Time
}

type memoryItem struct {
	value     int64
	raw       string
	expiresAt time.Time
}

// NewMemoryStore crea el almacén en memoria.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryStore) get(key string) (memoryItem, bool) {
	item, ok := m.data[key]
	if !ok {
		return memoryItem{}, false
	}
	if m.now().After(item.expiresAt) {
		delete(m.data, key)
		return memoryItem{}, false
	}
	return item, true
}

// GetInt64 devuelve el valor numérico de la clave si existe y no expiró.
func (m *MemoryStore) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.get(key)
	if !ok {
		return 0, false, nil
	}
	return item.value, true, nil
}

// SetInt64 fija un valor numérico con TTL.
func (m *MemoryStore) SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memoryItem{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// SetNX fija el valor solo si la clave no existe.
func (m *MemoryStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.get(key); ok {
		return false, nil
	}
	m.data[key] = memoryItem{raw: value, expiresAt: m.now().Add(ttl)}
	return true, nil
}

// Incr incrementa el contador; la clave nueva recibe el TTL indicado.
func (m *MemoryStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.get(key)
	if !ok {
		m.data[key] = memoryItem{value: 1, expiresAt: m.now().Add(ttl)}
		return 1, nil
	}
	item.value++
	m.data[key] = item
	return item.value, nil
}

// Del elimina claves.
func (m *MemoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]memoryItem)
	return nil
}
