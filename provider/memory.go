package provider

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/porkdyn/porkdyn/dnsname"
	"github.com/porkdyn/porkdyn/types"
)

// Memory is a thread-safe in-memory Gateway. It backs the test suite
// and lets deployments be exercised without touching the real provider.
type Memory struct {
	mu      sync.RWMutex
	records map[memoryKey]*Record
	nextID  int64
}

type memoryKey struct {
	FQDN string
	Type types.RecordType
}

// NewMemory creates an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{records: make(map[memoryKey]*Record)}
}

// Fetch returns the stored record for the name and type.
func (m *Memory) Fetch(_ context.Context, _ Credentials, name dnsname.Name, rt types.RecordType) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[memoryKey{FQDN: name.FQDN, Type: rt}]
	if !ok {
		return Record{}, fmt.Errorf("%w: no %s record for %s", types.ErrRecordNotFound, rt, name.FQDN)
	}
	return *rec, nil
}

// Create stores a new record and returns a synthetic numeric id.
func (m *Memory) Create(_ context.Context, _ Credentials, name dnsname.Name, rt types.RecordType, value string, _ int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := strconv.FormatInt(m.nextID, 10)
	m.records[memoryKey{FQDN: name.FQDN, Type: rt}] = &Record{ID: id, Type: rt, Value: value}
	return id, nil
}

// Update rewrites the stored record with the given id.
func (m *Memory) Update(_ context.Context, _ Credentials, id string, name dnsname.Name, rt types.RecordType, value string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{FQDN: name.FQDN, Type: rt}
	rec, ok := m.records[key]
	if !ok || rec.ID != id {
		return fmt.Errorf("%w: no %s record with id %s for %s", types.ErrRecordNotFound, rt, id, name.FQDN)
	}
	rec.Value = value
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
