package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// MemoryManager is an in-memory entity.Manager for tests. Records keep
// insertion order so select results are deterministic.
type MemoryManager struct {
	mu      sync.Mutex
	IDField string
	records map[string][]*entity.DocumentEntity
}

// NewMemoryManager creates an empty in-memory manager keyed on "_id"
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		IDField: "_id",
		records: make(map[string][]*entity.DocumentEntity),
	}
}

func (m *MemoryManager) key(e *entity.DocumentEntity) (string, error) {
	doc, ok := e.Find(m.IDField)
	if !ok {
		return "", fmt.Errorf("%w: document %q", jerrors.ErrIdentifierMissing, m.IDField)
	}
	return entity.AsString(doc.Value)
}

// Insert implements entity.Manager
func (m *MemoryManager) Insert(_ context.Context, e *entity.DocumentEntity) (*entity.DocumentEntity, error) {
	id, err := m.key(e)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records[e.Name()] {
		existingID, err := m.key(existing)
		if err == nil && existingID == id {
			return nil, fmt.Errorf("%w: %s.%s", jerrors.ErrEntityExists, e.Name(), id)
		}
	}
	m.records[e.Name()] = append(m.records[e.Name()], e.Copy())
	return e, nil
}

// Update implements entity.Manager; it upserts by identifier
func (m *MemoryManager) Update(_ context.Context, e *entity.DocumentEntity) (*entity.DocumentEntity, error) {
	id, err := m.key(e)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.records[e.Name()]
	for i, existing := range list {
		existingID, err := m.key(existing)
		if err == nil && existingID == id {
			list[i] = e.Copy()
			return e, nil
		}
	}
	m.records[e.Name()] = append(list, e.Copy())
	return e, nil
}

// Delete implements entity.Manager
func (m *MemoryManager) Delete(_ context.Context, q entity.DeleteQuery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[q.Entity][:0]
	for _, e := range m.records[q.Entity] {
		match, err := q.Matches(e)
		if err != nil {
			return err
		}
		if !match {
			kept = append(kept, e)
		}
	}
	m.records[q.Entity] = kept
	return nil
}

// Select implements entity.Manager
func (m *MemoryManager) Select(_ context.Context, q entity.SelectQuery) ([]*entity.DocumentEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.DocumentEntity
	skipped := 0
	for _, e := range m.records[q.Entity] {
		match, err := q.Matches(e)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		if skipped < q.Skip {
			skipped++
			continue
		}
		out = append(out, project(e, q.Fields))
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Close implements entity.Manager
func (m *MemoryManager) Close() error {
	return nil
}

// Count returns the stored record count for an entity name
func (m *MemoryManager) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[name])
}

func project(e *entity.DocumentEntity, fields []string) *entity.DocumentEntity {
	if len(fields) == 0 {
		return e.Copy()
	}
	out := entity.Of(e.Name())
	for _, f := range fields {
		if doc, ok := e.Find(f); ok {
			out.AddDocument(doc)
		}
	}
	return out
}
