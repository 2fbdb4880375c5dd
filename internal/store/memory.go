package store

import (
	"context"
	"strconv"
	"sync"
)

// InsertHook lets tests fail a specific insert call. call counts from 1 per table.
type InsertHook func(table string, call int) error

// MemoryStore keeps tables in process memory. It backs --dry-run and the tests,
// and mimics the hosted store by handing every id back as text.
type MemoryStore struct {
	mu       sync.Mutex
	tables   map[string][]Row
	nextID   map[string]int64
	calls    map[string]int
	hook     InsertHook
	probeErr error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string][]Row),
		nextID: make(map[string]int64),
		calls:  make(map[string]int),
	}
}

// OnInsert installs a hook consulted before every insert call
func (m *MemoryStore) OnInsert(hook InsertHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

// FailProbe makes Probe return err
func (m *MemoryStore) FailProbe(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeErr = err
}

// Insert implements Store
func (m *MemoryStore) Insert(_ context.Context, table string, rows []Row) ([]Row, error) {
	if err := checkIdentifiers(table); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[table]++
	if m.hook != nil {
		if err := m.hook(table, m.calls[table]); err != nil {
			return nil, err
		}
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		stored := row.Clone()
		if id, ok := stored["id"]; ok && id != nil {
			stored["id"] = valueKey(id)
		} else {
			m.nextID[table]++
			stored["id"] = strconv.FormatInt(m.nextID[table], 10)
		}
		m.tables[table] = append(m.tables[table], stored)
		out = append(out, stored.Clone())
	}
	return out, nil
}

// Select implements Store
func (m *MemoryStore) Select(_ context.Context, table string, filter Filter, columns ...string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Row
	for _, row := range m.tables[table] {
		if !matches(row, filter) {
			continue
		}
		if len(columns) == 0 {
			out = append(out, row.Clone())
			continue
		}
		projected := make(Row, len(columns))
		for _, c := range columns {
			projected[c] = row[c]
		}
		out = append(out, projected)
	}
	return out, nil
}

// Delete implements Store
func (m *MemoryStore) Delete(_ context.Context, table string, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tables[table][:0]
	var deleted int64
	for _, row := range m.tables[table] {
		if matches(row, filter) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.tables[table] = kept
	return deleted, nil
}

// Probe implements Store
func (m *MemoryStore) Probe(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeErr
}

// Len returns the number of rows currently held in table
func (m *MemoryStore) Len(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

func matches(row Row, filter Filter) bool {
	if filter.IsZero() {
		return true
	}
	v, ok := row[filter.Column]
	return ok && valueKey(v) == valueKey(filter.Value)
}
