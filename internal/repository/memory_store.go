package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Compile-time check that MemoryStore satisfies Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store used by tests and by the CLI's
// dry runs.  Documents are kept as encoded JSON so callers never share
// memory with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[Collection]map[string][]byte
	commits int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Collection]map[string][]byte)}
}

// Put stores doc under id in a single-write batch.
func (m *MemoryStore) Put(c Collection, id string, doc any) error {
	return m.Commit(context.Background(), []Write{Set(c, id, doc)})
}

// Commits returns how many batches have been applied.
func (m *MemoryStore) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}

// Count returns the number of documents in c.
func (m *MemoryStore) Count(c Collection) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[c])
}

func (m *MemoryStore) Get(ctx context.Context, c Collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[c][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	return append(json.RawMessage(nil), b...), nil
}

func (m *MemoryStore) GetMany(ctx context.Context, c Collection, ids []string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(ids))
	for _, id := range ids {
		if b, ok := m.data[c][id]; ok {
			out[id] = append(json.RawMessage(nil), b...)
		}
	}
	return out, nil
}

func (m *MemoryStore) Query(ctx context.Context, c Collection, q Query) ([]json.RawMessage, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type hit struct {
		id  string
		doc map[string]any
		raw []byte
	}
	var hits []hit
	for id, raw := range m.data[c] {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c, id, err)
		}
		ok := true
		for _, f := range q.Filters {
			if !f.matches(doc) {
				ok = false
				break
			}
		}
		if ok {
			hits = append(hits, hit{id: id, doc: doc, raw: raw})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if q.OrderBy != "" {
			if cmp := compareValues(hits[i].doc[q.OrderBy], hits[j].doc[q.OrderBy]); cmp != 0 {
				if q.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return hits[i].id < hits[j].id
	})
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	out := make([]json.RawMessage, len(hits))
	for i, h := range hits {
		out[i] = append(json.RawMessage(nil), h.raw...)
	}
	return out, nil
}

// Commit stages the writes on copies of the touched collections and
// swaps them in only when every write succeeded.
func (m *MemoryStore) Commit(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := make(map[Collection]map[string][]byte)
	coll := func(c Collection) map[string][]byte {
		if s, ok := staged[c]; ok {
			return s
		}
		s := make(map[string][]byte, len(m.data[c]))
		for k, v := range m.data[c] {
			s[k] = v
		}
		staged[c] = s
		return s
	}

	for _, w := range writes {
		if w.ID == "" {
			return fmt.Errorf("write to %s without id: %w", w.Collection, ErrConflict)
		}
		docs := coll(w.Collection)
		switch w.Kind {
		case WriteSet:
			b, err := json.Marshal(w.Doc)
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", w.Collection, w.ID, err)
			}
			docs[w.ID] = b
		case WriteUpdate:
			cur, ok := docs[w.ID]
			if !ok {
				return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, ErrNotFound)
			}
			b, err := mergeFields(cur, w.Fields)
			if err != nil {
				return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, err)
			}
			docs[w.ID] = b
		case WriteDelete:
			delete(docs, w.ID)
		default:
			return fmt.Errorf("unknown write kind %d", w.Kind)
		}
	}
	for c, docs := range staged {
		m.data[c] = docs
	}
	m.commits++
	return nil
}

// mergeFields applies a field update to an encoded document.  Nil
// values remove the field.
func mergeFields(cur []byte, fields map[string]any) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(cur, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	for k, v := range fields {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	return json.Marshal(doc)
}
