package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Collection names a group of documents in the store.
type Collection string

const (
	Scenes           Collection = "scenes"
	Shots            Collection = "shots"
	ShootingDays     Collection = "shootingDays"
	ScheduleEvents   Collection = "scheduleEvents"
	Crew             Collection = "crew"
	Cast             Collection = "cast"
	Equipment        Collection = "equipment"
	Locations        Collection = "locations"
	BudgetCategories Collection = "budgetCategories"
	BudgetItems      Collection = "budgetItems"
)

// Store is keyed-record access to JSON documents.  Implementations
// must apply each Commit call atomically; nothing spans batches.
type Store interface {
	// Get returns the raw document or ErrNotFound.
	Get(ctx context.Context, c Collection, id string) (json.RawMessage, error)
	// GetMany returns the documents that exist, keyed by id.  Missing
	// ids are simply absent from the result.
	GetMany(ctx context.Context, c Collection, ids []string) (map[string]json.RawMessage, error)
	// Query returns the documents matching every filter in q.
	Query(ctx context.Context, c Collection, q Query) ([]json.RawMessage, error)
	// Commit applies all writes or none of them.
	Commit(ctx context.Context, writes []Write) error
}

// FilterOp is the comparison applied by a Filter.
type FilterOp int

const (
	// OpEq matches scalar fields equal to Value.  A missing field
	// compares as the empty string.
	OpEq FilterOp = iota
	// OpContains matches array fields holding Value.
	OpContains
)

// Filter is an equality or array-membership predicate on one field.
type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

// Eq builds an equality filter.
func Eq(field, value string) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

// Contains builds an array-membership filter.
func Contains(field, value string) Filter {
	return Filter{Field: field, Op: OpContains, Value: value}
}

// Query selects documents.  Results are ordered by OrderBy (then id)
// when set, by id otherwise.  Limit <= 0 means no limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where starts a query with the given filters.
func Where(filters ...Filter) Query { return Query{Filters: filters} }

// Order returns a copy of q ordered by field.
func (q Query) Order(field string, desc bool) Query {
	q.OrderBy = field
	q.Desc = desc
	return q
}

// Take returns a copy of q limited to n results.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func (q Query) validate() error {
	for _, f := range q.Filters {
		if !fieldName.MatchString(f.Field) {
			return fmt.Errorf("%w: %q", ErrInvalidField, f.Field)
		}
	}
	if q.OrderBy != "" && !fieldName.MatchString(q.OrderBy) {
		return fmt.Errorf("%w: %q", ErrInvalidField, q.OrderBy)
	}
	return nil
}

// WriteKind selects the operation of a Write.
type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteUpdate
	WriteDelete
)

// Write is one operation of a batch.  Set replaces the whole document,
// Update merges Fields into an existing document (a nil value removes
// the field) and Delete removes the document if present.
type Write struct {
	Kind       WriteKind
	Collection Collection
	ID         string
	Doc        any
	Fields     map[string]any
}

// Set builds a full-document write.
func Set(c Collection, id string, doc any) Write {
	return Write{Kind: WriteSet, Collection: c, ID: id, Doc: doc}
}

// Update builds a field-merge write.
func Update(c Collection, id string, fields map[string]any) Write {
	return Write{Kind: WriteUpdate, Collection: c, ID: id, Fields: fields}
}

// Delete builds a delete write.
func Delete(c Collection, id string) Write {
	return Write{Kind: WriteDelete, Collection: c, ID: id}
}

// Get loads one document into a T.
func Get[T any](ctx context.Context, s Store, c Collection, id string) (*T, error) {
	raw, err := s.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", c, id, err)
	}
	return &out, nil
}

// GetMany loads the documents for ids in input order.  Duplicates,
// empty ids and ids that no longer resolve are dropped.
func GetMany[T any](ctx context.Context, s Store, c Collection, ids []string) ([]T, error) {
	ids = Unique(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.GetMany(ctx, c, ids)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(found))
	for _, id := range ids {
		raw, ok := found[id]
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c, id, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Find runs q and decodes every result into a T.
func Find[T any](ctx context.Context, s Store, c Collection, q Query) ([]T, error) {
	raws, err := s.Query(ctx, c, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Unique returns ids without empties and duplicates, keeping the first
// occurrence order.
func Unique(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// scalarString renders a decoded JSON scalar the way MySQL's
// JSON_UNQUOTE renders it, so both stores agree on equality.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// matches evaluates f against a decoded document.
func (f Filter) matches(doc map[string]any) bool {
	v := doc[f.Field]
	switch f.Op {
	case OpContains:
		arr, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range arr {
			if s, ok := scalarString(item); ok && item != nil && s == f.Value {
				return true
			}
		}
		return false
	default:
		s, ok := scalarString(v)
		return ok && s == f.Value
	}
}

// compareValues orders decoded JSON values: missing first, then
// numbers numerically, then strings lexically.
func compareValues(a, b any) int {
	rank := func(v any) int {
		switch v.(type) {
		case nil:
			return 0
		case bool:
			return 1
		case float64:
			return 2
		case string:
			return 3
		}
		return 4
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case bool:
		y := b.(bool)
		if x != y {
			if !x {
				return -1
			}
			return 1
		}
	}
	return 0
}
