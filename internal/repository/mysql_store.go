package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Compile-time check that DocumentRepo satisfies Store.
var _ Store = (*DocumentRepo)(nil)

// getManyChunk bounds the number of placeholders in one IN clause.
const getManyChunk = 500

// DocumentRepo is the MySQL-backed Store.  Every document is a row of
// the documents table keyed by (collection, id) with a JSON body; the
// filters of a Query are translated to JSON_EXTRACT / JSON_CONTAINS
// predicates on that body.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo constructs a DocumentRepo with the given DB handle.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// DB exposes the underlying sql.DB.
func (r *DocumentRepo) DB() *sql.DB {
	return r.db
}

// Get retrieves one document.  It returns ErrNotFound when no row matches.
func (r *DocumentRepo) Get(ctx context.Context, c Collection, id string) (json.RawMessage, error) {
	const q = `SELECT body FROM documents WHERE collection = ? AND id = ?`
	var body []byte
	err := r.db.QueryRowContext(ctx, q, string(c), id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
		}
		return nil, err
	}
	return json.RawMessage(body), nil
}

// GetMany retrieves the documents for ids in chunks.  Ids without a row
// are left out of the result.
func (r *DocumentRepo) GetMany(ctx context.Context, c Collection, ids []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(ids))
	for start := 0; start < len(ids); start += getManyChunk {
		end := start + getManyChunk
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		q := `SELECT id, body FROM documents WHERE collection = ? AND id IN (?` + strings.Repeat(",?", len(chunk)-1) + `)`
		args := make([]any, 0, len(chunk)+1)
		args = append(args, string(c))
		for _, id := range chunk {
			args = append(args, id)
		}
		rows, err := r.db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			var body []byte
			if err := rows.Scan(&id, &body); err != nil {
				rows.Close()
				return nil, err
			}
			out[id] = json.RawMessage(body)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// Query runs a filtered, ordered select over one collection.
func (r *DocumentRepo) Query(ctx context.Context, c Collection, q Query) ([]json.RawMessage, error) {
	stmt, args, err := buildSelect(c, q)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildSelect renders q as SQL.  Field names are validated before they
// are turned into JSON paths; values are always bound.
func buildSelect(c Collection, q Query) (string, []any, error) {
	if err := q.validate(); err != nil {
		return "", nil, err
	}
	where := []string{"collection = ?"}
	args := []any{string(c)}
	for _, f := range q.Filters {
		path := "$." + f.Field
		switch f.Op {
		case OpContains:
			where = append(where, "JSON_CONTAINS(COALESCE(JSON_EXTRACT(body, ?), JSON_ARRAY()), JSON_QUOTE(?))")
		default:
			where = append(where, "COALESCE(JSON_UNQUOTE(JSON_EXTRACT(body, ?)), '') = ?")
		}
		args = append(args, path, f.Value)
	}

	var b strings.Builder
	b.WriteString("SELECT body FROM documents WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	if q.OrderBy != "" {
		b.WriteString(" ORDER BY JSON_EXTRACT(body, ?) " + dir + ", id ASC")
		args = append(args, "$."+q.OrderBy)
	} else {
		b.WriteString(" ORDER BY id ASC")
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args, nil
}

// Commit applies the writes inside one transaction.  Updates read the
// current body with a row lock, merge the fields and write it back.
func (r *DocumentRepo) Commit(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range writes {
		if w.ID == "" {
			return fmt.Errorf("write to %s without id: %w", w.Collection, ErrConflict)
		}
		switch w.Kind {
		case WriteSet:
			body, err := json.Marshal(w.Doc)
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", w.Collection, w.ID, err)
			}
			const q = `INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
			           ON DUPLICATE KEY UPDATE body = VALUES(body)`
			if _, err := tx.ExecContext(ctx, q, string(w.Collection), w.ID, body); err != nil {
				return err
			}
		case WriteUpdate:
			const sel = `SELECT body FROM documents WHERE collection = ? AND id = ? FOR UPDATE`
			var cur []byte
			if err := tx.QueryRowContext(ctx, sel, string(w.Collection), w.ID).Scan(&cur); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, ErrNotFound)
				}
				return err
			}
			body, err := mergeFields(cur, w.Fields)
			if err != nil {
				return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, err)
			}
			const upd = `UPDATE documents SET body = ? WHERE collection = ? AND id = ?`
			if _, err := tx.ExecContext(ctx, upd, body, string(w.Collection), w.ID); err != nil {
				return err
			}
		case WriteDelete:
			const del = `DELETE FROM documents WHERE collection = ? AND id = ?`
			if _, err := tx.ExecContext(ctx, del, string(w.Collection), w.ID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown write kind %d", w.Kind)
		}
	}
	return tx.Commit()
}
