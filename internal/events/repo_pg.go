package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PGRepo implements EventsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Append inserts one event row.
func (r *PGRepo) Append(ctx context.Context, ev Event) error {
	const query = `
INSERT INTO events (id, event_type, description, document_id, user_id, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var metadata any
	if len(ev.Metadata) > 0 {
		raw, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
		metadata = raw
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		ev.ID,
		ev.EventType,
		ev.Description,
		nullString(ev.DocumentID),
		nullString(ev.UserID),
		metadata,
		ev.CreatedAt,
	)
	return err
}

// List returns events matching the filter, newest first.
func (r *PGRepo) List(ctx context.Context, f Filter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > exportRowCap {
		limit = exportRowCap
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := buildWhere(f)
	query := `
SELECT id, event_type, description, document_id, user_id, metadata, created_at
FROM events` + where + fmt.Sprintf(`
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var documentID sql.NullString
		var userID sql.NullString
		var metadata []byte
		if err := rows.Scan(
			&ev.ID,
			&ev.EventType,
			&ev.Description,
			&documentID,
			&userID,
			&metadata,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		if documentID.Valid {
			ev.DocumentID = &documentID.String
		}
		if userID.Valid {
			ev.UserID = &userID.String
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Count returns how many events match the filter.
func (r *PGRepo) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)
	query := `SELECT COUNT(*) FROM events` + where

	var n int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func buildWhere(f Filter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.EventType != "" {
		add("event_type = $%d", f.EventType)
	}
	if f.Description != "" {
		add("description LIKE $%d", "%"+f.Description+"%")
	}
	if f.Start != nil {
		add("created_at >= $%d", *f.Start)
	}
	if f.End != nil {
		add("created_at <= $%d", *f.End)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

var _ EventsRepo = (*PGRepo)(nil)
