package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	tlsignal "github.com/newhook/tasklog/internal/signal"
	"github.com/newhook/tasklog/internal/taskparam"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no archived parameter has the requested id.
var ErrNotFound = errors.New("parameter not found")

// Origin records where a parameter was read from.
type Origin struct {
	Prefix string
	Source string // file name, or "-" for stdin
	Line   int
}

// Record is the summary row of an archived parameter.
type Record struct {
	ID                 string
	Kind               taskparam.Kind
	Name               string
	Prefix             string
	ItemAttributeName  string
	CollapseSingleItem bool
	Source             string
	Line               int
	ItemCount          int
	CreatedAt          time.Time
}

// ListFilter narrows ListParameters. Zero values match everything.
type ListFilter struct {
	Kind  taskparam.Kind
	Name  string
	Limit int
}

// SaveParameter stores p with its items and metadata and returns the new id.
func (db *DB) SaveParameter(ctx context.Context, p *taskparam.Parameter, origin Origin) (string, error) {
	id := uuid.New().String()
	d := p.Descriptor()

	tlsignal.Block()
	defer tlsignal.Unblock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO parameters (
			id, kind, name, prefix, item_attribute, collapse_single_item, source, line, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, d.Kind.String(), p.Name, origin.Prefix, d.ItemAttributeName, boolToInt(d.CollapseSingleItem),
		origin.Source, origin.Line, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("failed to insert parameter: %w", err)
	}

	for i, item := range p.Items() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (parameter_id, position, text) VALUES (?, ?, ?)`,
			id, i, item.Text); err != nil {
			return "", fmt.Errorf("failed to insert item %d: %w", i, err)
		}
		for j, m := range item.Metadata() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO item_metadata (parameter_id, item_position, position, key, value) VALUES (?, ?, ?, ?, ?)`,
				id, i, j, m.Key, m.Value); err != nil {
				return "", fmt.Errorf("failed to insert metadata %q of item %d: %w", m.Key, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit parameter: %w", err)
	}
	return id, nil
}

// ListParameters returns archived parameters, newest first.
func (db *DB) ListParameters(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `
		SELECT p.id, p.kind, p.name, p.prefix, p.item_attribute, p.collapse_single_item,
			p.source, p.line, p.created_at,
			(SELECT COUNT(*) FROM items i WHERE i.parameter_id = p.id)
		FROM parameters p`

	var where []string
	var args []any
	if filter.Kind != taskparam.KindUnknown {
		where = append(where, "p.kind = ?")
		args = append(args, filter.Kind.String())
	}
	if filter.Name != "" {
		where = append(where, "p.name = ?")
		args = append(args, filter.Name)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetRecord returns the summary of one archived parameter.
func (db *DB) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := db.QueryRowContext(ctx, `
		SELECT p.id, p.kind, p.name, p.prefix, p.item_attribute, p.collapse_single_item,
			p.source, p.line, p.created_at,
			(SELECT COUNT(*) FROM items i WHERE i.parameter_id = p.id)
		FROM parameters p WHERE p.id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// LoadParameter rebuilds an archived parameter with its items in original order.
func (db *DB) LoadParameter(ctx context.Context, id string) (*taskparam.Parameter, error) {
	rec, err := db.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	p := taskparam.New(taskparam.Descriptor{
		Kind:               rec.Kind,
		ItemAttributeName:  rec.ItemAttributeName,
		CollapseSingleItem: rec.CollapseSingleItem,
	})
	p.Name = rec.Name

	rows, err := db.QueryContext(ctx, `
		SELECT i.position, i.text, m.key, m.value
		FROM items i
		LEFT JOIN item_metadata m
			ON m.parameter_id = i.parameter_id AND m.item_position = i.position
		WHERE i.parameter_id = ?
		ORDER BY i.position, m.position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	var current *taskparam.Item
	lastPos := -1
	for rows.Next() {
		var pos int
		var text string
		var key, value sql.NullString
		if err := rows.Scan(&pos, &text, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if pos != lastPos {
			current = taskparam.NewItem(text)
			p.AddItem(current)
			lastPos = pos
		}
		if key.Valid {
			current.SetMetadata(key.String, value.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteParameter removes an archived parameter and everything it owns.
func (db *DB) DeleteParameter(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM parameters WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete parameter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	for _, stmt := range []string{
		"DELETE FROM item_metadata WHERE parameter_id = ?",
		"DELETE FROM items WHERE parameter_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var kind, createdAt string
	if err := row.Scan(&rec.ID, &kind, &rec.Name, &rec.Prefix, &rec.ItemAttributeName,
		&rec.CollapseSingleItem, &rec.Source, &rec.Line, &createdAt, &rec.ItemCount); err != nil {
		return nil, err
	}
	rec.Kind = taskparam.ParseKind(kind)
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
