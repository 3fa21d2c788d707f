package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dtroode/townforge-client/internal/model"
)

// Ensure KVRepository implements the model.KVStore interface.
var _ model.KVStore = (*KVRepository)(nil)

// KVRepository stores session markers in the markers table.
type KVRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewKVRepository(conn *Connection) *KVRepository {
	return &KVRepository{db: conn.DB, dialect: conn.dialect, now: time.Now}
}

func (r *KVRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	query := "SELECT name, value FROM markers WHERE name IN (" + r.placeholders(1, len(keys)) + ")"
	rows, err := r.db.QueryContext(ctx, query, toArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query markers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read markers: %w", err)
	}
	return out, nil
}

func (r *KVRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
        INSERT INTO markers (name, value, updated_at)
        VALUES (%s, %s, %s)
        ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
    `, r.dialect.placeholder(1), r.dialect.placeholder(2), r.dialect.placeholder(3))

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin marker transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updatedAt := r.now().UTC().UnixMilli()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, query, k, values[k], updatedAt); err != nil {
			return fmt.Errorf("failed to upsert marker %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit markers: %w", err)
	}
	return nil
}

func (r *KVRepository) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := "DELETE FROM markers WHERE name IN (" + r.placeholders(1, len(keys)) + ")"
	if _, err := r.db.ExecContext(ctx, query, toArgs(keys)...); err != nil {
		return fmt.Errorf("failed to delete markers: %w", err)
	}
	return nil
}

func (r *KVRepository) placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = r.dialect.placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

func toArgs(keys []string) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}
