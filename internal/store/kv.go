package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const kvTable = "kv_store"

// KVRepo stores opaque payloads under string keys. It is the local
// key/value surface the progress tracker persists through.
type KVRepo interface {
	// Get returns the payload stored under key, or nil if there is none.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores payload under key, replacing any previous value.
	Put(ctx context.Context, key string, payload []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type kvRepo struct {
	drv *entsql.Driver
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *kvRepo) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := builder().
		Select("payload").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("storage_key", key)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query %s: %w", key, err)
		}
		return nil, nil
	}
	var payload []byte
	if err := rows.Scan(&payload); err != nil {
		return nil, fmt.Errorf("scan %s: %w", key, err)
	}
	return payload, nil
}

func (r *kvRepo) Put(ctx context.Context, key string, payload []byte) error {
	query, args := builder().
		Insert(kvTable).
		Columns("storage_key", "payload", "updated_at").
		Values(key, payload, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("storage_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (r *kvRepo) Delete(ctx context.Context, key string) error {
	query, args := builder().
		Delete(kvTable).
		Where(entsql.EQ("storage_key", key)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
