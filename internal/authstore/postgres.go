package authstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Postgres-backed Store, keyed by subject.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Lookup(ctx context.Context, subject string) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx,
		`SELECT subject, namespace, uuid, key, key_hash FROM auth_subjects WHERE subject = $1`, subject,
	).Scan(&rec.Subject, &rec.Namespace, &rec.UUID, &rec.Key, &rec.KeyHash)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Record{}, ErrNoSubject
		}
		return Record{}, err
	}
	return rec, nil
}

// EnsureSchema creates the auth_subjects table if it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS auth_subjects (
		subject    TEXT PRIMARY KEY,
		namespace  TEXT NOT NULL,
		uuid       TEXT NOT NULL,
		key        TEXT NOT NULL,
		key_hash   TEXT NOT NULL
	)`)
	return err
}

var _ Store = (*PostgresStore)(nil)
