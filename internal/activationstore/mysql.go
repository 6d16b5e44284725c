package activationstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// MySQLStore is a MySQL-backed Store, offering a second independently
// swappable backing store for TriggerActivation documents alongside the
// Postgres-backed entity/auth stores: all three are opaque, pluggable
// document stores from the core's perspective.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an already-opened *sql.DB using the mysql driver.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// EnsureSchema creates the trigger_activations table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS trigger_activations (
		activation_id VARCHAR(64) PRIMARY KEY,
		namespace     VARCHAR(255) NOT NULL,
		entity_name   VARCHAR(255) NOT NULL,
		subject       VARCHAR(255) NOT NULL,
		start_time    DATETIME(3) NOT NULL,
		end_time      DATETIME(3) NOT NULL,
		version       VARCHAR(64),
		response      JSON,
		logs          JSON,
		INDEX idx_trigger_activations_start (start_time)
	)`)
	if err != nil {
		return fmt.Errorf("activationstore: ensure schema: %w", err)
	}
	return nil
}

func (s *MySQLStore) Put(ctx context.Context, doc metamodel.TriggerActivation) error {
	response, err := json.Marshal(doc.Response)
	if err != nil {
		return fmt.Errorf("activationstore: marshal response: %w", err)
	}
	logs, err := json.Marshal(doc.Logs)
	if err != nil {
		return fmt.Errorf("activationstore: marshal logs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO trigger_activations
		(activation_id, namespace, entity_name, subject, start_time, end_time, version, response, logs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ActivationID, doc.Namespace, doc.EntityName, doc.Subject,
		doc.Start.UTC(), doc.End.UTC(), doc.Version, response, logs,
	)
	if err != nil {
		return fmt.Errorf("activationstore: put: %w", err)
	}
	return nil
}

func (s *MySQLStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trigger_activations WHERE start_time < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("activationstore: delete older than: %w", err)
	}
	return res.RowsAffected()
}

var (
	_ Store            = (*MySQLStore)(nil)
	_ CompactableStore = (*MySQLStore)(nil)
)
