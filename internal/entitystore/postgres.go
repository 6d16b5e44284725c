package entitystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actionmesh/metacontrol/internal/metamodel"
)

// PostgresStore is a Postgres-backed Store. Packages, actions and triggers
// are stored as JSONB documents keyed by their fully-qualified name: the
// entity store is an opaque document store, not a relational schema this
// core should own.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool. Schema management
// (CREATE TABLE/migrations) is deliberately left to deployment tooling,
// consistent with the entity store being an out-of-scope collaborator.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type packageRow struct {
	Namespace   string              `json:"namespace"`
	Name        string              `json:"name"`
	Parameters  metamodel.Parameters `json:"parameters"`
	Annotations metamodel.Annotations `json:"annotations"`
	Publish     bool                `json:"publish"`
}

func (s *PostgresStore) GetPackage(ctx context.Context, namespace, name string) (metamodel.Package, error) {
	var doc []byte
	path := (metamodel.EntityPath{Namespace: namespace, Name: name}).String()
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM meta_packages WHERE fqn = $1`, path,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return metamodel.Package{}, ErrNoDocument
		}
		return metamodel.Package{}, &BackendError{Op: "GetPackage", Err: err}
	}

	var row packageRow
	if err := json.Unmarshal(doc, &row); err != nil {
		return metamodel.Package{}, &BackendError{Op: "GetPackage decode", Err: err}
	}
	return metamodel.Package{
		Namespace:   row.Namespace,
		Name:        row.Name,
		Parameters:  row.Parameters,
		Annotations: row.Annotations,
		Publish:     row.Publish,
	}, nil
}

type actionRow struct {
	Namespace  string              `json:"namespace"`
	Package    string              `json:"package"`
	Name       string              `json:"name"`
	Parameters metamodel.Parameters `json:"parameters"`
}

func (s *PostgresStore) GetAction(ctx context.Context, namespace, pkg, name string) (metamodel.Action, error) {
	var doc []byte
	path := (metamodel.EntityPath{Namespace: namespace, Package: pkg, Name: name}).String()
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM meta_actions WHERE fqn = $1`, path,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return metamodel.Action{}, ErrNoDocument
		}
		return metamodel.Action{}, &BackendError{Op: "GetAction", Err: err}
	}

	var row actionRow
	if err := json.Unmarshal(doc, &row); err != nil {
		return metamodel.Action{}, &BackendError{Op: "GetAction decode", Err: err}
	}
	return metamodel.Action{
		Namespace:  row.Namespace,
		Package:    row.Package,
		Name:       row.Name,
		Parameters: row.Parameters,
	}, nil
}

type ruleRow struct {
	Action string `json:"action"`
	Status string `json:"status"`
}

type triggerRow struct {
	Namespace   string              `json:"namespace"`
	Name        string              `json:"name"`
	Parameters  metamodel.Parameters `json:"parameters"`
	Annotations metamodel.Annotations `json:"annotations"`
	RuleOrder   []string            `json:"rule_order"`
	Rules       map[string]ruleRow  `json:"rules"`
}

func (s *PostgresStore) GetTrigger(ctx context.Context, namespace, name string) (metamodel.Trigger, error) {
	var doc []byte
	path := (metamodel.EntityPath{Namespace: namespace, Name: name}).String()
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM meta_triggers WHERE fqn = $1`, path,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return metamodel.Trigger{}, ErrNoDocument
		}
		return metamodel.Trigger{}, &BackendError{Op: "GetTrigger", Err: err}
	}

	var row triggerRow
	if err := json.Unmarshal(doc, &row); err != nil {
		return metamodel.Trigger{}, &BackendError{Op: "GetTrigger decode", Err: err}
	}

	rules := make(map[string]metamodel.Rule, len(row.Rules))
	for name, r := range row.Rules {
		action, perr := metamodel.ParseEntityPath(r.Action)
		if perr != nil {
			return metamodel.Trigger{}, &BackendError{Op: "GetTrigger decode rule action", Err: perr}
		}
		rules[name] = metamodel.Rule{Action: action, Status: metamodel.RuleStatus(r.Status)}
	}

	return metamodel.Trigger{
		Namespace:   row.Namespace,
		Name:        row.Name,
		Parameters:  row.Parameters,
		Annotations: row.Annotations,
		Rules:       rules,
		RuleOrder:   row.RuleOrder,
	}, nil
}

// EnsureSchema creates the JSONB document tables if they do not exist yet.
// Deployment tooling owns real migrations; this exists so the reference
// implementation is runnable against a bare Postgres instance.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta_packages (fqn TEXT PRIMARY KEY, doc JSONB NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS meta_actions (fqn TEXT PRIMARY KEY, doc JSONB NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS meta_triggers (fqn TEXT PRIMARY KEY, doc JSONB NOT NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("entitystore: ensure schema: %w", err)
		}
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
