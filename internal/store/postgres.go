package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"catalog-service/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type uniqueConstraint struct {
	entity string
	field  string
}

type foreignKey struct {
	parent   string // entity referenced by the key
	column   string // referencing column on the child
	children string // plural noun for the child rows
}

// Constraint names come from migrations/0001_init.sql.
var uniqueConstraints = map[string]uniqueConstraint{
	"categories_code_key":       {entity: "category", field: "code"},
	"categories_name_lower_key": {entity: "category", field: "name"},
	"brands_code_key":           {entity: "brand", field: "code"},
	"brands_name_lower_key":     {entity: "brand", field: "name"},
	"products_name_lower_key":   {entity: "product", field: "name"},
	"products_slug_key":         {entity: "product", field: "slug"},
	"product_variants_sku_key":  {entity: "variant", field: "sku"},
	"users_email_key":           {entity: "user", field: "email"},
}

var foreignKeys = map[string]foreignKey{
	"products_category_id_fkey":        {parent: "category", column: "category_id", children: "products"},
	"products_brand_id_fkey":           {parent: "brand", column: "brand_id", children: "products"},
	"product_variants_product_id_fkey": {parent: "product", column: "product_id", children: "variants"},
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// PostgresStore implements Repository on PostgreSQL.
type PostgresStore struct {
	db *sql.DB // nil when bound to a transaction
	q  DBTX
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and rolls
// back on error or panic. Called on a transaction-bound store it reuses the
// current transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(Repository) error) (err error) {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction failed: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&PostgresStore{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("store: rollback failed (%v) after: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// translateWriteError maps constraint violations raised by an insert or update
// to domain errors. values holds the written value per field or column name and
// is used in error details. It returns nil when err is not a known violation.
func translateWriteError(err error, values map[string]string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pgUniqueViolation:
		if c, ok := uniqueConstraints[pqErr.Constraint]; ok {
			return &domain.AlreadyExistsError{Entity: c.entity, Field: c.field, Value: values[c.field]}
		}
	case pgForeignKeyViolation:
		if fk, ok := foreignKeys[pqErr.Constraint]; ok {
			return &domain.NotFoundError{Entity: fk.parent, ID: values[fk.column]}
		}
	}
	return nil
}

// translateDeleteError maps a foreign key violation raised while deleting a
// parent row to *domain.NotEmptyError.
func translateDeleteError(err error, entity, id string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgForeignKeyViolation {
		return nil
	}
	children := "dependent records"
	if fk, ok := foreignKeys[pqErr.Constraint]; ok {
		children = fk.children
	}
	return &domain.NotEmptyError{Entity: entity, ID: id, Children: children}
}

// setBuilder accumulates "column = $n" assignments for partial updates.
type setBuilder struct {
	sets []string
	args []interface{}
}

func (b *setBuilder) add(column string, value interface{}) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// clause returns the SET list; updated_at is always refreshed.
func (b *setBuilder) clause() string {
	return strings.Join(append(b.sets, "updated_at = now()"), ", ")
}

// whereBuilder accumulates AND-ed predicates with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// add appends a predicate; every "?" in expr is bound to value.
func (w *whereBuilder) add(expr string, value interface{}) {
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, strings.ReplaceAll(expr, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause with its args.
func (w *whereBuilder) page(limit, offset int) (string, []interface{}) {
	n := len(w.args)
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
