package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
)

// Categories and brands share one table shape; nameCodeTable holds the SQL for
// either of them.
type nameCodeTable struct {
	table  string
	entity string
}

var (
	categoriesTable = nameCodeTable{table: "catalog.categories", entity: "category"}
	brandsTable     = nameCodeTable{table: "catalog.brands", entity: "brand"}
)

const nameCodeColumns = "id, name, code, is_active, created_at, updated_at"

type nameCodeRecord struct {
	ID   uuid.UUID
	Name string
	Code string
	domain.Audit
}

func scanNameCode(row rowScanner, rec *nameCodeRecord) error {
	return row.Scan(&rec.ID, &rec.Name, &rec.Code, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
}

func (t nameCodeTable) create(ctx context.Context, q DBTX, rec nameCodeRecord) (*nameCodeRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, code, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING %s;
	`, t.table, nameCodeColumns)

	var created nameCodeRecord
	err := scanNameCode(q.QueryRowContext(ctx, query, rec.ID, rec.Name, rec.Code, rec.IsActive), &created)
	if err != nil {
		if derr := translateWriteError(err, map[string]string{"name": rec.Name, "code": rec.Code}); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("store: create %s failed: %w", t.entity, err)
	}
	return &created, nil
}

func (t nameCodeTable) get(ctx context.Context, q DBTX, id uuid.UUID, onlyActive bool) (*nameCodeRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1;
	`, nameCodeColumns, t.table)

	var rec nameCodeRecord
	if err := scanNameCode(q.QueryRowContext(ctx, query, id), &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: t.entity, ID: id.String()}
		}
		return nil, fmt.Errorf("store: get %s failed: %w", t.entity, err)
	}
	if onlyActive && !rec.IsActive {
		return nil, &domain.NotFoundError{Entity: t.entity, ID: id.String()}
	}
	return &rec, nil
}

func (t nameCodeTable) list(ctx context.Context, q DBTX, params ListCategoriesParams) ([]nameCodeRecord, int, error) {
	var where whereBuilder
	if params.IsActive != nil {
		where.add("is_active = ?", *params.IsActive)
	}

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM " + t.table + where.String()
	if err := q.QueryRowContext(ctx, countQuery, where.args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: count %s failed: %w", t.entity, err)
	}
	if totalCount == 0 {
		return []nameCodeRecord{}, 0, nil
	}

	pageClause, args := where.page(params.Limit, params.Offset)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_at DESC%s", nameCodeColumns, t.table, where.String(), pageClause)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list %s failed: %w", t.entity, err)
	}
	defer rows.Close()

	out := make([]nameCodeRecord, 0, params.Limit)
	for rows.Next() {
		var rec nameCodeRecord
		if err := scanNameCode(rows, &rec); err != nil {
			return nil, 0, fmt.Errorf("store: scan %s row failed: %w", t.entity, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: list %s iteration error: %w", t.entity, err)
	}
	return out, totalCount, nil
}

func (t nameCodeTable) update(ctx context.Context, q DBTX, id uuid.UUID, patch *domain.NameCodePatch) (*nameCodeRecord, error) {
	var set setBuilder
	values := map[string]string{}
	if patch.Name != nil {
		set.add("name", *patch.Name)
		values["name"] = *patch.Name
	}
	if patch.Code != nil {
		set.add("code", *patch.Code)
		values["code"] = *patch.Code
	}
	if patch.IsActive != nil {
		set.add("is_active", *patch.IsActive)
	}
	args := append(set.args, id)
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = $%d
		RETURNING %s;
	`, t.table, set.clause(), len(args), nameCodeColumns)

	var rec nameCodeRecord
	if err := scanNameCode(q.QueryRowContext(ctx, query, args...), &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: t.entity, ID: id.String()}
		}
		if derr := translateWriteError(err, values); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("store: update %s failed: %w", t.entity, err)
	}
	return &rec, nil
}

func (t nameCodeTable) delete(ctx context.Context, q DBTX, id uuid.UUID) error {
	query := "DELETE FROM " + t.table + " WHERE id = $1;"
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		if derr := translateDeleteError(err, t.entity, id.String()); derr != nil {
			return derr
		}
		return fmt.Errorf("store: delete %s failed: %w", t.entity, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s failed to get rows affected: %w", t.entity, err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: t.entity, ID: id.String()}
	}
	return nil
}
