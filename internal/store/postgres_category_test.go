package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/domain"
)

// newMockDBAndStore creates a sqlmock-backed PostgresStore.
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db)
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

func PtrTo[T any](v T) *T {
	return &v
}

var nameCodeRowColumns = []string{"id", "name", "code", "is_active", "created_at", "updated_at"}

func TestPostgresStore_CreateCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	toCreate := &domain.Category{
		ID:    uuid.Must(uuid.NewV7()),
		Name:  "Graphics Cards",
		Code:  "GPU",
		Audit: domain.Audit{IsActive: true},
	}

	query := regexp.QuoteMeta(`INSERT INTO catalog.categories (id, name, code, is_active) VALUES ($1, $2, $3, $4) RETURNING id, name, code, is_active, created_at, updated_at;`)
	rows := sqlmock.NewRows(nameCodeRowColumns).
		AddRow(toCreate.ID.String(), toCreate.Name, toCreate.Code, true, now, now)
	mock.ExpectQuery(query).
		WithArgs(toCreate.ID, toCreate.Name, toCreate.Code, true).
		WillReturnRows(rows)

	created, err := store.CreateCategory(context.Background(), toCreate)

	require.NoError(t, err, "CreateCategory should not return an error")
	require.NotNil(t, created)
	assert.Equal(t, toCreate.ID, created.ID)
	assert.Equal(t, "GPU", created.Code)
	assert.True(t, created.IsActive)
	assert.WithinDuration(t, now, created.CreatedAt, time.Second)

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestPostgresStore_CreateCategory_CodeExists(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	toCreate := &domain.Category{ID: uuid.New(), Name: "Graphics", Code: "GPU", Audit: domain.Audit{IsActive: true}}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.categories`)).
		WithArgs(toCreate.ID, toCreate.Name, toCreate.Code, true).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "categories_code_key"})

	created, err := store.CreateCategory(context.Background(), toCreate)

	require.Error(t, err)
	assert.Nil(t, created)
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists), "Error should be ErrAlreadyExists")

	var exists *domain.AlreadyExistsError
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, "category", exists.Entity)
	assert.Equal(t, "code", exists.Field)
	assert.Equal(t, "GPU", exists.Value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateCategory_NameExistsCaseInsensitive(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	toCreate := &domain.Category{ID: uuid.New(), Name: "graphics cards", Code: "GC", Audit: domain.Audit{IsActive: true}}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.categories`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "categories_name_lower_key"})

	_, err := store.CreateCategory(context.Background(), toCreate)

	var exists *domain.AlreadyExistsError
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, "name", exists.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateCategory_UnknownErrorIsWrapped(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.categories`)).WillReturnError(boom)

	_, err := store.CreateCategory(context.Background(), &domain.Category{ID: uuid.New(), Name: "Cables", Code: "CBL"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, domain.ErrAlreadyExists))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCategoryByID_Found(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	now := time.Now().Truncate(time.Millisecond)
	query := regexp.QuoteMeta(`SELECT id, name, code, is_active, created_at, updated_at FROM catalog.categories WHERE id = $1;`)
	mock.ExpectQuery(query).WithArgs(id).
		WillReturnRows(sqlmock.NewRows(nameCodeRowColumns).AddRow(id.String(), "Graphics Cards", "GPU", true, now, now))

	category, err := store.GetCategoryByID(context.Background(), id, true)

	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, id, category.ID)
	assert.Equal(t, "Graphics Cards", category.Name)
	assert.Equal(t, now.Unix(), category.UpdatedAt.Unix())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCategoryByID_InactiveHidden(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	now := time.Now()
	for _, onlyActive := range []bool{true, false} {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM catalog.categories WHERE id = $1`)).WithArgs(id).
			WillReturnRows(sqlmock.NewRows(nameCodeRowColumns).AddRow(id.String(), "Legacy", "OLD", false, now, now))

		category, err := store.GetCategoryByID(context.Background(), id, onlyActive)
		if onlyActive {
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			assert.Nil(t, category)
		} else {
			require.NoError(t, err)
			assert.False(t, category.IsActive)
		}
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCategoryByID_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM catalog.categories WHERE id = $1`)).WithArgs(id).WillReturnError(sql.ErrNoRows)

	category, err := store.GetCategoryByID(context.Background(), id, false)

	require.Error(t, err, "Expected an error for not found category")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "Error should be ErrNotFound")
	assert.Nil(t, category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCategories(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	params := ListCategoriesParams{Limit: 2, Offset: 0, IsActive: PtrTo(true)}

	countQuery := regexp.QuoteMeta(`SELECT COUNT(*) FROM catalog.categories WHERE is_active = $1`)
	listQuery := regexp.QuoteMeta(`SELECT id, name, code, is_active, created_at, updated_at FROM catalog.categories WHERE is_active = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)

	mock.ExpectQuery(countQuery).WithArgs(true).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(listQuery).WithArgs(true, 2, 0).WillReturnRows(
		sqlmock.NewRows(nameCodeRowColumns).
			AddRow(uuid.NewString(), "Monitors", "MON", true, now, now).
			AddRow(uuid.NewString(), "Graphics Cards", "GPU", true, now, now),
	)

	categories, total, err := store.ListCategories(context.Background(), params)

	require.NoError(t, err)
	require.Len(t, categories, 2, "Expected 2 categories to be returned")
	assert.Equal(t, 5, total)
	assert.Equal(t, "Monitors", categories[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCategories_Empty(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM catalog.categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	categories, total, err := store.ListCategories(context.Background(), ListCategoriesParams{Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, categories)
	assert.NotNil(t, categories)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateCategory_PartialPatch(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	created := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	updated := time.Now().Truncate(time.Millisecond)
	patch := &domain.CategoryPatch{NameCodePatch: domain.NameCodePatch{Name: PtrTo("Video Cards")}}

	query := regexp.QuoteMeta(`UPDATE catalog.categories SET name = $1, updated_at = now() WHERE id = $2 RETURNING id, name, code, is_active, created_at, updated_at;`)
	mock.ExpectQuery(query).WithArgs("Video Cards", id).
		WillReturnRows(sqlmock.NewRows(nameCodeRowColumns).AddRow(id.String(), "Video Cards", "GPU", true, created, updated))

	category, err := store.UpdateCategory(context.Background(), id, patch)

	require.NoError(t, err)
	assert.Equal(t, "Video Cards", category.Name)
	assert.Equal(t, "GPU", category.Code, "unsupplied fields keep their value")
	assert.True(t, category.UpdatedAt.After(category.CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateCategory_OnlyTouchesTimestamp(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE catalog.categories SET updated_at = now() WHERE id = $1`)).WithArgs(id).
		WillReturnRows(sqlmock.NewRows(nameCodeRowColumns).AddRow(id.String(), "Graphics", "GPU", true, now, now))

	_, err := store.UpdateCategory(context.Background(), id, &domain.CategoryPatch{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateCategory_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE catalog.categories SET is_active = $1`)).
		WithArgs(false, id).
		WillReturnError(sql.ErrNoRows)

	patch := &domain.CategoryPatch{NameCodePatch: domain.NameCodePatch{IsActive: PtrTo(false)}}
	_, err := store.UpdateCategory(context.Background(), id, patch)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "Error should be ErrNotFound")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteCategory_Success(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.categories WHERE id = $1;`)).
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.DeleteCategory(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestPostgresStore_DeleteCategory_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.categories WHERE id = $1;`)).
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteCategory(context.Background(), id)

	require.Error(t, err, "DeleteCategory should return an error if no rows were affected")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteCategory_StillHasProducts(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.categories WHERE id = $1;`)).
		WithArgs(id).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "products_category_id_fkey"})

	err := store.DeleteCategory(context.Background(), id)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotEmpty))
	var notEmpty *domain.NotEmptyError
	require.True(t, errors.As(err, &notEmpty))
	assert.Equal(t, "category", notEmpty.Entity)
	assert.Equal(t, "products", notEmpty.Children)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteBrand_StillHasProducts(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.brands WHERE id = $1;`)).
		WithArgs(id).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "products_brand_id_fkey"})

	err := store.DeleteBrand(context.Background(), id)

	var notEmpty *domain.NotEmptyError
	require.True(t, errors.As(err, &notEmpty))
	assert.Equal(t, "brand", notEmpty.Entity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateBrand(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now()
	toCreate := &domain.Brand{ID: uuid.New(), Name: "Zotac", Code: "ZOT", Audit: domain.Audit{IsActive: true}}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.brands (id, name, code, is_active)`)).
		WithArgs(toCreate.ID, "Zotac", "ZOT", true).
		WillReturnRows(sqlmock.NewRows(nameCodeRowColumns).AddRow(toCreate.ID.String(), "Zotac", "ZOT", true, now, now))

	brand, err := store.CreateBrand(context.Background(), toCreate)

	require.NoError(t, err)
	assert.Equal(t, "ZOT", brand.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
