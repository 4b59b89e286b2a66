package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"hisapi/internal/repository"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type rowScanner interface {
	Scan(dest ...any) error
}

// table maps one record type onto one Postgres table with parameterized squirrel queries.
// It implements repository.CRUD[T]; table-specific repositories embed it.
type table[T any] struct {
	db   *sql.DB
	name string
	// columns are the mutable columns in insert order, id excluded.
	columns []string
	// filters maps accepted filter keys to column names.
	filters map[string]string
	orderBy string
	// scan reads id followed by columns.
	scan   func(rowScanner, *T) error
	values func(*T) []any
	id     func(*T) int64
}

func (t *table[T]) selectColumns() []string {
	return append([]string{"id"}, t.columns...)
}

func (t *table[T]) returning() string {
	return "RETURNING " + strings.Join(t.selectColumns(), ", ")
}

// Create inserts a new row and returns the stored record.
func (t *table[T]) Create(ctx context.Context, item *T) (*T, error) {
	q, args, err := psql.Insert(t.name).
		Columns(t.columns...).
		Values(t.values(item)...).
		Suffix(t.returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert %s: %w", t.name, err)
	}

	var out T
	if err := t.scan(t.db.QueryRowContext(ctx, q, args...), &out); err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.name, err)
	}
	return &out, nil
}

// FindByID fetches a single row by its ID.
func (t *table[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	q, args, err := psql.Select(t.selectColumns()...).
		From(t.name).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", t.name, err)
	}

	var out T
	if err := t.scan(t.db.QueryRowContext(ctx, q, args...), &out); err != nil {
		return nil, fmt.Errorf("find %s %d: %w", t.name, id, err)
	}
	return &out, nil
}

// List returns rows using LIMIT/OFFSET pagination and a total count of the filtered set.
func (t *table[T]) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	where, err := t.where(pq.Filters)
	if err != nil {
		return nil, err
	}

	countQ := psql.Select("COUNT(*)").From(t.name)
	if where != nil {
		countQ = countQ.Where(where)
	}
	q, args, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count %s: %w", t.name, err)
	}
	var total int
	if err := t.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", t.name, err)
	}

	listQ := psql.Select(t.selectColumns()...).From(t.name)
	if where != nil {
		listQ = listQ.Where(where)
	}
	q, args, err = listQ.
		OrderBy(t.orderBy).
		Limit(uint64(pq.Limit)).
		Offset(uint64(pq.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", t.name, err)
	}

	items, err := t.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[T]{Items: items, Total: total}, nil
}

// Update overwrites all mutable columns and returns the stored record.
func (t *table[T]) Update(ctx context.Context, item *T) (*T, error) {
	b := psql.Update(t.name)
	values := t.values(item)
	for i, col := range t.columns {
		b = b.Set(col, values[i])
	}
	id := t.id(item)
	q, args, err := b.Where(sq.Eq{"id": id}).Suffix(t.returning()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update %s: %w", t.name, err)
	}

	var out T
	if err := t.scan(t.db.QueryRowContext(ctx, q, args...), &out); err != nil {
		return nil, fmt.Errorf("update %s %d: %w", t.name, id, err)
	}
	return &out, nil
}

// Delete removes a row by ID.
func (t *table[T]) Delete(ctx context.Context, id int64) error {
	q, args, err := psql.Delete(t.name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", t.name, err)
	}
	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", t.name, id, err)
	}
	return expectAffected(res, t.name, id)
}

// patch sets the given columns on one row.
func (t *table[T]) patch(ctx context.Context, id int64, set map[string]any) error {
	q, args, err := psql.Update(t.name).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build patch %s: %w", t.name, err)
	}
	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("patch %s %d: %w", t.name, id, err)
	}
	return expectAffected(res, t.name, id)
}

func (t *table[T]) query(ctx context.Context, q string, args ...any) ([]T, error) {
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var item T
		if err := t.scan(rows, &item); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.name, err)
	}
	return items, nil
}

// where builds an AND of equality predicates in sorted key order, or nil for no filters.
func (t *table[T]) where(filters map[string]any) (sq.Sqlizer, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	and := make(sq.And, 0, len(keys))
	for _, k := range keys {
		col, ok := t.filters[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", repository.ErrUnknownFilter, k)
		}
		and = append(and, sq.Eq{col: filters[k]})
	}
	return and, nil
}

func expectAffected(res sql.Result, name string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s %d: %w", name, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", name, id, sql.ErrNoRows)
	}
	return nil
}
