package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeapi/internal/model"
	"financeapi/internal/repository"
)

var metaColumns = []string{"id", "user_id", "created_at", "updated_at"}

// table describes how one collection maps onto its SQL table.
type table[T any] struct {
	name    string
	columns []string          // domain columns, after the meta columns
	indexes map[string]string // index name -> column
	orderBy string
	meta    func(*T) *model.Meta
	values  func(*T) []any // in columns order
	fields  func(*T) []any // scan targets in columns order
}

func (t table[T]) selectList() string {
	return strings.Join(append(append([]string{}, metaColumns...), t.columns...), ", ")
}

// Store is a PostgreSQL implementation of repository.RecordStore driven by a table descriptor.
// It uses database/sql with parameterized queries and joins the transaction carried by ctx.
type Store[T any] struct {
	db  *sql.DB
	t   table[T]
	now func() time.Time
}

func newStore[T any](db *sql.DB, t table[T]) *Store[T] {
	return &Store[T]{db: db, t: t, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store[T]) conn(ctx context.Context) (querier, error) {
	if s.db == nil {
		return nil, repository.ErrStoreUnavailable
	}
	return conn(ctx, s.db), nil
}

// Upsert inserts rec or replaces the row with the same id and owner.
// created_at is only written on insert, so a replace keeps the original value.
func (s *Store[T]) Upsert(ctx context.Context, userID string, rec *T) (*T, error) {
	q, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	m := s.t.meta(rec)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := s.now()
	args := append([]any{m.ID, userID, now, now}, s.t.values(rec)...)

	cols := append(append([]string{}, metaColumns...), s.t.columns...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sets := make([]string, 0, len(s.t.columns)+1)
	for _, c := range s.t.columns {
		sets = append(sets, c+" = EXCLUDED."+c)
	}
	sets = append(sets, "updated_at = EXCLUDED.updated_at")

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		VALUES (%[3]s)
		ON CONFLICT (id) DO UPDATE SET %[4]s
		WHERE %[1]s.user_id = EXCLUDED.user_id
		RETURNING %[2]s
	`, s.t.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "))

	return s.scanOne(q.QueryRowContext(ctx, query, args...))
}

// GetAll returns every record of the user in the collection order.
func (s *Store[T]) GetAll(ctx context.Context, userID string) ([]T, error) {
	q, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY %s`, s.t.selectList(), s.t.name, s.t.orderBy)
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return s.scanAll(rows)
}

// List returns one page plus the total count, optionally filtered by an index.
func (s *Store[T]) List(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[T], error) {
	q, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	where := "user_id = $1"
	args := []any{userID}
	if pq.Index != "" {
		col, err := s.indexColumn(pq.Index)
		if err != nil {
			return nil, err
		}
		where += " AND " + col + " = $2"
		args = append(args, pq.Value)
	}

	// Count total rows
	var total int
	qCount := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, s.t.name, where)
	if err := q.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	qList := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, s.t.selectList(), s.t.name, where, s.t.orderBy, len(args)+1, len(args)+2)
	rows, err := q.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	items, err := s.scanAll(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[T]{Items: items, Total: total}, nil
}

// GetByID fetches a single record. It returns sql.ErrNoRows when missing.
func (s *Store[T]) GetByID(ctx context.Context, userID, id string) (*T, error) {
	return s.getByID(ctx, userID, id, "")
}

func (s *Store[T]) getByID(ctx context.Context, userID, id, suffix string) (*T, error) {
	q, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND id = $2%s`, s.t.selectList(), s.t.name, suffix)
	return s.scanOne(q.QueryRowContext(ctx, query, userID, id))
}

// FindByIndex returns records whose index column equals value.
func (s *Store[T]) FindByIndex(ctx context.Context, userID, index, value string) ([]T, error) {
	q, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	col, err := s.indexColumn(index)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND %s = $2 ORDER BY %s`,
		s.t.selectList(), s.t.name, col, s.t.orderBy)
	rows, err := q.QueryContext(ctx, query, userID, value)
	if err != nil {
		return nil, err
	}
	return s.scanAll(rows)
}

// Delete removes a record by id. It does not return an error if the row does not exist.
func (s *Store[T]) Delete(ctx context.Context, userID, id string) error {
	q, err := s.conn(ctx)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND id = $2`, s.t.name), userID, id)
	return err
}

// Clear removes all of the user's records in the collection.
func (s *Store[T]) Clear(ctx context.Context, userID string) error {
	q, err := s.conn(ctx)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, s.t.name), userID)
	return err
}

func (s *Store[T]) indexColumn(index string) (string, error) {
	col, ok := s.t.indexes[index]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", repository.ErrUnknownIndex, s.t.name, index)
	}
	return col, nil
}

func (s *Store[T]) dest(rec *T) []any {
	m := s.t.meta(rec)
	return append([]any{&m.ID, &m.UserID, &m.CreatedAt, &m.UpdatedAt}, s.t.fields(rec)...)
}

func (s *Store[T]) scanOne(row *sql.Row) (*T, error) {
	var out T
	if err := row.Scan(s.dest(&out)...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store[T]) scanAll(rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := rows.Scan(s.dest(&rec)...); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
