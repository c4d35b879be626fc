package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListQuery selects a page of records, optionally filtered by one secondary index.
type ListQuery struct {
	Limit  int
	Offset int
	Index  string
	Value  string
}

// ListResult is the service-level DTO for paginated records.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

// CRUDService is the contract shared by every record collection.
// Save creates a record when id is empty and otherwise upserts the record with that id.
type CRUDService[T any, In any] interface {
	List(ctx context.Context, userID string, q ListQuery) (*ListResult[T], error)
	Get(ctx context.Context, userID, id string) (*T, error)
	Save(ctx context.Context, userID, id string, in In) (*T, error)
	Delete(ctx context.Context, userID, id string) error
}

// buildFunc validates in and maps it onto a record. existing is nil on create.
type buildFunc[T any, In any] func(ctx context.Context, userID string, existing *T, in In) (*T, error)

type crudService[T any, In any] struct {
	repo  repository.RecordStore[T]
	build buildFunc[T, In]
	meta  func(*T) *model.Meta
}

func (s *crudService[T, In]) List(ctx context.Context, userID string, q ListQuery) (*ListResult[T], error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	res, err := s.repo.List(ctx, userID, repository.PageQuery{
		Limit:  q.Limit,
		Offset: q.Offset,
		Index:  q.Index,
		Value:  q.Value,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUnknownIndex) {
			return nil, validation.Errors{"filter": "unknown filter " + q.Index}
		}
		return nil, err
	}
	return &ListResult[T]{Items: res.Items, Total: res.Total}, nil
}

func (s *crudService[T, In]) Get(ctx context.Context, userID, id string) (*T, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

func (s *crudService[T, In]) Save(ctx context.Context, userID, id string, in In) (*T, error) {
	existing, err := s.existing(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	rec, err := s.build(ctx, userID, existing, in)
	if err != nil {
		return nil, err
	}
	s.meta(rec).ID = id
	out, err := s.repo.Upsert(ctx, userID, rec)
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

// Delete removes a record. Unknown ids are not an error.
func (s *crudService[T, In]) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return s.repo.Delete(ctx, userID, id)
}

// existing loads the record being replaced, or nil when id is empty or unknown.
func (s *crudService[T, In]) existing(ctx context.Context, userID, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return validation.Errors{"id": "must be a UUID"}
	}
	return nil
}

// checkRef records a field error when id does not name an existing record of the user.
func checkRef[T any](ctx context.Context, repo repository.RecordStore[T], userID string, id *string, field string, v *validation.Validator) error {
	if id == nil {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		v.Fail(field, "does not exist")
		return nil
	}
	_, err := repo.GetByID(ctx, userID, *id)
	if errors.Is(err, sql.ErrNoRows) {
		v.Fail(field, "does not exist")
		return nil
	}
	return err
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
