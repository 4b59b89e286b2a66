package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// Record is satisfied by the pointer type of every CRUD model.
type Record[T any] interface {
	*T
	model.Entity
	Preserve(prev *T)
}

// CRUDService is the use case set shared by every record resource.
type CRUDService[T any] interface {
	Create(ctx context.Context, item *T) (*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, q ListQuery) (*ListResult[T], error)
	// Update replaces the client-editable fields of the record.
	Update(ctx context.Context, id int64, item *T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// crudService implements CRUDService on a repository.CRUD. Resource services embed it and hook
// normalisation and cross-field checks in through prepare and check.
type crudService[T any, P Record[T]] struct {
	repo     repository.CRUD[T]
	validate *validator.Validate
	now      func() time.Time

	prepare func(P)
	check   func(P) error
}

func newCRUD[T any, P Record[T]](repo repository.CRUD[T]) *crudService[T, P] {
	return &crudService[T, P]{repo: repo, validate: newValidator(), now: time.Now}
}

func (s *crudService[T, P]) timestamp() time.Time { return s.now().UTC() }

// ready normalises, stamps and validates an item before it is written.
func (s *crudService[T, P]) ready(p P) error {
	if s.prepare != nil {
		s.prepare(p)
	}
	p.Stamp(s.timestamp())
	if err := validateStruct(s.validate, p); err != nil {
		return err
	}
	if s.check != nil {
		return s.check(p)
	}
	return nil
}

func (s *crudService[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	p := P(item)
	p.SetEntityID(0)
	p.ClearTimestamps()
	if err := s.ready(p); err != nil {
		return nil, err
	}
	out, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *crudService[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	out, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *crudService[T, P]) List(ctx context.Context, q ListQuery) (*ListResult[T], error) {
	res, err := s.repo.List(ctx, q.page())
	if err != nil {
		return nil, translate(err)
	}
	return &ListResult[T]{Items: res.Items, Total: res.Total}, nil
}

func (s *crudService[T, P]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := P(item)
	p.SetEntityID(id)
	p.Preserve(prev)
	if err := s.ready(p); err != nil {
		return nil, err
	}
	out, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *crudService[T, P]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return translate(s.repo.Delete(ctx, id))
}
