package service

import (
	"context"
	"strings"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

type InterventionTypeService interface {
	CRUDService[model.InterventionType]
	// Toggle flips the active flag and returns the updated entry.
	Toggle(ctx context.Context, id int64) (*model.InterventionType, error)
}

type interventionTypeService struct {
	*crudService[model.InterventionType, *model.InterventionType]
	repo repository.InterventionTypeRepository
}

func NewInterventionTypeService(repo repository.InterventionTypeRepository) InterventionTypeService {
	s := &interventionTypeService{
		crudService: newCRUD[model.InterventionType, *model.InterventionType](repo),
		repo:        repo,
	}
	s.prepare = func(t *model.InterventionType) {
		t.Code = strings.ToUpper(strings.TrimSpace(t.Code))
		t.Name = strings.TrimSpace(t.Name)
	}
	s.check = func(t *model.InterventionType) error {
		if t.BasePrice.IsNegative() {
			return invalid("base_price", "must not be negative")
		}
		return nil
	}
	return s
}

func (s *interventionTypeService) Toggle(ctx context.Context, id int64) (*model.InterventionType, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !t.IsActive, s.timestamp()); err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, id)
}
