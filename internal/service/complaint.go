package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aarondl/null/v8"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// ComplaintService manages complaints and their status workflow.
type ComplaintService interface {
	CRUDService[model.Complaint]
	// ChangeStatus moves a complaint along its workflow. Resolving requires a resolution text.
	ChangeStatus(ctx context.Context, id int64, status, resolution string) (*model.Complaint, error)
}

type complaintService struct {
	*crudService[model.Complaint, *model.Complaint]
}

func NewComplaintService(repo repository.ComplaintRepository) ComplaintService {
	return &complaintService{crudService: newCRUD[model.Complaint, *model.Complaint](repo)}
}

func (s *complaintService) Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	// New complaints always enter the workflow at the start.
	c.Status = model.ComplaintOpen
	c.Resolution = null.String{}
	c.ResolvedAt = null.Time{}
	return s.crudService.Create(ctx, c)
}

func (s *complaintService) ChangeStatus(ctx context.Context, id int64, status, resolution string) (*model.Complaint, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(c.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, status)
	}

	now := s.timestamp()
	resolution = strings.TrimSpace(resolution)
	switch status {
	case model.ComplaintResolved:
		if resolution == "" {
			return nil, invalid("resolution", "is required when resolving")
		}
		c.Resolution = null.StringFrom(resolution)
		c.ResolvedAt = null.TimeFrom(now)
	case model.ComplaintInProgress:
		c.ResolvedAt = null.Time{}
	case model.ComplaintRejected:
		if resolution != "" {
			c.Resolution = null.StringFrom(resolution)
		}
	}
	c.Status = status
	c.UpdatedAt = null.TimeFrom(now)

	out, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}
