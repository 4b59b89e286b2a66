package service

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hisapi/internal/model"
	repoMocks "hisapi/internal/repository/mocks"
)

func newComplaintSvc(repo *repoMocks.MockComplaintRepository) *complaintService {
	s := NewComplaintService(repo).(*complaintService)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestComplaintService_CreateStartsOpen(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockComplaintRepository)
	mRepo.On("Create", ctx, mock.MatchedBy(func(c *model.Complaint) bool {
		return c.Status == model.ComplaintOpen && !c.ResolvedAt.Valid && c.Priority == "medium" &&
			c.CreatedAt.Equal(fixedNow) && !c.UpdatedAt.Valid
	})).Return(&model.Complaint{ID: 1, Status: model.ComplaintOpen}, nil)

	backdated := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	out, err := newComplaintSvc(mRepo).Create(ctx, &model.Complaint{
		HospitalID:  1,
		Subject:     "Long wait",
		Description: "Waited four hours in emergency",
		Category:    "waiting_time",
		Status:      model.ComplaintClosed,
		ResolvedAt:  null.TimeFrom(fixedNow),
		CreatedAt:   backdated,
		UpdatedAt:   null.TimeFrom(backdated),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintOpen, out.Status)
	mRepo.AssertExpectations(t)
}

func TestComplaintService_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		from       string
		to         string
		resolution string
		wantErr    error
		check      func(t *testing.T, c *model.Complaint)
	}{
		{
			name: "open to in progress",
			from: model.ComplaintOpen,
			to:   model.ComplaintInProgress,
			check: func(t *testing.T, c *model.Complaint) {
				assert.Equal(t, model.ComplaintInProgress, c.Status)
				assert.Equal(t, fixedNow, c.UpdatedAt.Time)
			},
		},
		{
			name:       "resolve stamps resolved_at",
			from:       model.ComplaintInProgress,
			to:         model.ComplaintResolved,
			resolution: "  Apology and fast track  ",
			check: func(t *testing.T, c *model.Complaint) {
				assert.Equal(t, "Apology and fast track", c.Resolution.String)
				assert.Equal(t, fixedNow, c.ResolvedAt.Time)
			},
		},
		{
			name:    "resolve without resolution",
			from:    model.ComplaintInProgress,
			to:      model.ComplaintResolved,
			wantErr: ErrValidation,
		},
		{
			name: "reopen clears resolved_at",
			from: model.ComplaintResolved,
			to:   model.ComplaintInProgress,
			check: func(t *testing.T, c *model.Complaint) {
				assert.False(t, c.ResolvedAt.Valid)
			},
		},
		{
			name:    "open cannot be closed directly",
			from:    model.ComplaintOpen,
			to:      model.ComplaintClosed,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "closed is final",
			from:    model.ComplaintClosed,
			to:      model.ComplaintOpen,
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockComplaintRepository)
			stored := &model.Complaint{ID: 3, HospitalID: 1, Status: tt.from}
			if tt.from == model.ComplaintResolved {
				stored.ResolvedAt = null.TimeFrom(fixedNow.Add(-time.Hour))
			}
			mRepo.On("FindByID", ctx, int64(3)).Return(stored, nil)
			if tt.wantErr == nil {
				mRepo.On("Update", ctx, mock.Anything).Return(stored, nil)
			}

			out, err := newComplaintSvc(mRepo).ChangeStatus(ctx, 3, tt.to, tt.resolution)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			tt.check(t, out)
			mRepo.AssertExpectations(t)
		})
	}
}
