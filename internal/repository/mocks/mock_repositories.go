package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockMessageRepository struct {
	MockCRUD[model.Message]
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	return m.MethodCalled("MarkRead", ctx, id, at).Error(0)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	args := m.MethodCalled("CountUnread", ctx, recipientID)
	return args.Int(0), args.Error(1)
}

type MockNotificationRepository struct {
	MockCRUD[model.Notification]
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	return m.MethodCalled("MarkRead", ctx, id, at).Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	args := m.MethodCalled("MarkAllRead", ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	args := m.MethodCalled("CountUnread", ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockComplaintRepository struct {
	MockCRUD[model.Complaint]
}

type MockInsuranceConventionRepository struct {
	MockCRUD[model.InsuranceConvention]
}

func (m *MockInsuranceConventionRepository) ListActiveOn(ctx context.Context, hospitalID int64, day time.Time) ([]model.InsuranceConvention, error) {
	args := m.MethodCalled("ListActiveOn", ctx, hospitalID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InsuranceConvention), args.Error(1)
}

type MockInterventionTypeRepository struct {
	MockCRUD[model.InterventionType]
}

func (m *MockInterventionTypeRepository) SetActive(ctx context.Context, id int64, active bool, at time.Time) error {
	return m.MethodCalled("SetActive", ctx, id, active, at).Error(0)
}

type MockExportRecordRepository struct {
	MockCRUD[model.ExportRecord]
}

type MockIntegrationRecordRepository struct {
	MockCRUD[model.IntegrationRecord]
}

func (m *MockIntegrationRecordRepository) SetStatus(ctx context.Context, id int64, status, errMsg string, at time.Time) error {
	return m.MethodCalled("SetStatus", ctx, id, status, errMsg, at).Error(0)
}

type MockCustomReportRepository struct {
	MockCRUD[model.CustomReport]
}

func (m *MockCustomReportRepository) TouchLastRun(ctx context.Context, id int64, at time.Time) error {
	return m.MethodCalled("TouchLastRun", ctx, id, at).Error(0)
}

var (
	_ repository.UserRepository                = (*MockUserRepository)(nil)
	_ repository.MessageRepository             = (*MockMessageRepository)(nil)
	_ repository.NotificationRepository        = (*MockNotificationRepository)(nil)
	_ repository.ComplaintRepository           = (*MockComplaintRepository)(nil)
	_ repository.InsuranceConventionRepository = (*MockInsuranceConventionRepository)(nil)
	_ repository.InterventionTypeRepository    = (*MockInterventionTypeRepository)(nil)
	_ repository.ExportRecordRepository        = (*MockExportRecordRepository)(nil)
	_ repository.IntegrationRecordRepository   = (*MockIntegrationRecordRepository)(nil)
	_ repository.CustomReportRepository        = (*MockCustomReportRepository)(nil)
)
