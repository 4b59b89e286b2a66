package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"hisapi/internal/model"
	"hisapi/internal/service"
	"hisapi/internal/storage"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) LoginWithIDToken(ctx context.Context, idToken string) (*service.LoginResult, error) {
	return one[service.LoginResult](m.Called(ctx, idToken))
}

func (m *MockAuthService) LoginWithAccessToken(ctx context.Context, accessToken string) (*service.LoginResult, error) {
	return one[service.LoginResult](m.Called(ctx, accessToken))
}

func (m *MockAuthService) AuthURL(redirectURI string) (string, string, error) {
	args := m.Called(redirectURI)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) ExchangeCode(ctx context.Context, code, redirectURI string) (*service.LoginResult, error) {
	return one[service.LoginResult](m.Called(ctx, code, redirectURI))
}

func (m *MockAuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	return one[model.User](m.Called(ctx, userID))
}

type MockMessageService struct {
	MockCRUDService[model.Message]
}

func (m *MockMessageService) MarkRead(ctx context.Context, id int64) (*model.Message, error) {
	return one[model.Message](m.MethodCalled("MarkRead", ctx, id))
}

func (m *MockMessageService) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	args := m.MethodCalled("UnreadCount", ctx, recipientID)
	return args.Int(0), args.Error(1)
}

type MockNotificationService struct {
	MockCRUDService[model.Notification]
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	return one[model.Notification](m.MethodCalled("MarkRead", ctx, id))
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.MethodCalled("MarkAllRead", ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	args := m.MethodCalled("UnreadCount", ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockComplaintService struct {
	MockCRUDService[model.Complaint]
}

func (m *MockComplaintService) ChangeStatus(ctx context.Context, id int64, status, resolution string) (*model.Complaint, error) {
	return one[model.Complaint](m.MethodCalled("ChangeStatus", ctx, id, status, resolution))
}

type MockInsuranceConventionService struct {
	MockCRUDService[model.InsuranceConvention]
}

func (m *MockInsuranceConventionService) ActiveOn(ctx context.Context, hospitalID int64, day time.Time) ([]model.InsuranceConvention, error) {
	args := m.MethodCalled("ActiveOn", ctx, hospitalID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InsuranceConvention), args.Error(1)
}

type MockInterventionTypeService struct {
	MockCRUDService[model.InterventionType]
}

func (m *MockInterventionTypeService) Toggle(ctx context.Context, id int64) (*model.InterventionType, error) {
	return one[model.InterventionType](m.MethodCalled("Toggle", ctx, id))
}

type MockExportService struct {
	MockCRUDService[model.ExportRecord]
}

func (m *MockExportService) DownloadURL(ctx context.Context, id int64) (string, time.Duration, error) {
	args := m.MethodCalled("DownloadURL", ctx, id)
	return args.String(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockExportService) Open(ctx context.Context, id int64) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.MethodCalled("Open", ctx, id)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

type MockIntegrationRecordService struct {
	MockCRUDService[model.IntegrationRecord]
}

func (m *MockIntegrationRecordService) Retry(ctx context.Context, id int64) (*model.IntegrationRecord, error) {
	return one[model.IntegrationRecord](m.MethodCalled("Retry", ctx, id))
}

func (m *MockIntegrationRecordService) Acknowledge(ctx context.Context, id int64) (*model.IntegrationRecord, error) {
	return one[model.IntegrationRecord](m.MethodCalled("Acknowledge", ctx, id))
}

type MockCustomReportService struct {
	MockCRUDService[model.CustomReport]
}

func (m *MockCustomReportService) Run(ctx context.Context, id int64) (*service.ReportFile, error) {
	return one[service.ReportFile](m.MethodCalled("Run", ctx, id))
}

var (
	_ service.AuthService                = (*MockAuthService)(nil)
	_ service.MessageService             = (*MockMessageService)(nil)
	_ service.NotificationService        = (*MockNotificationService)(nil)
	_ service.ComplaintService           = (*MockComplaintService)(nil)
	_ service.InsuranceConventionService = (*MockInsuranceConventionService)(nil)
	_ service.InterventionTypeService    = (*MockInterventionTypeService)(nil)
	_ service.ExportService              = (*MockExportService)(nil)
	_ service.IntegrationRecordService   = (*MockIntegrationRecordService)(nil)
	_ service.CustomReportService        = (*MockCustomReportService)(nil)
)
