package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"hisapi/internal/events"
	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// IntegrationRecordService stores integration records and delivers them to the integration bus.
type IntegrationRecordService interface {
	CRUDService[model.IntegrationRecord]
	// Retry re-publishes a failed or pending record.
	Retry(ctx context.Context, id int64) (*model.IntegrationRecord, error)
	// Acknowledge confirms that the external system processed a sent record.
	Acknowledge(ctx context.Context, id int64) (*model.IntegrationRecord, error)
}

type integrationRecordService struct {
	*crudService[model.IntegrationRecord, *model.IntegrationRecord]
	repo repository.IntegrationRecordRepository
	pub  events.Publisher
	log  *zap.Logger
}

func NewIntegrationRecordService(repo repository.IntegrationRecordRepository, pub events.Publisher, log *zap.Logger) IntegrationRecordService {
	s := &integrationRecordService{
		crudService: newCRUD[model.IntegrationRecord, *model.IntegrationRecord](repo),
		repo:        repo,
		pub:         pub,
		log:         log,
	}
	s.check = func(r *model.IntegrationRecord) error {
		if !json.Valid(r.Payload) {
			return invalid("payload", "must be valid JSON")
		}
		return nil
	}
	return s
}

// integrationEvent is the message body published for a record.
type integrationEvent struct {
	ID          int64           `json:"id"`
	HospitalID  int64           `json:"hospital_id"`
	PatientID   *int64          `json:"patient_id,omitempty"`
	SystemName  string          `json:"system_name"`
	Direction   string          `json:"direction"`
	MessageType string          `json:"message_type"`
	ExternalID  *string         `json:"external_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (s *integrationRecordService) Create(ctx context.Context, r *model.IntegrationRecord) (*model.IntegrationRecord, error) {
	r.Status = model.IntegrationPending
	r.ErrorMessage, r.ProcessedAt = null.String{}, null.Time{}

	rec, err := s.crudService.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	return s.publish(ctx, rec)
}

// publish sends the record and stores the delivery outcome. Delivery failures are recorded on the
// record, not returned.
func (s *integrationRecordService) publish(ctx context.Context, rec *model.IntegrationRecord) (*model.IntegrationRecord, error) {
	body, err := json.Marshal(integrationEvent{
		ID:          rec.ID,
		HospitalID:  rec.HospitalID,
		PatientID:   rec.PatientID.Ptr(),
		SystemName:  rec.SystemName,
		Direction:   rec.Direction,
		MessageType: rec.MessageType,
		ExternalID:  rec.ExternalID.Ptr(),
		Payload:     rec.Payload,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode integration event: %w", err)
	}

	status, errMsg := model.IntegrationSent, ""
	pubErr := s.pub.Publish(ctx, events.Message{
		Key:   strconv.FormatInt(rec.HospitalID, 10),
		Value: body,
		Headers: map[string]string{
			"system_name":  rec.SystemName,
			"message_type": rec.MessageType,
		},
	})
	if pubErr != nil {
		status, errMsg = model.IntegrationFailed, pubErr.Error()
		s.log.Warn("integration record not delivered", zap.Int64("id", rec.ID), zap.Error(pubErr))
	}

	now := s.timestamp()
	if err := s.repo.SetStatus(ctx, rec.ID, status, errMsg, now); err != nil {
		return nil, translate(err)
	}
	rec.Status = status
	rec.ErrorMessage = null.NewString(errMsg, errMsg != "")
	rec.ProcessedAt = null.TimeFrom(now)
	return rec, nil
}

func (s *integrationRecordService) Retry(ctx context.Context, id int64) (*model.IntegrationRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.IntegrationFailed && rec.Status != model.IntegrationPending {
		return nil, fmt.Errorf("%w: cannot retry a %s record", ErrInvalidTransition, rec.Status)
	}
	return s.publish(ctx, rec)
}

func (s *integrationRecordService) Acknowledge(ctx context.Context, id int64) (*model.IntegrationRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.IntegrationSent {
		return nil, fmt.Errorf("%w: cannot acknowledge a %s record", ErrInvalidTransition, rec.Status)
	}
	now := s.timestamp()
	if err := s.repo.SetStatus(ctx, id, model.IntegrationAcknowledged, "", now); err != nil {
		return nil, translate(err)
	}
	rec.Status = model.IntegrationAcknowledged
	rec.ErrorMessage = null.String{}
	rec.ProcessedAt = null.TimeFrom(now)
	return rec, nil
}
