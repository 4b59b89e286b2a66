package service

import (
	"context"

	"hisapi/internal/export"
	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// maxSourceRows bounds a single export or report run.
const maxSourceRows = 10000

// Sources gives exports and custom reports read access to every exportable table.
type Sources struct {
	Messages             repository.MessageRepository
	Notifications        repository.NotificationRepository
	Complaints           repository.ComplaintRepository
	InsuranceConventions repository.InsuranceConventionRepository
	InterventionTypes    repository.InterventionTypeRepository
	IntegrationRecords   repository.IntegrationRecordRepository
}

// Load reads up to maxSourceRows rows of one hospital from source.
func (s Sources) Load(ctx context.Context, source string, hospitalID int64, filters map[string]any) (export.Dataset, error) {
	f := make(map[string]any, len(filters)+1)
	for k, v := range filters {
		f[k] = v
	}
	f["hospital_id"] = hospitalID
	pq := repository.PageQuery{Limit: maxSourceRows, Filters: f}

	switch source {
	case model.SourceMessages:
		return load[model.Message](ctx, s.Messages, source, pq)
	case model.SourceNotifications:
		return load[model.Notification](ctx, s.Notifications, source, pq)
	case model.SourceComplaints:
		return load[model.Complaint](ctx, s.Complaints, source, pq)
	case model.SourceInsuranceConventions:
		return load[model.InsuranceConvention](ctx, s.InsuranceConventions, source, pq)
	case model.SourceInterventionTypes:
		return load[model.InterventionType](ctx, s.InterventionTypes, source, pq)
	case model.SourceIntegrationRecords:
		return load[model.IntegrationRecord](ctx, s.IntegrationRecords, source, pq)
	}
	return export.Dataset{}, invalid("source", "unknown source "+source)
}

// Headers returns the column names of a source without reading it.
func Headers(source string) ([]string, bool) {
	var d export.Dataset
	switch source {
	case model.SourceMessages:
		d = export.FromRows[model.Message](source, nil)
	case model.SourceNotifications:
		d = export.FromRows[model.Notification](source, nil)
	case model.SourceComplaints:
		d = export.FromRows[model.Complaint](source, nil)
	case model.SourceInsuranceConventions:
		d = export.FromRows[model.InsuranceConvention](source, nil)
	case model.SourceInterventionTypes:
		d = export.FromRows[model.InterventionType](source, nil)
	case model.SourceIntegrationRecords:
		d = export.FromRows[model.IntegrationRecord](source, nil)
	default:
		return nil, false
	}
	return d.Headers, true
}

func load[T model.Tabular](ctx context.Context, repo repository.CRUD[T], sheet string, pq repository.PageQuery) (export.Dataset, error) {
	res, err := repo.List(ctx, pq)
	if err != nil {
		return export.Dataset{}, translate(err)
	}
	return export.FromRows(sheet, res.Items), nil
}
