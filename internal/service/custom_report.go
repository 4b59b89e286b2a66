package service

import (
	"bytes"
	"context"
	"fmt"

	"hisapi/internal/export"
	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// ReportFile is a rendered report ready to be streamed.
type ReportFile struct {
	Name        string
	ContentType string
	Rows        int
	Data        []byte
}

type CustomReportService interface {
	CRUDService[model.CustomReport]
	// Run renders the report's rows as a workbook and stamps the run time.
	Run(ctx context.Context, id int64) (*ReportFile, error)
}

type customReportService struct {
	*crudService[model.CustomReport, *model.CustomReport]
	repo    repository.CustomReportRepository
	sources Sources
}

func NewCustomReportService(repo repository.CustomReportRepository, sources Sources) CustomReportService {
	s := &customReportService{
		crudService: newCRUD[model.CustomReport, *model.CustomReport](repo),
		repo:        repo,
		sources:     sources,
	}
	s.check = checkReport
	return s
}

func checkReport(r *model.CustomReport) error {
	headers, ok := Headers(r.Source)
	if !ok {
		return invalid("source", "unknown source "+r.Source)
	}
	if _, err := (export.Dataset{Headers: headers}).Select(r.Columns); err != nil {
		return invalid("columns", err.Error())
	}
	if _, err := ParseFilters(r.Filters); err != nil {
		return err
	}
	return nil
}

func (s *customReportService) Run(ctx context.Context, id int64) (*ReportFile, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	filters, err := ParseFilters(r.Filters)
	if err != nil {
		return nil, err
	}
	data, err := s.sources.Load(ctx, r.Source, r.HospitalID, filters)
	if err != nil {
		return nil, err
	}
	data, err = data.Select(r.Columns)
	if err != nil {
		return nil, invalid("columns", err.Error())
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, data); err != nil {
		return nil, fmt.Errorf("render report %d: %w", id, err)
	}
	if err := s.repo.TouchLastRun(ctx, id, s.timestamp()); err != nil {
		return nil, translate(err)
	}
	return &ReportFile{
		Name:        fmt.Sprintf("report-%d.xlsx", id),
		ContentType: export.ContentType(model.FormatXLSX),
		Rows:        len(data.Rows),
		Data:        buf.Bytes(),
	}, nil
}
