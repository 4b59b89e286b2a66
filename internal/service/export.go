package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"hisapi/internal/export"
	"hisapi/internal/model"
	"hisapi/internal/repository"
	"hisapi/internal/storage"
)

// ErrExportNotReady is returned when the file of an export that did not complete is requested.
var ErrExportNotReady = errors.New("export file is not available")

const downloadURLExpiry = 15 * time.Minute

// ExportService creates exports of hospital data and serves their files.
type ExportService interface {
	CRUDService[model.ExportRecord]
	// DownloadURL returns a presigned URL for a completed export.
	DownloadURL(ctx context.Context, id int64) (string, time.Duration, error)
	// Open streams the file of a completed export. The caller closes the reader.
	Open(ctx context.Context, id int64) (io.ReadCloser, storage.ObjectInfo, error)
}

type exportService struct {
	*crudService[model.ExportRecord, *model.ExportRecord]
	sources Sources
	store   storage.Storage
	log     *zap.Logger
}

func NewExportService(repo repository.ExportRecordRepository, sources Sources, store storage.Storage, log *zap.Logger) ExportService {
	return &exportService{
		crudService: newCRUD[model.ExportRecord, *model.ExportRecord](repo),
		sources:     sources,
		store:       store,
		log:         log,
	}
}

// Create records a pending export, renders it, uploads the file and stores the outcome. A failed
// run is not an error: the record is returned with status failed and the reason.
func (s *exportService) Create(ctx context.Context, e *model.ExportRecord) (*model.ExportRecord, error) {
	e.Status = model.ExportPending
	e.FilePath, e.FileSize, e.RowCount = null.String{}, null.Int64{}, null.Int{}
	e.ErrorMessage, e.CompletedAt = null.String{}, null.Time{}

	rec, err := s.crudService.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	log := s.log.With(zap.Int64("export_id", rec.ID), zap.String("export_type", rec.ExportType), zap.String("format", rec.Format))

	info, rows, runErr := s.run(ctx, rec)
	rec.CompletedAt = null.TimeFrom(s.timestamp())
	if runErr != nil {
		log.Warn("export failed", zap.Error(runErr))
		rec.Status = model.ExportFailed
		rec.ErrorMessage = null.StringFrom(runErr.Error())
	} else {
		rec.Status = model.ExportCompleted
		rec.FilePath = null.StringFrom(info.Key)
		rec.FileSize = null.Int64From(info.Size)
		rec.RowCount = null.IntFrom(rows)
	}

	out, err := s.repo.Update(ctx, rec)
	if err != nil {
		if runErr == nil {
			// Rollback: the record does not point at the file, so remove it.
			if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
				log.Error("export rollback failed", zap.String("key", info.Key), zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("save export outcome: %w", translate(err))
	}
	if runErr == nil {
		log.Info("export completed", zap.Int("rows", rows), zap.Int64("bytes", info.Size))
	}
	return out, nil
}

func (s *exportService) run(ctx context.Context, rec *model.ExportRecord) (storage.ObjectInfo, int, error) {
	data, err := s.sources.Load(ctx, rec.ExportType, rec.HospitalID, nil)
	if err != nil {
		return storage.ObjectInfo{}, 0, fmt.Errorf("load %s: %w", rec.ExportType, err)
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, rec.Format, data); err != nil {
		return storage.ObjectInfo{}, 0, fmt.Errorf("render %s: %w", rec.Format, err)
	}
	key := storage.ExportKey(rec.HospitalID, rec.ID, rec.Format)
	info, err := s.store.Put(ctx, key, &buf, storage.PutObjectOptions{
		Size:        int64(buf.Len()),
		ContentType: export.ContentType(rec.Format),
		Metadata: map[string]string{
			"export-id":   strconv.FormatInt(rec.ID, 10),
			"export-type": rec.ExportType,
		},
	})
	if err != nil {
		return storage.ObjectInfo{}, 0, fmt.Errorf("upload to storage: %w", err)
	}
	return info, len(data.Rows), nil
}

// Delete removes the export file, then its record.
func (s *exportService) Delete(ctx context.Context, id int64) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.FilePath.Valid {
		// Delete from storage first; if this fails, keep the row so the file stays reachable.
		if err := s.store.Delete(ctx, rec.FilePath.String); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	return s.crudService.Delete(ctx, id)
}

func (s *exportService) completed(ctx context.Context, id int64) (*model.ExportRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.ExportCompleted || !rec.FilePath.Valid {
		return nil, fmt.Errorf("%w: status %s", ErrExportNotReady, rec.Status)
	}
	return rec, nil
}

func (s *exportService) DownloadURL(ctx context.Context, id int64) (string, time.Duration, error) {
	rec, err := s.completed(ctx, id)
	if err != nil {
		return "", 0, err
	}
	u, err := s.store.PresignGet(ctx, rec.FilePath.String, downloadURLExpiry)
	if err != nil {
		return "", 0, err
	}
	return u, downloadURLExpiry, nil
}

func (s *exportService) Open(ctx context.Context, id int64) (io.ReadCloser, storage.ObjectInfo, error) {
	rec, err := s.completed(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	return s.store.Get(ctx, rec.FilePath.String)
}
