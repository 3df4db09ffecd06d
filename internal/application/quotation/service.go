package quotation

import (
	"context"
	"fmt"
	"time"

	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/rental/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrInvalidTransition is returned when a status change is not allowed
var ErrInvalidTransition = quotation.ErrInvalidTransition

// ArchiveStorage stores exported documents
type ArchiveStorage interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// Service handles persisted quotations: listing, status changes and exports
type Service struct {
	repo       quotation.Repository
	archive    ArchiveStorage
	archiveTTL time.Duration
	logger     *zap.Logger
	metrics    *telemetry.BusinessMetrics
	now        func() time.Time
}

// NewService creates a quotation Service. archive may be nil to disable
// export archiving.
func NewService(repo quotation.Repository, archive ArchiveStorage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		archive:    archive,
		archiveTTL: 15 * time.Minute,
		logger:     logger,
		now:        time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// SetArchiveURLExpiration sets how long archive download links stay valid
func (s *Service) SetArchiveURLExpiration(d time.Duration) {
	if d > 0 {
		s.archiveTTL = d
	}
}

// List returns a page of quotations
func (s *Service) List(ctx context.Context, filter quotation.Filter) (*shared.Page[quotation.Quotation], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown quotation status")
	}
	return s.repo.List(ctx, filter)
}

// Get fetches a quotation with its sections and items
func (s *Service) Get(ctx context.Context, id int64) (*quotation.Quotation, error) {
	return s.repo.Get(ctx, id)
}

// Delete deletes a quotation
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Quotation deleted", zap.Int64("quotation_id", id))
	return nil
}

// UpdateStatus moves a quotation to a new status. The transition is checked
// against the current status before the backend is asked to apply it.
func (s *Service) UpdateStatus(ctx context.Context, id int64, target quotation.Status) (*quotation.Quotation, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown quotation status")
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, shared.NewDomainError(ErrInvalidTransition.Code,
			fmt.Sprintf("Cannot change status from %s to %s", current.Status, target))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordStatusChange(ctx, current.Status.String(), target.String())
	}
	s.logger.Info("Quotation status changed",
		zap.Int64("quotation_id", id),
		zap.String("from", current.Status.String()),
		zap.String("to", target.String()))
	return updated, nil
}

// Export renders a quotation document on the backend. When archiving is
// enabled the document is also stored; archive failures do not fail the export.
func (s *Service) Export(ctx context.Context, id int64, format quotation.ExportFormat) (*ExportResult, error) {
	if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", "Export format must be pdf or excel")
	}
	doc, err := s.repo.Export(ctx, id, format)
	if err != nil {
		return nil, err
	}
	if doc.Filename == "" {
		doc.Filename = fmt.Sprintf("quotation-%d.%s", id, format.Extension())
	}
	if doc.ContentType == "" {
		doc.ContentType = format.ContentType()
	}
	if s.metrics != nil {
		s.metrics.RecordExport(ctx, string(format))
	}

	result := &ExportResult{Document: doc}
	if s.archive == nil {
		return result, nil
	}
	key := archiveKey(id, doc.Filename, s.now())
	if err := s.archive.PutObject(ctx, key, doc.ContentType, doc.Content); err != nil {
		s.logger.Warn("Failed to archive export", zap.Int64("quotation_id", id), zap.String("key", key), zap.Error(err))
		return result, nil
	}
	result.ArchiveKey = key
	if url, _, err := s.archive.GenerateDownloadURL(ctx, key, s.archiveTTL); err == nil {
		result.ArchiveURL = url
	}
	return result, nil
}

func archiveKey(id int64, filename string, at time.Time) string {
	return fmt.Sprintf("quotations/%d/%s-%s", id, at.UTC().Format("20060102T150405Z"), filename)
}
