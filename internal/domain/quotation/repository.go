package quotation

import (
	"context"

	"github.com/rental/backoffice/internal/domain/shared"
)

// Repository is the rental backend's quotation API
type Repository interface {
	List(ctx context.Context, filter Filter) (*shared.Page[Quotation], error)
	Get(ctx context.Context, id int64) (*Quotation, error)
	Create(ctx context.Context, sub Submission) (*Quotation, error)
	Update(ctx context.Context, id int64, sub Submission) (*Quotation, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status Status) (*Quotation, error)
	Export(ctx context.Context, id int64, format ExportFormat) (*Document, error)
}
