package catalog

import (
	"context"

	"github.com/rental/backoffice/internal/domain/shared"
)

// EquipmentRepository is the rental backend's equipment API
type EquipmentRepository interface {
	ListEquipment(ctx context.Context, filter EquipmentFilter) (*shared.Page[Equipment], error)
	GetEquipment(ctx context.Context, id int64) (*Equipment, error)
	CreateEquipment(ctx context.Context, in EquipmentInput) (*Equipment, error)
	UpdateEquipment(ctx context.Context, id int64, in EquipmentInput) (*Equipment, error)
	DeleteEquipment(ctx context.Context, id int64) error
}

// CategoryRepository is the rental backend's equipment category API
type CategoryRepository interface {
	ListCategories(ctx context.Context, filter ListFilter) (*shared.Page[Category], error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// BundleRepository is the rental backend's bundle API
type BundleRepository interface {
	ListBundles(ctx context.Context, filter ListFilter) (*shared.Page[Bundle], error)
	GetBundle(ctx context.Context, id int64) (*Bundle, error)
	CreateBundle(ctx context.Context, in BundleInput) (*Bundle, error)
	UpdateBundle(ctx context.Context, id int64, in BundleInput) (*Bundle, error)
	DeleteBundle(ctx context.Context, id int64) error
}
