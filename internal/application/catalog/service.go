package catalog

import (
	"context"

	"github.com/rental/backoffice/internal/domain/catalog"
	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service handles equipment, category and bundle operations. Catalog data is
// owned by the rental backend; equipment reads used by the quotation editor go
// through the cache.
type Service struct {
	equipment  catalog.EquipmentRepository
	categories catalog.CategoryRepository
	bundles    catalog.BundleRepository
	cache      catalog.EquipmentCache
	logger     *zap.Logger
}

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*Service)

// WithEquipmentCache enables the equipment lookup cache
func WithEquipmentCache(c catalog.EquipmentCache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new catalog Service
func NewService(
	equipment catalog.EquipmentRepository,
	categories catalog.CategoryRepository,
	bundles catalog.BundleRepository,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		equipment:  equipment,
		categories: categories,
		bundles:    bundles,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// Equipment
// ============================================================================

// ListEquipment returns a page of equipment
func (s *Service) ListEquipment(ctx context.Context, filter catalog.EquipmentFilter) (*shared.Page[catalog.Equipment], error) {
	return s.equipment.ListEquipment(ctx, filter)
}

// ListEquipmentByCategory returns a page of equipment in one category
func (s *Service) ListEquipmentByCategory(ctx context.Context, categoryID int64, filter catalog.EquipmentFilter) (*shared.Page[catalog.Equipment], error) {
	if categoryID <= 0 {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category id must be positive")
	}
	filter.CategoryID = categoryID
	return s.equipment.ListEquipment(ctx, filter)
}

// GetEquipment fetches equipment, serving from the cache when possible
func (s *Service) GetEquipment(ctx context.Context, id int64) (*catalog.Equipment, error) {
	if s.cache != nil {
		eq, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("Equipment cache read failed", zap.Int64("equipment_id", id), zap.Error(err))
		} else if eq != nil {
			return eq, nil
		}
	}

	eq, err := s.equipment.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, eq)
	return eq, nil
}

// LookupEquipment returns the quotation snapshot of an equipment entry
func (s *Service) LookupEquipment(ctx context.Context, id int64) (*quotation.EquipmentSnapshot, error) {
	eq, err := s.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := eq.Snapshot()
	return &snap, nil
}

// CreateEquipment creates equipment on the backend
func (s *Service) CreateEquipment(ctx context.Context, in catalog.EquipmentInput) (*catalog.Equipment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	eq, err := s.equipment.CreateEquipment(ctx, in)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, eq)
	return eq, nil
}

// UpdateEquipment updates equipment and refreshes its cache entry
func (s *Service) UpdateEquipment(ctx context.Context, id int64, in catalog.EquipmentInput) (*catalog.Equipment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.forget(ctx, id)
	eq, err := s.equipment.UpdateEquipment(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, eq)
	return eq, nil
}

// DeleteEquipment deletes equipment and evicts it from the cache
func (s *Service) DeleteEquipment(ctx context.Context, id int64) error {
	s.forget(ctx, id)
	return s.equipment.DeleteEquipment(ctx, id)
}

func (s *Service) remember(ctx context.Context, eq *catalog.Equipment) {
	if s.cache == nil || eq == nil {
		return
	}
	if err := s.cache.Set(ctx, eq); err != nil {
		s.logger.Warn("Equipment cache write failed", zap.Int64("equipment_id", eq.ID), zap.Error(err))
	}
}

func (s *Service) forget(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("Equipment cache eviction failed", zap.Int64("equipment_id", id), zap.Error(err))
	}
}

// ============================================================================
// Categories
// ============================================================================

// ListCategories returns a page of categories
func (s *Service) ListCategories(ctx context.Context, filter catalog.ListFilter) (*shared.Page[catalog.Category], error) {
	return s.categories.ListCategories(ctx, filter)
}

// GetCategory fetches a category
func (s *Service) GetCategory(ctx context.Context, id int64) (*catalog.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

// CreateCategory creates a category
func (s *Service) CreateCategory(ctx context.Context, in catalog.CategoryInput) (*catalog.Category, error) {
	return s.categories.CreateCategory(ctx, in)
}

// UpdateCategory updates a category
func (s *Service) UpdateCategory(ctx context.Context, id int64, in catalog.CategoryInput) (*catalog.Category, error) {
	return s.categories.UpdateCategory(ctx, id, in)
}

// DeleteCategory deletes a category
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.DeleteCategory(ctx, id)
}

// ============================================================================
// Bundles
// ============================================================================

// ListBundles returns a page of bundles
func (s *Service) ListBundles(ctx context.Context, filter catalog.ListFilter) (*shared.Page[catalog.Bundle], error) {
	return s.bundles.ListBundles(ctx, filter)
}

// GetBundle fetches a bundle
func (s *Service) GetBundle(ctx context.Context, id int64) (*catalog.Bundle, error) {
	return s.bundles.GetBundle(ctx, id)
}

// CreateBundle prices the bundle from current equipment prices, then creates it
func (s *Service) CreateBundle(ctx context.Context, in catalog.BundleInput) (*catalog.Bundle, error) {
	price, err := s.PreviewBundlePrice(ctx, in.BundleItems, in.Discount.Decimal)
	if err != nil {
		return nil, err
	}
	in.DailyRentalPrice = shared.NewNumber(price)
	return s.bundles.CreateBundle(ctx, in)
}

// UpdateBundle reprices and updates a bundle
func (s *Service) UpdateBundle(ctx context.Context, id int64, in catalog.BundleInput) (*catalog.Bundle, error) {
	price, err := s.PreviewBundlePrice(ctx, in.BundleItems, in.Discount.Decimal)
	if err != nil {
		return nil, err
	}
	in.DailyRentalPrice = shared.NewNumber(price)
	return s.bundles.UpdateBundle(ctx, id, in)
}

// DeleteBundle deletes a bundle
func (s *Service) DeleteBundle(ctx context.Context, id int64) error {
	return s.bundles.DeleteBundle(ctx, id)
}

// PreviewBundlePrice computes the bundle daily price for the given lines
func (s *Service) PreviewBundlePrice(ctx context.Context, items []catalog.BundleItemInput, discount decimal.Decimal) (decimal.Decimal, error) {
	lines := make([]catalog.PriceLine, 0, len(items))
	for _, it := range items {
		eq, err := s.GetEquipment(ctx, it.EquipmentID)
		if err != nil {
			return decimal.Zero, err
		}
		lines = append(lines, catalog.PriceLine{DailyRentalPrice: eq.DailyRentalPrice, Quantity: it.Quantity})
	}
	return catalog.BundlePrice(lines, discount)
}
