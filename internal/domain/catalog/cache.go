package catalog

import "context"

// EquipmentCache keeps recently fetched equipment for quotation item lookups.
// Get returns nil, nil on a miss.
type EquipmentCache interface {
	Get(ctx context.Context, id int64) (*Equipment, error)
	Set(ctx context.Context, eq *Equipment) error
	Delete(ctx context.Context, id int64) error
}
