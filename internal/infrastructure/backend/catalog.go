package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rental/backoffice/internal/domain/catalog"
	"github.com/rental/backoffice/internal/domain/shared"
)

var (
	_ catalog.EquipmentRepository = (*Client)(nil)
	_ catalog.CategoryRepository  = (*Client)(nil)
	_ catalog.BundleRepository    = (*Client)(nil)
)

// ============================================================================
// Equipment
// ============================================================================

// ListEquipment lists equipment. A category filter uses the per-category route.
func (c *Client) ListEquipment(ctx context.Context, filter catalog.EquipmentFilter) (*shared.Page[catalog.Equipment], error) {
	path := "/equipment"
	query := filter.Values()
	if filter.CategoryID > 0 {
		path = fmt.Sprintf("/equipment/category/%d", filter.CategoryID)
		query.Del("categoryId")
	}
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	return decodePage[catalog.Equipment](resp)
}

// GetEquipment fetches one equipment entry
func (c *Client) GetEquipment(ctx context.Context, id int64) (*catalog.Equipment, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/equipment/%d", id)})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Equipment](resp)
}

// CreateEquipment creates an equipment entry
func (c *Client) CreateEquipment(ctx context.Context, in catalog.EquipmentInput) (*catalog.Equipment, error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/equipment", body: in})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Equipment](resp)
}

// UpdateEquipment replaces an equipment entry
func (c *Client) UpdateEquipment(ctx context.Context, id int64, in catalog.EquipmentInput) (*catalog.Equipment, error) {
	resp, err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/equipment/%d", id), body: in})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Equipment](resp)
}

// DeleteEquipment deletes an equipment entry
func (c *Client) DeleteEquipment(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/equipment/%d", id)})
	return err
}

// ============================================================================
// Categories
// ============================================================================

func (c *Client) ListCategories(ctx context.Context, filter catalog.ListFilter) (*shared.Page[catalog.Category], error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/equipment/categories", query: filter.Values()})
	if err != nil {
		return nil, err
	}
	return decodePage[catalog.Category](resp)
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*catalog.Category, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/equipment/categories/%d", id)})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Category](resp)
}

func (c *Client) CreateCategory(ctx context.Context, in catalog.CategoryInput) (*catalog.Category, error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/equipment/categories", body: in})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Category](resp)
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in catalog.CategoryInput) (*catalog.Category, error) {
	resp, err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/equipment/categories/%d", id), body: in})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Category](resp)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/equipment/categories/%d", id)})
	return err
}

// ============================================================================
// Bundles
// ============================================================================

func (c *Client) ListBundles(ctx context.Context, filter catalog.ListFilter) (*shared.Page[catalog.Bundle], error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/bundles", query: filter.Values()})
	if err != nil {
		return nil, err
	}
	return decodePage[catalog.Bundle](resp)
}

func (c *Client) GetBundle(ctx context.Context, id int64) (*catalog.Bundle, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/bundles/%d", id)})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Bundle](resp)
}

func (c *Client) CreateBundle(ctx context.Context, in catalog.BundleInput) (*catalog.Bundle, error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/bundles", body: in})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Bundle](resp)
}

func (c *Client) UpdateBundle(ctx context.Context, id int64, in catalog.BundleInput) (*catalog.Bundle, error) {
	resp, err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/bundles/%d", id), body: in})
	if err != nil {
		return nil, err
	}
	return decode[catalog.Bundle](resp)
}

func (c *Client) DeleteBundle(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/bundles/%d", id)})
	return err
}
