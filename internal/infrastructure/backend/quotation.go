package backend

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/rental/backoffice/internal/domain/quotation"
	"github.com/rental/backoffice/internal/domain/shared"
)

var _ quotation.Repository = (*Client)(nil)

// List lists quotations
func (c *Client) List(ctx context.Context, filter quotation.Filter) (*shared.Page[quotation.Quotation], error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/quotations", query: filter.Values()})
	if err != nil {
		return nil, err
	}
	return decodePage[quotation.Quotation](resp)
}

// Get fetches one quotation with its sections and items
func (c *Client) Get(ctx context.Context, id int64) (*quotation.Quotation, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/quotations/%d", id)})
	if err != nil {
		return nil, err
	}
	return decode[quotation.Quotation](resp)
}

// Create posts a new quotation tree
func (c *Client) Create(ctx context.Context, sub quotation.Submission) (*quotation.Quotation, error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/quotations", body: sub})
	if err != nil {
		return nil, err
	}
	return decode[quotation.Quotation](resp)
}

// Update replaces an existing quotation tree
func (c *Client) Update(ctx context.Context, id int64, sub quotation.Submission) (*quotation.Quotation, error) {
	resp, err := c.do(ctx, request{method: http.MethodPut, path: fmt.Sprintf("/quotations/%d", id), body: sub})
	if err != nil {
		return nil, err
	}
	return decode[quotation.Quotation](resp)
}

// Delete deletes a quotation
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/quotations/%d", id)})
	return err
}

type statusRequest struct {
	Status quotation.Status `json:"status"`
}

// UpdateStatus sets a quotation's status
func (c *Client) UpdateStatus(ctx context.Context, id int64, status quotation.Status) (*quotation.Quotation, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/quotations/%d/status", id),
		body:   statusRequest{Status: status},
	})
	if err != nil {
		return nil, err
	}
	return decode[quotation.Quotation](resp)
}

// Export downloads the rendered quotation document
func (c *Client) Export(ctx context.Context, id int64, format quotation.ExportFormat) (*quotation.Document, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/quotations/%d/export/%s", id, format),
		raw:    true,
	})
	if err != nil {
		return nil, err
	}
	doc := &quotation.Document{
		QuotationID: id,
		Format:      format,
		ContentType: resp.header.Get("Content-Type"),
		Content:     resp.body,
	}
	if cd := resp.header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			doc.Filename = params["filename"]
		}
	}
	return doc, nil
}
