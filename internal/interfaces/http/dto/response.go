package dto

import "github.com/rental/backoffice/internal/domain/shared"

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	// Redirect is set when the client should navigate, e.g. to the login route
	Redirect string             `json:"redirect,omitempty"`
	Details  []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// MetaFrom converts backend page metadata
func MetaFrom(m shared.PageMeta) *Meta {
	return &Meta{
		Total:      m.Total,
		Page:       m.Page,
		Limit:      m.Limit,
		TotalPages: m.TotalPages,
	}
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, meta shared.PageMeta) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    MetaFrom(meta),
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// IDRequest binds a numeric backend id path parameter
type IDRequest struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// DraftRequest binds a draft id path parameter
type DraftRequest struct {
	DraftID string `uri:"draftId" binding:"required,uuid"`
}

// DraftPartRequest binds a draft id and a section, group or item handle
type DraftPartRequest struct {
	DraftID string `uri:"draftId" binding:"required,uuid"`
	Handle  string `uri:"handle" binding:"required,numeric"`
}
