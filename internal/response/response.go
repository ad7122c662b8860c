package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"taskmaster/internal/contextutils"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse is the standard envelope for every JSON endpoint.
type APIResponse struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *ErrorDetail  `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	Timestamp int64         `json:"timestamp,omitempty"`
}

// ErrorDetail carries error information in API responses.
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ResponseMeta holds optional response metadata.
type ResponseMeta struct {
	Pagination *PaginationMeta        `json:"pagination,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// PaginationMeta reports the applied window for list endpoints.
type PaginationMeta struct {
	Skip      int   `json:"skip"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
	Remaining int64 `json:"remaining"`
}

// Config tunes the response builder.
type Config struct {
	PrettyJSON         bool
	MaskInternalErrors bool
}

// DefaultConfig returns production settings.
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		MaskInternalErrors: true,
	}
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder constructs and writes standardized responses.
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a response builder.
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{config: config, logger: logger}
}

// Success creates a successful API response.
func (b *Builder) Success(ctx context.Context, data interface{}) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: contextutils.GetRequestID(ctx),
		Timestamp: time.Now().Unix(),
	}
}

// SuccessWithMeta creates a successful API response with metadata.
func (b *Builder) SuccessWithMeta(ctx context.Context, data interface{}, meta *ResponseMeta) *APIResponse {
	resp := b.Success(ctx, data)
	resp.Meta = meta
	return resp
}

// Error creates an error response from a service error.
func (b *Builder) Error(ctx context.Context, err error) *APIResponse {
	detail := b.convertError(err)

	b.logger.Warn("Request failed",
		zap.String("request_id", contextutils.GetRequestID(ctx)),
		zap.String("error_type", detail.Type),
		zap.String("message", detail.Message),
	)

	return &APIResponse{
		Success:   false,
		Error:     detail,
		RequestID: contextutils.GetRequestID(ctx),
		Timestamp: time.Now().Unix(),
	}
}

// ===============================
// HTTP RESPONSE WRITERS
// ===============================

// WriteJSON writes a response with the given status code.
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, resp *APIResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(resp); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("request_id", contextutils.GetRequestID(r.Context())),
		)
	}
}

// WriteSuccess writes a 200 response.
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusOK)
}

// WriteCreated writes a 201 response.
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusCreated)
}

// WriteNoContent writes a 204 response with no body.
func (b *Builder) WriteNoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error response with the status carried by the error.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	resp := b.Error(r.Context(), err)
	b.WriteJSON(w, r, resp, b.statusCode(err))
}

// WritePaginated writes a 200 response with pagination metadata.
func (b *Builder) WritePaginated(w http.ResponseWriter, r *http.Request, data interface{}, skip, limit int, total int64, count int) {
	remaining := total - int64(skip) - int64(count)
	if remaining < 0 {
		remaining = 0
	}

	meta := &ResponseMeta{
		Pagination: &PaginationMeta{
			Skip:      skip,
			Limit:     limit,
			Total:     total,
			Remaining: remaining,
		},
	}
	b.WriteJSON(w, r, b.SuccessWithMeta(r.Context(), data, meta), http.StatusOK)
}

// ===============================
// UTILITY METHODS
// ===============================

func (b *Builder) convertError(err error) *ErrorDetail {
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		detail := &ErrorDetail{
			Type:    serviceErr.Type,
			Message: serviceErr.Message,
			Code:    serviceErr.Code,
			Details: serviceErr.Details,
		}
		if b.config.MaskInternalErrors && serviceErr.GetStatusCode() >= http.StatusInternalServerError {
			detail.Message = "an internal error occurred"
			detail.Details = nil
		}
		return detail
	}

	detail := &ErrorDetail{
		Type:    "INTERNAL_ERROR",
		Message: err.Error(),
	}
	if b.config.MaskInternalErrors {
		detail.Message = "an internal error occurred"
	}
	return detail
}

func (b *Builder) statusCode(err error) int {
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.GetStatusCode()
	}
	return http.StatusInternalServerError
}
