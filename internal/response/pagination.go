// File: internal/response/pagination.go
package response

import (
	"net/http"
	"strconv"

	"badgehub/internal/models"
)

// ===============================
// PAGINATION CONFIGURATION
// ===============================

// PaginationConfig holds pagination configuration
type PaginationConfig struct {
	DefaultPageSize int    `json:"default_page_size"`
	MaxPageSize     int    `json:"max_page_size"`
	LimitParam      string `json:"limit_param"`
	OffsetParam     string `json:"offset_param"`
	SortParam       string `json:"sort_param"`
	OrderParam      string `json:"order_param"`
}

// DefaultPaginationConfig returns default pagination configuration
func DefaultPaginationConfig() *PaginationConfig {
	return &PaginationConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		LimitParam:      "limit",
		OffsetParam:     "offset",
		SortParam:       "sort",
		OrderParam:      "order",
	}
}

// PaginationParser extracts pagination parameters from request queries.
type PaginationParser struct {
	config *PaginationConfig
}

// NewPaginationParser creates a parser with the given configuration.
func NewPaginationParser(config *PaginationConfig) *PaginationParser {
	if config == nil {
		config = DefaultPaginationConfig()
	}
	return &PaginationParser{config: config}
}

// Parse reads limit/offset/sort/order from the request query, clamping
// out-of-range values rather than rejecting them.
func (p *PaginationParser) Parse(r *http.Request) *models.PaginationParams {
	query := r.URL.Query()

	limit := p.config.DefaultPageSize
	if raw := query.Get(p.config.LimitParam); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > p.config.MaxPageSize {
		limit = p.config.MaxPageSize
	}

	offset := 0
	if raw := query.Get(p.config.OffsetParam); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return &models.PaginationParams{
		Limit:  limit,
		Offset: offset,
		Sort:   query.Get(p.config.SortParam),
		Order:  query.Get(p.config.OrderParam),
	}
}
