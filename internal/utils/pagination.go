package utils

import (
	"strconv"

	"github.com/critiq-dev/critiq/internal/types"
	"github.com/gin-gonic/gin"
)

// PageParams reads the page and page_size query parameters and returns the
// matching limit/offset. Pages are 1-based; out-of-range values fall back to
// the defaults and page_size is capped.
func PageParams(ctx *gin.Context) (limit, offset int) {
	page := 1

	if raw := ctx.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	limit = types.PageSize()

	if raw := ctx.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			if n > types.MaxPageSize {
				n = types.MaxPageSize
			}
			limit = n
		}
	}

	return limit, (page - 1) * limit
}

// PageResponse is the envelope every list endpoint returns.
type PageResponse struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}
