package httputil

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ParsePagination reads offset (>= 0, default 0) and limit (1..MaxLimit,
// default DefaultLimit) from the query string.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, ok := intQuery(c, "offset", 0)
	if !ok || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, ok = intQuery(c, "limit", DefaultLimit)
	if !ok || limit < 1 || limit > MaxLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxLimit)
	}

	return offset, limit, nil
}

// ParseTimeQuery reads an optional RFC3339 timestamp and returns it in UTC.
func ParseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)", name)
	}
	parsed = parsed.UTC()
	return &parsed, nil
}

// ParseUUIDQuery reads an optional UUID query parameter.
func ParseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be a UUID", name)
	}
	return &id, nil
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}
