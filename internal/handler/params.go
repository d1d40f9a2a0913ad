package handler

import (
	"fmt"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	"github.com/staynest/service-booking/pkg/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return page, limit
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, key string) (*civil.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := bookingDomain.ParseDate(raw)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("%s: %s", key, err.Error()))
	}
	return &d, nil
}

// queryDecimal parses an optional decimal query parameter.
func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("%s must be a number", key))
	}
	return &d, nil
}

// queryInt parses an optional integer query parameter; absent yields 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}
