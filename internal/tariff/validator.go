package tariff

import (
	"fmt"
	"strings"

	"tariffsvc/internal/domain"
)

// ValidatePagination rejects rather than clamps: two logical queries
// must never collide on the same cache key.
func ValidatePagination(limit, offset int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", domain.ErrInvalidArgument, offset)
	}
	return nil
}

// NormalizeBase maps a raw filter value onto the canonical code form
// used as comparison and cache keys. Empty means no filter.
func NormalizeBase(base string) string {
	return strings.ToUpper(strings.TrimSpace(base))
}
