package query

import (
	"fmt"

	"mercator-hq/gatekeeper/pkg/evidence"
)

const (
	// DefaultLimit is the number of records returned when none is requested.
	DefaultLimit = 100

	// MaxLimit is the maximum number of records a single query may return.
	MaxLimit = 10000
)

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
	"":     true,
}

// ValidStatuses contains the valid run status filters.
var ValidStatuses = map[string]bool{
	"passed":  true,
	"warning": true,
	"failed":  true,
	"":        true,
}

// Validate checks query parameters and applies defaults in place.
// It returns a *evidence.QueryError describing the first problem found.
func Validate(q *evidence.Query) error {
	if q == nil {
		return evidence.NewQueryError(nil, fmt.Errorf("query is nil"))
	}

	if q.Limit < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("limit must be non-negative, got %d", q.Limit))
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		return evidence.NewQueryError(q, fmt.Errorf("limit %d exceeds maximum %d", q.Limit, MaxLimit))
	}

	if q.Offset < 0 {
		return evidence.NewQueryError(q, fmt.Errorf("offset must be non-negative, got %d", q.Offset))
	}

	if !ValidSortOrders[q.SortOrder] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid sort order %q", q.SortOrder))
	}

	if !ValidStatuses[q.Status] {
		return evidence.NewQueryError(q, fmt.Errorf("invalid status filter %q", q.Status))
	}

	if q.Since != nil && q.Until != nil && q.Since.After(*q.Until) {
		return evidence.NewQueryError(q, fmt.Errorf("since is after until"))
	}

	return nil
}
