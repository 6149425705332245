package models

import "time"

// FilterCriteria holds the optional user search parameters.
// A nil field means the parameter was not supplied.
type FilterCriteria struct {
	Username   *string
	Birthday   *time.Time
	Email      *string
	Reactivate *bool
}

// Empty reports whether none of the filter parameters is set.
// Reactivate alone does not count as a filter.
func (c FilterCriteria) Empty() bool {
	return c.Username == nil && c.Birthday == nil && c.Email == nil
}
