package booking

import (
	"context"
	"fmt"
)

// ConflictChecker decides whether a requested range collides with stored bookings.
type ConflictChecker struct {
	calendar Calendar
}

// NewConflictChecker creates a ConflictChecker reading from calendar.
func NewConflictChecker(calendar Calendar) *ConflictChecker {
	return &ConflictChecker{calendar: calendar}
}

// HasConflict reports whether any booking of costumeID, other than exclude,
// overlaps r. Callers validate r first.
func (c *ConflictChecker) HasConflict(ctx context.Context, costumeID int64, r DateRange, exclude *Ref) (bool, error) {
	entries, err := c.calendar.FindOverlapping(ctx, costumeID, &r)
	if err != nil {
		return false, fmt.Errorf("failed to load costume calendar: %w", err)
	}
	for _, e := range entries {
		if exclude != nil && e.Ref() == *exclude {
			continue
		}
		if e.Range.Overlaps(r) {
			return true, nil
		}
	}
	return false, nil
}
