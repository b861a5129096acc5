package booking

import (
	"fmt"
	"time"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

// DateRange is a closed interval of calendar days. Both ends are included.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDate parses an ISO calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

// NewDateRange returns ErrInvalidDateRange when to is earlier than from.
func NewDateRange(from, to time.Time) (DateRange, error) {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{From: from, To: to}, nil
}

// Overlaps reports whether the two ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.From.After(other.To) && !r.To.Before(other.From)
}

// Days returns the number of days in the range.
func (r DateRange) Days() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
