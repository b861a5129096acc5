package order

import "fmt"

// Status represents the current state of an order in its lifecycle.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// forward lists the transitions the workshop may drive on its own.
var forward = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
}

// legacyLabels maps the labels older clients still send.
var legacyLabels = map[string]Status{
	"новая":       StatusNew,
	"в обработке": StatusInProgress,
	"завершена":   StatusCompleted,
}

// AllStatuses lists statuses in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusCompleted}
}

// IsValid returns true if the status is a recognized order status.
func (s Status) IsValid() bool {
	_, exists := forward[s]
	return exists
}

// CanAdvanceTo returns true if target is later in the lifecycle than s.
func (s Status) CanAdvanceTo(target Status) bool {
	for _, t := range forward[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the order cannot advance any further.
func (s Status) IsTerminal() bool {
	return len(forward[s]) == 0
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status; empty input means StatusNew.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusNew, nil
	}
	if legacy, ok := legacyLabels[s]; ok {
		return legacy, nil
	}
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid order status %q, allowed: %s, %s, %s", s, StatusNew, StatusInProgress, StatusCompleted)
	}
	return status, nil
}
