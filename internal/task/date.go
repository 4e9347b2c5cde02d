package task

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of Task.DueDate.
const DateLayout = "2006-01-02"

// ParseDueDate validates a due date and returns it in DateLayout. Besides
// YYYY-MM-DD it accepts "today" and "tomorrow" relative to now.
func ParseDueDate(raw string, now time.Time) (string, error) {
	value := strings.TrimSpace(raw)
	switch strings.ToLower(value) {
	case "":
		return "", ErrDateRequired
	case "today":
		return now.Format(DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(DateLayout), nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return parsed.Format(DateLayout), nil
}
