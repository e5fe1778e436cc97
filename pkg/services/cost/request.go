package cost

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// DefaultWindowDays is the report window used when no start date is given
const DefaultWindowDays = 7

// ParseWindow resolves the report window from YYYY-MM-DD bounds. A missing end means
// today, a missing start means days before the end.
func ParseWindow(start, end string, days int, now time.Time) (time.Time, time.Time, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}

	to := now.UTC().Truncate(24 * time.Hour)
	if end != "" {
		t, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end date format, expected YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		to = t
	}

	from := to.AddDate(0, 0, -days)
	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start date format, expected YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		from = t
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s is after end %s",
			domain.ErrInvalidRequest, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return from, to, nil
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
