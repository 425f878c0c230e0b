package lifelog

import (
	"fmt"
	"time"
)

const DefaultRange = "30d"

// Range is a charts window. Days == 0 means no filtering.
type Range struct {
	Token string
	Days  int
}

var ranges = map[string]int{"7d": 7, "14d": 14, "30d": 30, "90d": 90, "all": 0}

func ParseRange(token string) (Range, error) {
	days, ok := ranges[token]
	if !ok {
		return Range{}, fmt.Errorf("unknown range %q (want 7d, 14d, 30d, 90d or all)", token)
	}
	return Range{Token: token, Days: days}, nil
}

func (r Range) All() bool { return r.Days == 0 }

// Includes reports whether date falls on a calendar day strictly after
// now minus r.Days, judged in now's location.
func (r Range) Includes(date string, now time.Time) bool {
	if r.All() {
		return true
	}
	if len(date) > len(dateLayout) {
		date = date[:len(dateLayout)]
	}
	day, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -r.Days)
	return day.After(cutoff)
}

// FilterByRange keeps the records whose date (from dateOf) is inside r.
func FilterByRange[T any](records []T, dateOf func(T) string, r Range, now time.Time) []T {
	if r.All() {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if r.Includes(dateOf(rec), now) {
			out = append(out, rec)
		}
	}
	return out
}
