package lifelog

import (
	"slices"
	"strings"
	"time"

	"github.com/jkor2/lifeof/internal/model"
)

const dateLayout = "2006-01-02"

type DateGroup struct {
	Date    string
	Entries []model.Entry
}

type MonthGroup struct {
	Key   string // 2006-01
	Label string // January 2006
	Days  []DateGroup
}

// DailyView is one card of the public home page.
type DailyView struct {
	Date  string
	AM    *model.Entry
	PM    *model.Entry
	Notes []model.Note
}

// GroupByDate buckets entries by exact date string. Groups come back newest
// first; inside a group AM entries (or entries without a period) precede PM.
func GroupByDate(entries []model.Entry) []DateGroup {
	index := make(map[string]int)
	var groups []DateGroup
	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			i = len(groups)
			index[e.Date] = i
			groups = append(groups, DateGroup{Date: e.Date})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	slices.SortStableFunc(groups, func(a, b DateGroup) int { return strings.Compare(b.Date, a.Date) })
	for i := range groups {
		slices.SortStableFunc(groups[i].Entries, func(a, b model.Entry) int {
			return strings.Compare(NormalizePeriod(a.DayPeriod), NormalizePeriod(b.DayPeriod))
		})
	}
	return groups
}

// GroupByMonth buckets entries by calendar month, newest month first, then by day.
func GroupByMonth(entries []model.Entry) []MonthGroup {
	index := make(map[string]int)
	var months []MonthGroup
	for _, g := range GroupByDate(entries) {
		key, label := monthOf(g.Date)
		i, ok := index[key]
		if !ok {
			i = len(months)
			index[key] = i
			months = append(months, MonthGroup{Key: key, Label: label})
		}
		months[i].Days = append(months[i].Days, g)
	}
	slices.SortStableFunc(months, func(a, b MonthGroup) int { return strings.Compare(b.Key, a.Key) })
	return months
}

func monthOf(date string) (key, label string) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		if len(date) >= 7 {
			return date[:7], date[:7]
		}
		return date, date
	}
	return t.Format("2006-01"), t.Format("January 2006")
}

// DailyViews folds each date into its AM and PM slots. A second entry for
// the same slot replaces the first. Notes of both periods are kept, AM first.
func DailyViews(entries []model.Entry) []DailyView {
	groups := GroupByDate(entries)
	views := make([]DailyView, 0, len(groups))
	for _, g := range groups {
		v := DailyView{Date: g.Date}
		for i := range g.Entries {
			e := &g.Entries[i]
			switch NormalizePeriod(e.DayPeriod) {
			case model.PeriodAM:
				v.AM = e
			case model.PeriodPM:
				v.PM = e
			}
			v.Notes = append(v.Notes, e.Notes...)
		}
		views = append(views, v)
	}
	return views
}
