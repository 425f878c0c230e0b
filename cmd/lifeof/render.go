package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/whoop"
)

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func renderAttributes(w io.Writer, defs []model.AttributeDefinition) {
	if len(defs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No attributes defined yet."))
		return
	}
	for _, d := range defs {
		flags := []string{lifelog.NormalizePeriod(d.DayPeriod)}
		if !d.Active {
			flags = append(flags, "inactive")
		}
		if !d.DefaultVisible {
			flags = append(flags, "optional")
		}
		label := d.Label
		if u := str(d.Unit); u != "" {
			label += " (" + u + ")"
		}
		fmt.Fprintf(w, "%s  %-24s %-20s %s %s\n",
			dimStyle.Render(d.ID), label, d.Name, str(d.Category), dimStyle.Render("["+strings.Join(flags, ", ")+"]"))
	}
}

func renderEntry(w io.Writer, e model.Entry) {
	fmt.Fprintf(w, "%s %s %s  %s\n",
		headerStyle.Render(e.Date), strings.ToUpper(lifelog.NormalizePeriod(e.DayPeriod)), visibilityBadge(e.Visibility), dimStyle.Render(e.ID))
	for _, a := range e.Attributes {
		line := fmt.Sprintf("  %-20s %s %s", a.Name, a.Value, str(a.Unit))
		if n := str(a.Note); n != "" {
			line += dimStyle.Render("  # " + n)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	for _, n := range e.Notes {
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render(n.CreatedAt.Format("2006-01-02 15:04")), n.Content)
	}
}

func renderDashboard(w io.Writer, groups []lifelog.DateGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No entries yet."))
		return
	}
	for _, g := range groups {
		for _, e := range g.Entries {
			renderEntry(w, e)
		}
	}
}

func renderHistory(w io.Writer, months []lifelog.MonthGroup) {
	if len(months) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No entries yet."))
		return
	}
	for _, m := range months {
		fmt.Fprintln(w, titleStyle.Render(m.Label))
		for _, d := range m.Days {
			periods := make([]string, 0, len(d.Entries))
			for _, e := range d.Entries {
				periods = append(periods, strings.ToUpper(lifelog.NormalizePeriod(e.DayPeriod)))
			}
			fmt.Fprintf(w, "  %s  %s\n", d.Date, strings.Join(periods, " "))
		}
	}
}

func renderHome(w io.Writer, views []lifelog.DailyView) {
	if len(views) == 0 {
		fmt.Fprintln(w, dimStyle.Render("Nothing public yet."))
		return
	}
	for _, v := range views {
		fmt.Fprintln(w, titleStyle.Render(v.Date))
		for _, slot := range []struct {
			name  string
			entry *model.Entry
		}{{"AM", v.AM}, {"PM", v.PM}} {
			if slot.entry == nil {
				continue
			}
			fmt.Fprintln(w, headerStyle.Render("  "+slot.name))
			for _, a := range slot.entry.Attributes {
				fmt.Fprintf(w, "    %-20s %s %s\n", a.Name, a.Value, str(a.Unit))
			}
		}
		for _, n := range v.Notes {
			fmt.Fprintf(w, "  - %s\n", n.Content)
		}
	}
}

func renderWhoopStatus(w io.Writer, st *model.WhoopStatus) {
	if st.Connected {
		fmt.Fprintln(w, okStyle.Render(st.Message))
		fmt.Fprintf(w, "  token expires in %ds, refresh token: %t\n", st.ExpiresIn, st.HasRefreshToken)
		return
	}
	fmt.Fprintln(w, warningStyle.Render(st.Message))
}

// renderWhoopData summarises the live snapshot: profile name and the newest
// recovery. Keys holding an error object are reported as such.
func renderWhoopData(w io.Writer, data map[string]json.RawMessage) {
	if len(data) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No WHOOP data."))
		return
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var failed struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data[k], &failed) == nil && failed.Error != "" {
			fmt.Fprintf(w, "  %-18s %s\n", k, warningStyle.Render(failed.Error))
			continue
		}
		switch k {
		case "profile":
			var p struct {
				FirstName string `json:"first_name"`
				LastName  string `json:"last_name"`
			}
			_ = json.Unmarshal(data[k], &p)
			fmt.Fprintf(w, "  %-18s %s\n", k, strings.TrimSpace(p.FirstName+" "+p.LastName))
		case "recovery":
			var page whoop.Page
			_ = json.Unmarshal(data[k], &page)
			if len(page.Records) == 0 {
				fmt.Fprintf(w, "  %-18s %s\n", k, dimStyle.Render("no records"))
				continue
			}
			var r whoop.Recovery
			_ = json.Unmarshal(page.Records[0], &r)
			var score, rhr, hrv *float64
			if r.Score != nil {
				score, rhr, hrv = r.Score.RecoveryScore, r.Score.RestingHeartRate, r.Score.HRVRmssdMilli
			}
			fmt.Fprintf(w, "  %-18s score %s  rhr %s  hrv %s\n", k, num(score), num(rhr), num(hrv))
		default:
			var page whoop.Page
			if json.Unmarshal(data[k], &page) == nil && page.Records != nil {
				fmt.Fprintf(w, "  %-18s %d records\n", k, len(page.Records))
			} else {
				fmt.Fprintf(w, "  %-18s ok\n", k)
			}
		}
	}
}

func renderSync(w io.Writer, resp *model.SyncResponse) {
	fmt.Fprintln(w, okStyle.Render(resp.Message))
	keys := make([]string, 0, len(resp.Details))
	for k := range resp.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d := resp.Details[k]
		if d.Error != "" {
			fmt.Fprintf(w, "  %-10s %s\n", k, warningStyle.Render(d.Error))
			continue
		}
		fmt.Fprintf(w, "  %-10s %s\n", k, d.Message)
	}
}

func renderInsights(w io.Writer, insights []string) {
	for _, s := range insights {
		fmt.Fprintf(w, "  * %s\n", s)
	}
}

func renderCharts(w io.Writer, ov model.ChartsOverview, r lifelog.Range) {
	fmt.Fprintln(w, titleStyle.Render("Overview ("+r.Token+")"))

	fmt.Fprintln(w, headerStyle.Render("Recovery"))
	for _, p := range ov.Recovery.Trend {
		fmt.Fprintf(w, "  %s  score %5s  rhr %5s  hrv %5s  spo2 %5s  temp %5s\n",
			p.Date, num(p.RecoveryScore), num(p.RHR), num(p.HRV), num(p.SpO2), num(p.Temp))
	}
	a := ov.Recovery.Averages
	fmt.Fprintf(w, "  %s score %s  rhr %s  hrv %s\n", dimStyle.Render("avg"), num(a.RecoveryScore), num(a.RHR), num(a.HRV))
	renderInsights(w, ov.Recovery.Insights)

	fmt.Fprintln(w, headerStyle.Render("Sleep"))
	for _, s := range lifelog.SleepComposition(ov.Sleep.Trend) {
		fmt.Fprintf(w, "  %s  light %4.1fh  deep %4.1fh  rem %4.1fh\n", s.Date, s.Light, s.Deep, s.REM)
	}
	sa := ov.Sleep.Averages
	fmt.Fprintf(w, "  %s performance %s  efficiency %s  total %sh\n", dimStyle.Render("avg"), num(sa.Performance), num(sa.Efficiency), num(sa.Total))
	renderInsights(w, ov.Sleep.Insights)

	fmt.Fprintln(w, headerStyle.Render("Workouts"))
	for _, p := range ov.Workouts.Trend {
		fmt.Fprintf(w, "  %s  %-14s strain %5s  avg hr %5s  kJ %6s\n", p.Date, p.Sport, num(p.Strain), num(p.AvgHR), num(p.Energy))
	}
	renderInsights(w, ov.Workouts.Insights)

	fmt.Fprintln(w, headerStyle.Render("HRV vs recovery"))
	pts := lifelog.ScatterPoints(ov.Recovery.Trend)
	bands := map[string]int{}
	for _, p := range pts {
		bands[p.Band]++
	}
	fmt.Fprintf(w, "  %d points (rhr normal %d, elevated %d, high %d)\n",
		len(pts), bands[lifelog.BandNormal], bands[lifelog.BandElevated], bands[lifelog.BandHigh])
	if t, ok := lifelog.FitTrend(pts); ok {
		fmt.Fprintf(w, "  trend y = %.3fx %+.3f from (%.1f, %.1f) to (%.1f, %.1f)\n",
			t.Slope, t.Intercept, t.Start.X, t.Start.Y, t.End.X, t.End.Y)
	} else {
		fmt.Fprintln(w, dimStyle.Render("  not enough points for a trend line"))
	}

	fmt.Fprintln(w, headerStyle.Render("Longevity"))
	fmt.Fprintf(w, "  index %s\n", num(ov.Longevity.Score))
	renderInsights(w, ov.Longevity.Insights)
}
