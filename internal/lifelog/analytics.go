package lifelog

import (
	"math"

	"github.com/jkor2/lifeof/internal/model"
)

// Mean averages the non-nil values, rounded to two places. Nil when there is nothing to average.
func Mean(values []*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := round(sum/float64(n), 2)
	return &m
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func collect[T any](trend []T, field func(T) *float64) []*float64 {
	out := make([]*float64, len(trend))
	for i, t := range trend {
		out[i] = field(t)
	}
	return out
}

func AverageRecovery(trend []model.RecoveryPoint) model.RecoveryAverages {
	return model.RecoveryAverages{
		RecoveryScore: Mean(collect(trend, func(p model.RecoveryPoint) *float64 { return p.RecoveryScore })),
		RHR:           Mean(collect(trend, func(p model.RecoveryPoint) *float64 { return p.RHR })),
		HRV:           Mean(collect(trend, func(p model.RecoveryPoint) *float64 { return p.HRV })),
		SpO2:          Mean(collect(trend, func(p model.RecoveryPoint) *float64 { return p.SpO2 })),
		Temp:          Mean(collect(trend, func(p model.RecoveryPoint) *float64 { return p.Temp })),
	}
}

func AverageSleep(trend []model.SleepPoint) model.SleepAverages {
	return model.SleepAverages{
		Performance: Mean(collect(trend, func(p model.SleepPoint) *float64 { return p.Performance })),
		Efficiency:  Mean(collect(trend, func(p model.SleepPoint) *float64 { return p.Efficiency })),
		REM:         Mean(collect(trend, func(p model.SleepPoint) *float64 { return p.REM })),
		Deep:        Mean(collect(trend, func(p model.SleepPoint) *float64 { return p.Deep })),
		Total:       Mean(collect(trend, func(p model.SleepPoint) *float64 { return p.Total })),
		RespRate:    Mean(collect(trend, func(p model.SleepPoint) *float64 { return p.RespRate })),
	}
}

func AverageWorkouts(trend []model.WorkoutPoint) model.WorkoutAverages {
	return model.WorkoutAverages{
		Strain:       Mean(collect(trend, func(p model.WorkoutPoint) *float64 { return p.Strain })),
		AvgHR:        Mean(collect(trend, func(p model.WorkoutPoint) *float64 { return p.AvgHR })),
		Distance:     Mean(collect(trend, func(p model.WorkoutPoint) *float64 { return p.Distance })),
		AltitudeGain: Mean(collect(trend, func(p model.WorkoutPoint) *float64 { return p.AltitudeGain })),
		Energy:       Mean(collect(trend, func(p model.WorkoutPoint) *float64 { return p.Energy })),
	}
}

// A zero average reads as "no data" in every rule below.

func RecoveryInsights(a model.RecoveryAverages) []string {
	out := []string{}
	if present(a.HRV) && *a.HRV < 50 {
		out = append(out, "Low HRV trend: potential stress or overtraining.")
	}
	if present(a.RHR) && *a.RHR > 60 {
		out = append(out, "Elevated RHR: body still recovering from workload.")
	}
	if present(a.SpO2) && *a.SpO2 < 95 {
		out = append(out, "Slight drop in SpO2 levels: prioritize breathing quality.")
	}
	if present(a.Temp) && *a.Temp > 36.8 {
		out = append(out, "Skin temperature elevated: possible early fatigue or illness.")
	}
	return out
}

func SleepInsights(a model.SleepAverages) []string {
	out := []string{}
	if present(a.Efficiency) && *a.Efficiency < 85 {
		out = append(out, "Sleep efficiency below optimal: maintain a consistent bedtime.")
	}
	if present(a.Deep) && *a.Deep < 1.0 {
		out = append(out, "Low deep sleep: reduce stimulants and screens before bed.")
	}
	if present(a.RespRate) && *a.RespRate > 18 {
		out = append(out, "Elevated respiratory rate: possible signs of poor recovery.")
	}
	if present(a.Total) && *a.Total < 7 {
		out = append(out, "Average sleep below 7 hours: aim for 7 to 8 hours nightly.")
	}
	if present(a.REM) && *a.REM < 1.5 {
		out = append(out, "Low REM sleep: may indicate mental or emotional fatigue.")
	}
	return out
}

func WorkoutInsights(a model.WorkoutAverages) []string {
	out := []string{}
	switch {
	case present(a.Strain) && *a.Strain > 15:
		out = append(out, "High training load: ensure recovery and proper hydration.")
	case present(a.Strain) && *a.Strain < 10:
		out = append(out, "Light training trend: could add higher intensity sessions.")
	}
	if present(a.Distance) && *a.Distance < 3000 {
		out = append(out, "Low weekly distance: aim for longer endurance sessions.")
	}
	if present(a.Energy) && *a.Energy > 2000 {
		out = append(out, "Strong energy output trend: keep balancing with rest.")
	}
	return out
}

// Longevity blends recovery, sleep efficiency and inverse strain into one
// score; it is only produced when all three averages are present.
func Longevity(recovery, efficiency, strain *float64) model.Longevity {
	l := model.Longevity{Insights: []string{}}
	if !present(recovery) || !present(efficiency) || !present(strain) {
		return l
	}
	score := round(*recovery*0.4+*efficiency*0.4+(20-*strain)*0.2, 1)
	l.Score = &score
	switch {
	case score > 80:
		l.Insights = append(l.Insights, "Excellent physiological balance: maintain this mix.")
	case score > 60:
		l.Insights = append(l.Insights, "Good longevity potential: improve sleep for optimal performance.")
	default:
		l.Insights = append(l.Insights, "Fatigue warning: strain outweighs recovery capacity.")
	}
	return l
}

type SleepStages struct {
	Date  string
	Light float64
	Deep  float64
	REM   float64
}

// SleepComposition splits each night into light, deep and REM hours;
// light is whatever the total leaves after deep and REM.
func SleepComposition(trend []model.SleepPoint) []SleepStages {
	out := make([]SleepStages, 0, len(trend))
	for _, s := range trend {
		deep, rem := value(s.Deep), value(s.REM)
		out = append(out, SleepStages{
			Date:  s.Date,
			Light: value(s.Total) - (rem + deep),
			Deep:  deep,
			REM:   rem,
		})
	}
	return out
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
