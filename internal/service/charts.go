package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/model"

	"gorm.io/gorm"
)

type ChartService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewChartService(db *gorm.DB, loc *time.Location) *ChartService {
	if loc == nil {
		loc = time.UTC
	}
	return &ChartService{db: db, loc: loc, now: time.Now}
}

// Overview builds the recovery, sleep and workout series (oldest first)
// inside r with their averages, insights and the longevity index.
func (s *ChartService) Overview(ctx context.Context, r lifelog.Range) (*model.ChartsOverview, error) {
	db := s.db.WithContext(ctx)

	var recovery []model.WhoopRecovery
	if err := db.Where("record_date <> ''").Order("record_date").Find(&recovery).Error; err != nil {
		return nil, fmt.Errorf("load recovery: %w", err)
	}
	var sleep []model.WhoopSleep
	if err := db.Where("record_date <> ''").Order("record_date").Find(&sleep).Error; err != nil {
		return nil, fmt.Errorf("load sleep: %w", err)
	}
	var workouts []model.WhoopWorkout
	if err := db.Where("record_date <> ''").Order("record_date").Find(&workouts).Error; err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}

	now := s.now().In(s.loc)
	recTrend := lifelog.FilterByRange(recoveryPoints(recovery), func(p model.RecoveryPoint) string { return p.Date }, r, now)
	sleepTrend := lifelog.FilterByRange(sleepPoints(sleep), func(p model.SleepPoint) string { return p.Date }, r, now)
	workTrend := lifelog.FilterByRange(workoutPoints(workouts), func(p model.WorkoutPoint) string { return p.Date }, r, now)

	recAvg := lifelog.AverageRecovery(recTrend)
	sleepAvg := lifelog.AverageSleep(sleepTrend)
	workAvg := lifelog.AverageWorkouts(workTrend)

	return &model.ChartsOverview{
		Recovery:    model.RecoveryChart{Trend: recTrend, Averages: recAvg, Insights: lifelog.RecoveryInsights(recAvg)},
		Sleep:       model.SleepChart{Trend: sleepTrend, Averages: sleepAvg, Insights: lifelog.SleepInsights(sleepAvg)},
		Workouts:    model.WorkoutChart{Trend: workTrend, Averages: workAvg, Insights: lifelog.WorkoutInsights(workAvg)},
		Longevity:   lifelog.Longevity(recAvg.RecoveryScore, sleepAvg.Efficiency, workAvg.Strain),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}, nil
}

func recoveryPoints(rows []model.WhoopRecovery) []model.RecoveryPoint {
	out := make([]model.RecoveryPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.RecoveryPoint{
			Date:          r.RecordDate,
			RecoveryScore: r.RecoveryScore,
			RHR:           r.RestingHeartRate,
			HRV:           r.HRVRmssdMilli,
			SpO2:          r.SpO2Percentage,
			Temp:          r.SkinTempCelsius,
		})
	}
	return out
}

func sleepPoints(rows []model.WhoopSleep) []model.SleepPoint {
	out := make([]model.SleepPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.SleepPoint{
			Date:        r.RecordDate,
			Performance: r.SleepPerformancePercentage,
			Efficiency:  r.SleepEfficiencyPercentage,
			REM:         r.RemSleepHours,
			Deep:        r.DeepSleepHours,
			Total:       r.TotalHours(),
			RespRate:    r.RespiratoryRate,
		})
	}
	return out
}

func workoutPoints(rows []model.WhoopWorkout) []model.WorkoutPoint {
	out := make([]model.WorkoutPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.WorkoutPoint{
			Date:         r.RecordDate,
			Strain:       r.Strain,
			AvgHR:        r.AverageHeartRate,
			MaxHR:        r.MaxHeartRate,
			Distance:     r.DistanceMeter,
			AltitudeGain: r.AltitudeGainMeter,
			Energy:       r.Kilojoule,
			Sport:        r.SportName,
		})
	}
	return out
}
