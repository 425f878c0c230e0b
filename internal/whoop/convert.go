package whoop

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/jkor2/lifeof/internal/model"
)

const millisPerHour = 3600000.0

// Location resolves the zone record dates are computed in; empty is UTC.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// RecordDate is the calendar day of t in loc, "" when t is unknown.
func RecordDate(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02")
}

// Recovery rows are dated by creation time, sleep and workouts by their end.

func ToRecovery(r Recovery, loc *time.Location) model.WhoopRecovery {
	row := model.WhoopRecovery{
		CycleID:    strconv.FormatInt(r.CycleID, 10),
		RecordDate: RecordDate(r.CreatedAt, loc),
	}
	if s := r.Score; s != nil {
		row.RecoveryScore = s.RecoveryScore
		row.RestingHeartRate = s.RestingHeartRate
		row.HRVRmssdMilli = s.HRVRmssdMilli
		row.SpO2Percentage = s.SpO2Percentage
		row.SkinTempCelsius = s.SkinTempCelsius
	}
	return row
}

func ToSleep(s Sleep, loc *time.Location) model.WhoopSleep {
	row := model.WhoopSleep{
		ID:         s.ID,
		CycleID:    strconv.FormatInt(s.CycleID, 10),
		Start:      s.Start,
		End:        s.End,
		RecordDate: RecordDate(s.End, loc),
	}
	if sc := s.Score; sc != nil {
		row.SleepPerformancePercentage = sc.SleepPerformancePercentage
		row.SleepEfficiencyPercentage = sc.SleepEfficiencyPercentage
		row.RespiratoryRate = sc.RespiratoryRate
		if st := sc.StageSummary; st != nil {
			rem := float64(st.TotalREMSleepTimeMilli) / millisPerHour
			deep := float64(st.TotalSlowWaveSleepTimeMilli) / millisPerHour
			row.RemSleepHours = &rem
			row.DeepSleepHours = &deep
		}
	}
	return row
}

func ToWorkout(w Workout, loc *time.Location) model.WhoopWorkout {
	row := model.WhoopWorkout{
		ID:         w.ID,
		SportName:  w.SportName,
		RecordDate: RecordDate(w.End, loc),
	}
	if sc := w.Score; sc != nil {
		row.Strain = sc.Strain
		row.AverageHeartRate = sc.AverageHeartRate
		row.MaxHeartRate = sc.MaxHeartRate
		row.Kilojoule = sc.Kilojoule
		row.DistanceMeter = sc.DistanceMeter
		row.AltitudeGainMeter = sc.AltitudeGainMeter
	}
	return row
}

func DecodeRecovery(raw json.RawMessage, loc *time.Location) (model.WhoopRecovery, error) {
	var r Recovery
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.WhoopRecovery{}, err
	}
	return ToRecovery(r, loc), nil
}

func DecodeSleep(raw json.RawMessage, loc *time.Location) (model.WhoopSleep, error) {
	var s Sleep
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.WhoopSleep{}, err
	}
	return ToSleep(s, loc), nil
}

func DecodeWorkout(raw json.RawMessage, loc *time.Location) (model.WhoopWorkout, error) {
	var w Workout
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.WhoopWorkout{}, err
	}
	return ToWorkout(w, loc), nil
}
