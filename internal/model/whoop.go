package model

import "time"

// WhoopRecovery holds one daily recovery score. Only one row per RecordDate
// is written by the latest-sync path.
type WhoopRecovery struct {
	CycleID          string   `gorm:"primaryKey;type:varchar(32)" json:"cycle_id"`
	RecordDate       string   `gorm:"type:varchar(10);index" json:"record_date"`
	RecoveryScore    *float64 `json:"recovery_score"`
	RestingHeartRate *float64 `json:"resting_heart_rate"`
	HRVRmssdMilli    *float64 `json:"hrv_rmssd_milli"`
	SpO2Percentage   *float64 `json:"spo2_percentage"`
	SkinTempCelsius  *float64 `json:"skin_temp_celsius"`
}

type WhoopSleep struct {
	ID                         string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CycleID                    string     `gorm:"type:varchar(32)" json:"cycle_id"`
	Start                      *time.Time `json:"start"`
	End                        *time.Time `json:"end"`
	SleepPerformancePercentage *float64   `json:"sleep_performance_percentage"`
	SleepEfficiencyPercentage  *float64   `json:"sleep_efficiency_percentage"`
	RemSleepHours              *float64   `json:"rem_sleep_hours"`
	DeepSleepHours             *float64   `json:"deep_sleep_hours"`
	RespiratoryRate            *float64   `json:"respiratory_rate"`
	RecordDate                 string     `gorm:"type:varchar(10);index" json:"record_date"`
}

// TotalHours is the in-bed span, nil when either bound is missing.
func (s WhoopSleep) TotalHours() *float64 {
	if s.Start == nil || s.End == nil {
		return nil
	}
	h := s.End.Sub(*s.Start).Hours()
	return &h
}

type WhoopWorkout struct {
	ID                string   `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SportName         string   `gorm:"type:varchar(64)" json:"sport_name"`
	Strain            *float64 `json:"strain"`
	AverageHeartRate  *float64 `json:"average_heart_rate"`
	MaxHeartRate      *float64 `json:"max_heart_rate"`
	Kilojoule         *float64 `json:"kilojoule"`
	DistanceMeter     *float64 `json:"distance_meter"`
	AltitudeGainMeter *float64 `json:"altitude_gain_meter"`
	RecordDate        string   `gorm:"type:varchar(10);index" json:"record_date"`
}

func (WhoopRecovery) TableName() string { return "whoop_recovery" }
func (WhoopSleep) TableName() string    { return "whoop_sleep" }
func (WhoopWorkout) TableName() string  { return "whoop_workouts" }
