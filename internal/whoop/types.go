package whoop

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type ScoreState string

const (
	ScoreStateScored       ScoreState = "SCORED"
	ScoreStatePendingScore ScoreState = "PENDING_SCORE"
	ScoreStateUnscorable   ScoreState = "UNSCORABLE"
)

// Page is one response of a collection endpoint.
type Page struct {
	Records   []json.RawMessage `json:"records"`
	NextToken string            `json:"next_token"`
}

type Recovery struct {
	CycleID    int64          `json:"cycle_id"`
	SleepID    string         `json:"sleep_id"`
	UserID     int64          `json:"user_id"`
	CreatedAt  *time.Time     `json:"created_at"`
	UpdatedAt  *time.Time     `json:"updated_at"`
	ScoreState ScoreState     `json:"score_state"`
	Score      *RecoveryScore `json:"score"`
}

// Score values are pointers: WHOOP omits them on unscored records and an
// absent reading must not turn into 0.
type RecoveryScore struct {
	UserCalibrating  bool     `json:"user_calibrating"`
	RecoveryScore    *float64 `json:"recovery_score"`
	RestingHeartRate *float64 `json:"resting_heart_rate"`
	HRVRmssdMilli    *float64 `json:"hrv_rmssd_milli"`
	SpO2Percentage   *float64 `json:"spo2_percentage"`
	SkinTempCelsius  *float64 `json:"skin_temp_celsius"`
}

type Sleep struct {
	ID         string      `json:"id"`
	CycleID    int64       `json:"cycle_id"`
	UserID     int64       `json:"user_id"`
	Start      *time.Time  `json:"start"`
	End        *time.Time  `json:"end"`
	Nap        bool        `json:"nap"`
	ScoreState ScoreState  `json:"score_state"`
	Score      *SleepScore `json:"score"`
}

type SleepScore struct {
	StageSummary               *StageSummary `json:"stage_summary"`
	RespiratoryRate            *float64      `json:"respiratory_rate"`
	SleepPerformancePercentage *float64      `json:"sleep_performance_percentage"`
	SleepConsistencyPercentage *float64      `json:"sleep_consistency_percentage"`
	SleepEfficiencyPercentage  *float64      `json:"sleep_efficiency_percentage"`
}

type StageSummary struct {
	TotalInBedTimeMilli         int64 `json:"total_in_bed_time_milli"`
	TotalAwakeTimeMilli         int64 `json:"total_awake_time_milli"`
	TotalLightSleepTimeMilli    int64 `json:"total_light_sleep_time_milli"`
	TotalSlowWaveSleepTimeMilli int64 `json:"total_slow_wave_sleep_time_milli"`
	TotalREMSleepTimeMilli      int64 `json:"total_rem_sleep_time_milli"`
	SleepCycleCount             int   `json:"sleep_cycle_count"`
	DisturbanceCount            int   `json:"disturbance_count"`
}

type Workout struct {
	ID         string        `json:"id"`
	UserID     int64         `json:"user_id"`
	Start      *time.Time    `json:"start"`
	End        *time.Time    `json:"end"`
	SportName  string        `json:"sport_name"`
	ScoreState ScoreState    `json:"score_state"`
	Score      *WorkoutScore `json:"score"`
}

type WorkoutScore struct {
	Strain            *float64 `json:"strain"`
	AverageHeartRate  *float64 `json:"average_heart_rate"`
	MaxHeartRate      *float64 `json:"max_heart_rate"`
	Kilojoule         *float64 `json:"kilojoule"`
	PercentRecorded   *float64 `json:"percent_recorded"`
	DistanceMeter     *float64 `json:"distance_meter"`
	AltitudeGainMeter *float64 `json:"altitude_gain_meter"`
}

// Dump is the on-disk shape of a full history export.
type Dump struct {
	Recovery []json.RawMessage `json:"recovery"`
	Sleep    []json.RawMessage `json:"sleep"`
	Workouts []json.RawMessage `json:"workouts"`
}

// ReadDump loads a dump written by a full sync.
func ReadDump(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dump %s: %w", path, err)
	}
	return &d, nil
}
