package model

type RecoveryPoint struct {
	Date          string   `json:"date"`
	RecoveryScore *float64 `json:"recovery_score"`
	RHR           *float64 `json:"rhr"`
	HRV           *float64 `json:"hrv"`
	SpO2          *float64 `json:"spo2"`
	Temp          *float64 `json:"temp"`
}

type SleepPoint struct {
	Date        string   `json:"date"`
	Performance *float64 `json:"performance"`
	Efficiency  *float64 `json:"efficiency"`
	REM         *float64 `json:"rem"`
	Deep        *float64 `json:"deep"`
	Total       *float64 `json:"total"`
	RespRate    *float64 `json:"resp_rate"`
}

type WorkoutPoint struct {
	Date         string   `json:"date"`
	Strain       *float64 `json:"strain"`
	AvgHR        *float64 `json:"avg_hr"`
	MaxHR        *float64 `json:"max_hr"`
	Distance     *float64 `json:"distance"`
	AltitudeGain *float64 `json:"altitude_gain"`
	Energy       *float64 `json:"energy"`
	Sport        string   `json:"sport"`
}

type RecoveryAverages struct {
	RecoveryScore *float64 `json:"recovery_score"`
	RHR           *float64 `json:"rhr"`
	HRV           *float64 `json:"hrv"`
	SpO2          *float64 `json:"spo2"`
	Temp          *float64 `json:"temp"`
}

type SleepAverages struct {
	Performance *float64 `json:"performance"`
	Efficiency  *float64 `json:"efficiency"`
	REM         *float64 `json:"rem"`
	Deep        *float64 `json:"deep"`
	Total       *float64 `json:"total"`
	RespRate    *float64 `json:"resp_rate"`
}

type WorkoutAverages struct {
	Strain       *float64 `json:"strain"`
	AvgHR        *float64 `json:"avg_hr"`
	Distance     *float64 `json:"distance"`
	AltitudeGain *float64 `json:"altitude_gain"`
	Energy       *float64 `json:"energy"`
}

type RecoveryChart struct {
	Trend    []RecoveryPoint  `json:"trend"`
	Averages RecoveryAverages `json:"averages"`
	Insights []string         `json:"insights"`
}

type SleepChart struct {
	Trend    []SleepPoint  `json:"trend"`
	Averages SleepAverages `json:"averages"`
	Insights []string      `json:"insights"`
}

type WorkoutChart struct {
	Trend    []WorkoutPoint  `json:"trend"`
	Averages WorkoutAverages `json:"averages"`
	Insights []string        `json:"insights"`
}

type Longevity struct {
	Score    *float64 `json:"score"`
	Insights []string `json:"insights"`
}

type ChartsOverview struct {
	Recovery    RecoveryChart `json:"recovery"`
	Sleep       SleepChart    `json:"sleep"`
	Workouts    WorkoutChart  `json:"workouts"`
	Longevity   Longevity     `json:"longevity"`
	GeneratedAt string        `json:"generated_at"`
}
