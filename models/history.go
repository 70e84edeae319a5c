package models

import "time"

// HistoryTimestampLayout is the local-time layout of the Waktu column.
const HistoryTimestampLayout = "2006-01-02 15:04:05"

// HistoryHeader is the header row of the history file.
var HistoryHeader = []string{"Waktu", "Kafein", "pH", "Proses", "Prediksi", "Kepercayaan (%)"}

// HistoryRecord is one appended prediction. Seq is the store-assigned
// position, increasing in append order; it is zero until stored.
type HistoryRecord struct {
	ID             string    `gorm:"column:id;primaryKey" json:"-"`
	Seq            int64     `gorm:"column:seq;autoIncrement;uniqueIndex" json:"seq"`
	Timestamp      time.Time `gorm:"column:ts;index" json:"timestamp"`
	CaffeineMg     float64   `gorm:"column:caffeine_mg" json:"caffeine_mg"`
	AcidityPH      float64   `gorm:"column:acidity_ph" json:"acidity_ph"`
	Process        Process   `gorm:"column:process" json:"process"`
	PredictedLabel string    `gorm:"column:predicted_label" json:"predicted_label"`
	ConfidencePct  float64   `gorm:"column:confidence_pct" json:"confidence_pct"`
}

func (HistoryRecord) TableName() string { return "prediction_history" }

// NewHistoryRecord derives the record from a finished prediction; the
// confidence is always max(probabilities)*100 of result.
func NewHistoryRecord(at time.Time, sample CoffeeSample, result PredictionResult) HistoryRecord {
	return HistoryRecord{
		Timestamp:      at.Truncate(time.Second),
		CaffeineMg:     sample.CaffeineMg,
		AcidityPH:      sample.AcidityPH,
		Process:        sample.Process,
		PredictedLabel: result.Label,
		ConfidencePct:  result.ConfidencePct(),
	}
}
