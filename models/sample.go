package models

import (
	"errors"
	"fmt"
	"math"
)

type Process string

const (
	ProcessNatural Process = "Natural"
	ProcessHoney   Process = "Honey"
	ProcessWashed  Process = "Washed"
)

// Processes lists the processing methods in the order they are offered.
var Processes = []Process{ProcessNatural, ProcessHoney, ProcessWashed}

const (
	MinCaffeineMg     = 50.0
	MaxCaffeineMg     = 200.0
	DefaultCaffeineMg = 120.0

	MinAcidityPH     = 0.1
	MaxAcidityPH     = 7.0
	DefaultAcidityPH = 5.0
)

// FeatureColumns is the fixed column order of a FeatureRow.
var FeatureColumns = []string{"Kadar Kafein", "Tingkat Keasaman", "Jenis Proses"}

var ErrInvalidSample = errors.New("invalid coffee sample")

type CoffeeSample struct {
	CaffeineMg float64 `json:"caffeine_mg"`
	AcidityPH  float64 `json:"acidity_ph"`
	Process    Process `json:"process"`
}

// FeatureRow is a single-row feature table handed to a classifier.
type FeatureRow struct {
	Caffeine float64
	Acidity  float64
	Process  string
}

func DefaultSample() CoffeeSample {
	return CoffeeSample{
		CaffeineMg: DefaultCaffeineMg,
		AcidityPH:  DefaultAcidityPH,
		Process:    ProcessNatural,
	}
}

func ParseProcess(s string) (Process, error) {
	for _, p := range Processes {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown process %q", ErrInvalidSample, s)
}

func (s CoffeeSample) Validate() error {
	if math.IsNaN(s.CaffeineMg) || s.CaffeineMg < MinCaffeineMg || s.CaffeineMg > MaxCaffeineMg {
		return fmt.Errorf("%w: caffeine_mg %v outside [%v, %v]", ErrInvalidSample, s.CaffeineMg, MinCaffeineMg, MaxCaffeineMg)
	}
	if math.IsNaN(s.AcidityPH) || s.AcidityPH < MinAcidityPH || s.AcidityPH > MaxAcidityPH {
		return fmt.Errorf("%w: acidity_ph %v outside [%v, %v]", ErrInvalidSample, s.AcidityPH, MinAcidityPH, MaxAcidityPH)
	}
	if _, err := ParseProcess(string(s.Process)); err != nil {
		return err
	}
	return nil
}

func (s CoffeeSample) Features() FeatureRow {
	return FeatureRow{
		Caffeine: s.CaffeineMg,
		Acidity:  s.AcidityPH,
		Process:  string(s.Process),
	}
}
