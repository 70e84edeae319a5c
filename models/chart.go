package models

import "time"

const ChartTitle = "Distribusi Probabilitas Prediksi"

// CoffeePalette colors the bars, cycled when there are more classes.
var CoffeePalette = []string{"#3E2723", "#6D4C41", "#A1887F", "#D7CCC8", "#EFEBE9"}

type ChartBar struct {
	Class       string  `json:"class"`
	Probability float64 `json:"probability"`
	Color       string  `json:"color"`
}

// ChartSpec is a bar-chart visualization request for the presentation layer.
type ChartSpec struct {
	Title string     `json:"title"`
	XAxis string     `json:"x_axis"`
	YAxis string     `json:"y_axis"`
	Bars  []ChartBar `json:"bars"`
}

func NewChartSpec(result PredictionResult) ChartSpec {
	bars := make([]ChartBar, len(result.Probabilities))
	for i, p := range result.Probabilities {
		bars[i] = ChartBar{
			Class:       p.Class,
			Probability: p.Probability,
			Color:       CoffeePalette[i%len(CoffeePalette)],
		}
	}
	return ChartSpec{
		Title: ChartTitle,
		XAxis: "Kualitas",
		YAxis: "Probabilitas",
		Bars:  bars,
	}
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ThemeAt is dark from 18:00 until 06:00 local time.
func ThemeAt(t time.Time) Theme {
	h := t.Hour()
	if h >= 18 || h < 6 {
		return ThemeDark
	}
	return ThemeLight
}
