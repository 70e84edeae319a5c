package services

import (
	"fmt"

	"coffee-quality-api/models"
)

const (
	DarkRoast   = "Dark Roast"
	MediumRoast = "Medium Roast"
	LightRoast  = "Light Roast"

	coldBelowC = 20.0
	hotFromC   = 28.0
)

// Advise maps an ambient temperature to a roast level. Lower bounds are
// inclusive: 20°C is Medium, 28°C is Light.
func Advise(temperatureC float64) models.RoastSuggestion {
	switch {
	case temperatureC < coldBelowC:
		return models.RoastSuggestion{Roast: DarkRoast, Rationale: "cuaca dingin, cocok untuk kopi yang lebih pekat"}
	case temperatureC < hotFromC:
		return models.RoastSuggestion{Roast: MediumRoast, Rationale: "cuaca sejuk, rasa seimbang"}
	default:
		return models.RoastSuggestion{Roast: LightRoast, Rationale: "cuaca panas, cocok untuk kopi yang lebih segar"}
	}
}

func RoastMessage(reading models.WeatherReading, s models.RoastSuggestion) string {
	return fmt.Sprintf("Suhu di %s saat ini %.1f°C. Rekomendasi: %s (%s).",
		reading.City, reading.TemperatureC, s.Roast, s.Rationale)
}
