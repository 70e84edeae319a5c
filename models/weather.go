package models

type WeatherReading struct {
	City         string  `json:"city"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	TemperatureC float64 `json:"temperature_c"`
}

type RoastSuggestion struct {
	Roast     string `json:"roast"`
	Rationale string `json:"rationale"`
}
