package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coffee-quality-api/config"
	"coffee-quality-api/models"
)

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
	} `json:"current_weather"`
}

// WeatherService resolves a city name and reads its current temperature
// from Open-Meteo compatible endpoints. Nothing is retried.
type WeatherService struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
	cache       *CacheService
	cacheTTL    time.Duration
}

func NewWeatherService(cfg config.WeatherConfig, cache *CacheService) *WeatherService {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherService{
		httpClient:  &http.Client{Timeout: timeout},
		geocodeURL:  cfg.GeocodeURL,
		forecastURL: cfg.ForecastURL,
		cache:       cache,
		cacheTTL:    cfg.CacheTTL(),
	}
}

func (s *WeatherService) Lookup(ctx context.Context, city string) (models.WeatherReading, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		weatherLookupsFailed.WithLabelValues("city_not_found").Inc()
		return models.WeatherReading{}, fmt.Errorf("%w: empty city name", ErrCityNotFound)
	}

	geo, err := s.resolveCity(ctx, city)
	if err != nil {
		weatherLookupsFailed.WithLabelValues(failureReason(err)).Inc()
		return models.WeatherReading{}, err
	}

	temp, err := s.currentTemperature(ctx, geo.Latitude, geo.Longitude)
	if err != nil {
		weatherLookupsFailed.WithLabelValues(failureReason(err)).Inc()
		return models.WeatherReading{}, err
	}

	name := geo.Name
	if name == "" {
		name = city
	}
	weatherLookups.Inc()
	return models.WeatherReading{
		City:         name,
		Latitude:     geo.Latitude,
		Longitude:    geo.Longitude,
		TemperatureC: temp,
	}, nil
}

func (s *WeatherService) resolveCity(ctx context.Context, city string) (geocodeResult, error) {
	cacheKey := "geocode:" + strings.ToLower(city)
	var cached geocodeResult
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("geocode cache read failed for city=%q: %v", city, err)
	} else if found {
		geocodeCacheHits.Inc()
		return cached, nil
	}

	query := "name=" + escapeQuery(city) + "&count=1"
	var resp geocodeResponse
	if err := s.getJSON(ctx, s.geocodeURL, query, &resp); err != nil {
		return geocodeResult{}, err
	}
	if len(resp.Results) == 0 {
		return geocodeResult{}, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	}

	geo := resp.Results[0]
	if err := s.cache.Set(ctx, cacheKey, geo, s.cacheTTL); err != nil {
		log.Printf("geocode cache write failed for city=%q: %v", city, err)
	}
	return geo, nil
}

func (s *WeatherService) currentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current_weather", "true")

	var resp forecastResponse
	if err := s.getJSON(ctx, s.forecastURL, params.Encode(), &resp); err != nil {
		return 0, err
	}
	if resp.CurrentWeather == nil || resp.CurrentWeather.Temperature == nil {
		return 0, fmt.Errorf("%w: response has no current_weather.temperature", ErrNetwork)
	}
	return *resp.CurrentWeather.Temperature, nil
}

// getJSON issues one GET bounded by the client timeout. Every failure is
// reported as ErrNetwork with the underlying message kept.
func (s *WeatherService) getJSON(ctx context.Context, endpoint, rawQuery string, dest interface{}) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrNetwork, u.Host, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response from %s: %w", ErrNetwork, u.Host, err)
	}
	return nil
}

// escapeQuery percent-encodes a query value, spaces as %20.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func failureReason(err error) string {
	if errors.Is(err, ErrCityNotFound) {
		return "city_not_found"
	}
	return "network"
}
