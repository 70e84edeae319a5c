package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffee_predictions_total",
		Help: "Total number of predictions computed, by label.",
	}, []string{"label"})
	predictionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffee_predictions_failed_total",
		Help: "Total number of prediction failures, by reason.",
	}, []string{"reason"})
	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coffee_prediction_duration_seconds",
		Help:    "Duration of a single classifier call.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
	weatherLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffee_weather_lookups_total",
		Help: "Total number of weather lookups that returned a reading.",
	})
	weatherLookupsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffee_weather_lookups_failed_total",
		Help: "Total number of failed weather lookups, by reason.",
	}, []string{"reason"})
	geocodeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffee_geocode_cache_hits_total",
		Help: "Total number of geocoding results served from Redis.",
	})
	historyAppends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffee_history_appends_total",
		Help: "Total number of history records written.",
	})
	historyAppendsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffee_history_appends_failed_total",
		Help: "Total number of history writes that failed.",
	})
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coffee_prediction_events_published_total",
		Help: "Total number of prediction events published, by sink.",
	}, []string{"sink"})
)
