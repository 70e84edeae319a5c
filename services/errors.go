package services

import "errors"

var (
	// ErrModelUnavailable means the classifier artifact could not be loaded
	// at startup. Prediction stays disabled for the process lifetime.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInferenceError   = errors.New("inference failed")
	ErrCityNotFound     = errors.New("city not found")
	ErrNetwork          = errors.New("network error")
	ErrPersistence      = errors.New("history persistence failed")
)
