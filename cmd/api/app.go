package main

import (
	"fmt"
	"log"
	"time"

	"coffee-quality-api/config"
	"coffee-quality-api/services"
)

// app is everything a command needs, built once from the environment.
type app struct {
	cfg        *config.Config
	classifier *services.ClassifierService
	cache      *services.CacheService
	weather    *services.WeatherService
	history    services.HistoryStore
	mqtt       *services.MQTTPublisher
	deps       services.Dependencies
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.LoadConfig()
}

// newApp wires the services. A model that fails to load stops startup
// unless cfg.Model.Optional is set. Redis and MQTT failures fall back to
// running without them.
func newApp(cfg *config.Config) (*app, error) {
	classifier, err := services.NewClassifierServiceFromFile(cfg.Model.Path)
	if err != nil {
		if !cfg.Model.Optional {
			return nil, fmt.Errorf("load model: %w", err)
		}
		log.Printf("model unavailable, predictions disabled (MODEL_OPTIONAL=true): %v", err)
	} else {
		log.Printf("model loaded: %s classes=%v", cfg.Model.Path, classifier.Classes())
	}

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, continuing without cache: %v", err)
	}

	history, err := services.OpenHistoryStore(*cfg)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}
	log.Printf("history backend: %s", cfg.History.Backend)

	a := &app{
		cfg:        cfg,
		classifier: classifier,
		cache:      cache,
		weather:    services.NewWeatherService(cfg.Weather, cache),
		history:    history,
	}

	publishers := services.MultiPublisher{services.NewRedisPublisher(cache)}
	if cfg.MQTT.BrokerURL != "" {
		pub, err := services.NewMQTTPublisher(cfg.MQTT)
		if err != nil {
			log.Printf("mqtt unavailable, continuing without it: %v", err)
		} else {
			a.mqtt = pub
			publishers = append(publishers, pub)
		}
	}

	a.deps = services.Dependencies{
		Classifier: classifier,
		Weather:    a.weather,
		History:    history,
		Events:     publishers,
		Now:        time.Now,
	}
	return a, nil
}

func (a *app) Close() {
	if a.mqtt != nil {
		a.mqtt.Close()
	}
	if err := a.history.Close(); err != nil {
		log.Printf("warning: error closing history store: %v", err)
	}
	if err := a.cache.Close(); err != nil {
		log.Printf("warning: error closing redis: %v", err)
	}
}
