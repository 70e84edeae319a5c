package handlers

import (
	"net/http"

	"coffee-quality-api/config"
	"coffee-quality-api/middleware"
	"coffee-quality-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Classifier *services.ClassifierService
	Registry   *services.SessionRegistry
	History    services.HistoryStore
	Cache      *services.CacheService
	Sessions   *services.SessionService
}

func NewRouter(cfg *config.Config, deps RouterDeps) *gin.Engine {
	router := gin.Default()

	// Bound after the routes are registered so CORS knows their methods.
	var corsHandler gin.HandlerFunc
	router.Use(func(c *gin.Context) { corsHandler(c) })

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "UP",
			"message":      "Coffee Quality API is running",
			"model_loaded": deps.Classifier.Available(),
			"redis":        deps.Cache.Available(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	coffee := NewCoffeeHandler(deps.Registry, deps.Classifier, deps.Registry.Dependencies().Now)
	history := NewHistoryHandler(deps.History)

	api := router.Group("/api")
	api.GET("/options", coffee.Options)
	api.GET("/history", history.GetHistory)

	session := api.Group("")
	session.Use(middleware.Session(deps.Sessions))
	session.POST("/predict", coffee.Predict)
	session.GET("/weather", coffee.Weather)
	session.GET("/session", coffee.Session)

	router.GET("/ws/predictions", PredictionFeed(deps.Cache))

	corsHandler = middleware.SetupCORS(cfg.CORS, router.Routes())
	return router
}
