package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"coffee-quality-api/middleware"
	"coffee-quality-api/models"
	"coffee-quality-api/services"

	"github.com/gin-gonic/gin"
)

type CoffeeHandler struct {
	registry   *services.SessionRegistry
	classifier *services.ClassifierService
	now        func() time.Time
}

func NewCoffeeHandler(registry *services.SessionRegistry, classifier *services.ClassifierService, now func() time.Time) *CoffeeHandler {
	if now == nil {
		now = time.Now
	}
	return &CoffeeHandler{registry: registry, classifier: classifier, now: now}
}

type rangeOption struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

type OptionsResponse struct {
	Caffeine       rangeOption      `json:"caffeine_mg"`
	Acidity        rangeOption      `json:"acidity_ph"`
	Processes      []models.Process `json:"processes"`
	DefaultProcess models.Process   `json:"default_process"`
	Classes        []string         `json:"classes"`
	ModelLoaded    bool             `json:"model_loaded"`
	ChartTitle     string           `json:"chart_title"`
	Palette        []string         `json:"palette"`
	Theme          models.Theme     `json:"theme"`
	FooterYear     int              `json:"footer_year"`
}

func (h *CoffeeHandler) Options(c *gin.Context) {
	now := h.now()
	def := models.DefaultSample()
	c.JSON(http.StatusOK, OptionsResponse{
		Caffeine:       rangeOption{Min: models.MinCaffeineMg, Max: models.MaxCaffeineMg, Default: def.CaffeineMg},
		Acidity:        rangeOption{Min: models.MinAcidityPH, Max: models.MaxAcidityPH, Default: def.AcidityPH},
		Processes:      models.Processes,
		DefaultProcess: def.Process,
		Classes:        h.classifier.Classes(),
		ModelLoaded:    h.classifier.Available(),
		ChartTitle:     models.ChartTitle,
		Palette:        models.CoffeePalette,
		Theme:          models.ThemeAt(now),
		FooterYear:     now.Year(),
	})
}

func (h *CoffeeHandler) Predict(c *gin.Context) {
	var sample models.CoffeeSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := h.registry.Get(middleware.SessionID(c)).Predict(c.Request.Context(), sample)
	c.JSON(outcomeStatus(out), out)
}

func (h *CoffeeHandler) Weather(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city query parameter is required"})
		return
	}

	out := h.registry.Get(middleware.SessionID(c)).FetchWeather(c.Request.Context(), city)
	c.JSON(outcomeStatus(out), out)
}

type SessionResponse struct {
	SessionID string            `json:"session_id"`
	State     services.State    `json:"state"`
	Last      *services.Outcome `json:"last,omitempty"`
	Theme     models.Theme      `json:"theme"`
}

func (h *CoffeeHandler) Session(c *gin.Context) {
	o := h.registry.Get(middleware.SessionID(c))
	c.JSON(http.StatusOK, SessionResponse{
		SessionID: o.ID(),
		State:     o.State(),
		Last:      o.Last(),
		Theme:     models.ThemeAt(h.now()),
	})
}

// outcomeStatus maps a finished trigger to its HTTP status. A prediction
// that displayed with a history warning is still a 200.
func outcomeStatus(out services.Outcome) int {
	if out.State == services.StateDisplaying {
		return http.StatusOK
	}
	switch {
	case errors.Is(out.Err, models.ErrInvalidSample):
		return http.StatusBadRequest
	case errors.Is(out.Err, services.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(out.Err, services.ErrInferenceError):
		return http.StatusUnprocessableEntity
	case errors.Is(out.Err, services.ErrCityNotFound):
		return http.StatusNotFound
	case errors.Is(out.Err, services.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
