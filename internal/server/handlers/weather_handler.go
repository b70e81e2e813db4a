package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/pkg/clients/anthropic"
)

const forecastTimeout = 60 * time.Second

// Forecaster is the weather correspondent behind /api/v1/weather.
type Forecaster interface {
	Forecast(ctx context.Context, place string) (anthropic.Forecast, error)
}

// WeatherHandler serves the almanac weather report.
type WeatherHandler struct {
	forecaster Forecaster
	logger     *zap.Logger
}

// NewWeatherHandler constructs the weather handler.
func NewWeatherHandler(f Forecaster, logger *zap.Logger) *WeatherHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherHandler{forecaster: f, logger: logger}
}

// Forecast returns current conditions and the five-day outlook for ?place=.
func (h *WeatherHandler) Forecast(c *gin.Context) {
	place := c.Query("place")
	if place == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), forecastTimeout)
	defer cancel()

	f, err := h.forecaster.Forecast(ctx, place)
	switch {
	case errors.Is(err, anthropic.ErrNoPlace):
		c.JSON(http.StatusBadRequest, gin.H{"error": "place is required"})
	case err != nil:
		h.logger.Warn("forecast failed", zap.String("place", place), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather unavailable"})
	default:
		c.JSON(http.StatusOK, f)
	}
}
