package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	forecastModel     = "claude-sonnet-4-20250514"
	forecastMaxTokens = 1000
)

// ErrNoPlace is returned when a forecast is asked for without a location.
var ErrNoPlace = errors.New("place is required")

// Forecaster reports the weather for a place in almanac style.
type Forecaster interface {
	Forecast(ctx context.Context, place string) (Forecast, error)
}

// Forecast is the correspondent's report: current conditions, five days
// ahead and advice for the farm.
type Forecast struct {
	Current        Conditions    `json:"current"`
	Days           []ForecastDay `json:"forecast"`
	FarmingAdvice  string        `json:"farmingAdvice"`
	BestDaysToWork string        `json:"bestDaysToWork"`
}

// Conditions are the current readings. Units are whatever the model
// reports, usually Fahrenheit and mph.
type Conditions struct {
	Temp        string `json:"temp"`
	Condition   string `json:"condition"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	Feels       string `json:"feels"`
	AlmanacDesc string `json:"almanacDesc"`
}

// ForecastDay is one day of the outlook.
type ForecastDay struct {
	Day       string `json:"day"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Condition string `json:"condition"`
	FarmNote  string `json:"farmNote"`
}

// NewForecaster creates a weather correspondent backed by the Messages API
// with web search enabled.
func NewForecaster(apiKey string) Forecaster {
	return newClient(apiKey, apiURL)
}

const forecastPrompt = `You are a 19th-century almanac weather correspondent. Search for the current weather and the 5-day forecast for the given location.
Return ONLY valid JSON, with no markdown and no backticks, in this structure:
{"current":{"temp":"72°F","condition":"Partly Cloudy","humidity":"65%","wind":"SW 12 mph","feels":"70°F","almanacDesc":"A fair autumnal morning..."},
"forecast":[{"day":"Mon","high":"74","low":"55","condition":"Fair","farmNote":"Good plowing weather"}],
"farmingAdvice":"Brief farming advice.","bestDaysToWork":"Which days are best."}
The forecast array has exactly five days.`

// Forecast asks the correspondent about place.
func (c *anthropicClient) Forecast(ctx context.Context, place string) (Forecast, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return Forecast{}, ErrNoPlace
	}

	reqBody := messageRequest{
		Model:     forecastModel,
		MaxTokens: forecastMaxTokens,
		System:    forecastPrompt,
		Messages:  []Message{{Role: "user", Content: "Current weather and 5-day forecast for: " + place}},
		Tools:     []tool{{Type: "web_search_20250305", Name: "web_search"}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.url)

	if err != nil {
		return Forecast{}, fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return Forecast{}, fmt.Errorf("anthropic api error: %s", resp.String())
	}

	// Search results come back as their own blocks; only text carries the report.
	var text strings.Builder
	for _, block := range respBody.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseForecast(text.String())
}

func parseForecast(text string) (Forecast, error) {
	text = stripFences(text)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}
	if text == "" {
		return Forecast{}, fmt.Errorf("empty response from ai")
	}

	var out Forecast
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return Forecast{}, fmt.Errorf("failed to unmarshal forecast: %w", err)
	}
	if out.Current.Condition == "" && len(out.Days) == 0 {
		return Forecast{}, fmt.Errorf("forecast has no conditions")
	}
	return out, nil
}
