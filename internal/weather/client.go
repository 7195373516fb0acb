package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// FetchError wraps a failure to obtain a weather sample. Callers treat it as
// a per-location failure: log, skip the location for this cycle, continue.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("weather fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches current weather from the OpenWeatherMap API.
type Client struct {
	apiKey  string
	units   string
	baseURL string
	http    *http.Client
}

// NewClient creates a weather client. The API key is read from the
// OPENWEATHER_API_KEY environment variable, falling back to a .api_key file
// in the working directory.
func NewClient(units string) (*Client, error) {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		if data, err := os.ReadFile(".api_key"); err == nil {
			apiKey = strings.TrimSpace(string(data))
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenWeatherMap API key is required (set OPENWEATHER_API_KEY or create .api_key)")
	}

	if units != "metric" && units != "imperial" {
		units = "metric"
	}

	return &Client{
		apiKey:  apiKey,
		units:   units,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Units returns the unit system the client requests from the API.
func (c *Client) Units() string { return c.units }

// currentResponse mirrors the subset of the OpenWeatherMap /weather payload
// we care about. Rain and snow volumes are reported per accumulation window
// under their own keys and are absent when there is no precipitation.
type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneHour float64 `json:"1h"`
	} `json:"snow"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// Fetch retrieves the current weather for the given coordinates.
func (c *Client) Fetch(ctx context.Context, latitude, longitude float64) (*Sample, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", c.units)

	reqURL := c.baseURL + "/weather?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			URL: reqURL,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var raw currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &FetchError{URL: reqURL, Err: fmt.Errorf("invalid response body: %w", err)}
	}

	sample := &Sample{
		Timestamp:   time.Now(),
		CityName:    raw.Name,
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		Pressure:    raw.Main.Pressure,
		WindSpeed:   raw.Wind.Speed,
		WindDeg:     raw.Wind.Deg,
		Clouds:      raw.Clouds.All,
		Rain:        raw.Rain.OneHour,
		Snow:        raw.Snow.OneHour,
	}
	if len(raw.Weather) > 0 {
		sample.Condition = raw.Weather[0].Main
		sample.Description = raw.Weather[0].Description
	}

	return sample, nil
}
