package sensor

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultWeatherURL serves one-line weather reports.
const DefaultWeatherURL = "https://wttr.in"

// WeatherFetcher fetches the current weather.
type WeatherFetcher interface {
	Fetch(ctx context.Context) (Weather, error)
}

// Wttr fetches weather from a wttr.in compatible endpoint.
type Wttr struct {
	BaseURL  string
	Location string

	httpClient *http.Client
}

// NewWttr returns a fetcher for location. An empty location lets the service
// locate the caller by IP.
func NewWttr(location string) *Wttr {
	return &Wttr{
		BaseURL:  DefaultWeatherURL,
		Location: location,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch implements WeatherFetcher.
func (w *Wttr) Fetch(ctx context.Context) (Weather, error) {
	u := strings.TrimRight(w.BaseURL, "/") + "/" + url.PathEscape(w.Location) + "?format=" + url.QueryEscape("%c|%t")

	logrus.WithField("url", u).Debug("fetching weather")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Weather{}, pkgerrors.Wrap(err, "failed to create weather request")
	}
	// wttr.in answers curl-like agents with plain text.
	req.Header.Set("User-Agent", "curl/8")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return Weather{}, pkgerrors.Wrap(err, "failed to fetch weather")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return Weather{}, pkgerrors.Wrap(err, "failed to read weather response")
	}
	if resp.StatusCode != http.StatusOK {
		return Weather{}, pkgerrors.Errorf("weather service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseWeather(string(body))
}

func parseWeather(s string) (Weather, error) {
	glyph, temp, ok := strings.Cut(strings.TrimSpace(s), "|")
	if !ok {
		return Weather{}, pkgerrors.Errorf("unexpected weather response %q", s)
	}
	return Weather{
		Glyph:       strings.TrimSpace(glyph),
		Temperature: strings.TrimPrefix(strings.TrimSpace(temp), "+"),
	}, nil
}
