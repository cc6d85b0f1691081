package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"LaborPulse/internal/model"
)

// DefaultBLSURL is the BLS Public Data API v2 time series endpoint.
const DefaultBLSURL = "https://api.bls.gov/publicAPI/v2/timeseries/data/"

const (
	blsSucceeded = "REQUEST_SUCCEEDED"
	// maximum span of a single request; 20 with a registration key, 10 without
	maxYearsKeyless = 10
	maxYearsKeyed   = 20
)

// BLSSource implements Source using the BLS Public Data API.
type BLSSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	now     func() time.Time
}

// NewBLSSource creates a BLS client with optional proxy support.
func NewBLSSource(baseURL, apiKey, proxyURL string, timeout time.Duration) *BLSSource {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBLSURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BLSSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		now: time.Now,
	}
}

func (s *BLSSource) Name() string { return "bls" }

// WithClock replaces the clock used to compute the FetchLatest window.
func (s *BLSSource) WithClock(now func() time.Time) *BLSSource {
	s.now = now
	return s
}

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

// blsResponse is the subset of the v2 response we rely on.
type blsResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// FetchLatest requests the year window covering the last periods months and
// keeps the most recent periods observations. Windows longer than one request
// allows are split like FetchRange.
func (s *BLSSource) FetchLatest(ctx context.Context, code string, periods int) ([]model.Observation, error) {
	if periods <= 0 {
		return nil, fmt.Errorf("periods must be positive")
	}
	end := model.PeriodOf(s.now())
	start := end.AddMonths(-(periods - 1))
	obs, err := s.FetchRange(ctx, code, start.Year, end.Year)
	if err != nil {
		return nil, err
	}
	if len(obs) > periods {
		obs = obs[len(obs)-periods:]
	}
	return obs, nil
}

// FetchRange fetches [startYear, endYear], splitting it into spans the API accepts.
func (s *BLSSource) FetchRange(ctx context.Context, code string, startYear, endYear int) ([]model.Observation, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("start year %d after end year %d", startYear, endYear)
	}
	span := maxYearsKeyless
	if s.APIKey != "" {
		span = maxYearsKeyed
	}
	var all []model.Observation
	for from := startYear; from <= endYear; from += span {
		to := from + span - 1
		if to > endYear {
			to = endYear
		}
		obs, err := s.fetch(ctx, code, from, to)
		if err != nil {
			return nil, err
		}
		all = append(all, obs...)
	}
	return all, nil
}

func (s *BLSSource) fetch(ctx context.Context, code string, startYear, endYear int) ([]model.Observation, error) {
	payload, err := json.Marshal(blsRequest{
		SeriesID:        []string{code},
		StartYear:       fmt.Sprint(startYear),
		EndYear:         fmt.Sprint(endYear),
		RegistrationKey: s.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bls fetch %s: %w", code, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bls read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("bls %s: status %d: %w", code, resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("bls %s: status %d: %w", code, resp.StatusCode, ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("bls %s: status %d, body: %s", code, resp.StatusCode, truncate(string(body), 200))
	}

	var r blsResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("bls decode: %w", err)
	}
	if r.Status != blsSucceeded {
		msg := strings.Join(r.Message, "; ")
		if kind := classifyMessage(msg); kind != nil {
			return nil, fmt.Errorf("bls %s: %s: %w", code, msg, kind)
		}
		return nil, fmt.Errorf("bls %s: status %s: %s", code, r.Status, msg)
	}

	var obs []model.Observation
	for _, series := range r.Results.Series {
		if series.SeriesID != "" && series.SeriesID != code {
			continue
		}
		for _, item := range series.Data {
			p, err := model.ParseBLSPeriod(item.Year, item.Period)
			if err != nil {
				continue // annual averages and non-monthly periods
			}
			v, err := decimal.NewFromString(strings.TrimSpace(item.Value))
			if err != nil {
				log.Printf("[WARN] bls %s %s: skipping non-numeric value %q", code, p, item.Value)
				continue
			}
			obs = append(obs, model.Observation{SeriesID: code, Period: p, Value: v})
		}
	}
	// BLS returns newest first
	sort.Slice(obs, func(i, j int) bool { return obs[i].Period.Before(obs[j].Period) })
	return obs, nil
}

// classifyMessage maps BLS error messages to sentinel errors.
func classifyMessage(msg string) error {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "key") && (strings.Contains(m, "invalid") || strings.Contains(m, "not valid") ||
		strings.Contains(m, "expired") || strings.Contains(m, "inactive") || strings.Contains(m, "required")):
		return ErrUnauthorized
	case strings.Contains(m, "threshold") || strings.Contains(m, "rate limit") || strings.Contains(m, "too many"):
		return ErrRateLimited
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
