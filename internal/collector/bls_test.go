package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blsOK = `{
  "status": "REQUEST_SUCCEEDED",
  "message": [],
  "Results": {
    "series": [{
      "seriesID": "LNS14000000",
      "data": [
        {"year": "2024", "period": "M03", "value": "3.8"},
        {"year": "2024", "period": "M02", "value": "3.9"},
        {"year": "2024", "period": "M01", "value": "3.7"},
        {"year": "2023", "period": "M13", "value": "3.6"},
        {"year": "2023", "period": "M12", "value": "-"},
        {"year": "2023", "period": "M11", "value": "3.7"}
      ]
    }]
  }
}`

type recordedRequest struct {
	blsRequest
	ContentType string
}

func newBLSServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req blsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		reqs = append(reqs, recordedRequest{blsRequest: req, ContentType: r.Header.Get("Content-Type")})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func fixedClock() time.Time { return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC) }

func TestBLSSource_FetchLatest(t *testing.T) {
	srv, reqs := newBLSServer(t, http.StatusOK, blsOK)
	src := NewBLSSource(srv.URL, "secret", "", 5*time.Second).WithClock(fixedClock)

	obs, err := src.FetchLatest(context.Background(), "LNS14000000", 3)
	require.NoError(t, err)

	require.Len(t, obs, 3)
	assert.Equal(t, "2024-01", obs[0].Period.String())
	assert.Equal(t, "3.7", obs[0].Value.String())
	assert.Equal(t, "2024-03", obs[2].Period.String())
	for _, o := range obs {
		assert.Equal(t, "LNS14000000", o.SeriesID)
	}

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, []string{"LNS14000000"}, got.SeriesID)
	assert.Equal(t, "2024", got.StartYear)
	assert.Equal(t, "2024", got.EndYear)
	assert.Equal(t, "secret", got.RegistrationKey)
	assert.Equal(t, "application/json", got.ContentType)
}

func TestBLSSource_FetchLatest_SpansYears(t *testing.T) {
	srv, reqs := newBLSServer(t, http.StatusOK, blsOK)
	src := NewBLSSource(srv.URL, "", "", 0).WithClock(fixedClock)

	obs, err := src.FetchLatest(context.Background(), "LNS14000000", 12)
	require.NoError(t, err)

	// M13 and the "-" placeholder are dropped
	require.Len(t, obs, 4)
	assert.Equal(t, "2023-11", obs[0].Period.String())
	require.Len(t, *reqs, 1)
	assert.Equal(t, "2023", (*reqs)[0].StartYear)
	assert.Empty(t, (*reqs)[0].RegistrationKey)
}

func TestBLSSource_FetchLatest_LongWindowSplits(t *testing.T) {
	srv, reqs := newBLSServer(t, http.StatusOK, blsOK)
	src := NewBLSSource(srv.URL, "", "", 0).WithClock(fixedClock)

	// 2000-04 through 2024-03 spans 25 years, three keyless requests
	obs, err := src.FetchLatest(context.Background(), "LNS14000000", 288)
	require.NoError(t, err)

	require.Len(t, *reqs, 3)
	assert.Equal(t, "2000", (*reqs)[0].StartYear)
	assert.Equal(t, "2009", (*reqs)[0].EndYear)
	assert.Equal(t, "2020", (*reqs)[2].StartYear)
	assert.Equal(t, "2024", (*reqs)[2].EndYear)
	// the stub answers every span with the same rows
	assert.Len(t, obs, 12)
}

func TestBLSSource_FetchRange_SplitsSpans(t *testing.T) {
	srv, reqs := newBLSServer(t, http.StatusOK, `{"status":"REQUEST_SUCCEEDED","Results":{"series":[]}}`)
	src := NewBLSSource(srv.URL, "", "", 0)

	_, err := src.FetchRange(context.Background(), "LNS14000000", 2001, 2025)
	require.NoError(t, err)

	require.Len(t, *reqs, 3)
	assert.Equal(t, "2001", (*reqs)[0].StartYear)
	assert.Equal(t, "2010", (*reqs)[0].EndYear)
	assert.Equal(t, "2021", (*reqs)[2].StartYear)
	assert.Equal(t, "2025", (*reqs)[2].EndYear)

	_, err = src.FetchRange(context.Background(), "X", 2025, 2020)
	assert.Error(t, err)
}

func TestBLSSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized status", http.StatusUnauthorized, "", ErrUnauthorized},
		{"forbidden status", http.StatusForbidden, "", ErrUnauthorized},
		{"too many requests", http.StatusTooManyRequests, "", ErrRateLimited},
		{"invalid key message", http.StatusOK,
			`{"status":"REQUEST_NOT_PROCESSED","message":["The key provided by the User is invalid."]}`, ErrUnauthorized},
		{"threshold message", http.StatusOK,
			`{"status":"REQUEST_NOT_PROCESSED","message":["Request could not be serviced, as the daily threshold for total number of requests allocated to the user has been reached."]}`, ErrRateLimited},
		{"server error", http.StatusInternalServerError, "boom", nil},
		{"failed status", http.StatusOK, `{"status":"REQUEST_FAILED","message":["Series does not exist"]}`, nil},
		{"bad json", http.StatusOK, `{`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBLSServer(t, tt.status, tt.body)
			src := NewBLSSource(srv.URL, "k", "", 0).WithClock(fixedClock)

			_, err := src.FetchLatest(context.Background(), "LNS14000000", 3)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.False(t, errors.Is(err, ErrUnauthorized))
				assert.False(t, errors.Is(err, ErrRateLimited))
			}
		})
	}
}

func TestBLSSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(blsOK))
	}))
	defer srv.Close()

	src := NewBLSSource(srv.URL, "", "", 50*time.Millisecond).WithClock(fixedClock)
	_, err := src.FetchLatest(context.Background(), "LNS14000000", 3)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestNewBLSSource_Defaults(t *testing.T) {
	src := NewBLSSource("", "", "http://proxy.local:3128", 0)
	assert.Equal(t, DefaultBLSURL, src.BaseURL)
	assert.Equal(t, 30*time.Second, src.Client.Timeout)
	assert.Equal(t, "bls", src.Name())

	_, err := src.FetchLatest(context.Background(), "X", 0)
	assert.Error(t, err)
}
