package collector

import (
	"context"
	"errors"

	"LaborPulse/internal/model"
)

var (
	// ErrUnauthorized means the API rejected the credential. It is fatal for a run
	// because every series uses the same key.
	ErrUnauthorized = errors.New("statistics API rejected credential")
	// ErrRateLimited means the API refused the request because of its quota.
	ErrRateLimited = errors.New("statistics API rate limit reached")
)

// Source fetches monthly observations for a series code.
type Source interface {
	// FetchLatest returns at most periods of the most recent observations, oldest first.
	FetchLatest(ctx context.Context, code string, periods int) ([]model.Observation, error)
	// FetchRange returns all observations between startYear and endYear inclusive, oldest first.
	FetchRange(ctx context.Context, code string, startYear, endYear int) ([]model.Observation, error)
	Name() string
}
