package collector

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"LaborPulse/internal/model"
)

// Limiter paces outgoing API requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Result is the outcome of fetching one series.
type Result struct {
	Series       model.Series
	Observations []model.Observation
	Err          error
}

// Collector fetches every configured series from a Source.
type Collector struct {
	Source  Source
	Series  []model.Series
	Limiter Limiter
}

// NewCollector creates a Collector. A non-positive rps disables pacing.
func NewCollector(source Source, series []model.Series, rps float64) *Collector {
	var lim Limiter = unlimited{}
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Collector{Source: source, Series: series, Limiter: lim}
}

type unlimited struct{}

func (unlimited) Wait(ctx context.Context) error { return ctx.Err() }

// CollectLatest fetches the most recent periods observations of every series.
// A failing series is reported in its Result and the others are still fetched.
// ErrUnauthorized aborts the collection and is returned, since the remaining
// series share the same credential.
func (c *Collector) CollectLatest(ctx context.Context, periods int) ([]Result, error) {
	results := make([]Result, 0, len(c.Series))
	for _, s := range c.Series {
		if err := c.Limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("wait for rate limiter: %w", err)
		}
		obs, err := c.Source.FetchLatest(ctx, s.Code, periods)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return results, fmt.Errorf("fetch %s: %w", s.Code, err)
			}
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Printf("[WARN] fetch %s failed, skipping this run: %v", s.Code, err)
			results = append(results, Result{Series: s, Err: err})
			continue
		}
		log.Printf("[INFO] fetched %s: %d observations", s.Code, len(obs))
		results = append(results, Result{Series: s, Observations: obs})
	}
	return results, nil
}

// CollectRange fetches the full year range of every series. Any failure is
// returned, because a seed with holes would never be backfilled.
func (c *Collector) CollectRange(ctx context.Context, startYear, endYear int) ([]Result, error) {
	results := make([]Result, 0, len(c.Series))
	for _, s := range c.Series {
		if err := c.Limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("wait for rate limiter: %w", err)
		}
		obs, err := c.Source.FetchRange(ctx, s.Code, startYear, endYear)
		if err != nil {
			return results, fmt.Errorf("fetch %s %d-%d: %w", s.Code, startYear, endYear, err)
		}
		log.Printf("[INFO] fetched %s %d-%d: %d observations", s.Code, startYear, endYear, len(obs))
		results = append(results, Result{Series: s, Observations: obs})
	}
	return results, nil
}
