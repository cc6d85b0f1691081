package collector

import (
	"context"
	"fmt"
	"sort"

	"LaborPulse/internal/model"
)

// StaticSource serves fixed observations. It backs tests and dry runs.
type StaticSource struct {
	Data   map[string][]model.Observation
	Errors map[string]error
	Calls  map[string]int
}

// NewStaticSource creates an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		Data:   make(map[string][]model.Observation),
		Errors: make(map[string]error),
		Calls:  make(map[string]int),
	}
}

func (s *StaticSource) Name() string { return "static" }

// Set replaces the observations served for code.
func (s *StaticSource) Set(code string, obs ...model.Observation) *StaticSource {
	s.Data[code] = obs
	return s
}

// Fail makes every request for code return err. A nil err clears the failure.
func (s *StaticSource) Fail(code string, err error) *StaticSource {
	if err == nil {
		delete(s.Errors, code)
	} else {
		s.Errors[code] = err
	}
	return s
}

func (s *StaticSource) lookup(code string) ([]model.Observation, error) {
	s.Calls[code]++
	if err, ok := s.Errors[code]; ok {
		return nil, fmt.Errorf("static %s: %w", code, err)
	}
	obs := append([]model.Observation(nil), s.Data[code]...)
	sort.Slice(obs, func(i, j int) bool { return obs[i].Period.Before(obs[j].Period) })
	return obs, nil
}

func (s *StaticSource) FetchLatest(_ context.Context, code string, periods int) ([]model.Observation, error) {
	obs, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	if periods > 0 && len(obs) > periods {
		obs = obs[len(obs)-periods:]
	}
	return obs, nil
}

func (s *StaticSource) FetchRange(_ context.Context, code string, startYear, endYear int) ([]model.Observation, error) {
	obs, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	out := obs[:0]
	for _, o := range obs {
		if o.Period.Year >= startYear && o.Period.Year <= endYear {
			out = append(out, o)
		}
	}
	return out, nil
}
