// Package updater fetches new observations and appends them to the dataset.
package updater

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"LaborPulse/internal/collector"
	"LaborPulse/internal/dataset"
	"LaborPulse/internal/metrics"
	"LaborPulse/internal/model"
	"LaborPulse/internal/recorder"
	"LaborPulse/internal/vcs"
)

// ErrDatasetExists is returned by Seed when the dataset file is already present.
var ErrDatasetExists = errors.New("dataset already exists")

const (
	kindUpdate = "update"
	kindSeed   = "seed"
)

// Updater owns the dataset file. Runs must not overlap; the scheduler guarantees it.
type Updater struct {
	Collector   *collector.Collector
	DatasetPath string
	Periods     int
	Committer   vcs.Committer
	Recorder    recorder.Recorder
	Metrics     *metrics.Metrics

	// CommitPaths are the paths handed to the committer, relative to its
	// repository. Defaults to DatasetPath.
	CommitPaths []string

	now func() time.Time
}

// New creates an Updater. Nil committer and recorder fall back to no-op implementations.
func New(col *collector.Collector, datasetPath string, periods int, committer vcs.Committer, rec recorder.Recorder, m *metrics.Metrics) *Updater {
	if committer == nil {
		committer = vcs.NoopCommitter{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Updater{
		Collector:   col,
		DatasetPath: datasetPath,
		Periods:     periods,
		Committer:   committer,
		Recorder:    rec,
		Metrics:     m,
		now:         time.Now,
	}
}

// WithClock sets a custom clock for deterministic run records.
func (u *Updater) WithClock(now func() time.Time) *Updater {
	u.now = now
	return u
}

// Run fetches the latest periods of every series and appends net-new
// observations. A run that finds nothing new writes nothing and commits
// nothing. The returned error is non-nil only when the run failed as a whole;
// per-series fetch failures are listed in the returned Run.
func (u *Updater) Run(ctx context.Context) (*recorder.Run, error) {
	run := u.startRun(kindUpdate)
	log.Printf("[INFO] update run %s started (dataset %s, %d periods)", run.ID, u.DatasetPath, u.Periods)

	ds, err := dataset.Load(u.DatasetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w (run the seed command first)", err)
		}
		return u.fail(run, fmt.Errorf("load dataset: %w", err))
	}

	results, err := u.Collector.CollectLatest(ctx, u.Periods)
	if err != nil {
		return u.fail(run, fmt.Errorf("collect: %w", err))
	}

	var incoming []model.Observation
	for _, r := range results {
		if r.Err != nil {
			run.FailedSeries = append(run.FailedSeries, r.Series.Code)
			u.fetchFailed(r.Series.Code, r.Err)
			continue
		}
		run.Fetched += len(r.Observations)
		incoming = append(incoming, r.Observations...)
	}

	merged, added := dataset.Merge(ds, incoming)
	run.Appended = len(added)
	if len(added) == 0 {
		log.Printf("[INFO] no new observations; dataset is already up to date (%d rows)", ds.Len())
		return u.finish(run, merged, statusFor(run, false)), nil
	}

	for _, o := range added {
		log.Printf("[INFO] new observation %s %s = %s", o.SeriesID, o.Period, o.Value)
	}
	if err := dataset.Save(u.DatasetPath, merged); err != nil {
		return u.fail(run, fmt.Errorf("save dataset: %w", err))
	}
	log.Printf("[INFO] dataset saved to %s (%d total rows, %d new)", u.DatasetPath, merged.Len(), len(added))

	committed, err := u.Committer.Commit(ctx, u.commitPaths(), commitMessage(added))
	if err != nil {
		// the dataset is written; the next checkout decides whether it survives
		return u.fail(run, fmt.Errorf("commit dataset: %w", err))
	}
	run.Committed = committed
	run.Revision = u.revision(ctx, committed)
	return u.finish(run, merged, statusFor(run, true)), nil
}

// Seed creates the dataset from the full [startYear, endYear] history of every
// series. It refuses to overwrite an existing dataset and writes nothing if any
// series fails.
func (u *Updater) Seed(ctx context.Context, startYear, endYear int) (*recorder.Run, error) {
	run := u.startRun(kindSeed)
	log.Printf("[INFO] seed run %s started (%d-%d)", run.ID, startYear, endYear)

	if _, err := os.Stat(u.DatasetPath); err == nil {
		return u.fail(run, fmt.Errorf("%w: %s", ErrDatasetExists, u.DatasetPath))
	} else if !errors.Is(err, os.ErrNotExist) {
		return u.fail(run, fmt.Errorf("stat dataset: %w", err))
	}

	results, err := u.Collector.CollectRange(ctx, startYear, endYear)
	if err != nil {
		return u.fail(run, fmt.Errorf("collect: %w", err))
	}
	var all []model.Observation
	for _, r := range results {
		run.Fetched += len(r.Observations)
		all = append(all, r.Observations...)
	}

	ds, added := dataset.Merge(dataset.New(), all)
	run.Appended = len(added)
	if err := dataset.Save(u.DatasetPath, ds); err != nil {
		return u.fail(run, fmt.Errorf("save dataset: %w", err))
	}
	log.Printf("[INFO] dataset saved to %s (%d rows)", u.DatasetPath, ds.Len())

	committed, err := u.Committer.Commit(ctx, u.commitPaths(), fmt.Sprintf("data: seed dataset %d-%d (%d observations)", startYear, endYear, ds.Len()))
	if err != nil {
		return u.fail(run, fmt.Errorf("commit dataset: %w", err))
	}
	run.Committed = committed
	run.Revision = u.revision(ctx, committed)
	return u.finish(run, ds, recorder.StatusOK), nil
}

func (u *Updater) startRun(kind string) *recorder.Run {
	return &recorder.Run{ID: uuid.NewString(), Kind: kind, StartedAt: u.now().UTC()}
}

func (u *Updater) fail(run *recorder.Run, err error) (*recorder.Run, error) {
	run.Status = recorder.StatusFailed
	run.Error = err.Error()
	run.Committed = false
	run.Revision = ""
	u.record(run)
	log.Printf("[ERROR] %s run %s failed: %v", run.Kind, run.ID, err)
	return run, err
}

func (u *Updater) finish(run *recorder.Run, ds *dataset.Dataset, status string) *recorder.Run {
	run.Status = status
	u.record(run)
	if u.Metrics != nil {
		counts := make(map[string]int)
		for _, id := range ds.SeriesIDs() {
			counts[id] = len(ds.Series(id))
		}
		u.Metrics.SetDatasetSize(counts)
	}
	log.Printf("[INFO] %s run %s finished: status=%s fetched=%d appended=%d committed=%v revision=%s failed=%v",
		run.Kind, run.ID, run.Status, run.Fetched, run.Appended, run.Committed, run.Revision, run.FailedSeries)
	return run
}

func (u *Updater) record(run *recorder.Run) {
	run.FinishedAt = u.now().UTC()
	if u.Metrics != nil {
		u.Metrics.RecordRun(run.Kind, run.Status, run.FinishedAt.Sub(run.StartedAt).Seconds(), run.Appended, float64(run.FinishedAt.Unix()))
	}
	if err := u.Recorder.RecordRun(run); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

func (u *Updater) fetchFailed(code string, err error) {
	if u.Metrics == nil {
		return
	}
	kind := "transient"
	if errors.Is(err, collector.ErrRateLimited) {
		kind = "rate_limited"
	}
	u.Metrics.RecordFetchFailure(code, kind)
}

func (u *Updater) revision(ctx context.Context, committed bool) string {
	rv, ok := u.Committer.(vcs.Revisioner)
	if !committed || !ok {
		return ""
	}
	return rv.Head(ctx)
}

func (u *Updater) commitPaths() []string {
	if len(u.CommitPaths) > 0 {
		return u.CommitPaths
	}
	return []string{filepath.Clean(u.DatasetPath)}
}

func statusFor(run *recorder.Run, wrote bool) string {
	switch {
	case len(run.FailedSeries) > 0:
		return recorder.StatusPartial
	case wrote:
		return recorder.StatusOK
	default:
		return recorder.StatusNoop
	}
}

func commitMessage(added []model.Observation) string {
	var latest model.Period
	for _, o := range added {
		if latest.Before(o.Period) {
			latest = o.Period
		}
	}
	return fmt.Sprintf("data: append %d new observations (through %s)", len(added), latest)
}
