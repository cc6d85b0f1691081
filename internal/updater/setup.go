package updater

import (
	"fmt"
	"log"
	"path/filepath"

	"LaborPulse/internal/collector"
	"LaborPulse/internal/config"
	"LaborPulse/internal/metrics"
	"LaborPulse/internal/recorder"
	"LaborPulse/internal/vcs"
)

// Setup builds an Updater against the BLS API from configuration. The returned
// recorder must be closed by the caller.
func Setup(cfg *config.Config, m *metrics.Metrics) (*Updater, recorder.Recorder, error) {
	if cfg.Source.APIKey == "" {
		log.Println("[WARN] BLS_API_KEY is not set, using the keyless API (lower daily quota, 10-year spans)")
	}
	src := collector.NewBLSSource(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Proxy, cfg.Source.Timeout)
	log.Printf("[INFO] data source: %s (%d series)", src.Name(), len(cfg.Series))
	col := collector.NewCollector(src, cfg.Series, cfg.Source.RequestsPerSecond)

	var committer vcs.Committer = vcs.NoopCommitter{}
	var commitPaths []string
	if cfg.Git.Enabled {
		abs, err := filepath.Abs(cfg.Dataset.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve dataset path: %w", err)
		}
		commitPaths = []string{abs}
		committer = vcs.NewGitCommitter(cfg.Git.RepoDir, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		log.Printf("[INFO] git commits enabled in %s", cfg.Git.RepoDir)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	u := New(col, cfg.Dataset.Path, cfg.Source.Periods, committer, rec, m)
	u.CommitPaths = commitPaths
	return u, rec, nil
}
