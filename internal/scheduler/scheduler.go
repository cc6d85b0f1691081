package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"LaborPulse/internal/recorder"
)

// Runner is the job the scheduler triggers. *updater.Updater satisfies it.
type Runner interface {
	Run(ctx context.Context) (*recorder.Run, error)
}

// Scheduler triggers the monthly update.
type Scheduler struct {
	Cron    *cron.Cron
	Updater Runner
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler. Overlapping triggers are skipped so
// only one update touches the dataset at a time.
func NewScheduler(ctx context.Context, u Runner) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))),
		),
		Updater: u,
		Ctx:     ctx,
	}
}

// Register registers the monthly update task.
func (s *Scheduler) Register(monthlyCron string) error {
	if _, err := s.Cron.AddFunc(monthlyCron, s.updateTask); err != nil {
		return fmt.Errorf("register monthly update: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for scheduled jobs in flight.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the update immediately (RUN_ON_START). It goes through the
// cron job chain, so it never overlaps a scheduled run.
func (s *Scheduler) RunNow() {
	if entries := s.Cron.Entries(); len(entries) > 0 {
		entries[0].WrappedJob.Run()
		return
	}
	s.updateTask()
}

func (s *Scheduler) updateTask() {
	if err := s.Ctx.Err(); err != nil {
		log.Printf("[WARN] skipping update: %v", err)
		return
	}
	log.Println("[INFO] running monthly update")
	run, err := s.Updater.Run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] monthly update: %v", err)
		return
	}
	if len(run.FailedSeries) > 0 {
		log.Printf("[WARN] monthly update left %v for the next run", run.FailedSeries)
	}
}
