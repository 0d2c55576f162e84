// Package snapshot runs the background jobs that keep the dashboard's
// derived data fresh: the hourly order-book sampler and news sync, and
// the daily narrative reports.
package snapshot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"
)

var (
	errInvalidJob = errors.New("invalid job")
	errUnknownJob = errors.New("unknown job")
	errJobRunning = errors.New("job is already running")
)

// Job is a single recurring background task
type Job interface {
	// Name returns the human-readable name of the job
	Name() string

	// Next returns the job's next due time strictly after now
	Next(now time.Time) time.Time

	// Run executes the job once
	Run(ctx context.Context) error
}

// Scheduler is the due-time scheduler for registered jobs
type Scheduler struct {
	logger *slog.Logger

	registeredJobs sync.Map
	runningJobs    sync.Map

	collectorCh chan *workerResponse

	q             iq.Queue[scheduledRun]
	queryInterval time.Duration
	qMux          sync.Mutex
}

// New creates a new Scheduler instance
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		collectorCh:   make(chan *workerResponse, 100),
		q:             iq.NewQueue[scheduledRun](),
		queryInterval: time.Second, // every second
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register registers a new job with the scheduler.
// The job is immediately queued up for execution
func (s *Scheduler) Register(j Job) error {
	if j == nil || j.Name() == "" {
		return errInvalidJob
	}

	// Register the job
	id := xid.New()
	s.registeredJobs.Store(id, j)

	s.logger.Info(
		"registered new job",
		"name", j.Name(),
	)

	// Schedule the first run right away
	s.scheduleRun(
		time.Now().UTC(),
		id,
		j,
	)

	return nil
}

// Trigger runs the named job out of band, without touching its
// schedule. An unknown name or an in-flight run is an error
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	var (
		jobID xid.ID
		job   Job
	)

	s.registeredJobs.Range(func(key, value any) bool {
		j, _ := value.(Job)

		if j.Name() == name {
			jobID, _ = key.(xid.ID)
			job = j

			return false
		}

		return true
	})

	if job == nil {
		return errUnknownJob
	}

	if _, loaded := s.runningJobs.LoadOrStore(jobID, struct{}{}); loaded {
		return errJobRunning
	}

	s.logger.Info(
		"manually triggering job",
		"name", name,
	)

	info := &workerInfo{
		job:       job,
		jobID:     jobID,
		triggered: true,
		resCh:     s.collectorCh,
	}

	// Triggers come from short-lived HTTP requests; the run must
	// outlive the caller
	go handleRun(context.WithoutCancel(ctx), info)

	return nil
}

// Start starts the job scheduling service loop [BLOCKING]
func (s *Scheduler) Start(ctx context.Context) error {
	// Start a listener for monitoring jobs
	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	// handleDue spawns workers for all jobs that are executable (due)
	handleDue := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				nextRun := s.nextRun()
				if nextRun == nil {
					return // nothing to schedule anymore
				}

				// A run still in flight is skipped, not stacked; the
				// job is re-queued for its next regular slot
				if _, loaded := s.runningJobs.LoadOrStore(nextRun.jobID, struct{}{}); loaded {
					s.logger.Warn(
						"job still running, skipping due run",
						"name", nextRun.job.Name(),
					)

					s.scheduleRun(
						nextRun.job.Next(time.Now().UTC()),
						nextRun.jobID,
						nextRun.job,
					)

					continue
				}

				s.logger.Info(
					"scheduling job run",
					"name", nextRun.job.Name(),
				)

				// Spawn worker
				info := &workerInfo{
					job:   nextRun.job,
					jobID: nextRun.jobID,
					resCh: s.collectorCh,
				}

				go handleRun(ctx, info)
			}
		}
	}

	// Initialize the first set of due jobs (on boot)
	handleDue()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler service shut down")

			return nil
		case <-ticker.C:
			handleDue()
		case response := <-s.collectorCh:
			now := time.Now().UTC()

			s.runningJobs.Delete(response.jobID)

			rjRaw, ok := s.registeredJobs.Load(response.jobID)
			if !ok {
				s.logger.Error(
					"unable to load registered job",
					"id", response.jobID.String(),
				)

				continue
			}

			rj, _ := rjRaw.(Job)

			// Out-of-band runs never touch the regular schedule
			if response.triggered {
				if response.error != nil {
					s.logger.Error(
						"error encountered during triggered run",
						"name", rj.Name(),
						"err", response.error.Error(),
					)
				}

				continue
			}

			if response.error != nil {
				// A failed run is not retried early; staleness of one
				// interval is tolerable, the next regular slot covers it
				s.logger.Error(
					"error encountered during job run",
					"name", rj.Name(),
					"err", response.error.Error(),
				)
			} else {
				s.logger.Info(
					"job run completed",
					"name", rj.Name(),
				)
			}

			// Schedule the next regular run
			s.scheduleRun(
				rj.Next(now),
				response.jobID,
				rj,
			)
		}
	}
}

// scheduleRun schedules a new job run
func (s *Scheduler) scheduleRun(
	at time.Time,
	jobID xid.ID,
	job Job,
) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	futureRun := scheduledRun{
		at:    at,
		jobID: jobID,
		job:   job,
	}

	s.q.Push(futureRun)
}

// nextRun fetches the next due job run, as of the moment of calling
func (s *Scheduler) nextRun() *scheduledRun {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	now := time.Now().UTC()

	// Check if anything needs to be scheduled
	if s.q.Len() == 0 {
		return nil // nothing to schedule, all jobs are running
	}

	// Check if the top element is due
	if s.q.Index(0).at.After(now) {
		return nil // nothing to schedule, latest run is in the future
	}

	// Grab the next run
	return s.q.PopFront()
}
