package snapshot

import (
	"context"
	"time"

	"github.com/rs/xid"
)

// scheduledRun is a single scheduled Job run
type scheduledRun struct {
	at    time.Time
	job   Job
	jobID xid.ID
}

// Less is utilized to sort scheduled runs by their due-time (earliest == first)
func (a scheduledRun) Less(b scheduledRun) bool {
	return a.at.Before(b.at)
}

// workerInfo is the work context for the job routine
type workerInfo struct {
	job       Job
	resCh     chan<- *workerResponse
	jobID     xid.ID
	triggered bool
}

// workerResponse is the job routine response
type workerResponse struct {
	error     error  // encountered error, if any
	jobID     xid.ID // the job ID
	triggered bool   // whether the run was fired out of band
}

// handleRun executes the job once
func handleRun(
	ctx context.Context,
	info *workerInfo,
) {
	err := info.job.Run(ctx)

	response := &workerResponse{
		error:     err,
		jobID:     info.jobID,
		triggered: info.triggered,
	}

	// The response must always reach the collector, or the job stays
	// marked as running forever. The channel is buffered
	info.resCh <- response
}
