package jobs

import (
	"context"
	"log"
	"time"

	"caredraft/internal/services"
)

// DeadlineJob periodically runs the batch deadline processor. The
// notification windows assume at-least-hourly runs, so the interval should
// not exceed one hour.
type DeadlineJob struct {
	processor *services.DeadlineProcessor
	interval  time.Duration
	stopChan  chan struct{}
}

// NewDeadlineJob creates a new deadline processing job
func NewDeadlineJob(processor *services.DeadlineProcessor, interval time.Duration) *DeadlineJob {
	return &DeadlineJob{
		processor: processor,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the deadline processing loop
func (j *DeadlineJob) Start() {
	log.Printf("[DeadlineJob] Starting deadline processing job (interval: %v)", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runOnce()
		case <-j.stopChan:
			log.Println("[DeadlineJob] Stopping deadline processing job")
			return
		}
	}
}

// Stop stops the deadline processing loop
func (j *DeadlineJob) Stop() {
	close(j.stopChan)
}

func (j *DeadlineJob) runOnce() {
	ctx := context.Background()

	report, err := j.processor.ProcessAll(ctx)
	if err != nil {
		log.Printf("[DeadlineJob] Deadline run failed: %v", err)
		return
	}

	if report.NotificationsSent > 0 || report.TransitionsPerformed > 0 || len(report.Errors) > 0 {
		log.Printf("[DeadlineJob] Checked %d proposals: %d notifications, %d transitions, %d errors",
			report.ProposalsChecked, report.NotificationsSent, report.TransitionsPerformed, len(report.Errors))
	}

	for _, procErr := range report.Errors {
		log.Printf("[DeadlineJob] Proposal %s failed (%s): %s", procErr.ProposalID, procErr.Type, procErr.Error)
	}
}
