package bisect

import (
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// QueueCapacity is the maximum amount of accepted but not yet dequeued jobs.
// Submissions beyond this are rejected with ErrQueueFull.
const QueueCapacity = 10

// ErrQueueFull is returned by Submit when the job queue is at capacity.
// This is backpressure, not a processing fault.
var ErrQueueFull = errors.New("too many jobs in the queue already")

// A Submitter is the entry point of the pipeline. It assigns job IDs and feeds the worker's queue.
type Submitter struct {
	jobs chan Job

	log *logrus.Logger
}

// NewSubmitter creates a submitter with an empty queue. A nil log mutes all logging.
func NewSubmitter(log *logrus.Logger) *Submitter {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Submitter{
		jobs: make(chan Job, QueueCapacity),

		log: log,
	}
}

// Jobs returns the receiving side of the queue, to be consumed by a single worker.
func (s *Submitter) Jobs() <-chan Job {
	return s.jobs
}

// Submit enqueues a new job and returns its assigned ID. Submit never blocks: if the queue
// is at capacity, it returns ErrQueueFull. A returned ID only means the job was accepted,
// not that it has started or finished.
func (s *Submitter) Submit(code string, options Options) (uuid.UUID, error) {
	job := Job{
		ID:      uuid.New(),
		Code:    code,
		Options: options,
	}

	select {
	case s.jobs <- job:
	default:
		return uuid.Nil, ErrQueueFull
	}

	s.log.WithField("job-id", job.ID).Info("Added new job to queue")
	return job.ID, nil
}

// Close closes the queue. The worker terminates once the remaining jobs are drained.
// No submissions may happen after Close.
func (s *Submitter) Close() {
	close(s.jobs)
}
