package bisect

import (
	"io"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"
)

// Store is the part of the persistence layer the worker writes to.
type Store interface {
	// Insert persists a new record. It fails if a record with the same ID already exists.
	Insert(record *Bisection) error
	// UpdateStatus overwrites the status of the record with the given ID.
	UpdateStatus(id uuid.UUID, status BisectStatus) error
}

// A Worker is the single consumer of the job queue. For every dequeued job it inserts an
// InProgress record, invokes the runner and writes the terminal status.
type Worker struct {
	store  Store
	runner Runner

	log *logrus.Logger
}

// NewWorker creates a worker. A nil log mutes all logging.
func NewWorker(store Store, runner Runner, log *logrus.Logger) *Worker {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Worker{
		store:  store,
		runner: runner,

		log: log,
	}
}

// Run consumes jobs until the queue is closed, processing them one at a time in FIFO order.
func (w *Worker) Run(jobs <-chan Job) {
	for job := range jobs {
		w.process(job)
	}
}

func (w *Worker) process(job Job) {
	log := w.log.WithFields(logrus.Fields{
		"job-id":      job.ID,
		"code-digest": digest.FromString(job.Code).Encoded()[:12],
	})
	log.Info("Starting bisection job")

	record := &Bisection{
		ID:     job.ID,
		Code:   job.Code,
		Status: InProgressStatus(),
	}
	if err := w.store.Insert(record); err != nil {
		// Without a record there is nothing to update, so the job is abandoned
		log.Errorf("Failed to insert bisection record, abandoning job - %v", err)
		return
	}

	status, err := w.runner.Run(job.Code, job.Options)
	if err != nil {
		// The raw error may contain paths of the build environment, don't expose it
		log.Errorf("Error processing bisection - %v", err)
		status = ErrorStatus("Internal error")
	}
	log.Infof("Bisection finished with status %s", status.Kind)

	if err := w.store.UpdateStatus(job.ID, status); err != nil {
		log.Errorf("Failed to write bisection result, record stays in progress - %v", err)
	}
}
