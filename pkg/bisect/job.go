package bisect

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultRegressionKind is the regression passed to cargo-bisect-rustc via --regress
// if a job does not specify one.
const DefaultRegressionKind = "ice"

// Options hold the search parameters of a single bisection.
type Options struct {
	Start time.Time // The date of the earliest nightly to consider

	End *time.Time // The date of the latest nightly to consider, or nil to search up to the present

	Kind string // What counts as a regression, e.g. "ice" or "error". Empty means DefaultRegressionKind
}

// RegressionKind returns the configured regression kind, falling back to DefaultRegressionKind.
func (o Options) RegressionKind() string {
	if o.Kind == "" {
		return DefaultRegressionKind
	}
	return o.Kind
}

// A Job is one accepted bisection request. Jobs live on the queue until the worker dequeues them.
type Job struct {
	ID uuid.UUID // Unique identifier assigned at submission time

	Code string // The source text to bisect

	Options Options // The search parameters for this job
}

// StatusKind discriminates the three variants of a BisectStatus.
type StatusKind int

const (
	StatusInProgress StatusKind = iota
	StatusError
	StatusSuccess
)

func (k StatusKind) String() string {
	switch k {
	case StatusInProgress:
		return "InProgress"
	case StatusError:
		return "Error"
	case StatusSuccess:
		return "Success"
	}
	return fmt.Sprintf("StatusKind(%d)", int(k))
}

// BisectStatus is the state of a bisection record. It is created as InProgress and transitions
// exactly once to either Error or Success, both of which carry an output payload.
type BisectStatus struct {
	Kind StatusKind

	Output string // Diagnostic excerpt for Error, result summary for Success, empty for InProgress
}

// InProgressStatus returns the status of a freshly dequeued job.
func InProgressStatus() BisectStatus {
	return BisectStatus{Kind: StatusInProgress}
}

// ErrorStatus returns a terminal Error status carrying a diagnostic excerpt.
func ErrorStatus(output string) BisectStatus {
	return BisectStatus{Kind: StatusError, Output: output}
}

// SuccessStatus returns a terminal Success status carrying the result summary.
func SuccessStatus(output string) BisectStatus {
	return BisectStatus{Kind: StatusSuccess, Output: output}
}

type statusJSON struct {
	Status string  `json:"status"`
	Output *string `json:"output,omitempty"`
}

// MarshalJSON encodes the status as a tagged union, e.g. {"status":"Success","output":"..."}.
// InProgress carries no output field.
func (s BisectStatus) MarshalJSON() ([]byte, error) {
	out := statusJSON{Status: s.Kind.String()}
	if s.Kind != StatusInProgress {
		out.Output = &s.Output
	}
	return json.Marshal(out)
}

func (s *BisectStatus) UnmarshalJSON(data []byte) error {
	var raw statusJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var output string
	if raw.Output != nil {
		output = *raw.Output
	}

	switch raw.Status {
	case "InProgress":
		*s = InProgressStatus()
	case "Error":
		*s = ErrorStatus(output)
	case "Success":
		*s = SuccessStatus(output)
	default:
		return fmt.Errorf("%q is not a valid bisection status", raw.Status)
	}
	return nil
}

// A Bisection is the persisted record of a job, retained after the job itself is gone.
type Bisection struct {
	ID uuid.UUID `json:"id"`

	Code string `json:"code"` // Copy of the submitted source, kept for redisplay

	Status BisectStatus `json:"status"`
}
