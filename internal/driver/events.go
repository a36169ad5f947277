package driver

import "context"

// Stage is the step a file is in.
type Stage uint8

const (
	StageQueued Stage = iota
	StageParse
	StageDone
	StageValidate // sent once with an empty Path
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageParse:
		return "parsing"
	case StageDone:
		return "done"
	case StageValidate:
		return "validating"
	default:
		return "unknown"
	}
}

// Status is the outcome of a finished file.
type Status uint8

const (
	StatusOK Status = iota
	StatusWarnings
	StatusFailed
	StatusSkipped
	StatusCached
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarnings:
		return "warnings"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Event reports progress of one file to a UI.
type Event struct {
	Path     string
	Stage    Stage
	Status   Status
	Entities int
}

func emit(ctx context.Context, ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
