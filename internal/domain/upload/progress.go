package upload

import (
	"fmt"
	"math"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

type Progress struct {
	Percentage int    `json:"percentage"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
}

type SignalKind int

const (
	SignalUnknown SignalKind = iota
	SignalDispatched
	SignalProgress
	SignalResponse
	SignalFailed
)

// Signal is a transport lifecycle event for one upload request.
type Signal struct {
	Kind  SignalKind
	Sent  int64
	Total int64
	Err   error
}

// MapSignal maps a transport signal to a progress record without any
// knowledge of earlier signals.
func MapSignal(sig Signal) Progress {
	switch sig.Kind {
	case SignalDispatched:
		return Progress{Percentage: 0, Status: StatusUploading, Message: "Upload started"}
	case SignalProgress:
		pct := 0
		if sig.Total > 0 {
			pct = int(math.Round(100 * float64(sig.Sent) / float64(sig.Total)))
		}
		pct = min(max(pct, 0), 100)
		return Progress{Percentage: pct, Status: StatusUploading, Message: fmt.Sprintf("Uploading: %d%%", pct)}
	case SignalResponse:
		return Progress{Percentage: 100, Status: StatusComplete, Message: "Upload complete"}
	case SignalFailed:
		msg := "Upload failed"
		if sig.Err != nil {
			msg = fmt.Sprintf("Upload failed: %s", sig.Err.Error())
		}
		return Progress{Percentage: 0, Status: StatusError, Message: msg}
	default:
		return Progress{Percentage: 0, Status: StatusPending}
	}
}

// Tracker holds the state of one submission. Percentages never regress and
// nothing is emitted once a terminal record went out.
type Tracker struct {
	last Progress
	done bool
}

func NewTracker() *Tracker {
	return &Tracker{last: Progress{Status: StatusPending}}
}

// Next returns the clamped record for sig and false when the submission has
// already terminated.
func (t *Tracker) Next(sig Signal) (Progress, bool) {
	if t.done {
		return t.last, false
	}
	p := MapSignal(sig)
	p.Percentage = max(t.last.Percentage, p.Percentage)
	if sig.Kind == SignalProgress {
		p.Message = fmt.Sprintf("Uploading: %d%%", p.Percentage)
	}
	t.last = p
	t.done = p.Status.IsTerminal()
	return p, true
}

func (t *Tracker) Last() Progress {
	return t.last
}

func (t *Tracker) Done() bool {
	return t.done
}
