package dispatch

import "github.com/ferux/pushcenter/internal/model"

// Outcome classifies a completed send.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota
	OutcomePartial
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	default:
		return "failure"
	}
}

// Result of a send: the recorded history entry and the per-device report.
type Result struct {
	Message model.Message
	Report  model.ConnectivityReport
}

// Outcome of the send.
func (r Result) Outcome() Outcome {
	switch {
	case r.Report.Failed() == 0:
		return OutcomeSuccess
	case r.Report.SuccessCount > 0:
		return OutcomePartial
	default:
		return OutcomeFailure
	}
}
