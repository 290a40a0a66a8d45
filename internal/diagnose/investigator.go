package diagnose

import (
	"context"
	"time"

	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
)

// Investigator verdict outcomes.
const (
	VerdictConfirmed = "confirmed"
	VerdictRejected  = "rejected"
)

// Verdict is the investigator's bounded answer.
type Verdict struct {
	Outcome        string `json:"outcome"`
	Notes          string `json:"notes,omitempty"`
	SubQueriesUsed int    `json:"sub_queries_used"`
}

// Investigator is an optional external second opinion on a shaky
// diagnosis. Implementations must respect the context deadline and stay
// within the sub-query budget; the engine does not retry.
type Investigator interface {
	Investigate(ctx context.Context, hypothesis Hypothesis, dec *decompose.Result) (Verdict, error)
}

// consult runs the investigator under its wall-clock and sub-query budget.
// Any failure mode reads as rejection: an investigation that could not
// finish must not prop up a diagnosis.
func consult(ctx context.Context, inv Investigator, hyp Hypothesis, dec *decompose.Result, th config.Thresholds) Investigation {
	result := Investigation{Consulted: true}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(th.InvestigatorTimeoutSec)*time.Second)
	defer cancel()

	type outcome struct {
		verdict Verdict
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := inv.Investigate(ctx, hyp, dec)
		done <- outcome{verdict: v, err: err}
	}()

	select {
	case <-ctx.Done():
		result.Outcome = VerdictRejected
		result.Notes = "investigation timed out"
		return result
	case o := <-done:
		if o.err != nil {
			result.Outcome = VerdictRejected
			result.Notes = o.err.Error()
			return result
		}
		result.SubQueriesUsed = o.verdict.SubQueriesUsed
		result.Notes = o.verdict.Notes
		if o.verdict.SubQueriesUsed > th.InvestigatorMaxSubQueries {
			result.Outcome = VerdictRejected
			result.Notes = "sub-query budget exceeded"
			return result
		}
		result.Outcome = o.verdict.Outcome
		if result.Outcome != VerdictConfirmed {
			result.Outcome = VerdictRejected
		}
		return result
	}
}
