package diagnose

import (
	"fmt"
	"strings"

	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
	"github.com/moolen/driftdiag/internal/signal"
	"github.com/moolen/driftdiag/internal/trustgate"
)

// Below this current/baseline row volume ratio a movement is more likely a
// collection gap than a behavior change.
const volumeHaltRatio = 0.5

// volumeWarnRatio annotates moderate volume drops without halting.
const volumeWarnRatio = 0.8

// checkInput bundles the evidence the validation checks run over.
type checkInput struct {
	dec  *decompose.Result
	gate trustgate.Result

	baselineRows int
	currentRows  int

	// Day indexes for the temporal check; negative means unknown.
	causeDay        int
	metricChangeDay int

	// step is the daily-series step-change finding, nil when no series
	// was supplied.
	step *signal.StepChange
}

// runChecks executes the four mandatory validation checks, always all
// four, always in the same order. A HALT does not stop the remaining
// checks: the full picture feeds confidence grading.
func runChecks(in checkInput, th config.Thresholds) []Check {
	return []Check{
		checkLoggingArtifact(in),
		checkCompleteness(in.dec, th),
		checkTemporal(in, th),
		checkMixShift(in.dec, th),
	}
}

// checkLoggingArtifact guards against instrumentation changes masquerading
// as metric movements. An overnight step in the daily series is the
// classic fingerprint of a collection change; a sharp row-volume drop or
// degraded input health also trigger it.
func checkLoggingArtifact(in checkInput) Check {
	c := Check{Name: CheckLoggingArtifact, Status: CheckPass, Detail: "row volume and input health look normal"}

	if in.step != nil && in.step.Detected {
		c.Status = CheckHalt
		c.Detail = fmt.Sprintf("metric stepped %.1f%% in a single day at index %d, pattern consistent with an instrumentation change",
			in.step.ChangePct, in.step.DayIndex)
		return c
	}

	if in.baselineRows > 0 {
		ratio := float64(in.currentRows) / float64(in.baselineRows)
		switch {
		case ratio < volumeHaltRatio:
			c.Status = CheckHalt
			c.Detail = fmt.Sprintf("current row volume is %.0f%% of baseline, likely collection gap", ratio*100)
			return c
		case ratio < volumeWarnRatio:
			c.Status = CheckWarn
			c.Detail = fmt.Sprintf("current row volume is %.0f%% of baseline", ratio*100)
			return c
		}
	}

	if in.gate.Status == trustgate.StatusWarn {
		c.Status = CheckWarn
		c.Detail = "input health is degraded: " + joinReasons(in.gate.Reasons)
	}
	return c
}

// checkCompleteness grades how much of the movement the best dimension
// explains.
func checkCompleteness(dec *decompose.Result, th config.Thresholds) Check {
	c := Check{Name: CheckCompleteness}
	explained := dec.ExplainedPct
	c.Detail = fmt.Sprintf("best dimension %q explains %.1f%% of the movement", dec.DominantDimension, explained)

	switch {
	case explained >= th.ExplainedPassPct:
		c.Status = CheckPass
	case explained >= th.ExplainedWarnPct:
		c.Status = CheckWarn
	default:
		c.Status = CheckHalt
	}
	return c
}

// checkTemporal verifies the suspected cause does not postdate the metric
// change. The configured propagation lag shifts the cause day earlier
// before comparing.
func checkTemporal(in checkInput, th config.Thresholds) Check {
	c := Check{Name: CheckTemporal}

	if in.causeDay < 0 || in.metricChangeDay < 0 {
		c.Status = CheckPass
		c.Detail = "no temporal evidence to contradict the hypothesis"
		return c
	}

	effectiveCause := in.causeDay - th.PropagationLagDays
	if effectiveCause <= in.metricChangeDay {
		c.Status = CheckPass
		c.Detail = fmt.Sprintf("cause day %d precedes metric change day %d", in.causeDay, in.metricChangeDay)
	} else {
		c.Status = CheckHalt
		c.Detail = fmt.Sprintf("cause day %d follows metric change day %d, effect cannot precede cause", in.causeDay, in.metricChangeDay)
	}
	return c
}

// checkMixShift flags a compositionally dominated movement for review.
// This check investigates, it never halts: mix shift is an answer, not an
// error.
func checkMixShift(dec *decompose.Result, th config.Thresholds) Check {
	c := Check{Name: CheckMixShift}
	mix := dec.MixShift.MixPct
	if mix >= th.MixShiftDominantPct {
		c.Status = CheckInvestigate
		c.Detail = fmt.Sprintf("composition explains %.1f%% of the movement, above the %.0f%% threshold", mix, th.MixShiftDominantPct)
	} else {
		c.Status = CheckPass
		c.Detail = fmt.Sprintf("composition explains %.1f%% of the movement", mix)
	}
	return c
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, "; ")
}
