// Package signal turns raw metric series into discrete evidence: step
// changes in daily series, per-metric movement directions, co-movement
// signature matches and baseline z-score checks.
package signal

import (
	"math"

	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
	"github.com/moolen/driftdiag/internal/schema"
)

// Movement directions as observed or expected by signatures.
const (
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStable = "stable"
)

// StepChange describes the sharpest day-over-day move in a series and
// whether it amounts to a sustained level shift.
type StepChange struct {
	Detected  bool    `json:"detected"`
	DayIndex  int     `json:"day_index"`
	ChangePct float64 `json:"change_pct"`
	JumpShare float64 `json:"jump_share"`
}

// DetectStepChange scans a day-ordered series for the largest single-day
// percent change. It counts as a step only when the change exceeds
// thresholdPct and that one day accounts for at least jumpShare of the
// overall level shift between the periods before and after it. A spike
// that reverts is drift or noise, not a step.
func DetectStepChange(series []float64, thresholdPct, jumpShare float64) StepChange {
	sc := StepChange{DayIndex: -1}
	if len(series) < 2 {
		return sc
	}

	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev == 0 {
			continue
		}
		changePct := (series[i] - prev) / prev * 100
		if math.Abs(changePct) > math.Abs(sc.ChangePct) {
			sc.ChangePct = changePct
			sc.DayIndex = i
		}
	}
	if sc.DayIndex < 0 {
		return sc
	}

	preAvg := mean(series[:sc.DayIndex])
	postAvg := mean(series[sc.DayIndex:])
	levelShift := postAvg - preAvg
	if levelShift == 0 {
		return sc
	}

	jump := series[sc.DayIndex] - series[sc.DayIndex-1]
	sc.JumpShare = math.Abs(jump) / math.Abs(levelShift)
	sc.Detected = math.Abs(sc.ChangePct) > thresholdPct && sc.JumpShare >= jumpShare
	return sc
}

// BaselineCheck grades one value against a historical baseline.
type BaselineCheck struct {
	Anomalous bool    `json:"anomalous"`
	ZScore    float64 `json:"z_score"`
	Mean      float64 `json:"baseline_mean"`
	Std       float64 `json:"baseline_std"`
}

// CheckBaseline computes the z-score of value against history. With a flat
// baseline (zero standard deviation) any deviation at all is anomalous.
func CheckBaseline(value float64, history []float64, zThreshold float64) BaselineCheck {
	bc := BaselineCheck{}
	if len(history) == 0 {
		return bc
	}

	bc.Mean = mean(history)
	var variance float64
	for _, v := range history {
		d := v - bc.Mean
		variance += d * d
	}
	bc.Std = math.Sqrt(variance / float64(len(history)))

	if bc.Std == 0 {
		bc.Anomalous = value != bc.Mean
		return bc
	}

	bc.ZScore = (value - bc.Mean) / bc.Std
	bc.Anomalous = math.Abs(bc.ZScore) >= zThreshold
	return bc
}

// Observe derives each metric's movement direction between the two
// periods. Movements inside the smallest severity band read as stable.
// Metrics whose aggregate cannot be computed are omitted.
func Observe(baseline, current []schema.Row, metrics []string, th config.Thresholds) map[string]string {
	observed := make(map[string]string, len(metrics))
	for _, m := range metrics {
		agg := decompose.AggregateDelta(baseline, current, m, th)
		if agg.Error != "" {
			continue
		}
		observed[m] = DirectionOf(agg.RelativePct, th.SeverityP2Pct)
	}
	return observed
}

// DirectionOf maps a relative percent change to a direction, treating
// anything below stablePct in magnitude as stable.
func DirectionOf(relativePct, stablePct float64) string {
	switch {
	case math.Abs(relativePct) < stablePct:
		return DirectionStable
	case relativePct > 0:
		return DirectionUp
	default:
		return DirectionDown
	}
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
