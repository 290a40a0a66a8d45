package signal

import (
	"sort"
	"strings"

	"github.com/moolen/driftdiag/internal/config"
)

// Match is one signature scored against the observed directions.
type Match struct {
	Signature string  `json:"signature"`
	Archetype string  `json:"archetype"`
	Score     float64 `json:"score"`
}

// MatchResult carries the best and runner-up candidates. The runner-up is
// always reported so a reviewer can judge how decisive the match was.
type MatchResult struct {
	Accepted bool              `json:"accepted"`
	Best     *Match            `json:"best,omitempty"`
	RunnerUp *Match            `json:"runner_up,omitempty"`
	Observed map[string]string `json:"observed"`
}

// MatchSignatures scores every catalog signature by the fraction of its
// expected fields agreeing with the observed directions and accepts the
// best when it reaches acceptScore. Exact-match signatures are only
// accepted at a perfect score, however high the threshold sits.
func MatchSignatures(observed map[string]string, catalog []config.Signature, acceptScore float64) MatchResult {
	res := MatchResult{Observed: observed}
	if len(catalog) == 0 {
		return res
	}

	scored := make([]Match, 0, len(catalog))
	exact := make(map[string]bool, len(catalog))
	for _, sig := range catalog {
		scored = append(scored, Match{
			Signature: sig.Name,
			Archetype: sig.Archetype,
			Score:     scoreSignature(observed, sig),
		})
		exact[sig.Name] = sig.ExactMatch
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Signature < scored[j].Signature
	})

	res.Best = &scored[0]
	if len(scored) > 1 {
		res.RunnerUp = &scored[1]
	}

	if exact[res.Best.Signature] {
		res.Accepted = res.Best.Score == 1.0
	} else {
		res.Accepted = res.Best.Score >= acceptScore
	}
	return res
}

// scoreSignature returns the fraction of the signature's expected fields
// whose direction agrees with the observation. A metric missing from the
// observation counts as disagreement.
func scoreSignature(observed map[string]string, sig config.Signature) float64 {
	if len(sig.Expected) == 0 {
		return 0
	}
	matched := 0
	for metric, expected := range sig.Expected {
		if got, ok := observed[metric]; ok && directionMatches(got, expected) {
			matched++
		}
	}
	return float64(matched) / float64(len(sig.Expected))
}

// directionMatches compares an observed direction with an expected one.
// Only the expected side may be a compound like "stable_or_up", accepting
// any of its components. A compound observation against a plain
// expectation is too loose to claim a match.
func directionMatches(observed, expected string) bool {
	if observed == expected {
		return true
	}
	if !strings.Contains(expected, "_or_") {
		return false
	}
	for _, e := range strings.Split(expected, "_or_") {
		if observed == e {
			return true
		}
	}
	return false
}
