package model

import "time"

// Outcome is what happened to one collection during a bootstrap
type Outcome string

const (
	OutcomeCreated          Outcome = "created"
	OutcomeAlreadySatisfied Outcome = "already_satisfied"
	OutcomeConflict         Outcome = "conflict"
	OutcomeFailed           Outcome = "failed"
	// OutcomeWouldCreate is only produced by dry runs
	OutcomeWouldCreate Outcome = "would_create"
)

// Succeeded reports whether the outcome leaves the collection in the declared state
func (o Outcome) Succeeded() bool {
	return o == OutcomeCreated || o == OutcomeAlreadySatisfied || o == OutcomeWouldCreate
}

// SpecResult is the per-collection outcome of a run
type SpecResult struct {
	Collection string        `json:"collection"`
	Outcome    Outcome       `json:"outcome"`
	Err        error         `json:"-"`
	Error      string        `json:"error,omitempty"`
	Diff       string        `json:"diff,omitempty"`
	Duration   time.Duration `json:"durationNs"`
}

// Report holds one result per input spec, in input order
type Report struct {
	Results []SpecResult `json:"results"`
	DryRun  bool         `json:"dryRun,omitempty"`
}

// OK reports whether every collection succeeded
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if !res.Outcome.Succeeded() {
			return false
		}
	}
	return true
}

// Count returns how many results have the given outcome
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Err aggregates per-collection failures, or nil when everything succeeded
func (r *Report) Err() error {
	var failures []error
	for _, res := range r.Results {
		if res.Err != nil {
			failures = append(failures, res.Err)
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &BootstrapError{Failures: failures}
}
