package model

import (
	"time"
)

const (
	// OutcomeCreated marks an object created on the platform.
	OutcomeCreated = "created"
	// OutcomeUpdated marks an object whose attributes were replaced.
	OutcomeUpdated = "updated"
	// OutcomeDeleted marks an object removed from the platform.
	OutcomeDeleted = "deleted"
	// OutcomeUnchanged marks an object already matching the desired state.
	OutcomeUnchanged = "unchanged"
	// OutcomeFailed marks an operation that did not complete; Reason says why.
	OutcomeFailed = "failed"
)

// Result captures the outcome of applying a single identifier.
type Result struct {
	Identifier string
	Outcome    string
	Reason     string
	Error      error
	Duration   time.Duration
	Timestamp  time.Time
}

// ApplyResult aggregates per-identifier outcomes for one kind. Its
// identifier set equals the union of the desired and remote sets.
type ApplyResult struct {
	Kind    string
	Results []Result
}

// Summary tallies outcomes for user-facing reporting.
type Summary struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Failed    int
}

// Summary computes outcome counts.
func (r *ApplyResult) Summary() Summary {
	var s Summary
	if r == nil {
		return s
	}
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeCreated:
			s.Created++
		case OutcomeUpdated:
			s.Updated++
		case OutcomeDeleted:
			s.Deleted++
		case OutcomeUnchanged:
			s.Unchanged++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

// Failed returns the failed results in apply order.
func (r *ApplyResult) Failed() []Result {
	if r == nil {
		return nil
	}
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Identifiers returns every identifier covered by the result, in apply order.
func (r *ApplyResult) Identifiers() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		ids = append(ids, res.Identifier)
	}
	return ids
}
