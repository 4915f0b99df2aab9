package engine

import (
	"github.com/google/uuid"

	"github.com/flowmeta/flowmeta/internal/api"
	"github.com/flowmeta/flowmeta/internal/logger"
)

const (
	defaultPageSize = 100
	defaultWorkers  = 4
)

// Options controls one reconciliation pass.
type Options struct {
	// Prune opts in to deleting remote objects absent from the desired
	// set. Off by default: an incomplete manifest must never cause data
	// loss.
	Prune bool
	// Workers bounds concurrent apply operations within a phase.
	Workers int
}

// Engine computes and applies the difference between a desired set and
// the remote state of one metadata kind. All diff and apply semantics
// live here; adapters only parametrize identifiers, comparison and
// payload shapes.
type Engine struct {
	client   api.Doer
	log      *logger.Logger
	runID    string
	pageSize int
}

// New creates an Engine on top of an authenticated transport. Every log
// record carries a fresh run ID so concurrent kind reconciliations can be
// told apart.
func New(client api.Doer, log *logger.Logger) *Engine {
	runID := uuid.NewString()
	return &Engine{
		client:   client,
		log:      log.WithFields(map[string]any{"run_id": runID}),
		runID:    runID,
		pageSize: defaultPageSize,
	}
}

// RunID returns the identifier tagging this engine's log records.
func (e *Engine) RunID() string {
	return e.runID
}
