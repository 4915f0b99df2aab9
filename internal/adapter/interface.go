package adapter

import (
	"context"
	"net/url"

	"github.com/flowmeta/flowmeta/internal/api"
	"github.com/flowmeta/flowmeta/internal/model"
)

// Metadata describes a kind to the engine: where its collection lives on
// the API, how list responses are shaped, and what the engine may do to it.
type Metadata struct {
	// Kind is the registry key and the manifest metadata_type value.
	Kind string
	// Collection is the API path segment, e.g. "connections".
	Collection string
	// Envelope is the list-response field holding the records.
	Envelope string
	// IdentifierField names the record field carrying the identifier.
	IdentifierField string
	// Protected identifiers are never deleted, even when pruning.
	Protected []string
	// SupportsCreate and SupportsDelete gate the operations the platform
	// offers for this kind. DAGs exist only through deployed code, so the
	// API can neither create nor delete them.
	SupportsCreate bool
	SupportsDelete bool
	Description    string
}

// Adapter parametrizes the reconciliation engine for one metadata kind:
// identifier extraction, attribute normalization for comparison, and
// payload shaping. Adapters must not implement their own diff or apply
// logic; ordering, idempotence and partial-failure semantics all live in
// the engine.
type Adapter interface {
	// Metadata returns the kind's static description.
	Metadata() Metadata

	// Identifier extracts the natural identifier from a raw API record.
	Identifier(record map[string]any) (string, error)

	// Normalize reduces an attribute map to the fields that participate
	// in comparison, filling defaults the platform populates silently and
	// dropping server-managed fields. The engine compares desired and
	// remote objects by deep equality of their normalized forms.
	Normalize(attrs map[string]any) map[string]any

	// CreatePayload shapes the request body for a create call.
	CreatePayload(obj model.Object) (map[string]any, error)

	// UpdatePayload shapes the request body for an update call.
	UpdatePayload(obj model.Object) (map[string]any, error)

	// UpdateQuery returns extra query parameters for update calls, or nil.
	UpdateQuery(identifier string) url.Values
}

// Preflighter lets an adapter veto reconciliation before the remote fetch.
// Adapters that do not need a preflight can ignore this interface; the
// reader detects it via type assertion and only calls Preflight when
// implemented.
type Preflighter interface {
	Preflight(ctx context.Context, do api.Doer) error
}
