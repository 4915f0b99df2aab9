package poolsadapter

import (
	"fmt"
	"net/url"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

type poolsAdapter struct{}

// New creates the pools adapter.
func New() adapter.Adapter {
	return &poolsAdapter{}
}

var _ adapter.Adapter = (*poolsAdapter)(nil)

// Slot counters (open, running, queued, ...) are server-computed and
// excluded from comparison.
var comparedFields = map[string]any{
	"slots":            float64(0),
	"description":      "",
	"include_deferred": false,
}

func (a *poolsAdapter) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Kind:            "pools",
		Collection:      "pools",
		Envelope:        "pools",
		IdentifierField: "name",
		// default_pool always exists; the API refuses to delete it.
		Protected:      []string{"default_pool"},
		SupportsCreate: true,
		SupportsDelete: true,
		Description:    "Manages task pools and their slot counts.",
	}
}

func (a *poolsAdapter) Identifier(record map[string]any) (string, error) {
	id, ok := adapter.StringField(record, "name")
	if !ok {
		return "", flowerrors.NewAdapterError("pools", fmt.Errorf("record missing name"))
	}
	return id, nil
}

func (a *poolsAdapter) Normalize(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(comparedFields))
	for field, def := range comparedFields {
		value, ok := attrs[field]
		if !ok || value == nil {
			out[field] = def
			continue
		}
		out[field] = adapter.CanonicalValue(value)
	}
	return out
}

func (a *poolsAdapter) CreatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *poolsAdapter) UpdatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *poolsAdapter) UpdateQuery(string) url.Values { return nil }

func (a *poolsAdapter) payload(obj model.Object) map[string]any {
	out := make(map[string]any, len(obj.Attributes)+1)
	for k, v := range obj.Attributes {
		if v == nil {
			continue
		}
		out[k] = v
	}
	out["name"] = obj.Identifier
	return out
}
