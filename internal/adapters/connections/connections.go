package connectionsadapter

import (
	"fmt"
	"net/url"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

type connectionsAdapter struct{}

// New creates the connections adapter.
func New() adapter.Adapter {
	return &connectionsAdapter{}
}

var _ adapter.Adapter = (*connectionsAdapter)(nil)

// Fields participating in comparison, with the defaults the platform
// fills when a manifest omits them. The password is excluded: the API
// never returns it, so it can only be written, not diffed.
var comparedFields = map[string]any{
	"conn_type":   "",
	"host":        "",
	"schema":      "",
	"login":       "",
	"port":        float64(0),
	"extra":       "",
	"description": "",
}

func (a *connectionsAdapter) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Kind:            "connections",
		Collection:      "connections",
		Envelope:        "connections",
		IdentifierField: "connection_id",
		// airflow_db backs the platform itself; deleting it bricks the
		// environment.
		Protected:      []string{"airflow_db"},
		SupportsCreate: true,
		SupportsDelete: true,
		Description:    "Manages connection endpoints and credentials.",
	}
}

func (a *connectionsAdapter) Identifier(record map[string]any) (string, error) {
	id, ok := adapter.StringField(record, "connection_id")
	if !ok {
		return "", flowerrors.NewAdapterError("connections", fmt.Errorf("record missing connection_id"))
	}
	return id, nil
}

func (a *connectionsAdapter) Normalize(attrs map[string]any) map[string]any {
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

func (a *connectionsAdapter) CreatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *connectionsAdapter) UpdatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *connectionsAdapter) UpdateQuery(string) url.Values { return nil }

// payload strips null-valued fields: the API rejects them, and the CLI
// export format emits them for every unset attribute.
func (a *connectionsAdapter) payload(obj model.Object) map[string]any {
	out := make(map[string]any, len(obj.Attributes)+1)
	for k, v := range obj.Attributes {
		if v == nil {
			continue
		}
		out[k] = v
	}
	out["connection_id"] = obj.Identifier
	return out
}
