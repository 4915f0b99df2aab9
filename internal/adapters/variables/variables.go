package variablesadapter

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

type variablesAdapter struct{}

// New creates the variables adapter.
func New() adapter.Adapter {
	return &variablesAdapter{}
}

var _ adapter.Adapter = (*variablesAdapter)(nil)

func (a *variablesAdapter) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Kind:            "variables",
		Collection:      "variables",
		Envelope:        "variables",
		IdentifierField: "key",
		SupportsCreate:  true,
		SupportsDelete:  true,
		Description:     "Manages environment variables exposed to workflows.",
	}
}

func (a *variablesAdapter) Identifier(record map[string]any) (string, error) {
	id, ok := adapter.StringField(record, "key")
	if !ok {
		return "", flowerrors.NewAdapterError("variables", fmt.Errorf("record missing key"))
	}
	return id, nil
}

// Normalize compares values as strings: the platform stores every variable
// value as a string while manifests may declare numbers or booleans.
func (a *variablesAdapter) Normalize(attrs map[string]any) map[string]any {
	return map[string]any{"value": stringify(attrs["value"])}
}

func (a *variablesAdapter) CreatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *variablesAdapter) UpdatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *variablesAdapter) UpdateQuery(string) url.Values { return nil }

func (a *variablesAdapter) payload(obj model.Object) map[string]any {
	return map[string]any{
		"key":   obj.Identifier,
		"value": stringify(obj.Attributes["value"]),
	}
}

func stringify(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
