package rolesadapter

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

type rolesAdapter struct{}

// New creates the roles adapter.
func New() adapter.Adapter {
	return &rolesAdapter{}
}

var _ adapter.Adapter = (*rolesAdapter)(nil)

func (a *rolesAdapter) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Kind:            "roles",
		Collection:      "roles",
		Envelope:        "roles",
		IdentifierField: "name",
		// The platform's built-in roles cannot be safely removed.
		Protected:      []string{"Admin", "Op", "User", "Viewer", "Public"},
		SupportsCreate: true,
		SupportsDelete: true,
		Description:    "Manages access-control roles and their permitted actions.",
	}
}

func (a *rolesAdapter) Identifier(record map[string]any) (string, error) {
	id, ok := adapter.StringField(record, "name")
	if !ok {
		return "", flowerrors.NewAdapterError("roles", fmt.Errorf("record missing name"))
	}
	return id, nil
}

// Normalize reduces a role to its action set in a sorted canonical string
// form so comparison ignores action ordering.
func (a *rolesAdapter) Normalize(attrs map[string]any) map[string]any {
	return map[string]any{"actions": canonicalActions(attrs["actions"])}
}

func (a *rolesAdapter) CreatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *rolesAdapter) UpdatePayload(obj model.Object) (map[string]any, error) {
	return a.payload(obj), nil
}

func (a *rolesAdapter) UpdateQuery(string) url.Values { return nil }

func (a *rolesAdapter) payload(obj model.Object) map[string]any {
	return map[string]any{
		"name":    obj.Identifier,
		"actions": obj.Attributes["actions"],
	}
}

func canonicalActions(raw any) []any {
	list, ok := raw.([]any)
	if !ok {
		return []any{}
	}

	actions := make([]string, 0, len(list))
	for _, item := range list {
		actions = append(actions, actionString(item))
	}
	sort.Strings(actions)

	out := make([]any, len(actions))
	for i, action := range actions {
		out[i] = action
	}
	return out
}

// actionString flattens the API's {action:{name},resource:{name}} shape
// into "action on resource".
func actionString(item any) string {
	entry, ok := item.(map[string]any)
	if !ok {
		return fmt.Sprintf("%v", item)
	}

	action := nestedName(entry, "action")
	resource := nestedName(entry, "resource")
	if action == "" && resource == "" {
		return fmt.Sprintf("%v", item)
	}
	return action + " on " + resource
}

func nestedName(entry map[string]any, field string) string {
	nested, ok := entry[field].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := adapter.StringField(nested, "name")
	return name
}
