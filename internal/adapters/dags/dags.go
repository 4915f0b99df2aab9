package dagsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/api"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

type dagsAdapter struct{}

// New creates the DAG metadata adapter.
func New() adapter.Adapter {
	return &dagsAdapter{}
}

var (
	_ adapter.Adapter     = (*dagsAdapter)(nil)
	_ adapter.Preflighter = (*dagsAdapter)(nil)
)

func (a *dagsAdapter) Metadata() adapter.Metadata {
	return adapter.Metadata{
		Kind:            "dags",
		Collection:      "dags",
		Envelope:        "dags",
		IdentifierField: "dag_id",
		// DAGs exist only through deployed workflow code; the API can
		// pause and unpause them but never create or delete them.
		SupportsCreate: false,
		SupportsDelete: false,
		Description:    "Manages the paused state of deployed DAGs.",
	}
}

func (a *dagsAdapter) Identifier(record map[string]any) (string, error) {
	id, ok := adapter.StringField(record, "dag_id")
	if !ok {
		return "", flowerrors.NewAdapterError("dags", fmt.Errorf("record missing dag_id"))
	}
	return id, nil
}

// Normalize keeps only the paused flag: owners, tags and scheduling fields
// are owned by the deployed code, not by the manifest.
func (a *dagsAdapter) Normalize(attrs map[string]any) map[string]any {
	paused, _ := attrs["is_paused"].(bool)
	return map[string]any{"is_paused": paused}
}

func (a *dagsAdapter) CreatePayload(model.Object) (map[string]any, error) {
	return nil, flowerrors.NewAdapterError("dags", fmt.Errorf("the platform cannot create DAGs"))
}

func (a *dagsAdapter) UpdatePayload(obj model.Object) (map[string]any, error) {
	paused, _ := obj.Attributes["is_paused"].(bool)
	return map[string]any{"is_paused": paused}, nil
}

// UpdateQuery restricts the patch to the paused flag so server-owned
// fields survive the update untouched.
func (a *dagsAdapter) UpdateQuery(string) url.Values {
	return url.Values{"update_mask": []string{"is_paused"}}
}

// Preflight aborts reconciliation when the environment reports DAG import
// errors: a broken import hides its DAG from the list endpoint, which
// would make every comparison against it meaningless.
func (a *dagsAdapter) Preflight(ctx context.Context, do api.Doer) error {
	data, err := do.Do(ctx, http.MethodGet, "/importErrors", nil, nil)
	if err != nil {
		return err
	}

	var body struct {
		TotalEntries int `json:"total_entries"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return flowerrors.NewAdapterError("dags", fmt.Errorf("decode import errors response: %w", err))
	}

	if body.TotalEntries != 0 {
		return flowerrors.NewAdapterError("dags", fmt.Errorf("%d import errors detected on this environment", body.TotalEntries))
	}
	return nil
}
