package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

// FetchAll pages through the kind's collection endpoint and returns the
// live remote set, keyed by the adapter's identifier. The set is rebuilt
// on every call; caching a remote view across runs would reconcile
// against stale state.
func (e *Engine) FetchAll(ctx context.Context, ad adapter.Adapter) (*model.Set, error) {
	meta := ad.Metadata()
	log := e.log.WithKind(meta.Kind)

	if pre, ok := ad.(adapter.Preflighter); ok {
		if err := pre.Preflight(ctx, e.client); err != nil {
			return nil, err
		}
	}

	set := model.NewSet()
	for offset := 0; ; offset += e.pageSize {
		query := url.Values{
			"limit":  []string{strconv.Itoa(e.pageSize)},
			"offset": []string{strconv.Itoa(offset)},
		}

		data, err := e.client.Do(ctx, http.MethodGet, "/"+meta.Collection, query, nil)
		if err != nil {
			return nil, err
		}

		var body map[string]any
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, flowerrors.NewAdapterError(meta.Kind, fmt.Errorf("decode list response: %w", err))
		}

		records, _ := body[meta.Envelope].([]any)
		if len(records) == 0 {
			break
		}

		for _, raw := range records {
			record, ok := raw.(map[string]any)
			if !ok {
				return nil, flowerrors.NewAdapterError(meta.Kind, fmt.Errorf("list response contains a non-object record"))
			}

			id, err := ad.Identifier(record)
			if err != nil {
				return nil, err
			}

			if existing, ok := set.Get(id); ok {
				// The same identifier on two pages is tolerable only if
				// both views agree; a disagreement means the remote state
				// shifted mid-fetch and cannot be trusted.
				if !reflect.DeepEqual(ad.Normalize(existing.Attributes), ad.Normalize(record)) {
					return nil, flowerrors.NewConsistencyError(meta.Kind, id)
				}
				continue
			}

			set.Put(model.Object{Kind: meta.Kind, Identifier: id, Attributes: record})
		}

		if len(records) < e.pageSize {
			break
		}
	}

	log.WithFields(map[string]any{"count": set.Len()}).Debug("fetched remote state")
	return set, nil
}
