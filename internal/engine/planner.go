package engine

import (
	"context"
	"reflect"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/model"
)

// Plan computes the create/update/delete sequences between a desired and
// a remote set. Creates follow the desired set's declaration order and
// deletes the remote fetch order, so repeated runs produce identical
// plans and logs.
func (e *Engine) Plan(ad adapter.Adapter, desired, remote *model.Set, opts Options) *model.Plan {
	meta := ad.Metadata()
	plan := &model.Plan{Kind: meta.Kind}

	protected := make(map[string]bool, len(meta.Protected))
	for _, id := range meta.Protected {
		protected[id] = true
	}

	for _, id := range desired.Identifiers() {
		if !remote.Has(id) {
			plan.Create = append(plan.Create, id)
			continue
		}

		desiredObj, _ := desired.Get(id)
		remoteObj, _ := remote.Get(id)
		if reflect.DeepEqual(ad.Normalize(desiredObj.Attributes), ad.Normalize(remoteObj.Attributes)) {
			plan.Unchanged = append(plan.Unchanged, id)
		} else {
			plan.Update = append(plan.Update, id)
		}
	}

	for _, id := range remote.Identifiers() {
		if desired.Has(id) {
			continue
		}
		if opts.Prune && meta.SupportsDelete && !protected[id] {
			plan.Delete = append(plan.Delete, id)
		} else {
			// Unmanaged objects are left alone unless pruning is asked
			// for explicitly.
			plan.Unchanged = append(plan.Unchanged, id)
		}
	}

	return plan
}

// Reconcile fetches the remote state and computes the plan against it.
func (e *Engine) Reconcile(ctx context.Context, ad adapter.Adapter, desired *model.Set, opts Options) (*model.Plan, *model.Set, error) {
	remote, err := e.FetchAll(ctx, ad)
	if err != nil {
		return nil, nil, err
	}

	plan := e.Plan(ad, desired, remote, opts)
	e.log.WithKind(ad.Metadata().Kind).WithFields(map[string]any{
		"create":    len(plan.Create),
		"update":    len(plan.Update),
		"delete":    len(plan.Delete),
		"unchanged": len(plan.Unchanged),
	}).Info("computed plan")

	return plan, remote, nil
}
