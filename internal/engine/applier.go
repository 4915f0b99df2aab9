package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flowmeta/flowmeta/internal/adapter"
	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

const (
	verbCreate = "create"
	verbUpdate = "update"
	verbDelete = "delete"
)

// Apply executes the plan: creates, then updates, then deletes. Creation
// runs before deletion so a recreated identifier is never briefly absent.
// Operations within a phase are independent and run concurrently up to
// opts.Workers; each writes only its own result slot. A single failure
// never aborts the rest of the plan — except an AuthError, which cancels
// everything still pending and is returned, since no later call can
// succeed with bad credentials.
func (e *Engine) Apply(ctx context.Context, ad adapter.Adapter, desired *model.Set, plan *model.Plan, opts Options) (*model.ApplyResult, error) {
	meta := ad.Metadata()
	log := e.log.WithKind(meta.Kind)

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := len(plan.Create) + len(plan.Update) + len(plan.Delete) + len(plan.Unchanged)
	results := make([]model.Result, total)

	var authOnce sync.Once
	var authErr error

	pos := 0
	runPhase := func(ids []string, verb string) {
		g := new(errgroup.Group)
		g.SetLimit(workers)

		for i, id := range ids {
			id := id
			idx := pos + i
			g.Go(func() error {
				results[idx] = e.applyOne(ctx, ad, desired, id, verb)

				var failure *flowerrors.AuthError
				if errors.As(results[idx].Error, &failure) {
					authOnce.Do(func() {
						authErr = results[idx].Error
						cancel()
					})
				}
				return nil
			})
		}
		g.Wait() //nolint:errcheck
		pos += len(ids)
	}

	runPhase(plan.Create, verbCreate)
	runPhase(plan.Update, verbUpdate)
	runPhase(plan.Delete, verbDelete)

	for _, id := range plan.Unchanged {
		results[pos] = model.Result{Identifier: id, Outcome: model.OutcomeUnchanged, Timestamp: time.Now()}
		pos++
	}

	result := &model.ApplyResult{Kind: meta.Kind, Results: results}
	summary := result.Summary()
	log.WithFields(map[string]any{
		"created":   summary.Created,
		"updated":   summary.Updated,
		"deleted":   summary.Deleted,
		"unchanged": summary.Unchanged,
		"failed":    summary.Failed,
	}).Info("apply finished")

	return result, authErr
}

func (e *Engine) applyOne(ctx context.Context, ad adapter.Adapter, desired *model.Set, id, verb string) model.Result {
	start := time.Now()
	log := e.log.WithKind(ad.Metadata().Kind).WithFields(map[string]any{"identifier": id})

	finish := func(outcome string, err error) model.Result {
		res := model.Result{
			Identifier: id,
			Outcome:    outcome,
			Error:      err,
			Duration:   time.Since(start),
			Timestamp:  start,
		}
		if err != nil {
			res.Reason = failureReason(err)
			log.Error(err, verb+" failed")
		} else {
			log.Info(outcome)
		}
		return res
	}

	if err := ctx.Err(); err != nil {
		return finish(model.OutcomeFailed, fmt.Errorf("cancelled: %w", err))
	}

	switch verb {
	case verbCreate:
		obj, ok := desired.Get(id)
		if !ok {
			return finish(model.OutcomeFailed, flowerrors.NewAdapterError(ad.Metadata().Kind, fmt.Errorf("desired object %q disappeared", id)))
		}

		err := e.doCreate(ctx, ad, obj)
		if err == nil {
			return finish(model.OutcomeCreated, nil)
		}
		// Another writer created it first: fall back to an update, once.
		if statusOf(err) == http.StatusConflict {
			if updateErr := e.doUpdate(ctx, ad, obj); updateErr == nil {
				return finish(model.OutcomeUpdated, nil)
			} else {
				err = updateErr
			}
		}
		return finish(model.OutcomeFailed, err)

	case verbUpdate:
		obj, ok := desired.Get(id)
		if !ok {
			return finish(model.OutcomeFailed, flowerrors.NewAdapterError(ad.Metadata().Kind, fmt.Errorf("desired object %q disappeared", id)))
		}

		err := e.doUpdate(ctx, ad, obj)
		if err == nil {
			return finish(model.OutcomeUpdated, nil)
		}
		// Deleted remotely since the fetch: fall back to a create, once.
		if statusOf(err) == http.StatusNotFound && ad.Metadata().SupportsCreate {
			if createErr := e.doCreate(ctx, ad, obj); createErr == nil {
				return finish(model.OutcomeCreated, nil)
			} else {
				err = createErr
			}
		}
		return finish(model.OutcomeFailed, err)

	case verbDelete:
		err := e.doDelete(ctx, ad, id)
		// Already gone is as deleted as it gets.
		if err == nil || statusOf(err) == http.StatusNotFound {
			return finish(model.OutcomeDeleted, nil)
		}
		return finish(model.OutcomeFailed, err)
	}

	return finish(model.OutcomeFailed, fmt.Errorf("unknown operation %q", verb))
}

func (e *Engine) doCreate(ctx context.Context, ad adapter.Adapter, obj model.Object) error {
	meta := ad.Metadata()
	if !meta.SupportsCreate {
		return flowerrors.NewAdapterError(meta.Kind, fmt.Errorf("kind does not support create"))
	}

	payload, err := ad.CreatePayload(obj)
	if err != nil {
		return err
	}

	_, err = e.client.Do(ctx, http.MethodPost, "/"+meta.Collection, nil, payload)
	return err
}

func (e *Engine) doUpdate(ctx context.Context, ad adapter.Adapter, obj model.Object) error {
	meta := ad.Metadata()

	payload, err := ad.UpdatePayload(obj)
	if err != nil {
		return err
	}

	_, err = e.client.Do(ctx, http.MethodPatch, itemPath(meta, obj.Identifier), ad.UpdateQuery(obj.Identifier), payload)
	return err
}

func (e *Engine) doDelete(ctx context.Context, ad adapter.Adapter, id string) error {
	meta := ad.Metadata()
	if !meta.SupportsDelete {
		return flowerrors.NewAdapterError(meta.Kind, fmt.Errorf("kind does not support delete"))
	}

	_, err := e.client.Do(ctx, http.MethodDelete, itemPath(meta, id), nil, nil)
	return err
}

func itemPath(meta adapter.Metadata, id string) string {
	return "/" + meta.Collection + "/" + url.PathEscape(id)
}

func statusOf(err error) int {
	var httpErr *flowerrors.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func failureReason(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return err.Error()
}
