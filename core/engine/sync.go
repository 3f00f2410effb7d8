package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Apply invokes the configured callbacks over an already-computed change
// set. The three categories run concurrently and independently: a failure in
// one does not cancel the others, but once all have finished the first error
// (in insert, delete, update order) is returned and no partial result is
// exposed.
func (e *Engine) Apply(ctx context.Context, changes *ChangeSet) (*SyncResult, error) {
	var (
		result                 SyncResult
		insErr, delErr, updErr error
		wg                     sync.WaitGroup
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		if e.callbacks.Insert == nil {
			return
		}
		result.Inserts, insErr = applyCategory(ctx, changes.Inserted, func(ctx context.Context, in Insert) (any, error) {
			return e.callbacks.Insert(ctx, in.Payload())
		})
	}()

	go func() {
		defer wg.Done()
		if e.callbacks.Delete == nil {
			return
		}
		result.Deletes, delErr = applyCategory(ctx, changes.Deleted, func(ctx context.Context, row Record) (any, error) {
			return e.callbacks.Delete(ctx, row)
		})
	}()

	go func() {
		defer wg.Done()
		if e.callbacks.Update == nil {
			return
		}
		result.Updates, updErr = applyCategory(ctx, changes.Updated, func(ctx context.Context, u Update) (any, error) {
			return e.callbacks.Update(ctx, u.Payload(), u.Deltas)
		})
	}()

	wg.Wait()

	for _, err := range []error{insErr, delErr, updErr} {
		if err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// applyCategory fans the callback out over every entry in one category.
// Results are collected positionally, aligned with the change list, never by
// completion order. The first failure cancels the category's remaining
// invocations and discards its partial results.
func applyCategory[T any](ctx context.Context, entries []T, invoke func(context.Context, T) (any, error)) ([]any, error) {
	results := make([]any, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			value, err := invoke(ctx, entry)
			if err != nil {
				return err
			}
			results[i] = value
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
