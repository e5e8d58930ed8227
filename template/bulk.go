package template

import (
	"context"
	"errors"
	"time"

	"github.com/ediel-queiroz/jnosql/pkg/worker"
)

// bulkStopTimeout bounds the drain of in-flight writes after the last
// item is queued.
const bulkStopTimeout = 30 * time.Second

// InsertAll stores every object, fanning the writes over a bounded worker
// pool. Results keep the input order. Failed items leave a nil slot and
// their errors come back joined; the other items are still written.
func (t *Template) InsertAll(ctx context.Context, objects []any) ([]any, error) {
	return t.bulk(ctx, objects, t.Insert)
}

// UpdateAll overwrites every object's stored version concurrently, with
// the same ordering and error semantics as InsertAll.
func (t *Template) UpdateAll(ctx context.Context, objects []any) ([]any, error) {
	return t.bulk(ctx, objects, t.Update)
}

// DeleteAll removes the stored entity for every object concurrently.
func (t *Template) DeleteAll(ctx context.Context, objects []any) error {
	_, err := t.bulk(ctx, objects, func(ctx context.Context, o any) (any, error) {
		return nil, t.Delete(ctx, o)
	})
	return err
}

type bulkItem struct {
	index  int
	object any
}

func (t *Template) bulk(
	ctx context.Context,
	objects []any,
	op func(context.Context, any) (any, error),
) ([]any, error) {
	if len(objects) == 0 {
		return nil, nil
	}

	// Each worker writes only its own slot, so no locking is needed.
	results := make([]any, len(objects))
	errs := make([]error, len(objects))

	workers := min(4, len(objects))
	pool, err := worker.NewPool(workers, len(objects), func(ctx context.Context, it bulkItem) error {
		result, err := op(ctx, it.object)
		if err != nil {
			errs[it.index] = err
			return err
		}
		results[it.index] = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := pool.Start(ctx); err != nil {
		return nil, err
	}

	for i, o := range objects {
		if err := pool.Submit(ctx, bulkItem{index: i, object: o}); err != nil {
			_ = pool.Stop(bulkStopTimeout)
			return nil, err
		}
	}
	if err := pool.Stop(bulkStopTimeout); err != nil {
		return nil, err
	}

	if err := errors.Join(errs...); err != nil {
		return results, err
	}
	return results, nil
}
