package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"StockDesk/app/remote"
)

// collection is a guarded slice of entities in insertion order, newest first.
// Snapshots are copies; callers never see the backing slice.
type collection[T any] struct {
	mu    sync.RWMutex
	items []T
	id    func(T) string
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) replaceAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

func (c *collection[T]) prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// replaceByID swaps the entity in place; unknown ids are a no-op.
func (c *collection[T]) replaceByID(id string, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items[i] = item
			return true
		}
	}
	return false
}

func (c *collection[T]) removeByID(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *collection[T]) find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// repository binds one table's entity service to an in-memory collection,
// with confirm-then-apply on every mutation.
type repository[T any] struct {
	table  string
	svc    remote.EntityService
	decode func(remote.Record) T
	coll   collection[T]
	log    *zap.Logger
}

func newRepository[T any](table string, svc remote.EntityService, decode func(remote.Record) T, id func(T) string, log *zap.Logger) *repository[T] {
	return &repository[T]{
		table:  table,
		svc:    svc,
		decode: decode,
		coll:   collection[T]{id: id},
		log:    log.With(zap.String("table", table)),
	}
}

func (r *repository[T]) List() []T {
	return r.coll.list()
}

// LoadAll replaces local contents with the full remote collection.
func (r *repository[T]) LoadAll(ctx context.Context) error {
	recs, err := r.svc.List(ctx)
	if err != nil {
		return err
	}
	items := make([]T, 0, len(recs))
	for _, rec := range recs {
		items = append(items, r.decode(rec))
	}
	r.coll.replaceAll(items)
	r.log.Debug("collection loaded", zap.Int("count", len(items)))
	return nil
}

// Create sends the payload and prepends the confirmed entity.
func (r *repository[T]) Create(ctx context.Context, payload remote.Record) (T, error) {
	return confirmThenApply(r.log, r.table, "create",
		func() (T, error) {
			rec, err := r.svc.Create(ctx, payload)
			if err != nil {
				var zero T
				return zero, err
			}
			return r.decode(rec), nil
		},
		func(item T) { r.coll.prepend(item) },
	)
}

// Update sends the patch and replaces the confirmed entity in place. An id
// unknown locally still round-trips to the remote; the apply is then a no-op.
func (r *repository[T]) Update(ctx context.Context, id string, patch remote.Record) (T, error) {
	return confirmThenApply(r.log, r.table, "update",
		func() (T, error) {
			rec, err := r.svc.Update(ctx, id, patch)
			if err != nil {
				var zero T
				return zero, err
			}
			return r.decode(rec), nil
		},
		func(item T) { r.coll.replaceByID(id, item) },
	)
}

// Delete removes the entity remotely and locally. A remote NotFound is
// treated as already satisfied.
func (r *repository[T]) Delete(ctx context.Context, id string) error {
	return confirmDelete(r.log, r.table,
		func() error { return r.svc.Delete(ctx, id) },
		func() { r.coll.removeByID(id) },
	)
}

func (r *repository[T]) Clear() {
	r.coll.clear()
}
