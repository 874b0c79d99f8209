package workspace

import (
	"context"
	"log/slog"

	"syno/internal/service"
)

// Validator is implemented by create inputs and patches.
type Validator interface {
	Validate() error
}

// NoPatch is the patch type of resources that cannot be edited.
type NoPatch struct{}

// Validate implements Validator.
func (NoPatch) Validate() error { return nil }

// Resource binds a collection to the service calls that mutate it.
// A nil Update or Delete marks the operation as unsupported by the API.
type Resource[T any, C, P Validator] struct {
	Name       string
	Collection Collection[T]
	Create     func(ctx context.Context, svc service.Service, groupID service.ID, in C) (T, error)
	Update     func(ctx context.Context, svc service.Service, groupID, id service.ID, patch P) (T, error)
	Delete     func(ctx context.Context, svc service.Service, groupID, id service.ID) error
	Apply      func(item T, patch P) T
}

// Controller executes create, update and remove intents for one resource
// kind against the active group.
//
// Creates and removes wait for the server. Updates are applied locally
// first and reverted if the server rejects them. Updates and removes on the
// same id run one at a time in the order they were issued.
type Controller[T any, C, P Validator] struct {
	store  *Store
	res    Resource[T, C, P]
	queue  *keyedQueue
	logger *slog.Logger
}

// NewController creates a controller for res over store.
func NewController[T any, C, P Validator](store *Store, res Resource[T, C, P]) *Controller[T, C, P] {
	return &Controller[T, C, P]{
		store:  store,
		res:    res,
		queue:  newKeyedQueue(),
		logger: store.logger.With("resource", res.Name),
	}
}

// Create validates in, sends it and appends the server's entity.
func (c *Controller[T, C, P]) Create(ctx context.Context, in C) (T, error) {
	var zero T
	if err := in.Validate(); err != nil {
		return zero, err
	}
	op, err := c.store.acquire(ctx)
	if err != nil {
		return zero, err
	}
	defer op.release()

	item, err := c.res.Create(op.ctx, c.store.svc, op.groupID, in)
	if err != nil {
		return zero, err
	}
	// Without an id the entity cannot be keyed; reload the collection instead.
	if c.res.Collection.ID(item) == "" {
		if err := c.store.fetch(op.ctx, op.gen, op.groupID, c.res.Collection.Kind); err != nil {
			c.logger.Warn("reload after create failed", "group", op.groupID, "error", err)
		}
		return item, nil
	}
	if !upsert(c.store, op.gen, c.res.Collection, item) {
		c.logger.Debug("dropped late create", "group", op.groupID, "id", c.res.Collection.ID(item))
	}
	return item, nil
}

// Update applies patch to the entry with the given id.
func (c *Controller[T, C, P]) Update(ctx context.Context, id service.ID, patch P) (T, error) {
	if c.res.Update == nil {
		var zero T
		return zero, service.Unsupported(c.res.Name + " update")
	}
	if err := patch.Validate(); err != nil {
		var zero T
		return zero, err
	}
	return c.UpdateWith(ctx, id, func(T) P { return patch })
}

// UpdateWith computes the patch from the entry's value at the start of its
// turn, applies it optimistically and sends it. On success the server's
// representation replaces the entry; on failure the pre-patch value is
// restored.
func (c *Controller[T, C, P]) UpdateWith(ctx context.Context, id service.ID, patchFor func(T) P) (T, error) {
	var zero T
	if c.res.Update == nil {
		return zero, service.Unsupported(c.res.Name + " update")
	}
	op, err := c.store.acquire(ctx)
	if err != nil {
		return zero, err
	}
	defer op.release()

	unlock, err := c.queue.lock(op.ctx, id)
	if err != nil {
		return zero, err
	}
	defer unlock()

	coll := c.res.Collection
	before, ok := find(c.store, op.gen, coll, id)
	if !ok {
		return zero, &service.ValidationError{Field: "id", Message: c.res.Name + " " + id.String() + " not found"}
	}
	patch := patchFor(before)
	if err := patch.Validate(); err != nil {
		return zero, err
	}

	put(c.store, op.gen, coll, c.res.Apply(before, patch))

	item, err := c.res.Update(op.ctx, c.store.svc, op.groupID, id, patch)
	if err != nil {
		put(c.store, op.gen, coll, before)
		c.logger.Debug("reverted update", "group", op.groupID, "id", id, "error", err)
		return zero, err
	}
	put(c.store, op.gen, coll, item)
	return item, nil
}

// Remove deletes the entry with the given id once the server confirms.
func (c *Controller[T, C, P]) Remove(ctx context.Context, id service.ID) error {
	if c.res.Delete == nil {
		return service.Unsupported(c.res.Name + " delete")
	}
	op, err := c.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer op.release()

	unlock, err := c.queue.lock(op.ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := c.res.Delete(op.ctx, c.store.svc, op.groupID, id); err != nil {
		return err
	}
	drop(c.store, op.gen, c.res.Collection, id)
	return nil
}

// Get returns the entry with the given id from the active snapshot.
func (c *Controller[T, C, P]) Get(id service.ID) (T, bool) {
	return Find(c.store, c.res.Collection, id)
}
