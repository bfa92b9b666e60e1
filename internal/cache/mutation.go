package cache

import "context"

// Mutation binds a write operation to the query keys it makes stale.
type Mutation[In, Out any] struct {
	Name string
	Fn   func(ctx context.Context, in In) (Out, error)
	// Invalidates lists the keys (or key prefixes) made stale by a
	// successful call.
	Invalidates func(in In, out Out) []Key
	// OnSuccess runs after invalidation.
	OnSuccess func(ctx context.Context, in In, out Out, keys []Key)
}

// Run calls Fn once. On success the declared keys are invalidated; on
// failure nothing is invalidated and the error is returned as is.
func (m Mutation[In, Out]) Run(ctx context.Context, c *Cache, in In) (Out, error) {
	out, err := m.Fn(ctx, in)
	if err != nil {
		return out, err
	}
	var keys []Key
	if m.Invalidates != nil {
		keys = m.Invalidates(in, out)
	}
	n := c.Invalidate(ctx, keys...)
	c.logger.Debug("mutation succeeded", "mutation", m.Name, "invalidated", n)
	if m.OnSuccess != nil {
		m.OnSuccess(ctx, in, out, keys)
	}
	return out, nil
}
