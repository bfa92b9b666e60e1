package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is the freshness of a cache entry.
type State int

const (
	StateMissing State = iota
	StateFresh
	StateStale
	StateFetching
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateFetching:
		return "fetching"
	default:
		return "missing"
	}
}

// Bus carries invalidations between cache instances of different processes.
type Bus interface {
	Publish(ctx context.Context, keys []Key) error
	// Subscribe delivers remote invalidations to fn until ctx is done.
	Subscribe(ctx context.Context, fn func(keys []Key)) error
}

type entry struct {
	key         Key
	value       any
	hasValue    bool
	updatedAt   time.Time
	lastAccess  time.Time
	invalidated bool
	gen         uint64 // bumped on every invalidation
	valueGen    uint64 // generation the stored value was fetched under
	fetching    int
	fetchingGen uint64 // newest generation with a fetch in flight
	subscribers int
}

// Cache is the query cache shared by one application process. Create it
// with New and release it with Close.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group

	staleTime time.Duration
	gcTime    time.Duration
	now       func() time.Time

	bus     Bus
	metrics *Metrics
	logger  *slog.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long a fetched value is served without re-fetching.
// Zero means every read re-fetches; a negative duration never expires.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithGCTime sets how long an unsubscribed, idle entry is kept before the
// janitor evicts it. Zero disables the janitor.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) { c.gcTime = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithBus broadcasts local invalidations and applies remote ones.
func WithBus(b Bus) Option {
	return func(c *Cache) { c.bus = b }
}

// WithMetrics records cache activity.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a cache and starts its janitor and bus subscription, if any.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	if c.gcTime > 0 {
		c.wg.Add(1)
		go c.janitor(ctx)
	}
	if c.bus != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			err := c.bus.Subscribe(ctx, func(keys []Key) {
				n := c.invalidateLocal(keys)
				c.logger.Debug("applied remote invalidation", "keys", fmt.Sprint(keys), "entries", n)
			})
			if err != nil && ctx.Err() == nil {
				c.logger.Error("invalidation bus subscription ended", "error", err)
			}
		}()
	}
	return c
}

// Close stops background work. In-flight fetches still complete.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.wg.Wait()
	})
}

func (c *Cache) janitor(ctx context.Context) {
	defer c.wg.Done()
	interval := c.gcTime / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("evicted idle cache entries", "count", n)
			}
		}
	}
}

// entryLocked returns the entry for key, creating it if needed.
func (c *Cache) entryLocked(key Key) *entry {
	id := key.id()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: append(Key(nil), key...), lastAccess: c.now()}
		c.entries[id] = e
		c.metrics.setEntries(len(c.entries))
	}
	return e
}

func (c *Cache) freshLocked(e *entry, staleTime time.Duration) bool {
	if !e.hasValue || e.invalidated {
		return false
	}
	if staleTime < 0 {
		return true
	}
	return c.now().Sub(e.updatedAt) < staleTime
}

func (c *Cache) stateLocked(e *entry) State {
	switch {
	case e.fetching > 0:
		return StateFetching
	case !e.hasValue:
		return StateMissing
	case c.freshLocked(e, c.staleTime):
		return StateFresh
	default:
		return StateStale
	}
}

// State reports the freshness of the entry under key.
func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.id()]
	if !ok {
		return StateMissing
	}
	return c.stateLocked(e)
}

// peek returns the stored value under key regardless of freshness, without
// fetching.
func (c *Cache) peek(key Key) (any, State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.id()]
	if !ok || !e.hasValue {
		return nil, StateMissing, false
	}
	return e.value, c.stateLocked(e), true
}

// Subscribe registers interest in key. Subscribed entries are never evicted.
// The returned function removes the subscription and is safe to call twice.
func (c *Cache) Subscribe(key Key) func() {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.subscribers++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			e.subscribers--
			e.lastAccess = c.now()
		})
	}
}

// subscriberCount returns the subscriber count of key.
func (c *Cache) subscriberCount(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.id()]; ok {
		return e.subscribers
	}
	return 0
}

// Invalidate marks every entry whose key starts with one of keys as stale
// and forwards the keys to the bus. Entries outside keys are untouched.
// It returns the number of local entries marked.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) int {
	if len(keys) == 0 {
		return 0
	}
	n := c.invalidateLocal(keys)
	if c.bus != nil {
		if err := c.bus.Publish(ctx, keys); err != nil {
			c.logger.Warn("failed to broadcast invalidation", "keys", fmt.Sprint(keys), "error", err)
		}
	}
	return n
}

func (c *Cache) invalidateLocal(keys []Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		for _, k := range keys {
			if e.key.HasPrefix(k) {
				e.invalidated = true
				e.gen++
				n++
				break
			}
		}
	}
	c.metrics.invalidated(n)
	return n
}

// Sweep evicts entries that have no subscribers, no fetch in flight and
// have not been read for the GC time. It returns the number evicted.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gcTime <= 0 {
		return 0
	}
	now := c.now()
	n := 0
	for id, e := range c.entries {
		if e.subscribers == 0 && e.fetching == 0 && now.Sub(e.lastAccess) >= c.gcTime {
			delete(c.entries, id)
			n++
		}
	}
	c.metrics.setEntries(len(c.entries))
	return n
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type fetchFunc func(ctx context.Context) (any, error)

func (c *Cache) fetch(ctx context.Context, key Key, fn fetchFunc, o fetchOptions) (any, error) {
	staleTime := c.staleTime
	if o.staleTime != nil {
		staleTime = *o.staleTime
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	e.lastAccess = c.now()
	if c.freshLocked(e, staleTime) {
		v := e.value
		c.mu.Unlock()
		c.metrics.hit()
		return v, nil
	}
	gen := e.gen
	// Readers arriving while the current generation is being re-fetched get
	// the stale value instead of waiting for the fetch.
	refreshing := e.fetching > 0 && e.fetchingGen == gen
	if e.hasValue && (o.serveStale || refreshing) {
		v := e.value
		c.mu.Unlock()
		c.metrics.hit()
		// The result channel is buffered; nobody needs to read it.
		c.group.DoChan(flightKey(key, gen), func() (any, error) {
			return c.run(ctx, key, gen, fn)
		})
		return v, nil
	}
	c.mu.Unlock()
	c.metrics.miss()

	ch := c.group.DoChan(flightKey(key, gen), func() (any, error) {
		return c.run(ctx, key, gen, fn)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes fn detached from the caller's cancellation so that the
// result still reaches the other waiters and the cache.
func (c *Cache) run(ctx context.Context, key Key, gen uint64, fn fetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if e.fetching == 0 || gen > e.fetchingGen {
		e.fetchingGen = gen
	}
	e.fetching++
	c.mu.Unlock()
	c.metrics.fetch()

	v, err := fn(context.WithoutCancel(ctx))

	c.mu.Lock()
	defer c.mu.Unlock()
	e = c.entryLocked(key)
	e.fetching--
	if err != nil {
		c.metrics.fetchError()
		return nil, err
	}
	if e.hasValue && gen < e.valueGen {
		// A fetch started after a later invalidation already stored newer data.
		return v, nil
	}
	e.value = v
	e.hasValue = true
	e.valueGen = gen
	e.updatedAt = c.now()
	e.invalidated = gen != e.gen
	return v, nil
}

func flightKey(key Key, gen uint64) string {
	return key.id() + "\x1e" + strconv.FormatUint(gen, 10)
}
