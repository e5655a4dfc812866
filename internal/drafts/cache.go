package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"alcyxob/fitness-content/internal/logger"
)

const writeTimeout = 5 * time.Second

type pendingWrite struct {
	env   Envelope
	timer *time.Timer
}

// Cache debounces draft writes in front of a Store. Reads see pending writes.
// Store calls for one key never overlap, so a Discard cannot be undone by a
// save that was already on its way.
type Cache struct {
	store    Store
	ttl      time.Duration
	debounce time.Duration
	log      *logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	idle    *sync.Cond // broadcast when a key's store call finishes
	pending map[string]*pendingWrite
	busy    map[string]bool
}

func NewCache(store Store, ttl, debounce time.Duration, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Cache{
		store:    store,
		ttl:      ttl,
		debounce: debounce,
		log:      log.With("component", "drafts"),
		now:      func() time.Time { return time.Now().UTC() },
		pending:  make(map[string]*pendingWrite),
		busy:     make(map[string]bool),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// acquire waits until no store call for key is running and claims the key.
// c.mu must be held.
func (c *Cache) acquire(key string) {
	for c.busy[key] {
		c.idle.Wait()
	}
	c.busy[key] = true
}

func (c *Cache) release(key string) {
	c.mu.Lock()
	delete(c.busy, key)
	c.idle.Broadcast()
	c.mu.Unlock()
}

// take claims key and removes p from the pending set, unless p was replaced or
// discarded while waiting. c.mu must be held.
func (c *Cache) take(key string, p *pendingWrite) bool {
	if c.pending[key] != p {
		return false
	}
	c.acquire(key)
	if c.pending[key] != p {
		delete(c.busy, key)
		c.idle.Broadcast()
		return false
	}
	p.timer.Stop()
	delete(c.pending, key)
	return true
}

// Put schedules payload to be written after the debounce window. A later Put
// for the same key replaces it and restarts the window.
func (c *Cache) Put(key string, payload json.RawMessage) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	env := Envelope{SchemaVersion: SchemaVersion, SavedAt: c.now(), Payload: payload}
	if p, ok := c.pending[key]; ok {
		p.env = env
		p.timer.Reset(c.debounce)
		return env.SavedAt
	}

	p := &pendingWrite{env: env}
	p.timer = time.AfterFunc(c.debounce, func() { c.fire(key, p) })
	c.pending[key] = p
	return env.SavedAt
}

func (c *Cache) fire(key string, p *pendingWrite) {
	c.mu.Lock()
	if !c.take(key, p) {
		c.mu.Unlock()
		return
	}
	env := p.env
	c.mu.Unlock()
	defer c.release(key)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.store.Save(ctx, key, env, c.ttl); err != nil {
		c.log.Error("Failed to save draft", "key", key, "error", err)
	}
}

// Get returns the newest draft for key, pending or stored.
func (c *Cache) Get(ctx context.Context, key string) (*Envelope, error) {
	c.mu.Lock()
	if p, ok := c.pending[key]; ok {
		env := p.env
		c.mu.Unlock()
		return &env, nil
	}
	c.mu.Unlock()

	env, err := c.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if env.SchemaVersion != SchemaVersion {
		c.log.Warn("Discarding draft with stale schema", "key", key, "schemaVersion", env.SchemaVersion)
		if err := c.store.Delete(ctx, key); err != nil {
			c.log.Warn("Failed to delete stale draft", "key", key, "error", err)
		}
		return nil, ErrNotFound
	}
	return env, nil
}

// Discard drops a pending write and the stored draft. A save already running
// for key finishes first.
func (c *Cache) Discard(ctx context.Context, key string) error {
	c.mu.Lock()
	if p, ok := c.pending[key]; ok {
		p.timer.Stop()
		delete(c.pending, key)
	}
	c.acquire(key)
	c.mu.Unlock()
	defer c.release(key)
	return c.store.Delete(ctx, key)
}

// Flush writes every pending draft now. Called on shutdown.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := make(map[string]*pendingWrite, len(c.pending))
	for key, p := range c.pending {
		batch[key] = p
	}
	c.mu.Unlock()

	var errs []error
	for key, p := range batch {
		c.mu.Lock()
		if !c.take(key, p) {
			c.mu.Unlock()
			continue
		}
		env := p.env
		c.mu.Unlock()

		err := c.store.Save(ctx, key, env, c.ttl)
		c.release(key)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
