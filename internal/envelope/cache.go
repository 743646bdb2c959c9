package envelope

import (
	"fmt"
	"slices"
	"sync"

	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/model"
)

// Key identifies an envelope: the parameters plus everything that changes the
// search for it.
type Key struct {
	Params   model.Params
	Strategy string
	Settings string // отпечаток настроек селектора и численных методов движка
}

func keyFor(e *density.Engine, s Settings) Key {
	es := e.Settings()
	return Key{
		Params:   e.Params(),
		Strategy: e.StrategyName(),
		Settings: fmt.Sprintf("safety=%g grid=%g/%d local=%g/%d tol=%g tails=%v max=%+v int=%+v diff=%+v",
			s.SafetyFactor, s.GridHalfWidth, s.GridPoints, s.LocalWidth, s.LocalPoints,
			s.Tolerance, s.TailWeights, s.Maximizer, es.Integrator, es.Differentiator),
	}
}

type entry struct {
	once sync.Once
	spec *Spec
	err  error
}

// Cache stores one Spec (or construction error) per key. Concurrent Get calls
// for the same key run build once and all see the finished result.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	order   []Key // порядок добавления, для вытеснения
	limit   int
}

// NewCache returns an unbounded cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

// NewBoundedCache keeps at most limit envelopes and drops the oldest first.
// A limit below 1 means no bound.
func NewBoundedCache(limit int) *Cache {
	c := NewCache()
	c.limit = limit
	return c
}

func (c *Cache) Get(k Key, build func() (*Spec, error)) (*Spec, error) {
	c.mu.Lock()
	en, ok := c.entries[k]
	if !ok {
		en = &entry{}
		c.entries[k] = en
		c.order = append(c.order, k)
		if c.limit > 0 && len(c.order) > c.limit {
			// вытесненная запись достраивается у тех, кто её уже получил
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
	}
	c.mu.Unlock()

	en.once.Do(func() {
		en.spec, en.err = build()
	})
	return en.spec, en.err
}

func (c *Cache) Invalidate(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; !ok {
		return
	}
	delete(c.entries, k)
	if i := slices.Index(c.order, k); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
