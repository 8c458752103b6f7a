package numcalc

import (
	"encoding/hex"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"

	"github.com/minio/highwayhash"
	"github.com/mitchellh/hashstructure"
	"golang.org/x/sync/singleflight"
)

// postfixCacheEntry is what the facade memoizes per expression string: the
// postfix token sequence the converter produced, keyed so that it can only
// ever be replayed against a context whose operator/function/constant
// surface hasn't changed since it was cached.
type postfixCacheEntry[T any] struct {
	postfix []Token[T]
}

// ExprCache memoizes tokenize+convert results. The postfix stream is the
// only cached artifact; the evaluator is its only consumer.
type ExprCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]*postfixCacheEntry[T]
	order   []string // FIFO eviction order
	maxSize int

	group singleflight.Group

	Hits      Counter
	Misses    Counter
	Evictions Counter
}

// NewExprCache creates a cache that holds at most maxSize postfix streams.
func NewExprCache[T any](maxSize int) *ExprCache[T] {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &ExprCache[T]{
		entries: make(map[string]*postfixCacheEntry[T]),
		maxSize: maxSize,
	}
}

// highwayHashKey is a fixed, published zero key: the cache key only needs
// to be a stable, well-distributed fingerprint, not a MAC, so a constant
// key is appropriate here (highwayhash requires exactly 32 key bytes).
var highwayHashKey = make([]byte, 32)

// keyAlgorithm selects the key digest: fnv (default) or highwayhash,
// opt-in via NUMCALC_CACHE_HASH=highway for larger expression corpora
// where its wider, faster-mixing digest reduces collision odds.
type keyAlgorithm int

const (
	keyAlgoFNV keyAlgorithm = iota
	keyAlgoHighway
)

// CacheKey fingerprints an expression string against the registered
// operator/function/constant surface and case-sensitivity flag of ctx, so a
// cached postfix stream is never replayed against a context it wasn't
// produced from.
func CacheKey[T any](expression string, ctx *Context[T], algo keyAlgorithm) string {
	surface := registrySurface(ctx)
	h, err := hashstructure.Hash(surface, nil)
	if err != nil {
		h = 0
	}

	payload := expression + "\x00" + hex.EncodeToString([]byte{
		byte(h), byte(h >> 8), byte(h >> 16), byte(h >> 24),
		byte(h >> 32), byte(h >> 40), byte(h >> 48), byte(h >> 56),
	})

	switch algo {
	case keyAlgoHighway:
		sum, err := highwayhash.New(highwayHashKey)
		if err != nil {
			break
		}
		_, _ = sum.Write([]byte(payload))
		return hex.EncodeToString(sum.Sum(nil))
	}

	f := fnv.New128a()
	_, _ = f.Write([]byte(payload))
	return hex.EncodeToString(f.Sum(nil))
}

type registrySurfaceView struct {
	Operators     []string
	Functions     []string
	Constants     []string
	CaseSensitive bool
}

func registrySurface[T any](ctx *Context[T]) registrySurfaceView {
	ops := ctx.Operators.Symbols()
	sort.Strings(ops)
	for i, sym := range ops {
		if d, ok := ctx.Operators.Unary(sym); ok {
			ops[i] += " u" + strconv.Itoa(d.Precedence) + "/" + strconv.Itoa(int(d.Associativity))
		}
		if d, ok := ctx.Operators.Binary(sym); ok {
			ops[i] += " b" + strconv.Itoa(d.Precedence) + "/" + strconv.Itoa(int(d.Associativity))
		}
	}

	funcs := make([]string, 0, len(ctx.Functions.byName))
	for name := range ctx.Functions.byName {
		funcs = append(funcs, name)
	}
	sort.Strings(funcs)

	consts := make([]string, 0, len(ctx.Constants))
	for name := range ctx.Constants {
		consts = append(consts, name)
	}
	sort.Strings(consts)

	return registrySurfaceView{
		Operators:     ops,
		Functions:     funcs,
		Constants:     consts,
		CaseSensitive: ctx.CaseSensitive,
	}
}

// Get returns a cached postfix stream, or false if absent.
func (c *ExprCache[T]) Get(key string) ([]Token[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		c.Misses.Inc()
		return nil, false
	}
	c.Hits.Inc()
	return e.postfix, true
}

// Put stores a postfix stream, evicting the oldest entry if the cache is
// at capacity. Eviction is FIFO, not LRU.
func (c *ExprCache[T]) Put(key string, postfix []Token[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return
	}
	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.Evictions.Inc()
	}
	c.entries[key] = &postfixCacheEntry[T]{postfix: postfix}
	c.order = append(c.order, key)
}

// Do deduplicates concurrent identical (expression, context-surface) work:
// only one goroutine actually runs fn; the rest block and share its result.
func (c *ExprCache[T]) Do(key string, fn func() ([]Token[T], error)) ([]Token[T], error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.([]Token[T]), nil
}
