package mr

import (
	"sync/atomic"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// A source produces the pairs of one shard by calling emit on each
// of them; it stops at the first error emit returns.
type source[K comparable, V any] func(emit EmitT[K, V]) error

// A Collection is an immutable multiset of pairs split into shards.
// Collections returned by Map are lazy: their map function runs when
// the collection is consumed (by Reduce, Collect, Count, Materialize
// or Repartition), exactly once per input pair per consumption.
type Collection[K comparable, V any] struct {
	srcs []source[K, V]
}

func sliceSource[K comparable, V any](kvs []KeyValue[K, V]) source[K, V] {
	return func(emit EmitT[K, V]) error {
		for _, kv := range kvs {
			if err := emit(kv); err != nil {
				return err
			}
		}
		return nil
	}
}

// FromShards makes a collection with one shard per slice in shards.
// The slices must not be modified afterwards.
func FromShards[K comparable, V any](shards [][]KeyValue[K, V]) *Collection[K, V] {
	c := &Collection[K, V]{srcs: make([]source[K, V], len(shards))}
	for i, s := range shards {
		c.srcs[i] = sliceSource(s)
	}
	return c
}

// Parallelize copies kvs into nshard shards with the context's
// partitioner; nshard <= 0 means the context's default.
func Parallelize[K comparable, V any](ctx *Context, kvs []KeyValue[K, V], nshard int) (*Collection[K, V], error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return FromShards(partition(ctx.part, kvs, ctx.shards(nshard))), nil
}

func (c *Collection[K, V]) NShard() int {
	return len(c.srcs)
}

// evaluate runs every shard's source, up to nworker at a time,
// handing the pairs of shard i to the emit returned by newEmit(i).
func (c *Collection[K, V]) evaluate(ctx *Context, newEmit func(i int) EmitT[K, V]) error {
	if err := ctx.check(); err != nil {
		return err
	}
	g := ctx.group()
	for i, src := range c.srcs {
		i, src := i, src
		g.Go(func() error {
			return src(newEmit(i))
		})
	}
	return g.Wait()
}

// Materialize evaluates c once and returns a collection holding the
// result, with the same shards.
func Materialize[K comparable, V any](ctx *Context, c *Collection[K, V]) (*Collection[K, V], error) {
	shards := make([][]KeyValue[K, V], c.NShard())
	if err := c.evaluate(ctx, func(i int) EmitT[K, V] {
		return func(kv KeyValue[K, V]) error {
			shards[i] = append(shards[i], kv)
			return nil
		}
	}); err != nil {
		return nil, err
	}
	return FromShards(shards), nil
}

// Collect returns all pairs of c, shard after shard.
func Collect[K comparable, V any](ctx *Context, c *Collection[K, V]) ([]KeyValue[K, V], error) {
	m, err := Materialize(ctx, c)
	if err != nil {
		return nil, err
	}
	kvs := make([]KeyValue[K, V], 0)
	for _, src := range m.srcs {
		src(func(kv KeyValue[K, V]) error {
			kvs = append(kvs, kv)
			return nil
		})
	}
	return kvs, nil
}

func Count[K comparable, V any](ctx *Context, c *Collection[K, V]) (int64, error) {
	var n atomic.Int64
	if err := c.evaluate(ctx, func(i int) EmitT[K, V] {
		return func(KeyValue[K, V]) error {
			n.Add(1)
			return nil
		}
	}); err != nil {
		return 0, err
	}
	return n.Load(), nil
}

// Repartition redistributes the pairs of c over nshard shards with
// the context's partitioner.
func Repartition[K comparable, V any](ctx *Context, c *Collection[K, V], nshard int) (*Collection[K, V], error) {
	kvs, err := Collect(ctx, c)
	if err != nil {
		return nil, err
	}
	return FromShards(partition(ctx.part, kvs, ctx.shards(nshard))), nil
}

// SortPairs sorts kvs by key, then by value.
func SortPairs[K constraints.Ordered, V constraints.Ordered](kvs []KeyValue[K, V]) []KeyValue[K, V] {
	slices.SortFunc(kvs, func(a, b KeyValue[K, V]) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
	return kvs
}

// EqualSets reports whether a and b hold the same pairs, ignoring
// order.
func EqualSets[K comparable, V comparable](a, b []KeyValue[K, V]) bool {
	if len(a) != len(b) {
		return false
	}
	m := make(map[KeyValue[K, V]]int, len(a))
	for _, kv := range a {
		m[kv]++
	}
	for _, kv := range b {
		if m[kv] == 0 {
			return false
		}
		m[kv]--
	}
	return true
}
