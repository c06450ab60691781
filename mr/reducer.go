package mr

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	db "kvmr/debug"
)

// Reduce groups the pairs of c by key and folds the values of each
// key into one with combinef.  Each shard first folds its own values
// (in the order its source produces them) into a partial per key;
// the partials are then folded across shards as the context's merge
// policy says.  The result has c.NShard() shards, keys placed by
// Khash.  Keys without pairs are absent.
func Reduce[K comparable, V any](ctx *Context, c *Collection[K, V], combinef CombineT[V]) (*Collection[K, V], error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	start := time.Now()
	nshard := c.NShard()
	if nshard == 0 {
		return FromShards[K, V](nil), nil
	}
	parts := make([]*kvmap[K, V], nshard)
	npair := make([]uint64, nshard)

	var final *kvmap[K, V]
	var err error
	if ctx.merge == MergeArrival {
		final, err = reduceArrival(ctx, c, parts, npair, combinef)
	} else {
		if err := c.evaluate(ctx, func(i int) EmitT[K, V] {
			return partialEmit(i, parts, npair, combinef)
		}); err != nil {
			return nil, err
		}
		if ctx.merge == MergeTree {
			final, err = mergeTree(ctx, parts, combinef)
		} else {
			final, err = mergeShard(parts, combinef)
		}
	}
	if err != nil {
		return nil, err
	}
	n := uint64(0)
	for _, m := range npair {
		n += m
	}
	db.DPrintf(db.MR_REDUCE, "Reduce %v: %s pairs in %d shards -> %d keys %vms", ctx.merge, humanize.Comma(int64(n)), nshard, final.len(), time.Since(start).Milliseconds())
	return FromShards(final.emit(nshard)), nil
}

// partialEmit returns the emit function of shard i, which folds each
// pair into the shard's partial map.  Only shard i's worker uses it.
func partialEmit[K comparable, V any](i int, parts []*kvmap[K, V], npair []uint64, combinef CombineT[V]) EmitT[K, V] {
	kvm := newKvmap[K, V](i)
	parts[i] = kvm
	return func(kv KeyValue[K, V]) error {
		npair[i]++
		return kvm.combineL(kv.Key, kv.Value, combinef, i)
	}
}

// reduceArrival merges each shard's partials into the result as soon
// as that shard is done, so the fold order follows scheduling.
func reduceArrival[K comparable, V any](ctx *Context, c *Collection[K, V], parts []*kvmap[K, V], npair []uint64, combinef CombineT[V]) (*kvmap[K, V], error) {
	done := make(chan int, len(parts))
	var final *kvmap[K, V]
	var merr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range done {
			if merr != nil {
				continue
			}
			db.DPrintf(db.MR_MERGE, "arrival: shard %d", i)
			if final == nil {
				final = parts[i]
				continue
			}
			merr = final.merge(parts[i], combinef)
		}
	}()
	g := ctx.group()
	for i, src := range c.srcs {
		i, src := i, src
		g.Go(func() error {
			if err := src(partialEmit(i, parts, npair, combinef)); err != nil {
				return err
			}
			done <- i
			return nil
		})
	}
	err := g.Wait()
	close(done)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return final, merr
}
