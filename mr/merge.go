package mr

import (
	"fmt"

	db "kvmr/debug"
)

// MergePolicy names the order in which Reduce folds the per-shard
// partials of a key.
type MergePolicy int

const (
	// Left fold in shard index order.
	MergeShard MergePolicy = iota
	// Left fold in the order in which shards finish.
	MergeArrival
	// Pairwise rounds: p0+p1, p2+p3, ..., until one partial is left.
	MergeTree
)

func (m MergePolicy) String() string {
	switch m {
	case MergeShard:
		return "shard"
	case MergeArrival:
		return "arrival"
	case MergeTree:
		return "tree"
	default:
		return fmt.Sprintf("merge(%d)", int(m))
	}
}

func ParseMerge(name string) (MergePolicy, error) {
	switch name {
	case "shard":
		return MergeShard, nil
	case "arrival":
		return MergeArrival, nil
	case "tree":
		return MergeTree, nil
	default:
		return 0, fmt.Errorf("unknown merge policy %q", name)
	}
}

// mergeTree merges parts pairwise, in parallel within a round, and
// returns the last partial standing.
func mergeTree[K comparable, V any](ctx *Context, parts []*kvmap[K, V], combinef CombineT[V]) (*kvmap[K, V], error) {
	for round := 0; len(parts) > 1; round++ {
		next := make([]*kvmap[K, V], (len(parts)+1)/2)
		g := ctx.group()
		for i := 0; i < len(parts); i += 2 {
			i := i
			if i+1 == len(parts) {
				next[i/2] = parts[i]
				continue
			}
			g.Go(func() error {
				if err := parts[i].merge(parts[i+1], combinef); err != nil {
					return err
				}
				next[i/2] = parts[i]
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		db.DPrintf(db.MR_MERGE, "tree round %d: %d -> %d", round, len(parts), len(next))
		parts = next
	}
	return parts[0], nil
}

func mergeShard[K comparable, V any](parts []*kvmap[K, V], combinef CombineT[V]) (*kvmap[K, V], error) {
	dst := parts[0]
	for _, src := range parts[1:] {
		if err := dst.merge(src, combinef); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
