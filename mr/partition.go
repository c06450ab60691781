package mr

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Partitioner assigns the n elements of an input to nshard shards.
// Assigner returns a function mapping element index i (0 <= i < n)
// to its shard; it is called once for each i, in increasing order.
type Partitioner interface {
	String() string
	Assigner(n, nshard int) func(i int) int
}

func ParsePartitioner(name string, seed uint64) (Partitioner, error) {
	switch name {
	case "block":
		return Block{}, nil
	case "roundrobin":
		return RoundRobin{}, nil
	case "random":
		return Random{Seed: seed}, nil
	default:
		return nil, fmt.Errorf("unknown partitioner %q", name)
	}
}

// Block gives each shard a contiguous run of elements, the way a
// parallelized range is sliced.
type Block struct{}

func (Block) String() string { return "block" }

func (Block) Assigner(n, nshard int) func(int) int {
	return func(i int) int {
		return i * nshard / n
	}
}

type RoundRobin struct{}

func (RoundRobin) String() string { return "roundrobin" }

func (RoundRobin) Assigner(n, nshard int) func(int) int {
	return func(i int) int {
		return i % nshard
	}
}

// Random draws each element's shard independently; shard s is drawn
// with weight s+1, so shards have different sizes.
type Random struct {
	Seed uint64
}

func (r Random) String() string { return fmt.Sprintf("random(%d)", r.Seed) }

func (r Random) Assigner(n, nshard int) func(int) int {
	w := make([]float64, nshard)
	for s := range w {
		w[s] = float64(s + 1)
	}
	c := distuv.NewCategorical(w, rand.NewSource(r.Seed+uint64(nshard)))
	return func(int) int {
		return int(c.Rand())
	}
}

// partition splits kvs into nshard shards using p.
func partition[K comparable, V any](p Partitioner, kvs []KeyValue[K, V], nshard int) [][]KeyValue[K, V] {
	shards := make([][]KeyValue[K, V], nshard)
	if len(kvs) == 0 {
		return shards
	}
	a := p.Assigner(len(kvs), nshard)
	for i, kv := range kvs {
		s := a(i)
		shards[s] = append(shards[s], kv)
	}
	return shards
}
