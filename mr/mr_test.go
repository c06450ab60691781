package mr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"kvmr/config"
	db "kvmr/debug"
	"kvmr/mr"
)

var WORDS = []string{"cat", "dog", "cow", "zebra"}

var PARTITIONERS = []string{"block", "roundrobin", "random"}

var MERGES = []string{"shard", "arrival", "tree"}

func newContext(t *testing.T, part, merge string, nshard int) *mr.Context {
	cfg := config.Default().Engine
	cfg.PARTITIONER = part
	cfg.MERGE = merge
	cfg.NSHARD = nshard
	ctx, err := mr.NewContext("mr-test", &cfg)
	if !assert.Nil(t, err, "NewContext %v", err) {
		t.FailNow()
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

// Words keyed by their first letter.
func wordPairs(t *testing.T, ctx *mr.Context) *mr.Collection[string, string] {
	kvs := make([]mr.KeyValue[string, string], 0, len(WORDS))
	for _, w := range WORDS {
		kvs = append(kvs, mr.NewKV(w[:1], w))
	}
	c, err := mr.Parallelize(ctx, kvs, 0)
	assert.Nil(t, err)
	return c
}

func ints(t *testing.T, ctx *mr.Context, n, nshard int) *mr.Collection[int, int] {
	kvs := make([]mr.KeyValue[int, int], n)
	for i := range kvs {
		kvs[i] = mr.NewKV(i+1, i+1)
	}
	c, err := mr.Parallelize(ctx, kvs, nshard)
	assert.Nil(t, err)
	return c
}

func add(x, y int) (int, error) { return x + y, nil }

func sub(x, y int) (int, error) { return x - y, nil }

func TestHash(t *testing.T) {
	assert.Equal(t, mr.Khash("cat"), mr.Khash("cat"))
	assert.NotEqual(t, mr.Khash(1), mr.Khash(2))
	for _, k := range []string{"", "a", "zebra"} {
		assert.True(t, mr.Khash(k) >= 0)
	}
	assert.True(t, mr.Khash(struct{ a, b int }{1, 2}) >= 0)
}

func TestGeneralMap(t *testing.T) {
	ctx := newContext(t, "block", "shard", 2)
	c := wordPairs(t, ctx)

	// Map returning no values
	c2, err := mr.Map(ctx, c, func(k, v string) ([]mr.KeyValue[string, int], error) {
		return nil, nil
	})
	assert.Nil(t, err)
	kvs2, err := mr.Collect(ctx, c2)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(kvs2))

	// Map returning length
	c3, err := mr.Map(ctx, c, func(k, v string) ([]mr.KeyValue[string, int], error) {
		return []mr.KeyValue[string, int]{{k, len(v)}}, nil
	})
	assert.Nil(t, err)
	kvs3, err := mr.Collect(ctx, c3)
	assert.Nil(t, err)
	sum := 0
	for _, kv := range kvs3 {
		sum += kv.Value
	}
	assert.Equal(t, 14, sum)

	// Map returning odd or even length
	c5, err := mr.Map(ctx, c, func(k, v string) ([]mr.KeyValue[int, struct{}], error) {
		return []mr.KeyValue[int, struct{}]{{len(v) % 2, struct{}{}}}, nil
	})
	assert.Nil(t, err)
	kvs5, err := mr.Collect(ctx, c5)
	assert.Nil(t, err)
	for _, kv := range kvs5 {
		assert.Equal(t, 1, kv.Key)
	}
	assert.Equal(t, c.NShard(), c5.NShard())
}

func TestMapMultiply(t *testing.T) {
	ctx := newContext(t, "roundrobin", "shard", 3)
	c := ints(t, ctx, 10, 0)
	c1, err := mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[int, int], error) {
		return []mr.KeyValue[int, int]{{k, v}, {k, -v}}, nil
	})
	assert.Nil(t, err)
	n, err := mr.Count(ctx, c1)
	assert.Nil(t, err)
	assert.Equal(t, int64(20), n)
}

func TestGeneralReduce(t *testing.T) {
	for _, merge := range MERGES {
		ctx := newContext(t, "block", merge, 2)
		c := wordPairs(t, ctx)

		c2, err := mr.Reduce(ctx, c, func(x, y string) (string, error) { return x + y, nil })
		assert.Nil(t, err)
		res2, err := mr.Collect(ctx, c2)
		assert.Nil(t, err)
		mr.SortPairs(res2)
		assert.Equal(t, 3, len(res2))
		assert.Contains(t, []string{"catcow", "cowcat"}, res2[0].Value)
		assert.Equal(t, mr.NewKV("d", "dog"), res2[1])
		assert.Equal(t, mr.NewKV("z", "zebra"), res2[2])

		c3, err := mr.Map(ctx, c, func(k, v string) ([]mr.KeyValue[string, int], error) {
			return []mr.KeyValue[string, int]{{k, len(v)}}, nil
		})
		assert.Nil(t, err)
		c4, err := mr.Reduce(ctx, c3, add)
		assert.Nil(t, err)
		res4, err := mr.Collect(ctx, c4)
		assert.Nil(t, err)
		assert.Equal(t, []mr.KeyValue[string, int]{{"c", 6}, {"d", 3}, {"z", 5}}, mr.SortPairs(res4))
	}
}

func TestEmpty(t *testing.T) {
	ctx := newContext(t, "block", "shard", 4)
	c := ints(t, ctx, 1000, 0)
	c1, err := mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[int, int], error) {
		return []mr.KeyValue[int, int]{}, nil
	})
	assert.Nil(t, err)
	c2, err := mr.Reduce(ctx, c1, add)
	assert.Nil(t, err)
	kvs, err := mr.Collect(ctx, c2)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(kvs))

	// reduce over a collection without pairs, and without shards
	c3, err := mr.Parallelize(ctx, []mr.KeyValue[int, int]{}, 3)
	assert.Nil(t, err)
	c4, err := mr.Reduce(ctx, c3, add)
	assert.Nil(t, err)
	n, err := mr.Count(ctx, c4)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), n)
	c5, err := mr.Reduce(ctx, mr.FromShards[int, int](nil), add)
	assert.Nil(t, err)
	assert.Equal(t, 0, c5.NShard())
}

// Example from the nondeterminism paper: sum by key.
func TestExample(t *testing.T) {
	data := []mr.KeyValue[string, int]{{"a", 5}, {"a", 3}, {"b", 2}, {"a", 1}, {"b", 4}}
	want := []mr.KeyValue[string, int]{{"a", 9}, {"b", 6}}
	for _, part := range PARTITIONERS {
		for _, merge := range MERGES {
			for nshard := 1; nshard <= 6; nshard++ {
				ctx := newContext(t, part, merge, nshard)
				c, err := mr.Parallelize(ctx, data, 0)
				assert.Nil(t, err)
				c1, err := mr.Map(ctx, c, func(k string, v int) ([]mr.KeyValue[string, int], error) {
					return []mr.KeyValue[string, int]{{k, v}}, nil
				})
				assert.Nil(t, err)
				c2, err := mr.Reduce(ctx, c1, add)
				assert.Nil(t, err)
				kvs, err := mr.Collect(ctx, c2)
				assert.Nil(t, err)
				assert.True(t, mr.EqualSets(want, kvs), "%v %v %d: %v", part, merge, nshard, kvs)
			}
		}
	}
}

func modReduce(t *testing.T, part, merge string, n, nshard int, combinef mr.CombineT[int]) []mr.KeyValue[int, int] {
	ctx := newContext(t, part, merge, nshard)
	c := ints(t, ctx, n, 0)
	c1, err := mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[int, int], error) {
		return []mr.KeyValue[int, int]{{v % 10, v}}, nil
	})
	assert.Nil(t, err)
	c2, err := mr.Reduce(ctx, c1, combinef)
	assert.Nil(t, err)
	kvs, err := mr.Collect(ctx, c2)
	assert.Nil(t, err)
	return kvs
}

func TestAddIndependentOfShards(t *testing.T) {
	const N = 10000
	for _, part := range PARTITIONERS {
		for _, merge := range MERGES {
			base := modReduce(t, part, merge, N, 1, add)
			assert.Equal(t, 10, len(base))
			for nshard := 2; nshard <= 16; nshard++ {
				kvs := modReduce(t, part, merge, N, nshard, add)
				assert.True(t, mr.EqualSets(base, kvs), "%v %v nshard %d: %v != %v", part, merge, nshard, kvs, base)
			}
		}
	}
}

func TestSubtractDiverges(t *testing.T) {
	const N = 1000
	for _, part := range PARTITIONERS {
		for _, merge := range MERGES {
			results := make([][]mr.KeyValue[int, int], 0)
			for _, nshard := range []int{1, 3, 7, 10} {
				results = append(results, modReduce(t, part, merge, N, nshard, sub))
			}
			diverged := false
			for _, r := range results[1:] {
				if !mr.EqualSets(results[0], r) {
					diverged = true
				}
			}
			db.DPrintf(db.TEST, "%v %v: %v", part, merge, results)
			assert.True(t, diverged, "%v %v: no divergence", part, merge)
		}
	}
}

// With one shard subtraction is a left fold in input order.
func TestSubtractOneShard(t *testing.T) {
	kvs := modReduce(t, "block", "shard", 20, 1, sub)
	mr.SortPairs(kvs)
	assert.Equal(t, mr.NewKV(0, 10-20), kvs[0])
	assert.Equal(t, mr.NewKV(1, 1-11), kvs[1])
}

// Tree and shard merges differ for subtraction once there are more
// than two partials.
func TestMergePolicies(t *testing.T) {
	s := modReduce(t, "block", "shard", 1000, 8, sub)
	tr := modReduce(t, "block", "tree", 1000, 8, sub)
	assert.False(t, mr.EqualSets(s, tr))
}

func TestMapError(t *testing.T) {
	ctx := newContext(t, "block", "shard", 4)
	c := ints(t, ctx, 100, 0)
	bad := errors.New("bad number")
	c1, err := mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[int, int], error) {
		if v == 42 {
			return nil, bad
		}
		return []mr.KeyValue[int, int]{{k, v}}, nil
	})
	assert.Nil(t, err)
	_, err = mr.Reduce(ctx, c1, add)
	var uerr *mr.UserFunctionError
	assert.True(t, errors.As(err, &uerr), "err %v", err)
	assert.Equal(t, "map", uerr.Op)
	assert.Equal(t, []string{"(42, 42)"}, uerr.Pairs)
	assert.True(t, errors.Is(err, bad))

	_, err = mr.Collect(ctx, c1)
	assert.True(t, errors.Is(err, bad))
}

func TestMapPanic(t *testing.T) {
	ctx := newContext(t, "block", "shard", 2)
	c := ints(t, ctx, 10, 0)
	c1, err := mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[int, int], error) {
		a := []int{}
		return []mr.KeyValue[int, int]{{k, a[v]}}, nil
	})
	assert.Nil(t, err)
	_, err = mr.Count(ctx, c1)
	var uerr *mr.UserFunctionError
	assert.True(t, errors.As(err, &uerr), "err %v", err)
}

func TestCombineError(t *testing.T) {
	for _, merge := range MERGES {
		ctx := newContext(t, "block", merge, 3)
		c := ints(t, ctx, 30, 0)
		c1, err := mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[string, int], error) {
			return []mr.KeyValue[string, int]{{"k", v}}, nil
		})
		assert.Nil(t, err)
		_, err = mr.Reduce(ctx, c1, func(x, y int) (int, error) {
			return 0, fmt.Errorf("no combining %d %d", x, y)
		})
		var uerr *mr.UserFunctionError
		assert.True(t, errors.As(err, &uerr), "err %v", err)
		assert.Equal(t, "combine", uerr.Op)
		assert.Equal(t, 2, len(uerr.Pairs))
	}
}

func TestInputUnchanged(t *testing.T) {
	ctx := newContext(t, "block", "shard", 2)
	data := []mr.KeyValue[string, int]{{"a", 1}, {"a", 2}}
	c, err := mr.Parallelize(ctx, data, 0)
	assert.Nil(t, err)
	_, err = mr.Reduce(ctx, c, add)
	assert.Nil(t, err)
	kvs, err := mr.Collect(ctx, c)
	assert.Nil(t, err)
	assert.True(t, mr.EqualSets(data, kvs))
	data[0].Value = 100
	kvs, err = mr.Collect(ctx, c)
	assert.Nil(t, err)
	assert.Equal(t, 1, kvs[0].Value)
}

func TestRepartition(t *testing.T) {
	for _, part := range PARTITIONERS {
		ctx := newContext(t, part, "shard", 3)
		c := ints(t, ctx, 500, 0)
		c1, err := mr.Repartition(ctx, c, 17)
		assert.Nil(t, err)
		assert.Equal(t, 17, c1.NShard())
		a, err := mr.Collect(ctx, c)
		assert.Nil(t, err)
		b, err := mr.Collect(ctx, c1)
		assert.Nil(t, err)
		assert.True(t, mr.EqualSets(a, b), "%v", part)
	}
}

func TestMaterialize(t *testing.T) {
	ctx := newContext(t, "block", "shard", 4)
	c := ints(t, ctx, 100, 0)
	ncall := 0
	c1, err := mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[int, int], error) {
		ncall++
		return []mr.KeyValue[int, int]{{k, v}}, nil
	})
	assert.Nil(t, err)
	// one worker so that ncall needs no lock
	cfg := config.Default().Engine
	cfg.NWORKER = 1
	ctx1, err := mr.NewContext("mr-test-1", &cfg)
	assert.Nil(t, err)
	defer ctx1.Close()
	m, err := mr.Materialize(ctx1, c1)
	assert.Nil(t, err)
	assert.Equal(t, 100, ncall)
	_, err = mr.Count(ctx1, m)
	assert.Nil(t, err)
	assert.Equal(t, 100, ncall)
}

func TestClosed(t *testing.T) {
	ctx := newContext(t, "block", "shard", 2)
	c := ints(t, ctx, 10, 0)
	assert.Nil(t, ctx.Close())
	assert.True(t, errors.Is(ctx.Close(), mr.ErrClosed))
	_, err := mr.Reduce(ctx, c, add)
	assert.True(t, errors.Is(err, mr.ErrClosed))
	_, err = mr.Map(ctx, c, func(k, v int) ([]mr.KeyValue[int, int], error) { return nil, nil })
	assert.True(t, errors.Is(err, mr.ErrClosed))
	_, err = mr.Collect(ctx, c)
	assert.True(t, errors.Is(err, mr.ErrClosed))
}

func TestBadConfig(t *testing.T) {
	cfg := config.Default().Engine
	cfg.PARTITIONER = "hash"
	_, err := mr.NewContext("bad", &cfg)
	assert.NotNil(t, err)
	cfg = config.Default().Engine
	cfg.MERGE = "random"
	_, err = mr.NewContext("bad", &cfg)
	assert.NotNil(t, err)
}
