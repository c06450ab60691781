package mr

import (
	"github.com/sasha-s/go-deadlock"
)

// A kvmap holds one partial value per key: the fold of all values of
// that key seen so far by one shard.
type kvmap[K comparable, V any] struct {
	deadlock.Mutex
	shard int
	kvs   map[K]V
}

func newKvmap[K comparable, V any](shard int) *kvmap[K, V] {
	return &kvmap[K, V]{
		shard: shard,
		kvs:   make(map[K]V),
	}
}

func (kvm *kvmap[K, V]) len() int {
	kvm.Lock()
	defer kvm.Unlock()
	return len(kvm.kvs)
}

// combineL folds value into key's partial as combinef(partial, value).
// Caller holds the lock or owns kvm.
func (kvm *kvmap[K, V]) combineL(key K, value V, combinef CombineT[V], shard int) error {
	e, ok := kvm.kvs[key]
	if !ok {
		kvm.kvs[key] = value
		return nil
	}
	r, err := protect(func() (V, error) { return combinef(e, value) })
	if err != nil {
		return &UserFunctionError{
			Op:    "combine",
			Shard: shard,
			Pairs: []string{NewKV(key, e).String(), NewKV(key, value).String()},
			Err:   err,
		}
	}
	kvm.kvs[key] = r
	return nil
}

// merge folds src's partials into dst; for a key in both, the new
// partial is combinef(dst, src).
func (dst *kvmap[K, V]) merge(src *kvmap[K, V], combinef CombineT[V]) error {
	dst.Lock()
	defer dst.Unlock()
	src.Lock()
	defer src.Unlock()

	for k, v := range src.kvs {
		if err := dst.combineL(k, v, combinef, src.shard); err != nil {
			return err
		}
	}
	return nil
}

// emit places each partial in one of nshard output shards.
func (kvm *kvmap[K, V]) emit(nshard int) [][]KeyValue[K, V] {
	kvm.Lock()
	defer kvm.Unlock()

	out := make([][]KeyValue[K, V], nshard)
	for k, v := range kvm.kvs {
		r := Khash(k) % nshard
		out[r] = append(out[r], KeyValue[K, V]{k, v})
	}
	return out
}
