// The mr package implements generalized map/reduce over key/value
// collections split into shards.
//
// Map applies a function to every pair and flattens what it
// returns.  Reduce folds the values of each key with a caller's
// combine function: first within each shard, producing one partial
// per key per shard, and then across shards under the context's merge
// policy.  Nothing assumes combine is associative or commutative, so
// for a combine like subtraction the output depends on the number of
// shards, on how elements were assigned to shards, and on the merge
// order.
package mr

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

func NewKV[K comparable, V any](k K, v V) KeyValue[K, V] {
	return KeyValue[K, V]{k, v}
}

func (kv KeyValue[K, V]) String() string {
	return fmt.Sprintf("(%v, %v)", kv.Key, kv.Value)
}

// Map functions return zero or more pairs for each input pair.
type MapT[K1 comparable, V1 any, K2 comparable, V2 any] func(K1, V1) ([]KeyValue[K2, V2], error)

type CombineT[V any] func(V, V) (V, error)

type EmitT[K comparable, V any] func(KeyValue[K, V]) error

// Khash picks the output shard of a key: Khash(key) % nshard.
func Khash[K comparable](key K) int {
	h := fnv.New32a()
	var b [8]byte
	switch k := any(key).(type) {
	case string:
		h.Write([]byte(k))
	case int:
		binary.LittleEndian.PutUint64(b[:], uint64(k))
		h.Write(b[:])
	case int64:
		binary.LittleEndian.PutUint64(b[:], uint64(k))
		h.Write(b[:])
	case uint64:
		binary.LittleEndian.PutUint64(b[:], k)
		h.Write(b[:])
	case rune:
		binary.LittleEndian.PutUint32(b[:4], uint32(k))
		h.Write(b[:4])
	case byte:
		h.Write([]byte{k})
	default:
		fmt.Fprintf(h, "%v", k)
	}
	return int(h.Sum32() & 0x7fffffff)
}

func protect[T any](f func() (T, error)) (r T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return f()
}
