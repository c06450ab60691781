package sortedmap

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/constraints"
)

// SortedMap maps keys to values and iterates in key order.
type SortedMap[K constraints.Ordered, V any] struct {
	sync.Mutex
	dents  map[K]V
	sorted []K
}

func NewSortedMap[K constraints.Ordered, V any]() *SortedMap[K, V] {
	sd := &SortedMap[K, V]{}
	sd.dents = make(map[K]V)
	sd.sorted = make([]K, 0)
	return sd
}

func (sd *SortedMap[K, V]) Iter(f func(key K, val V) bool) {
	sd.Lock()
	defer sd.Unlock()

	for _, k := range sd.sorted {
		b := f(k, sd.dents[k])
		if !b {
			return
		}
	}
}

// String prints the map as a set of pairs: {(k0, v0), (k1, v1)}.
func (sd *SortedMap[K, V]) String() string {
	ss := make([]string, 0, sd.Len())
	sd.Iter(func(k K, v V) bool {
		ss = append(ss, fmt.Sprintf("(%v, %v)", k, v))
		return true
	})
	if len(ss) == 0 {
		return "set()"
	}
	return "{" + strings.Join(ss, ", ") + "}"
}

func (sd *SortedMap[K, V]) Len() int {
	sd.Lock()
	defer sd.Unlock()

	return len(sd.dents)
}

func (sd *SortedMap[K, V]) Lookup(n K) (V, bool) {
	sd.Lock()
	defer sd.Unlock()

	e, ok := sd.dents[n]
	return e, ok
}

func (sd *SortedMap[K, V]) Keys(s int) []K {
	sd.Lock()
	defer sd.Unlock()

	keys := make([]K, len(sd.sorted[s:]))
	copy(keys, sd.sorted[s:])
	return keys
}

// First and Last return the smallest and largest key.
func (sd *SortedMap[K, V]) First() (K, bool) {
	sd.Lock()
	defer sd.Unlock()

	var k K
	if len(sd.sorted) == 0 {
		return k, false
	}
	return sd.sorted[0], true
}

func (sd *SortedMap[K, V]) Last() (K, bool) {
	sd.Lock()
	defer sd.Unlock()

	var k K
	if len(sd.sorted) == 0 {
		return k, false
	}
	return sd.sorted[len(sd.sorted)-1], true
}

func (sd *SortedMap[K, V]) insertSortL(name K) {
	i := sort.Search(len(sd.sorted), func(i int) bool { return sd.sorted[i] >= name })
	var k K
	sd.sorted = append(sd.sorted, k)
	copy(sd.sorted[i+1:], sd.sorted[i:])
	sd.sorted[i] = name
}

func (sd *SortedMap[K, V]) delSortL(name K) {
	i := sort.Search(len(sd.sorted), func(i int) bool { return sd.sorted[i] >= name })
	sd.sorted = append(sd.sorted[:i], sd.sorted[i+1:]...)
}

// Return true if K was inserted; otherwise the value of K is
// replaced.
func (sd *SortedMap[K, V]) Insert(name K, e V) bool {
	sd.Lock()
	defer sd.Unlock()

	_, ok := sd.dents[name]
	sd.dents[name] = e
	if !ok {
		sd.insertSortL(name)
		return true
	}
	return false
}

func (sd *SortedMap[K, V]) Delete(name K) bool {
	sd.Lock()
	defer sd.Unlock()

	if _, ok := sd.dents[name]; !ok {
		return false
	}
	delete(sd.dents, name)
	sd.delSortL(name)
	return true
}
