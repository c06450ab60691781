// The ingest package turns raw inputs into collections.  The caller
// picks the number of shards; 0 means the context's default.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/readahead"

	db "kvmr/debug"
	"kvmr/mr"
)

const BUFSZ = 1 << 20

// Range returns the integers lo..hi (inclusive) as pairs (i, i).
func Range(ctx *mr.Context, lo, hi, nshard int) (*mr.Collection[int, int], error) {
	if hi < lo {
		return mr.Parallelize(ctx, []mr.KeyValue[int, int]{}, nshard)
	}
	kvs := make([]mr.KeyValue[int, int], 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		kvs = append(kvs, mr.NewKV(i, i))
	}
	db.DPrintf(db.INGEST, "Range [%d, %d]: %s pairs", lo, hi, humanize.Comma(int64(len(kvs))))
	return mr.Parallelize(ctx, kvs, nshard)
}

// Pairs returns kvs as a collection.
func Pairs[K comparable, V any](ctx *mr.Context, kvs []mr.KeyValue[K, V], nshard int) (*mr.Collection[K, V], error) {
	return mr.Parallelize(ctx, kvs, nshard)
}

// Strings returns ss as pairs (index, s).
func Strings(ctx *mr.Context, ss []string, nshard int) (*mr.Collection[int, string], error) {
	kvs := make([]mr.KeyValue[int, string], len(ss))
	for i, s := range ss {
		kvs[i] = mr.NewKV(i, s)
	}
	return mr.Parallelize(ctx, kvs, nshard)
}

// ReadInts reads one integer per line from rdr, skipping blank
// lines, and returns them as pairs (i, i).
func ReadInts(ctx *mr.Context, rdr io.Reader, nshard int) (*mr.Collection[int, int], error) {
	ra, err := readahead.NewReaderSize(rdr, 4, BUFSZ)
	if err != nil {
		return nil, err
	}
	defer ra.Close()
	scanner := bufio.NewScanner(ra)
	kvs := make([]mr.KeyValue[int, int], 0)
	for ln := 1; scanner.Scan(); ln++ {
		l := strings.TrimSpace(scanner.Text())
		if l == "" {
			continue
		}
		i, err := strconv.Atoi(l)
		if err != nil {
			return nil, fmt.Errorf("ReadInts: line %d: %v", ln, err)
		}
		kvs = append(kvs, mr.NewKV(i, i))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	db.DPrintf(db.INGEST, "ReadInts: %s pairs", humanize.Comma(int64(len(kvs))))
	return mr.Parallelize(ctx, kvs, nshard)
}
