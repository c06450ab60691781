// The pipelines package holds the question pipelines of part 1.
// Each one re-keys its input with a single Map and from then on only
// uses Map and Reduce.
package pipelines

import (
	"fmt"
	"os"
	"strconv"

	"github.com/montanaflynn/stats"
	"golang.org/x/exp/constraints"

	"kvmr/config"
	db "kvmr/debug"
	"kvmr/driver"
	"kvmr/ingest"
	"kvmr/mr"
	"kvmr/sortedmap"
	"kvmr/words"
)

type Input = driver.Input

var WORDS = []string{"cat", "dog", "cow", "zebra"}

var EXAMPLE = []mr.KeyValue[string, int]{
	{Key: "a", Value: 5}, {Key: "a", Value: 3}, {Key: "b", Value: 2}, {Key: "a", Value: 1}, {Key: "b", Value: 4},
}

var EXAMPLE_SUM = []mr.KeyValue[string, int]{
	{Key: "a", Value: 9}, {Key: "b", Value: 6},
}

type Part1 struct {
	ctx *mr.Context
	cfg *config.Config
	q16 [][]mr.KeyValue[int, int]
}

func NewPart1(ctx *mr.Context, cfg *config.Config) *Part1 {
	return &Part1{ctx: ctx, cfg: cfg}
}

func own[T any](f func() (T, error)) func(Input) (interface{}, error) {
	return func(Input) (interface{}, error) { return f() }
}

func with[T any](f func(Input) (T, error)) func(Input) (interface{}, error) {
	return func(in Input) (interface{}, error) { return f(in) }
}

// Battery lists the questions in the order their answers are logged.
func (p *Part1) Battery() *driver.Battery {
	return &driver.Battery{
		Load:  p.LoadInput,
		Empty: func() (Input, error) { return ingest.Range(p.ctx, 1, 0, 0) },
		Questions: []driver.Question{
			{Name: "q1", Run: own(p.Q1)},
			{Name: "q2", Run: own(p.Q2)},
			{Name: "q4", Run: with(p.Q4)},
			{Name: "q5", Run: with(p.Q5)},
			{Name: "q6", Run: with(p.Q6)},
			{Name: "q7", Run: with(p.Q7)},
			{Name: "q8a", Run: own(p.Q8a)},
			{Name: "q8b", Run: own(p.Q8b)},
			{Name: "q11", Run: with(p.Q11)},
			{Name: "q14", Run: with(p.Q14)},
			{Name: "q16a", Run: own(func() ([]mr.KeyValue[int, int], error) { return p.Q16(0) })},
			{Name: "q16b", Run: own(func() ([]mr.KeyValue[int, int], error) { return p.Q16(1) })},
			{Name: "q16c", Run: own(func() ([]mr.KeyValue[int, int], error) { return p.Q16(2) })},
			{Name: "q20", Run: own(p.Q20)},
		},
	}
}

// LoadInput returns 1..N, or the integers in the configured input
// file.
func (p *Part1) LoadInput() (Input, error) {
	if p.cfg.Input.FILE != "" {
		f, err := os.Open(p.cfg.Input.FILE)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ingest.ReadInts(p.ctx, f, 0)
	}
	return ingest.Range(p.ctx, 1, p.cfg.Input.N, 0)
}

func (p *Part1) LoadInputBigger() (Input, error) {
	return ingest.Range(p.ctx, 1, p.cfg.Input.BIGN, p.cfg.Input.BIGSHARDS)
}

// Words keyed by their first letter.
func (p *Part1) words() (*mr.Collection[string, string], error) {
	c, err := ingest.Strings(p.ctx, WORDS, 0)
	if err != nil {
		return nil, err
	}
	return mr.Map(p.ctx, c, func(i int, w string) ([]mr.KeyValue[string, string], error) {
		return []mr.KeyValue[string, string]{mr.NewKV(w[:1], w)}, nil
	})
}

func sorted[K, V constraints.Ordered](ctx *mr.Context, c *mr.Collection[K, V]) ([]mr.KeyValue[K, V], error) {
	kvs, err := mr.Collect(ctx, c)
	if err != nil {
		return nil, err
	}
	return mr.SortPairs(kvs), nil
}

func (p *Part1) Q1() ([]mr.KeyValue[int, string], error) {
	c, err := p.words()
	if err != nil {
		return nil, err
	}
	c1, err := mr.Map(p.ctx, c, func(k, v string) ([]mr.KeyValue[int, string], error) {
		return []mr.KeyValue[int, string]{mr.NewKV(1, v[len(v)-1:])}, nil
	})
	if err != nil {
		return nil, err
	}
	return sorted(p.ctx, c1)
}

func (p *Part1) Q2() ([]mr.KeyValue[string, string], error) {
	c, err := p.words()
	if err != nil {
		return nil, err
	}
	c1, err := mr.Reduce(p.ctx, c, func(x, y string) (string, error) { return "hello", nil })
	if err != nil {
		return nil, err
	}
	return sorted(p.ctx, c1)
}

func (p *Part1) Q4(in Input) (int64, error) {
	return mr.Count(p.ctx, in)
}

type countSum struct {
	n   int64
	sum int64
}

func (p *Part1) Q5(in Input) (float64, error) {
	c, err := mr.Map(p.ctx, in, func(k, v int) ([]mr.KeyValue[string, countSum], error) {
		return []mr.KeyValue[string, countSum]{mr.NewKV("all", countSum{1, int64(v)})}, nil
	})
	if err != nil {
		return 0, err
	}
	c1, err := mr.Reduce(p.ctx, c, func(x, y countSum) (countSum, error) {
		return countSum{x.n + y.n, x.sum + y.sum}, nil
	})
	if err != nil {
		return 0, err
	}
	kvs, err := mr.Collect(p.ctx, c1)
	if err != nil {
		return 0, err
	}
	if len(kvs) != 1 {
		return 0, fmt.Errorf("Q5: average of empty input")
	}
	cs := kvs[0].Value
	return float64(cs.sum) / float64(cs.n), nil
}

// Extremes is the most and least common key with their counts.
type Extremes[K constraints.Ordered] struct {
	Most   K
	MostN  int
	Least  K
	LeastN int
}

func (e Extremes[K]) String() string {
	return fmt.Sprintf("(%v, %d, %v, %d)", e.Most, e.MostN, e.Least, e.LeastN)
}

// extremes scans counts; ties go to the smallest key.
func extremes[K constraints.Ordered](kvs []mr.KeyValue[K, int]) (Extremes[K], error) {
	var e Extremes[K]
	if len(kvs) == 0 {
		return e, fmt.Errorf("extremes: no counts")
	}
	mr.SortPairs(kvs)
	e = Extremes[K]{kvs[0].Key, kvs[0].Value, kvs[0].Key, kvs[0].Value}
	for _, kv := range kvs[1:] {
		if kv.Value > e.MostN {
			e.Most, e.MostN = kv.Key, kv.Value
		}
		if kv.Value < e.LeastN {
			e.Least, e.LeastN = kv.Key, kv.Value
		}
	}
	return e, nil
}

func add(x, y int) (int, error) { return x + y, nil }

func sub(x, y int) (int, error) { return x - y, nil }

// One-character keys, so emitting a digit or letter doesn't allocate.
var chars [128]string

func init() {
	for i := range chars {
		chars[i] = string(rune(i))
	}
}

func charPairs(s string) []mr.KeyValue[string, int] {
	kvs := make([]mr.KeyValue[string, int], len(s))
	for i := 0; i < len(s); i++ {
		kvs[i] = mr.NewKV(chars[s[i]&0x7f], 1)
	}
	return kvs
}

func countChars(ctx *mr.Context, c *mr.Collection[string, int]) (Extremes[string], error) {
	c1, err := mr.Reduce(ctx, c, add)
	if err != nil {
		return Extremes[string]{}, err
	}
	kvs, err := mr.Collect(ctx, c1)
	if err != nil {
		return Extremes[string]{}, err
	}
	db.DPrintf(db.PIPELINE, "counts %v", kvs)
	return extremes(kvs)
}

// Q6 finds the most and least common decimal digit.
func (p *Part1) Q6(in Input) (Extremes[string], error) {
	c, err := mr.Map(p.ctx, in, func(k, v int) ([]mr.KeyValue[string, int], error) {
		return charPairs(strconv.Itoa(v)), nil
	})
	if err != nil {
		return Extremes[string]{}, err
	}
	return countChars(p.ctx, c)
}

// Q7 finds the most and least common letter in the English spellings
// of the input.
func (p *Part1) Q7(in Input) (Extremes[string], error) {
	c, err := mr.Map(p.ctx, in, func(k, v int) ([]mr.KeyValue[string, int], error) {
		s, err := words.Render(v)
		if err != nil {
			return nil, err
		}
		return charPairs(words.Letters(s)), nil
	})
	if err != nil {
		return Extremes[string]{}, err
	}
	return countChars(p.ctx, c)
}

func (p *Part1) Q8a() (Extremes[string], error) {
	in, err := p.LoadInputBigger()
	if err != nil {
		return Extremes[string]{}, err
	}
	return p.Q6(in)
}

func (p *Part1) Q8b() (Extremes[string], error) {
	in, err := p.LoadInputBigger()
	if err != nil {
		return Extremes[string]{}, err
	}
	return p.Q7(in)
}

// Q11 maps every pair to nothing, so the reduce output is empty.
func (p *Part1) Q11(in Input) (*sortedmap.SortedMap[int, int], error) {
	c, err := mr.Map(p.ctx, in, func(k, v int) ([]mr.KeyValue[int, int], error) {
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	c1, err := mr.Reduce(p.ctx, c, add)
	if err != nil {
		return nil, err
	}
	kvs, err := mr.Collect(p.ctx, c1)
	if err != nil {
		return nil, err
	}
	sm := sortedmap.NewSortedMap[int, int]()
	for _, kv := range kvs {
		sm.Insert(kv.Key, kv.Value)
	}
	return sm, nil
}

// subByDigit keys each x by x % 10 and reduces with subtraction, whose
// result depends on how the input is sharded.
func subByDigit(ctx *mr.Context, in Input) ([]mr.KeyValue[int, int], error) {
	c, err := mr.Map(ctx, in, func(k, v int) ([]mr.KeyValue[int, int], error) {
		return []mr.KeyValue[int, int]{mr.NewKV(v%10, v)}, nil
	})
	if err != nil {
		return nil, err
	}
	c1, err := mr.Reduce(ctx, c, sub)
	if err != nil {
		return nil, err
	}
	return sorted(ctx, c1)
}

func (p *Part1) Q14(in Input) ([]mr.KeyValue[int, int], error) {
	c, err := mr.Repartition(p.ctx, in, p.cfg.Nondet.REPARTITION)
	if err != nil {
		return nil, err
	}
	return subByDigit(p.ctx, c)
}

// Q16 runs the Q14 pipeline over 1..N with the i-th configured shard
// count.  After the last one it logs how far the runs diverge.
func (p *Part1) Q16(i int) ([]mr.KeyValue[int, int], error) {
	if i == 0 {
		p.q16 = nil
	}
	in, err := ingest.Range(p.ctx, 1, p.cfg.Input.N, p.cfg.Nondet.SHARDS[i])
	if err != nil {
		return nil, err
	}
	kvs, err := subByDigit(p.ctx, in)
	if err != nil {
		return nil, err
	}
	p.q16 = append(p.q16, kvs)
	if len(p.q16) == len(p.cfg.Nondet.SHARDS) {
		div := Divergence(p.q16...)
		db.DPrintf(db.PIPELINE, "q16 shards %v divergence %v", p.cfg.Nondet.SHARDS, div)
	}
	return kvs, nil
}

// Q20 checks the sum of the small example; an error counts as false.
func (p *Part1) Q20() (bool, error) {
	c, err := ingest.Pairs(p.ctx, EXAMPLE, 0)
	if err != nil {
		return false, nil
	}
	c1, err := mr.Reduce(p.ctx, c, add)
	if err != nil {
		db.DPrintf(db.PIPELINE, "Q20 err %v", err)
		return false, nil
	}
	kvs, err := mr.Collect(p.ctx, c1)
	if err != nil {
		return false, nil
	}
	return mr.EqualSets(kvs, EXAMPLE_SUM), nil
}

// Divergence returns, for every key, the standard deviation of its
// value across results.  Keys missing from a result are skipped for
// that result.
func Divergence(results ...[]mr.KeyValue[int, int]) map[int]float64 {
	vals := make(map[int]stats.Float64Data)
	for _, kvs := range results {
		for _, kv := range kvs {
			vals[kv.Key] = append(vals[kv.Key], float64(kv.Value))
		}
	}
	div := make(map[int]float64, len(vals))
	for k, vs := range vals {
		sd, err := stats.StandardDeviation(vs)
		if err != nil {
			continue
		}
		div[k] = sd
	}
	return div
}
