package driver

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
)

// Results records how long each answer took.
type Results struct {
	names []string
	dur   []time.Duration
	lat   []float64 // To avoid converting to float slices many times for the stats library.
}

func NewResults() *Results {
	return &Results{
		names: make([]string, 0),
		dur:   make([]time.Duration, 0),
	}
}

func (r *Results) Append(name string, d time.Duration) {
	r.names = append(r.names, name)
	r.dur = append(r.dur, d)
	// Kill cache
	r.lat = nil
}

func (r *Results) Len() int {
	return len(r.dur)
}

func (r *Results) toFloats() []float64 {
	if r.lat != nil {
		return r.lat
	}
	lat := make([]float64, len(r.dur))
	for i := range r.dur {
		lat[i] = float64(r.dur[i])
	}
	r.lat = lat
	return lat
}

func (r *Results) Mean() (time.Duration, error) {
	l, err := stats.Mean(r.toFloats())
	if err != nil {
		return 0, err
	}
	return time.Duration(int64(l)), nil
}

func (r *Results) StdDev() (time.Duration, error) {
	l, err := stats.StandardDeviation(r.toFloats())
	if err != nil {
		return 0, err
	}
	return time.Duration(int64(l)), nil
}

func (r *Results) Percentile(p float64) (time.Duration, error) {
	if p <= 0.0 || p > 100.0 {
		return 0, fmt.Errorf("bad percentile, not in (0, 100.0]: %v", p)
	}
	l, err := stats.Percentile(r.toFloats(), p)
	if err != nil {
		return 0, err
	}
	return time.Duration(int64(l)), nil
}

func (r *Results) Total() time.Duration {
	t := time.Duration(0)
	for _, d := range r.dur {
		t += d
	}
	return t
}

// Summary of results.
func (r *Results) Summary() (string, error) {
	if len(r.dur) == 0 {
		return "", fmt.Errorf("no results")
	}
	mean, err := r.Mean()
	if err != nil {
		return "", err
	}
	std, err := r.StdDev()
	if err != nil {
		return "", err
	}
	median, err := r.Percentile(50)
	if err != nil {
		return "", err
	}
	max, err := r.Percentile(100)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("= %s answers in %v\n Mean: %v\n Std: %v\n 50: %v\n 100: %v",
		humanize.Comma(int64(len(r.dur))), r.Total(), mean, std, median, max), nil
}

func (r *Results) String() string {
	s := ""
	for i := range r.dur {
		s += fmt.Sprintf("%s: %v\n", r.names[i], r.dur[i])
	}
	return s
}
