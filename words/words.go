// The words package spells out non-negative integers in English.
//
// Groups of three digits are spelled the same way; "and" only ever
// follows "hundred" and only when the same group has tens or
// ones. So 1001 is "one thousand one" and 801 is "eight hundred and
// one".
package words

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MAX      = 100000000
	MILLION  = 1000000
	THOUSAND = 1000
)

var ErrOutOfRange = errors.New("out of range")

type OutOfRangeError struct {
	N int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("words: %d not in [0, %d]", e.N, MAX)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

var ones = []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

var teens = []string{"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}

var tens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

// Render returns the English words for n, for 0 <= n <= MAX.
func Render(n int) (string, error) {
	if n < 0 || n > MAX {
		return "", &OutOfRangeError{n}
	}
	switch n {
	case 0:
		return "zero", nil
	case MILLION:
		return "one million", nil
	case MAX:
		return "one hundred million", nil
	}

	ws := make([]string, 0, 12)
	if m := n / MILLION; m > 0 {
		ws = group(ws, m)
		ws = append(ws, "million")
	}
	rest := n % MILLION
	if t := rest / THOUSAND; t > 0 {
		ws = group(ws, t)
		ws = append(ws, "thousand")
	}
	ws = group(ws, rest%THOUSAND)
	return strings.Join(ws, " "), nil
}

// group appends the words for a three-digit group g; nothing if g is
// 0.
func group(ws []string, g int) []string {
	if h := g / 100; h > 0 {
		ws = append(ws, ones[h], "hundred")
		if g%100 > 0 {
			ws = append(ws, "and")
		}
	}
	to := g % 100
	switch {
	case to >= 10 && to < 20:
		ws = append(ws, teens[to-10])
	case to >= 20:
		ws = append(ws, tens[to/10])
		if to%10 > 0 {
			ws = append(ws, ones[to%10])
		}
	case to > 0:
		ws = append(ws, ones[to])
	}
	return ws
}

// Letters drops the spaces from a rendering.
func Letters(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
