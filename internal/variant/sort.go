package variant

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// SortClass selects the comparator used to order a dimension's values.
type SortClass int

const (
	SortStandard SortClass = iota
	SortNumeric
	SortShoeSize
	SortLetteredSize
	SortLetteredSizeExplicit
)

func (c SortClass) String() string {
	switch c {
	case SortNumeric:
		return "numeric"
	case SortShoeSize:
		return "shoe_size"
	case SortLetteredSize:
		return "lettered_size"
	case SortLetteredSizeExplicit:
		return "lettered_size_explicit"
	default:
		return "standard"
	}
}

var letteredSizeRank = map[string]int{
	"XXS":  0,
	"XS":   1,
	"S":    2,
	"M":    3,
	"L":    4,
	"XL":   5,
	"XXL":  6,
	"XXXL": 7,
}

var letteredSizeExplicitRank = map[string]int{
	"X-SMALL": 0,
	"SMALL":   1,
	"MEDIUM":  2,
	"LARGE":   3,
	"X-LARGE": 4,
}

// Classify returns the sort class of a single value. Classes are tested in
// precedence order: numeric, shoe size, lettered size, explicit lettered
// size, then standard.
func Classify(value string) SortClass {
	if _, _, ok := parseNumber(value); ok {
		return SortNumeric
	}
	if _, ok := firstIntToken(value); ok {
		return SortShoeSize
	}
	if _, ok := letteredSizeRank[value]; ok {
		return SortLetteredSize
	}
	if _, ok := letteredSizeExplicitRank[value]; ok {
		return SortLetteredSizeExplicit
	}
	return SortStandard
}

// Compare orders a and b under class. A pair that does not parse under the
// class compares equal.
func Compare(a, b string, class SortClass) int {
	switch class {
	case SortNumeric:
		ai, af, aok := parseNumber(a)
		bi, bf, bok := parseNumber(b)
		if !aok || !bok {
			return 0
		}
		if ai != nil && bi != nil {
			return cmp.Compare(*ai, *bi)
		}
		return cmp.Compare(af, bf)
	case SortShoeSize:
		at, aok := firstIntToken(a)
		bt, bok := firstIntToken(b)
		if !aok || !bok {
			return 0
		}
		return cmp.Compare(at, bt)
	case SortLetteredSize:
		return compareRank(letteredSizeRank, a, b)
	case SortLetteredSizeExplicit:
		return compareRank(letteredSizeExplicitRank, a, b)
	default:
		return strings.Compare(a, b)
	}
}

// SortBy returns a stably sorted copy of items ordered by name. The class of
// the first name decides the comparator for every pair. Collections of zero or
// one element come back unchanged.
func SortBy[T any](items []T, name func(T) string) []T {
	out := slices.Clone(items)
	if len(out) < 2 {
		return out
	}
	class := Classify(name(out[0]))
	slices.SortStableFunc(out, func(a, b T) int {
		return Compare(name(a), name(b), class)
	})
	return out
}

func compareRank(table map[string]int, a, b string) int {
	ra, aok := table[a]
	rb, bok := table[b]
	if !aok || !bok {
		return 0
	}
	return cmp.Compare(ra, rb)
}

// parseNumber parses s as a whole integer or decimal. The integer pointer is
// set only when s is an integer.
func parseNumber(s string) (*int64, float64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &i, float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, 0, false
	}
	return nil, f, true
}

// firstIntToken extracts the first run of ASCII digits, so "US 9" yields 9.
func firstIntToken(s string) (int, bool) {
	tokens := strings.FieldsFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if len(tokens) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0, false
	}
	return n, true
}
