// Package utils holds small reusable helpers shared by the services:
// generic slice processing and lenient parsing for clipboard imports.
package utils

import (
	"strconv"
	"strings"
)

// filter
type keepFunc[E any] func(E) bool

// Filter function definition of a functional programming "function"
func Filter[S ~[]E, E any](s S, f keepFunc[E]) S {
	result := S{}
	for _, v := range s {
		if f(v) {
			result = append(result, v)
		}
	}

	return result
}

// NormalizeNewlines rewrites Windows line endings so pasted spreadsheet text
// splits cleanly on '\n'.
func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// QuantityOr parses a positive integer cell, falling back to def when the
// cell is empty, malformed or non-positive.
func QuantityOr(s string, def int) int {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || q < 1 {
		return def
	}

	return q
}

// PriceOr parses a non-negative money cell, falling back to def when the
// cell is empty, malformed or negative.
func PriceOr(s string, def float64) float64 {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || p < 0 {
		return def
	}

	return p
}
