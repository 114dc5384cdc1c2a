// Package collection holds small generic slice helpers shared by the stores
// and the dataset seeder.
package collection

import "sort"

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn returns true, in order.
// The result is never nil.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Chunk splits s into consecutive slices of at most n elements.
func Chunk[T any](s []T, n int) [][]T {
	if n <= 0 {
		return nil
	}
	var out [][]T
	for i := 0; i < len(s); i += n {
		end := i + n
		if end > len(s) {
			end = len(s)
		}
		out = append(out, s[i:end])
	}
	return out
}

// SortBy sorts s in place with a stable sort and returns it.
func SortBy[T any](s []T, less func(a, b T) bool) []T {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
	return s
}

// Window returns up to limit elements of s starting at offset skip. Out of
// range windows return an empty, non-nil slice.
func Window[T any](s []T, skip, limit int) []T {
	if skip < 0 || limit < 1 || skip >= len(s) {
		return []T{}
	}
	end := len(s)
	if limit < end-skip {
		end = skip + limit
	}
	return s[skip:end]
}
