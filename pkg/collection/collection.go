// Package collection provides generic, functional-style helpers for slices.
//
// Usage:
//
//	names := collection.Map(products, func(p models.Product) string { return p.Name })
//	favs := collection.Filter(products, func(p models.Product) bool { return p.Favorite })
//	widget, ok := collection.First(products, func(p models.Product) bool { return p.Name == "Widget" })
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first element satisfying fn, in slice order.
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
