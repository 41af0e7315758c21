// lib contains helper functions for the implementation
package lib

// Map applies f to every element of vs and returns the results in order
func Map[V any, R any](vs []V, f func(V) R) []R {
	results := make([]R, len(vs))

	for index, v := range vs {
		results[index] = f(v)
	}

	return results
}

// Filter returns the elements of vs for which f returns true, preserving order
func Filter[V any](vs []V, f func(V) bool) []V {
	results := make([]V, 0, len(vs))

	for _, v := range vs {
		if f(v) {
			results = append(results, v)
		}
	}

	return results
}

// Page returns the window of vs starting at skip of at most limit elements.
// A limit <= 0 returns everything after skip.
func Page[V any](vs []V, skip, limit int) []V {
	if skip < 0 {
		skip = 0
	}

	if skip >= len(vs) {
		return make([]V, 0)
	}

	end := len(vs)

	if limit > 0 && skip+limit < end {
		end = skip + limit
	}

	return vs[skip:end]
}
