package catalog

import "strings"

// DefaultPageSize is the number of entries shown per page.
const DefaultPageSize = 50

// TotalPages returns ceil(n/pageSize).
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage returns page limited to [1, totalPages]. An empty list still
// has page 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the entries of the given 1-based page. Out-of-range
// pages yield an empty slice.
func Paginate(list []Entry, page, pageSize int) []Entry {
	if page < 1 || pageSize <= 0 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(list) {
		return nil
	}
	end := min(start+pageSize, len(list))
	return list[start:end]
}

// Window returns list[start:start+n], clipped to the list bounds.
func Window(list []Entry, start, n int) []Entry {
	if start < 0 {
		start = 0
	}
	if start >= len(list) || n <= 0 {
		return nil
	}
	end := min(start+n, len(list))
	return list[start:end]
}

// Search keeps the entries whose name contains term, case-insensitively.
// A blank term returns list unchanged.
func Search(list []Entry, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list
	}
	var out []Entry
	for _, e := range list {
		if strings.Contains(strings.ToLower(e.Name), term) {
			out = append(out, e)
		}
	}
	return out
}

// Intersect keeps the entries of primary whose name also appears in other,
// preserving primary's order.
func Intersect(primary, other []Entry) []Entry {
	names := make(map[string]struct{}, len(other))
	for _, e := range other {
		names[e.Name] = struct{}{}
	}
	var out []Entry
	for _, e := range primary {
		if _, ok := names[e.Name]; ok {
			out = append(out, e)
		}
	}
	return out
}
