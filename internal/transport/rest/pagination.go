package rest

import "strconv"

const (
	defaultPageSize = 10
	maxPageSize     = 1000
)

// parseFrom reads the offset-style "from" query param, defaulting to 0.
func parseFrom(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseSize reads the "size" query param, clamped to [1, maxPageSize].
func parseSize(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}
