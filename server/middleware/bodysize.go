package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// Audio uploads dominate request sizes; the ceiling must clear a long
// meeting recording.
const defaultMaxBodySize = 512 * 1024 * 1024

// BodySizeLimit restricts the request body to the given size string
// (e.g. "512MB", "1GB").
func BodySizeLimit(maxSize string) Middleware {
	size := parseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}

var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
}

// parseSize converts a size string like "512MB" into bytes, falling back to
// fallback on anything it cannot read. A bare number is taken as bytes.
func parseSize(s string, fallback int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}

	var multiplier int64 = 1
	for _, unit := range sizeUnits {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.multiplier
			s = strings.TrimSuffix(s, unit.suffix)
			break
		}
	}

	val, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || val < 0 {
		return fallback
	}
	return val * multiplier
}
