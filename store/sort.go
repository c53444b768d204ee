package store

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-blog-cache/pagination"
)

// SortColumn maps a request's camelCase sort field to a column name, falling
// back to created_at for fields that are not in allowed.
func SortColumn(sortBy string, allowed map[string]bool) string {
	col := toSnake(sortBy)
	if col == "" || !allowed[col] {
		return "created_at"
	}
	return col
}

// OrderExpr returns "<column> DESC|ASC" for a request.
func OrderExpr(req pagination.Request, allowed map[string]bool) string {
	dir := " ASC"
	if req.IsNewest {
		dir = " DESC"
	}
	return SortColumn(req.SortBy, allowed) + dir
}

// toSnake converts the provided string to snake_case using ASCII-aware rules.
// Anything outside letters and digits collapses into a single underscore, so
// the result is always safe to splice into an ORDER BY after the allow list.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) && !lastUnderscore {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}
