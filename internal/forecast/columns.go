package forecast

import "strings"

// Accepted aliases per logical field, tried in order.
var (
	DateAliases         = []string{"year", "Year", "ds"}
	CurrentValueAliases = []string{"current_value", "current", "value"}
	TargetValueAliases  = []string{"target_value", "target"}
)

// Column is a resolved header.
type Column struct {
	Index int
	Name  string
}

// ColumnResolver matches logical field names against a header row
// case-insensitively.
type ColumnResolver struct {
	headers []string
}

func NewColumnResolver(headers []string) ColumnResolver {
	return ColumnResolver{headers: headers}
}

// Resolve tries candidates in order and returns the first header that
// matches one of them. When several headers differ only by case, the
// leftmost wins.
func (r ColumnResolver) Resolve(candidates ...string) (Column, bool) {
	for _, cand := range candidates {
		for i, h := range r.headers {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(cand)) {
				return Column{Index: i, Name: h}, true
			}
		}
	}
	return Column{Index: -1}, false
}
