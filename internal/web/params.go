package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// listParams is the list view state carried in the query string.
type listParams struct {
	Query  string
	Filter types.Filter
	Sort   types.SortKey
}

// parseListParams reads q, genre, platform, rating, isBorrowed, status, tag
// (repeatable), sort and dir. Invalid values are ignored.
func parseListParams(v url.Values) listParams {
	p := listParams{
		Query: strings.TrimSpace(v.Get("q")),
		Filter: types.Filter{
			Genre:    strings.TrimSpace(v.Get("genre")),
			Platform: strings.TrimSpace(v.Get("platform")),
			Status:   strings.TrimSpace(v.Get("status")),
		},
		Sort: types.DefaultSort,
	}
	if raw := strings.TrimSpace(v.Get("rating")); raw != "" {
		if n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
			p.Filter.Rating = &n
		}
	}
	switch strings.ToLower(strings.TrimSpace(v.Get("isBorrowed"))) {
	case "true", "1", "yes":
		b := true
		p.Filter.IsBorrowed = &b
	case "false", "0", "no":
		b := false
		p.Filter.IsBorrowed = &b
	}
	for _, raw := range v["tag"] {
		for _, t := range types.SplitTags(raw) {
			p.Filter.Tags = append(p.Filter.Tags, t)
		}
	}
	if field := v.Get("sort"); types.IsSortField(field) {
		p.Sort = types.SortKey{Field: field, Desc: v.Get("dir") == "desc"}
	} else if dir := v.Get("dir"); dir == "asc" || dir == "desc" {
		p.Sort.Desc = dir == "desc"
	}
	return p
}
