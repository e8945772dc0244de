package paginate

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// SortPrefix marks a query key as a sort directive: Sort_<field>=asc|desc.
	SortPrefix = "Sort_"
	// SearchSeparator joins normalized search tokens.
	SearchSeparator = " | "
)

// Reserved query keys.
const (
	KeyPage      = "page"
	KeyLimit     = "limit"
	KeySearch    = "search"
	KeyStartDate = "startDate"
	KeyEndDate   = "endDate"
)

// Descriptor is the normalized form of a list request's query parameters.
type Descriptor struct {
	Filter    []Cond
	Sort      []Order
	Search    string
	Page      int
	Take      int
	Skip      int
	StartDate *time.Time
	EndDate   *time.Time
	// Dropped lists keys that were ignored: undeclared fields and object-valued keys.
	Dropped []string
}

// ParseQuery translates values into a Descriptor using schema as the allow-list.
// Malformed page and limit fall back to their defaults; every other problem
// is reported as a *QueryError.
func ParseQuery(values url.Values, schema Schema) (Descriptor, error) {
	d := Descriptor{
		Page: lenientInt(values.Get(KeyPage), DefaultPage),
		Take: lenientInt(values.Get(KeyLimit), DefaultLimit),
	}
	if schema.MaxLimit > 0 && d.Take > schema.MaxLimit {
		d.Take = schema.MaxLimit
	}
	// (page-1)*take must fit in an int
	if maxPage := math.MaxInt / d.Take; d.Page > maxPage {
		d.Page = maxPage
	}
	d.Skip = (d.Page - 1) * d.Take
	d.Search = NormalizeSearch(values.Get(KeySearch))

	var issues []FieldIssue
	for _, key := range []string{KeyStartDate, KeyEndDate} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			issues = append(issues, FieldIssue{Field: key, Message: err.Error()})
			continue
		}
		if key == KeyStartDate {
			d.StartDate = &t
		} else {
			d.EndDate = &t
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sorts := map[string]Direction{}
	filters := map[string][]string{}
	forceIn := map[string]bool{}
	var filterOrder []string

	reject := func(key, msg string) {
		if schema.Strict {
			issues = append(issues, FieldIssue{Field: key, Message: msg})
			return
		}
		d.Dropped = append(d.Dropped, key)
	}

	for _, key := range keys {
		switch key {
		case KeyPage, KeyLimit, KeySearch, KeyStartDate, KeyEndDate:
			continue
		}
		vals := values[key]
		if len(vals) == 0 {
			continue
		}

		if field, ok := strings.CutPrefix(key, SortPrefix); ok {
			if !schema.sortable(field) {
				reject(key, "field is not sortable")
				continue
			}
			switch dir := Direction(strings.ToLower(strings.TrimSpace(vals[0]))); dir {
			case Asc, Desc:
				sorts[field] = dir
			default:
				issues = append(issues, FieldIssue{Field: key, Message: "must be asc or desc"})
			}
			continue
		}

		field := key
		if name, ok := strings.CutSuffix(key, "[]"); ok {
			field = name
			forceIn[field] = true
		} else if strings.ContainsAny(key, "[]") {
			// object-valued (field[sub]=...); not a filter
			reject(key, "object-valued keys are not supported")
			continue
		}
		if _, ok := schema.Filters[field]; !ok {
			reject(key, "field is not filterable")
			continue
		}
		if _, seen := filters[field]; !seen {
			filterOrder = append(filterOrder, field)
		}
		filters[field] = append(filters[field], vals...)
	}

	for _, field := range schema.Sortable {
		if dir, ok := sorts[field]; ok {
			d.Sort = append(d.Sort, Order{Field: field, Dir: dir})
		}
	}

	for _, field := range filterOrder {
		kind := schema.Filters[field]
		raw := filters[field]
		converted := make([]any, 0, len(raw))
		bad := false
		for _, r := range raw {
			v, err := convert(kind, r)
			if err != nil {
				issues = append(issues, FieldIssue{Field: field, Message: "must be a valid " + kindName(kind)})
				bad = true
				break
			}
			converted = append(converted, v)
		}
		if bad {
			continue
		}
		if len(converted) == 1 && !forceIn[field] {
			d.Filter = append(d.Filter, Cond{Field: field, Op: OpEq, Value: converted[0]})
		} else {
			d.Filter = append(d.Filter, Cond{Field: field, Op: OpIn, Value: converted})
		}
	}

	if len(issues) > 0 {
		return Descriptor{}, &QueryError{Issues: issues}
	}
	return d, nil
}

// NormalizeSearch trims raw, collapses inner whitespace and joins the tokens
// with SearchSeparator.
func NormalizeSearch(raw string) string {
	return strings.Join(strings.Fields(raw), SearchSeparator)
}

// SearchTokens splits a normalized search string back into its tokens.
func SearchTokens(search string) []string {
	parts := strings.Split(search, SearchSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// lenientInt reads the leading integer of s, the way a browser-side parseInt
// would, and returns its absolute value. Missing, non-numeric or zero input
// yields def.
func lenientInt(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return def
	}
	if n < 0 {
		n = -n
	}
	return n
}
