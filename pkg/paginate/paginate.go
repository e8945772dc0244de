package paginate

import (
	"context"
	"net/url"
	"slices"
	"time"
)

// DefaultRangeStart is the lower bound of the created-at range when only an end date is given.
var DefaultRangeStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Store is the data-access object Paginate drives.
type Store[T any] interface {
	Count(ctx context.Context, where Where) (int, error)
	FindMany(ctx context.Context, c Criteria) ([]T, error)
}

// Options configures a single Paginate call.
type Options struct {
	// Args are the base arguments; they are never modified.
	Args Args
	// SearchFields are matched with OpContains against the search parameter.
	SearchFields []string
	// Query holds the raw request query parameters.
	Query url.Values
	// SkipDefaultSort disables the created-at descending fallback.
	SkipDefaultSort bool
	Schema          Schema
	// Now defaults to time.Now and bounds the created-at range.
	Now func() time.Time
}

// Envelope is a page of results plus the metadata a client needs to walk pages.
type Envelope[T any] struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	LastPage  int `json:"last_page"`
	TotalDocs int `json:"totalDocs"`
	Offset    int `json:"offset"`
	Docs      []T `json:"docs"`
}

// Paginate parses opts.Query, merges it into opts.Args and runs Count followed
// by FindMany on store. Store errors are returned as they are.
func Paginate[T any](ctx context.Context, store Store[T], opts Options) (Envelope[T], error) {
	d, err := ParseQuery(opts.Query, opts.Schema)
	if err != nil {
		return Envelope[T]{}, err
	}
	return Fetch(ctx, store, d, opts)
}

// Fetch is Paginate for a query that has already been parsed; opts.Query is ignored.
func Fetch[T any](ctx context.Context, store Store[T], d Descriptor, opts Options) (Envelope[T], error) {
	c := BuildCriteria(d, opts)

	total, err := store.Count(ctx, c.Where)
	if err != nil {
		return Envelope[T]{}, err
	}
	docs, err := store.FindMany(ctx, c)
	if err != nil {
		return Envelope[T]{}, err
	}
	if docs == nil {
		docs = []T{}
	}

	return Envelope[T]{
		Page:      d.Page,
		Limit:     d.Take,
		LastPage:  LastPage(total, d.Take),
		TotalDocs: total,
		Offset:    d.Skip,
		Docs:      docs,
	}, nil
}

// BuildCriteria merges a descriptor into the base arguments of opts.
func BuildCriteria(d Descriptor, opts Options) Criteria {
	created := opts.Schema.createdField()

	orderBy := slices.Clone(opts.Args.OrderBy)
	orderBy = append(orderBy, d.Sort...)
	if len(orderBy) == 0 && !opts.SkipDefaultSort {
		orderBy = append(orderBy, Order{Field: created, Dir: Desc})
	}

	where := opts.Args.Where.Clone()

	if d.Search != "" && len(opts.SearchFields) > 0 {
		search := make([]Expr, 0, len(opts.SearchFields))
		for _, f := range opts.SearchFields {
			search = append(search, Cond{Field: f, Op: OpContains, Value: d.Search})
		}
		if len(where.Or) > 0 {
			for i, branch := range where.Or {
				where.Or[i] = And(branch, Or(search...))
			}
		} else {
			where.Or = search
		}
	}

	for _, f := range d.Filter {
		where.Replace(f.Field, f)
	}

	if d.StartDate != nil || d.EndDate != nil {
		start := DefaultRangeStart
		if d.StartDate != nil {
			start = *d.StartDate
		}
		var end time.Time
		if d.EndDate != nil {
			end = *d.EndDate
		} else if opts.Now != nil {
			end = opts.Now()
		} else {
			end = time.Now()
		}
		where.Replace(created,
			Cond{Field: created, Op: OpGte, Value: start},
			Cond{Field: created, Op: OpLte, Value: end},
		)
	}

	return Criteria{
		Where:   where,
		OrderBy: orderBy,
		Take:    d.Take,
		Skip:    d.Skip,
		Include: slices.Clone(opts.Args.Include),
	}
}

// LastPage is ceil(total/limit); zero when there is nothing to page through.
func LastPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
