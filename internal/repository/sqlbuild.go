package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maxviazov/directory-service/pkg/paginate"
)

// Dialect captures the few places Postgres and SQLite disagree.
type Dialect struct {
	Name        string
	placeholder func(n int) string
	// foldLike is a case-insensitive LIKE operator.
	foldLike string
	bind     func(v any) any
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		foldLike:    "ILIKE",
		bind:        func(v any) any { return v },
	}
	// SQLite compares timestamps as text, so every bound time is normalized to UTC.
	SQLite = Dialect{
		Name:        "sqlite",
		placeholder: func(int) string { return "?" },
		foldLike:    "LIKE",
		bind: func(v any) any {
			if t, ok := v.(time.Time); ok {
				return t.UTC()
			}
			return v
		},
	}
)

// Columns maps criteria field names to trusted SQL column expressions.
// It is the store-side allow-list: anything not listed is rejected.
type Columns map[string]string

// SQLBuilder renders paginate criteria into SQL fragments and collects the bound args.
type SQLBuilder struct {
	dialect Dialect
	columns Columns
	args    []any
}

func NewSQLBuilder(d Dialect, cols Columns) *SQLBuilder {
	return &SQLBuilder{dialect: d, columns: cols}
}

// Arg binds v and returns its placeholder.
func (b *SQLBuilder) Arg(v any) string {
	b.args = append(b.args, b.dialect.bind(v))
	return b.dialect.placeholder(len(b.args))
}

// Args returns everything bound so far, in placeholder order.
func (b *SQLBuilder) Args() []any { return b.args }

// Where renders " WHERE ..." or an empty string when w matches everything.
func (b *SQLBuilder) Where(w paginate.Where) (string, error) {
	e := w.Expr()
	if e == nil {
		return "", nil
	}
	s, err := b.expr(e)
	if err != nil {
		return "", err
	}
	return " WHERE " + s, nil
}

// OrderBy renders " ORDER BY ...". When the columns expose an id it is
// appended as a tiebreaker so pages stay stable.
func (b *SQLBuilder) OrderBy(orders []paginate.Order) (string, error) {
	parts := make([]string, 0, len(orders)+1)
	hasID := false
	for _, o := range orders {
		col, err := b.column(o.Field)
		if err != nil {
			return "", err
		}
		var dir string
		switch o.Dir {
		case paginate.Asc:
			dir = "ASC"
		case paginate.Desc:
			dir = "DESC"
		default:
			return "", fmt.Errorf("invalid sort direction %q for %s", o.Dir, o.Field)
		}
		if o.Field == "id" {
			hasID = true
		}
		parts = append(parts, col+" "+dir)
	}
	if id, ok := b.columns["id"]; ok && !hasID {
		parts = append(parts, id+" ASC")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// Page renders " LIMIT ... OFFSET ...". A negative skip is rendered as 0.
func (b *SQLBuilder) Page(take, skip int) string {
	if skip < 0 {
		skip = 0
	}
	return " LIMIT " + b.Arg(take) + " OFFSET " + b.Arg(skip)
}

func (b *SQLBuilder) column(field string) (string, error) {
	col, ok := b.columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return col, nil
}

func (b *SQLBuilder) expr(e paginate.Expr) (string, error) {
	switch v := e.(type) {
	case paginate.Cond:
		return b.cond(v)
	case paginate.Group:
		return b.group(v)
	default:
		return "", fmt.Errorf("unsupported expression %T", e)
	}
}

func (b *SQLBuilder) group(g paginate.Group) (string, error) {
	if len(g.Exprs) == 0 {
		if g.Logic == paginate.LogicOr {
			return "1=0", nil
		}
		return "1=1", nil
	}
	sep := " AND "
	if g.Logic == paginate.LogicOr {
		sep = " OR "
	}
	parts := make([]string, 0, len(g.Exprs))
	for _, e := range g.Exprs {
		s, err := b.expr(e)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *SQLBuilder) cond(c paginate.Cond) (string, error) {
	col, err := b.column(c.Field)
	if err != nil {
		return "", err
	}
	switch c.Op {
	case paginate.OpEq:
		return col + " = " + b.Arg(c.Value), nil
	case paginate.OpNe:
		return col + " <> " + b.Arg(c.Value), nil
	case paginate.OpGt:
		return col + " > " + b.Arg(c.Value), nil
	case paginate.OpGte:
		return col + " >= " + b.Arg(c.Value), nil
	case paginate.OpLt:
		return col + " < " + b.Arg(c.Value), nil
	case paginate.OpLte:
		return col + " <= " + b.Arg(c.Value), nil
	case paginate.OpIn:
		vals, ok := c.Value.([]any)
		if !ok {
			return "", fmt.Errorf("in condition on %s needs a list, got %T", c.Field, c.Value)
		}
		if len(vals) == 0 {
			return "1=0", nil
		}
		phs := make([]string, 0, len(vals))
		for _, v := range vals {
			phs = append(phs, b.Arg(v))
		}
		return col + " IN (" + strings.Join(phs, ", ") + ")", nil
	case paginate.OpContains:
		tokens := paginate.SearchTokens(fmt.Sprint(c.Value))
		if len(tokens) == 0 {
			return "1=1", nil
		}
		parts := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			parts = append(parts, fmt.Sprintf(`%s %s %s ESCAPE '\'`, col, b.dialect.foldLike, b.Arg("%"+escapeLike(tok)+"%")))
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported operator %q on %s", c.Op, c.Field)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
