// Package paginate turns list-endpoint query parameters into store criteria
// and wraps a count + find-many pair into a pagination envelope.
package paginate

import "slices"

// Operator is a comparison applied to a single field.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpIn  Operator = "in"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	// OpContains is a case-insensitive substring match. The value is a
	// search string; its " | "-separated tokens are alternatives.
	OpContains Operator = "contains"
)

// Logic joins the members of a Group.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Direction of a sort directive.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Expr is a node of a filter tree: either a Cond or a Group.
type Expr interface {
	isExpr()
}

// Cond is a single field comparison. For OpIn the value is a []any.
type Cond struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// Group joins expressions with AND or OR.
type Group struct {
	Logic Logic  `json:"logic"`
	Exprs []Expr `json:"exprs"`
}

func (Cond) isExpr()  {}
func (Group) isExpr() {}

// And groups expressions conjunctively.
func And(exprs ...Expr) Group { return Group{Logic: LogicAnd, Exprs: exprs} }

// Or groups expressions disjunctively.
func Or(exprs ...Expr) Group { return Group{Logic: LogicOr, Exprs: exprs} }

// Where is the filter passed to a Store. All Conds must hold and, when Or is
// not empty, at least one of its branches must hold too.
type Where struct {
	Conds []Cond `json:"conds,omitempty"`
	Or    []Expr `json:"or,omitempty"`
}

// Clone copies the top-level slices so the result can be changed without
// touching w.
func (w Where) Clone() Where {
	return Where{Conds: slices.Clone(w.Conds), Or: slices.Clone(w.Or)}
}

// Replace drops every condition on field and appends conds in their place.
func (w *Where) Replace(field string, conds ...Cond) {
	w.Conds = slices.DeleteFunc(w.Conds, func(c Cond) bool { return c.Field == field })
	w.Conds = append(w.Conds, conds...)
}

// IsZero reports whether w matches everything.
func (w Where) IsZero() bool { return len(w.Conds) == 0 && len(w.Or) == 0 }

// Expr renders w as a single tree, or nil when w is empty.
func (w Where) Expr() Expr {
	if w.IsZero() {
		return nil
	}
	exprs := make([]Expr, 0, len(w.Conds)+1)
	for _, c := range w.Conds {
		exprs = append(exprs, c)
	}
	if len(w.Or) > 0 {
		exprs = append(exprs, Or(w.Or...))
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return And(exprs...)
}

// Order is a single-field sort directive.
type Order struct {
	Field string    `json:"field"`
	Dir   Direction `json:"dir"`
}

// Args are the base query arguments a caller hands to Paginate.
// Include lists relations the store should embed and is passed through untouched.
type Args struct {
	Where   Where
	OrderBy []Order
	Include []string
}

// Criteria is what a Store receives for a page fetch.
type Criteria struct {
	Where   Where
	OrderBy []Order
	Take    int
	Skip    int
	Include []string
}

// Includes reports whether relation was requested.
func (c Criteria) Includes(relation string) bool {
	return slices.Contains(c.Include, relation)
}
