// ast defines the typed statement tree produced by the parser: a select
// statement is built from projection items, table references with their
// join clauses, and a flat list of boolean/comparison condition nodes.
//
// The tree is strictly top-down and immutable once parsed; there are no
// parent pointers. Boolean operator nodes (And/Or/Xor/Not) are produced by
// the parser as skeleton nodes with Child left nil — see the parser
// package's doc comment for why the condition list stays flat rather than
// being reshaped into a precedence tree during parsing.
package ast

import "strings"

// Node is implemented by every statement tree element that can render
// itself back to SQL text. The round-trip property (spec boundary #5)
// relies on String() for comparisons and field references.
type Node interface {
	String() string
}

// FieldRef names a column, optionally qualified by a table alias. It
// doubles as the atom used inside comparisons (spec.md's "field"
// production also accepts a bare literal there; NumericLiteral/
// CharacterLiteral fill that role instead of FieldRef in that position).
type FieldRef struct {
	TableAlias *string
	Name       string
	Alias      string
}

// NewFieldRef builds a FieldRef defaulting Alias to Name, per spec.md
// invariant 1.
func NewFieldRef(tableAlias *string, name string) *FieldRef {
	return &FieldRef{TableAlias: tableAlias, Name: name, Alias: name}
}

func (f *FieldRef) String() string {
	if f.TableAlias != nil && *f.TableAlias != "" {
		return *f.TableAlias + "." + f.Name
	}
	return f.Name
}

// CharacterLiteral is a quoted text literal, usable as a projection item or
// as an operand in a comparison.
type CharacterLiteral struct {
	Text  string
	Alias string
}

func (c *CharacterLiteral) String() string {
	return "'" + strings.ReplaceAll(c.Text, "'", "''") + "'"
}

// NumericLiteral is a numeric literal's source text, preserved verbatim.
type NumericLiteral struct {
	Text  string
	Alias string
}

func (n *NumericLiteral) String() string {
	return n.Text
}

// Asterisk is the `*` projection item.
type Asterisk struct{}

func (Asterisk) String() string {
	return "*"
}

// Equals is the `lhs = rhs` comparison. Operands are FieldRef, CharacterLiteral
// or NumericLiteral nodes — the "field" grammar production accepts either a
// qualified column name or a bare literal on each side.
type Equals struct {
	Left, Right Node
}

func (e *Equals) String() string {
	return e.Left.String() + " = " + e.Right.String()
}

// NotEquals is the `lhs <> rhs` (or `!=`) comparison. Both source spellings
// parse to this single node.
type NotEquals struct {
	Left, Right Node
}

func (n *NotEquals) String() string {
	return n.Left.String() + " <> " + n.Right.String()
}

// LessThan is the `lhs < rhs` comparison.
type LessThan struct {
	Left, Right Node
}

func (l *LessThan) String() string {
	return l.Left.String() + " < " + l.Right.String()
}

// GreaterThan is the `lhs > rhs` comparison.
type GreaterThan struct {
	Left, Right Node
}

func (g *GreaterThan) String() string {
	return g.Left.String() + " > " + g.Right.String()
}

// Between is the `field BETWEEN low AND high` comparison.
type Between struct {
	Field, Low, High Node
}

func (b *Between) String() string {
	return b.Field.String() + " BETWEEN " + b.Low.String() + " AND " + b.High.String()
}

// And is a skeleton boolean connective. The parser leaves Child nil; it is
// resolved to the condition that follows it in the flat list at evaluation
// time (see the engine package).
type And struct{ Child Node }

func (a *And) String() string {
	if a.Child == nil {
		return "AND"
	}
	return "AND " + a.Child.String()
}

// Or is a skeleton boolean connective, see And.
type Or struct{ Child Node }

func (o *Or) String() string {
	if o.Child == nil {
		return "OR"
	}
	return "OR " + o.Child.String()
}

// Xor is a skeleton boolean connective, see And.
type Xor struct{ Child Node }

func (x *Xor) String() string {
	if x.Child == nil {
		return "XOR"
	}
	return "XOR " + x.Child.String()
}

// Not negates the condition that follows it.
type Not struct{ Child Node }

func (n *Not) String() string {
	return "NOT " + n.Child.String()
}

// Exists wraps a subselect. The engine plans and evaluates it on its own,
// so it cannot refer to the outer query's tables.
type Exists struct{ Sub *SelectStatement }

func (e *Exists) String() string {
	return "EXISTS (" + e.Sub.String() + ")"
}

// Group is a parenthesized sub-condition list. This is the redesigned
// behavior for spec.md §9's flagged LPAREN handling: the source discards a
// parenthesized condition, this implementation actually parses one.
type Group struct{ Conditions []Node }

func (g *Group) String() string {
	parts := make([]string, len(g.Conditions))
	for i, c := range g.Conditions {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// JoinKind enumerates the supported join forms.
type JoinKind int

const (
	InnerJoin JoinKind = iota + 1
	LeftOuterJoin
	RightOuterJoin
	// CrossComma represents a table introduced by a comma in the FROM list
	// rather than an explicit JOIN keyword.
	CrossComma
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "JOIN"
	case LeftOuterJoin:
		return "LEFT JOIN"
	case RightOuterJoin:
		return "RIGHT JOIN"
	case CrossComma:
		return ","
	default:
		return "JOIN"
	}
}

// JoinClause is one joined table within a TableRef's FROM entry.
type JoinClause struct {
	Kind      JoinKind
	TableName string
	Alias     string
	On        []Node
}

// TableRef is a single FROM-list entry together with the joins chained off
// it.
type TableRef struct {
	Name  string
	Alias string
	Joins []JoinClause
}

// ProjectionItem is a Node from the closed set {*FieldRef, *CharacterLiteral,
// *NumericLiteral, Asterisk} appearing in a SELECT list.
type ProjectionItem = Node

// SelectStatement is the root of a parsed SELECT.
type SelectStatement struct {
	Distinct   bool
	Projection []ProjectionItem
	From       []TableRef
	Where      []Node
}

func (s *SelectStatement) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	parts := make([]string, len(s.Projection))
	for i, p := range s.Projection {
		parts[i] = p.String()
	}
	b.WriteString(strings.Join(parts, ", "))
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		fparts := make([]string, len(s.From))
		for i, f := range s.From {
			fparts[i] = f.Name
			if f.Alias != "" && f.Alias != f.Name {
				fparts[i] += " " + f.Alias
			}
		}
		b.WriteString(strings.Join(fparts, ", "))
	}
	if len(s.Where) > 0 {
		b.WriteString(" WHERE ")
		wparts := make([]string, len(s.Where))
		for i, w := range s.Where {
			wparts[i] = w.String()
		}
		b.WriteString(strings.Join(wparts, " "))
	}
	return b.String()
}
