// parser is a recursive-descent consumer of the scanner's token stream,
// producing a typed ast.SelectStatement. It holds a single lookahead token
// in its state, advancing past consumed tokens with expect, the same
// advance-and-check shape the teacher's compiler.parser uses.
//
// The condition list stays flat: And/Or/Xor/Not nodes are emitted as
// skeletons in source order rather than reshaped into a precedence tree
// here (spec.md §4.2's open design note, model (a)). LPAREN inside a
// condition list parses a real nested ast.Group instead of being silently
// discarded — the source's behavior there is flagged as a likely bug and
// is not reproduced.
package parser

import (
	"github.com/pxsql/pxsql/ast"
	"github.com/pxsql/pxsql/pxerr"
	"github.com/pxsql/pxsql/scan"
	"github.com/pxsql/pxsql/token"
)

// Parser consumes a token stream and produces a statement tree.
type Parser struct {
	scanner *scan.Scanner
	cur     token.Token
	has     bool
}

// New returns a parser over sql.
func New(sql string) *Parser {
	return &Parser{scanner: scan.New(sql)}
}

// Parse parses the source text and returns its statements. In practice
// this is always exactly one SelectStatement; a non-SELECT leading token
// fails with UnsupportedOperation, per spec.md §4.2's error policy.
func (p *Parser) Parse() ([]*ast.SelectStatement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if !p.has {
		return nil, pxerr.New(pxerr.InvalidSQL, "empty statement")
	}
	if p.cur.Kind != token.Select {
		return nil, pxerr.New(pxerr.UnsupportedOperation, "unsupported statement starting with %q", p.cur.Lexeme)
	}
	stmt, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	if p.has && p.cur.Kind == token.Semicolon {
		if err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
	}
	if p.has {
		return nil, pxerr.New(pxerr.InvalidSQL, "unexpected trailing input at %q", p.cur.Lexeme)
	}
	return []*ast.SelectStatement{stmt}, nil
}

func (p *Parser) advance() error {
	if !p.scanner.HasNext() {
		p.has = false
		return nil
	}
	t, err := p.scanner.Next()
	if err != nil {
		return err
	}
	p.cur, p.has = t, true
	return nil
}

// expect consumes the current token if it matches one of kinds, advancing
// to the next. An unmatched or missing token fails with InvalidSQL.
func (p *Parser) expect(kinds ...token.Kind) error {
	if !p.has {
		return pxerr.New(pxerr.InvalidSQL, "unexpected end of input")
	}
	matched := false
	for _, k := range kinds {
		if p.cur.Kind == k {
			matched = true
			break
		}
	}
	if !matched {
		return pxerr.New(pxerr.InvalidSQL, "unexpected token %q", p.cur.Lexeme)
	}
	return p.advance()
}

func (p *Parser) parseSelect() (*ast.SelectStatement, error) {
	stmt := &ast.SelectStatement{}
	if err := p.expect(token.Select); err != nil {
		return nil, err
	}
	if p.has && p.cur.Kind == token.Distinct {
		stmt.Distinct = true
		if err := p.expect(token.Distinct); err != nil {
			return nil, err
		}
	}
	projection, err := p.parseProjection()
	if err != nil {
		return nil, err
	}
	stmt.Projection = projection
	if !p.has || p.cur.Kind != token.From {
		return nil, pxerr.New(pxerr.InvalidSQL, "FROM expected")
	}
	from, where, err := p.parseFrom()
	if err != nil {
		return nil, err
	}
	stmt.From = from
	stmt.Where = where
	return stmt, nil
}

func (p *Parser) parseProjection() ([]ast.ProjectionItem, error) {
	items := []ast.ProjectionItem{}
	first := true
	for p.has && p.cur.Kind != token.From {
		if p.cur.Kind == token.Distinct {
			return nil, pxerr.New(pxerr.InvalidSQL, "DISTINCT only allowed at the start of the projection")
		}
		if !first {
			if err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		item, err := p.parseProjectionItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		first = false
	}
	if len(items) == 0 {
		return nil, pxerr.New(pxerr.InvalidSQL, "expected a projection")
	}
	return items, nil
}

func (p *Parser) parseProjectionItem() (ast.ProjectionItem, error) {
	if !p.has {
		return nil, pxerr.New(pxerr.InvalidSQL, "unexpected end of input in projection")
	}
	switch p.cur.Kind {
	case token.Asterisk:
		if err := p.expect(token.Asterisk); err != nil {
			return nil, err
		}
		return ast.Asterisk{}, nil
	case token.Character:
		text := p.cur.Lexeme
		if err := p.expect(token.Character); err != nil {
			return nil, err
		}
		alias, err := p.parseOptionalAlias(text)
		if err != nil {
			return nil, err
		}
		return &ast.CharacterLiteral{Text: text, Alias: alias}, nil
	case token.Numeric:
		text := p.cur.Lexeme
		if err := p.expect(token.Numeric); err != nil {
			return nil, err
		}
		alias, err := p.parseOptionalAlias(text)
		if err != nil {
			return nil, err
		}
		return &ast.NumericLiteral{Text: text, Alias: alias}, nil
	case token.Identifier:
		return p.parseFieldProjection()
	default:
		return nil, pxerr.New(pxerr.InvalidSQL, "unexpected token %q in projection", p.cur.Lexeme)
	}
}

func (p *Parser) parseFieldProjection() (*ast.FieldRef, error) {
	name := p.cur.Lexeme
	if err := p.expect(token.Identifier); err != nil {
		return nil, err
	}
	var tableAlias *string
	if p.has && p.cur.Kind == token.Period {
		if err := p.expect(token.Period); err != nil {
			return nil, err
		}
		ta := name
		tableAlias = &ta
		name = p.cur.Lexeme
		if err := p.expect(token.Identifier); err != nil {
			return nil, err
		}
	}
	alias, err := p.parseOptionalAlias(name)
	if err != nil {
		return nil, err
	}
	f := ast.NewFieldRef(tableAlias, name)
	f.Alias = alias
	return f, nil
}

// parseOptionalAlias handles both `AS alias` and the bare-identifier alias
// form, falling back to defaultAlias when neither is present.
func (p *Parser) parseOptionalAlias(defaultAlias string) (string, error) {
	if p.has && p.cur.Kind == token.As {
		if err := p.expect(token.As); err != nil {
			return "", err
		}
		alias := p.cur.Lexeme
		if err := p.expect(token.Identifier, token.Character); err != nil {
			return "", err
		}
		return alias, nil
	}
	if p.has && p.cur.Kind == token.Identifier {
		alias := p.cur.Lexeme
		if err := p.expect(token.Identifier); err != nil {
			return "", err
		}
		return alias, nil
	}
	return defaultAlias, nil
}

func (p *Parser) parseFrom() ([]ast.TableRef, []ast.Node, error) {
	if err := p.expect(token.From); err != nil {
		return nil, nil, err
	}
	tables := []ast.TableRef{}
	first := true
	for p.has && p.cur.Kind != token.Where {
		if !first {
			if p.cur.Kind != token.Comma {
				break
			}
			if err := p.expect(token.Comma); err != nil {
				return nil, nil, err
			}
		}
		if !p.has || p.cur.Kind != token.Identifier {
			break
		}
		tr, err := p.parseTableRef()
		if err != nil {
			return nil, nil, err
		}
		tables = append(tables, *tr)
		first = false
	}
	if len(tables) == 0 {
		return nil, nil, pxerr.New(pxerr.InvalidSQL, "expected a table reference in FROM")
	}
	var where []ast.Node
	if p.has && p.cur.Kind == token.Where {
		if err := p.expect(token.Where); err != nil {
			return nil, nil, err
		}
		w, err := p.parseConditionList()
		if err != nil {
			return nil, nil, err
		}
		where = w
	}
	return tables, where, nil
}

func (p *Parser) parseTableRef() (*ast.TableRef, error) {
	name := p.cur.Lexeme
	if err := p.expect(token.Identifier); err != nil {
		return nil, err
	}
	alias := name
	if p.has && p.cur.Kind == token.As {
		if err := p.expect(token.As); err != nil {
			return nil, err
		}
		alias = p.cur.Lexeme
		if err := p.expect(token.Identifier); err != nil {
			return nil, err
		}
	} else if p.has && p.cur.Kind == token.Identifier {
		alias = p.cur.Lexeme
		if err := p.expect(token.Identifier); err != nil {
			return nil, err
		}
	}
	tr := &ast.TableRef{Name: name, Alias: alias}
	joins, err := p.parseJoins()
	if err != nil {
		return nil, err
	}
	tr.Joins = joins
	return tr, nil
}

func isJoinStart(k token.Kind) bool {
	switch k {
	case token.Left, token.Right, token.Inner, token.Outer, token.Join:
		return true
	default:
		return false
	}
}

func (p *Parser) parseJoins() ([]ast.JoinClause, error) {
	joins := []ast.JoinClause{}
	for p.has && isJoinStart(p.cur.Kind) {
		jc, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		joins = append(joins, *jc)
	}
	return joins, nil
}

func (p *Parser) parseJoin() (*ast.JoinClause, error) {
	kind := ast.InnerJoin
	if p.cur.Kind == token.Left {
		kind = ast.LeftOuterJoin
		if err := p.expect(token.Left); err != nil {
			return nil, err
		}
	} else if p.cur.Kind == token.Right {
		kind = ast.RightOuterJoin
		if err := p.expect(token.Right); err != nil {
			return nil, err
		}
	}
	if p.has && p.cur.Kind == token.Inner {
		if err := p.expect(token.Inner); err != nil {
			return nil, err
		}
	} else if p.has && p.cur.Kind == token.Outer {
		if err := p.expect(token.Outer); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.Join); err != nil {
		return nil, err
	}
	tableName := p.cur.Lexeme
	if err := p.expect(token.Identifier); err != nil {
		return nil, err
	}
	alias := tableName
	if p.has && p.cur.Kind == token.As {
		if err := p.expect(token.As); err != nil {
			return nil, err
		}
		alias = p.cur.Lexeme
		if err := p.expect(token.Identifier); err != nil {
			return nil, err
		}
	} else if p.has && p.cur.Kind != token.On {
		// Alias-without-AS fallback: SQLParser.java's parseJoin consumes a
		// bare identifier here as the alias when it isn't the ON keyword.
		alias = p.cur.Lexeme
		if err := p.expect(token.Identifier); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.On); err != nil {
		return nil, err
	}
	on, err := p.parseConditionList()
	if err != nil {
		return nil, err
	}
	return &ast.JoinClause{Kind: kind, TableName: tableName, Alias: alias, On: on}, nil
}

// atConditionListEnd reports whether the current token closes a condition
// list: spec.md's generic break tokens (comma, right-paren, semicolon)
// plus the keywords that start the next FROM/JOIN/WHERE clause.
func (p *Parser) atConditionListEnd() bool {
	if !p.has {
		return true
	}
	if p.cur.IsConditionBreak() {
		return true
	}
	switch p.cur.Kind {
	case token.From, token.Where, token.Left, token.Right, token.Inner, token.Outer, token.Join:
		return true
	default:
		return false
	}
}

func (p *Parser) parseConditionList() ([]ast.Node, error) {
	conditions := []ast.Node{}
	for !p.atConditionListEnd() {
		c, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, c)
	}
	return conditions, nil
}

func (p *Parser) parseCondition() (ast.Node, error) {
	if !p.has {
		return nil, pxerr.New(pxerr.InvalidSQL, "unexpected end of input in condition")
	}
	switch {
	case p.cur.Kind == token.Not:
		if err := p.expect(token.Not); err != nil {
			return nil, err
		}
		child, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Child: child}, nil
	case p.cur.IsBooleanOperator():
		k := p.cur.Kind
		if err := p.expect(k); err != nil {
			return nil, err
		}
		switch k {
		case token.And:
			return &ast.And{}, nil
		case token.Or:
			return &ast.Or{}, nil
		default:
			return &ast.Xor{}, nil
		}
	case p.cur.Kind == token.LParen:
		if err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		conds, err := p.parseConditionList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &ast.Group{Conditions: conds}, nil
	case p.cur.Kind == token.Exists:
		if err := p.expect(token.Exists); err != nil {
			return nil, err
		}
		if err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &ast.Exists{Sub: sub}, nil
	default:
		return p.parseFieldPred()
	}
}

func (p *Parser) parseFieldPred() (ast.Node, error) {
	field, err := p.parseFieldOperand()
	if err != nil {
		return nil, err
	}
	if !p.has {
		return nil, pxerr.New(pxerr.InvalidSQL, "expected comparison operator after field")
	}
	switch p.cur.Kind {
	case token.Between:
		if err := p.expect(token.Between); err != nil {
			return nil, err
		}
		lo, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.And); err != nil {
			return nil, err
		}
		hi, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		return &ast.Between{Field: field, Low: lo, High: hi}, nil
	case token.Equals:
		if err := p.expect(token.Equals); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		return &ast.Equals{Left: field, Right: rhs}, nil
	case token.NotEquals, token.NotEquals2:
		k := p.cur.Kind
		if err := p.expect(k); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		return &ast.NotEquals{Left: field, Right: rhs}, nil
	case token.Less:
		if err := p.expect(token.Less); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		return &ast.LessThan{Left: field, Right: rhs}, nil
	case token.More:
		if err := p.expect(token.More); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		return &ast.GreaterThan{Left: field, Right: rhs}, nil
	default:
		return nil, pxerr.New(pxerr.InvalidSQL, "invalid operator %q", p.cur.Lexeme)
	}
}

// parseFieldOperand parses the "field" grammar production: a possibly
// table-qualified identifier, or a bare numeric/character literal.
func (p *Parser) parseFieldOperand() (ast.Node, error) {
	if !p.has {
		return nil, pxerr.New(pxerr.InvalidSQL, "unexpected end of input")
	}
	switch p.cur.Kind {
	case token.Identifier:
		name := p.cur.Lexeme
		if err := p.expect(token.Identifier); err != nil {
			return nil, err
		}
		if p.has && p.cur.Kind == token.Period {
			if err := p.expect(token.Period); err != nil {
				return nil, err
			}
			ta := name
			name = p.cur.Lexeme
			if err := p.expect(token.Identifier); err != nil {
				return nil, err
			}
			return ast.NewFieldRef(&ta, name), nil
		}
		return ast.NewFieldRef(nil, name), nil
	case token.Numeric:
		text := p.cur.Lexeme
		if err := p.expect(token.Numeric); err != nil {
			return nil, err
		}
		return &ast.NumericLiteral{Text: text, Alias: text}, nil
	case token.Character:
		text := p.cur.Lexeme
		if err := p.expect(token.Character); err != nil {
			return nil, err
		}
		return &ast.CharacterLiteral{Text: text, Alias: text}, nil
	default:
		return nil, pxerr.New(pxerr.InvalidSQL, "expected field, identifier, or literal but got %q", p.cur.Lexeme)
	}
}
