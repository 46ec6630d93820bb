package scan

import (
	"reflect"
	"testing"

	"github.com/pxsql/pxsql/token"
)

func lexAll(t *testing.T, sql string) []token.Token {
	t.Helper()
	s := New(sql)
	out := []token.Token{}
	for s.HasNext() {
		tok, err := s.Next()
		if err != nil {
			t.Fatalf("unexpected scan error: %s", err)
		}
		out = append(out, stripPos(tok))
	}
	return out
}

// stripPos zeroes the position so test expectations don't have to track
// byte offsets.
func stripPos(t token.Token) token.Token {
	t.Pos = token.Position{}
	return t
}

func tk(kind token.Kind, lexeme string) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme}
}

func tkDelim(kind token.Kind, lexeme string) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Delimited: true}
}

type tc struct {
	sql      string
	expected []token.Token
}

func TestScanSelect(t *testing.T) {
	cases := []tc{
		{
			sql: "SELECT * FROM foo",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Asterisk, "*"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "foo"),
			},
		},
		{
			sql: "select * from foo",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Asterisk, "*"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "foo"),
			},
		},
		{
			sql: "SELECT AC as 'ACode', State, CITIES FROM AREACODES",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Identifier, "AC"),
				tk(token.As, "AS"),
				tk(token.Character, "ACode"),
				tk(token.Comma, ","),
				tk(token.Identifier, "State"),
				tk(token.Comma, ","),
				tk(token.Identifier, "CITIES"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "AREACODES"),
			},
		},
		{
			sql: "SELECT foo.id FROM foo",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Identifier, "foo"),
				tk(token.Period, "."),
				tk(token.Identifier, "id"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "foo"),
			},
		},
		{
			sql: "SELECT * FROM t1, t2 WHERE t1.id <> t2.id",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Asterisk, "*"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "t1"),
				tk(token.Comma, ","),
				tk(token.Identifier, "t2"),
				tk(token.Where, "WHERE"),
				tk(token.Identifier, "t1"),
				tk(token.Period, "."),
				tk(token.Identifier, "id"),
				tk(token.NotEquals, "<>"),
				tk(token.Identifier, "t2"),
				tk(token.Period, "."),
				tk(token.Identifier, "id"),
			},
		},
		{
			sql: "SELECT * FROM t WHERE a != 1 AND b < 2 OR c > 3",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Asterisk, "*"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "t"),
				tk(token.Where, "WHERE"),
				tk(token.Identifier, "a"),
				tk(token.NotEquals2, "!="),
				tk(token.Numeric, "1"),
				tk(token.And, "AND"),
				tk(token.Identifier, "b"),
				tk(token.Less, "<"),
				tk(token.Numeric, "2"),
				tk(token.Or, "OR"),
				tk(token.Identifier, "c"),
				tk(token.More, ">"),
				tk(token.Numeric, "3"),
			},
		},
		{
			sql: "SELECT 1.5e3, 42",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Numeric, "1.5e3"),
				tk(token.Comma, ","),
				tk(token.Numeric, "42"),
			},
		},
		{
			sql: `SELECT "My Col", [Another Col] FROM t`,
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tkDelim(token.Identifier, "My Col"),
				tk(token.Comma, ","),
				tkDelim(token.Identifier, "Another Col"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "t"),
			},
		},
		{
			sql: `SELECT 'it''s' FROM t`,
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Character, "it's"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "t"),
			},
		},
		{
			sql: "SELECT * FROM t -- trailing comment\nWHERE x = 1",
			expected: []token.Token{
				tk(token.Select, "SELECT"),
				tk(token.Asterisk, "*"),
				tk(token.From, "FROM"),
				tk(token.Identifier, "t"),
				tk(token.Where, "WHERE"),
				tk(token.Identifier, "x"),
				tk(token.Equals, "="),
				tk(token.Numeric, "1"),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.sql, func(t *testing.T) {
			got := lexAll(t, c.sql)
			if !reflect.DeepEqual(got, c.expected) {
				t.Errorf("expected %#v got %#v", c.expected, got)
			}
		})
	}
}

func TestScanErrors(t *testing.T) {
	cases := []string{
		"SELECT 'unterminated",
		`SELECT "unterminated`,
		"SELECT [unterminated",
		"SELECT @",
		"SELECT !",
	}
	for _, sql := range cases {
		t.Run(sql, func(t *testing.T) {
			s := New(sql)
			var lastErr error
			for s.HasNext() {
				_, err := s.Next()
				if err != nil {
					lastErr = err
					break
				}
			}
			if lastErr == nil {
				t.Fatalf("expected a scan error for %q", sql)
			}
		})
	}
}

func TestHasNextFalseAtEnd(t *testing.T) {
	s := New("SELECT 1")
	count := 0
	for s.HasNext() {
		if _, err := s.Next(); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 tokens got %d", count)
	}
	if s.HasNext() {
		t.Fatal("expected HasNext to be false at end of input")
	}
}
