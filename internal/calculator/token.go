package calculator

import "fmt"

// TokenKind enumerates the logical inputs a keypad can produce.
type TokenKind int

const (
	TokenDigit TokenKind = iota + 1
	TokenOperator
	TokenDecimal
	TokenEquals
	TokenPercent
	TokenBackspace
	TokenClear
)

func (k TokenKind) String() string {
	switch k {
	case TokenDigit:
		return "digit"
	case TokenOperator:
		return "operator"
	case TokenDecimal:
		return "decimal"
	case TokenEquals:
		return "equals"
	case TokenPercent:
		return "percent"
	case TokenBackspace:
		return "backspace"
	case TokenClear:
		return "clear"
	}
	return "unknown"
}

// Token is one normalized input. Digit is set only for TokenDigit and Op
// only for TokenOperator.
type Token struct {
	Kind  TokenKind
	Digit byte
	Op    Operator
}

func DigitToken(d byte) Token { return Token{Kind: TokenDigit, Digit: d} }
func OperatorToken(op Operator) Token { return Token{Kind: TokenOperator, Op: op} }
func DecimalToken() Token { return Token{Kind: TokenDecimal} }
func EqualsToken() Token { return Token{Kind: TokenEquals} }
func PercentToken() Token { return Token{Kind: TokenPercent} }
func BackspaceToken() Token { return Token{Kind: TokenBackspace} }
func ClearToken() Token { return Token{Kind: TokenClear} }

func (t Token) String() string {
	switch t.Kind {
	case TokenDigit:
		return fmt.Sprintf("digit(%c)", t.Digit)
	case TokenOperator:
		return fmt.Sprintf("operator(%s)", t.Op)
	}
	return t.Kind.String()
}
