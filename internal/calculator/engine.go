package calculator

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrInvalidOperator = errors.New("invalid operator")
	ErrInvalidOperand  = errors.New("invalid operand")
)

// Operator is one of the four arithmetic operators accepted by the keypad.
type Operator byte

const (
	OpNone     Operator = 0
	OpAdd      Operator = '+'
	OpSubtract Operator = '-'
	OpMultiply Operator = '*'
	OpDivide   Operator = '/'
)

// ParseOperator accepts the ASCII operators and the glyphs printed on keypads.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-", "−":
		return OpSubtract, nil
	case "*", "×", "x":
		return OpMultiply, nil
	case "/", "÷":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}

func (op Operator) Valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

func (op Operator) String() string {
	if op == OpNone {
		return ""
	}
	return string(rune(op))
}

// Name is the lowercase operation name used in metrics, spans and routes.
func (op Operator) Name() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "unknown"
}

// ---------------------------------------------------------------------------
// Binary operations
// ---------------------------------------------------------------------------

func Add(a, b float64) float64 { return a + b }

func Subtract(a, b float64) float64 { return a - b }

func Multiply(a, b float64) float64 { return a * b }

func Divide(a, b float64) float64 { return a / b }

// Compute applies op to two already parsed numbers.
func Compute(op Operator, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return Add(a, b), nil
	case OpSubtract:
		return Subtract(a, b), nil
	case OpMultiply:
		return Multiply(a, b), nil
	case OpDivide:
		if b == 0 {
			return 0, fmt.Errorf("%w: %g / %g", ErrDivisionByZero, a, b)
		}
		return Divide(a, b), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, op.String())
}

// Operate parses both operand strings and dispatches to the matching operation.
func Operate(op Operator, rawA, rawB string) (float64, error) {
	if !op.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, op.String())
	}

	a, err := parseOperand(rawA)
	if err != nil {
		return 0, err
	}
	b, err := parseOperand(rawB)
	if err != nil {
		return 0, err
	}

	return Compute(op, a, b)
}

func parseOperand(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperand, raw)
	}
	return v, nil
}
