package calculator

import (
	"errors"
	"testing"
)

func TestOperateMatchesArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		a, b string
		want float64
	}{
		{name: "add", op: OpAdd, a: "2", b: "3", want: 5},
		{name: "subtract", op: OpSubtract, a: "2", b: "3", want: -1},
		{name: "multiply negative", op: OpMultiply, a: "-4", b: "2.5", want: -10},
		{name: "divide", op: OpDivide, a: "9", b: "4", want: 2.25},
		{name: "trailing decimal point", op: OpAdd, a: "1.", b: "0.5", want: 1.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Operate(tc.op, tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %g, got %g", tc.want, got)
			}
		})
	}
}

func TestOperateDivisionByZero(t *testing.T) {
	for _, a := range []string{"0", "6", "-3.5", "0."} {
		t.Run(a, func(t *testing.T) {
			got, err := Operate(OpDivide, a, "0")
			if !errors.Is(err, ErrDivisionByZero) {
				t.Fatalf("expected ErrDivisionByZero, got %v (result %g)", err, got)
			}
		})
	}
}

func TestOperateRejectsUnknownOperator(t *testing.T) {
	_, err := Operate(Operator('%'), "1", "2")
	if !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}
}

func TestOperateRejectsIncompleteOperand(t *testing.T) {
	_, err := Operate(OpAdd, "-", "2")
	if !errors.Is(err, ErrInvalidOperand) {
		t.Fatalf("expected ErrInvalidOperand, got %v", err)
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want Operator
	}{
		{in: "+", want: OpAdd},
		{in: "-", want: OpSubtract},
		{in: "×", want: OpMultiply},
		{in: "÷", want: OpDivide},
		{in: "/", want: OpDivide},
	}

	for _, tc := range tests {
		got, err := ParseOperator(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}

	if _, err := ParseOperator("^"); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator for ^, got %v", err)
	}
}
