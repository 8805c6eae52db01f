// Package keypad maps raw front-end input (keyboard keys, button roles,
// chat callback payloads) to calculator tokens.
package keypad

import (
	"strings"

	"go-chi-calculator/internal/calculator"
)

// Button roles, matching the CSS classes used by the web keypad.
const (
	RoleDigit     = "digit"
	RoleOperator  = "operator"
	RoleDecimal   = "decimal"
	RoleEquals    = "equals"
	RolePercent   = "percent"
	RoleBackspace = "backspace"
	RoleClear     = "clear-all"
)

// Button is one key of the on-screen keypad. Data is the key name accepted
// by FromKey, used as the callback payload by chat front ends.
type Button struct {
	Label string
	Role  string
	Data  string
}

// Layout is the keypad shown by the terminal and Telegram front ends.
var Layout = [][]Button{
	{
		{Label: "AC", Role: RoleClear, Data: "Escape"},
		{Label: "⌫", Role: RoleBackspace, Data: "Backspace"},
		{Label: "%", Role: RolePercent, Data: "%"},
		{Label: "÷", Role: RoleOperator, Data: "/"},
	},
	{
		{Label: "7", Role: RoleDigit, Data: "7"},
		{Label: "8", Role: RoleDigit, Data: "8"},
		{Label: "9", Role: RoleDigit, Data: "9"},
		{Label: "×", Role: RoleOperator, Data: "*"},
	},
	{
		{Label: "4", Role: RoleDigit, Data: "4"},
		{Label: "5", Role: RoleDigit, Data: "5"},
		{Label: "6", Role: RoleDigit, Data: "6"},
		{Label: "-", Role: RoleOperator, Data: "-"},
	},
	{
		{Label: "1", Role: RoleDigit, Data: "1"},
		{Label: "2", Role: RoleDigit, Data: "2"},
		{Label: "3", Role: RoleDigit, Data: "3"},
		{Label: "+", Role: RoleOperator, Data: "+"},
	},
	{
		{Label: "0", Role: RoleDigit, Data: "0"},
		{Label: ".", Role: RoleDecimal, Data: "."},
		{Label: "=", Role: RoleEquals, Data: "="},
	},
}

// FromKey maps a keyboard key name to a token. Names are accepted both in
// DOM form (Enter, Backspace, Escape) and terminal form (enter, esc).
func FromKey(key string) (calculator.Token, bool) {
	if len(key) == 1 {
		c := key[0]
		switch {
		case c >= '0' && c <= '9':
			return calculator.DigitToken(c), true
		case c == '+' || c == '-' || c == '*' || c == '/':
			return calculator.OperatorToken(calculator.Operator(c)), true
		case c == '.':
			return calculator.DecimalToken(), true
		case c == '%':
			return calculator.PercentToken(), true
		case c == '=':
			return calculator.EqualsToken(), true
		}
		return calculator.Token{}, false
	}

	switch strings.ToLower(key) {
	case "enter":
		return calculator.EqualsToken(), true
	case "backspace":
		return calculator.BackspaceToken(), true
	case "escape", "esc":
		return calculator.ClearToken(), true
	}
	return calculator.Token{}, false
}

// FromButton maps an activated control to a token by inspecting its role.
// The label supplies the digit or operator for those roles.
func FromButton(role, label string) (calculator.Token, bool) {
	label = strings.TrimSpace(label)

	switch role {
	case RoleDigit:
		if len(label) == 1 && label[0] >= '0' && label[0] <= '9' {
			return calculator.DigitToken(label[0]), true
		}
	case RoleOperator:
		op, err := calculator.ParseOperator(label)
		if err == nil {
			return calculator.OperatorToken(op), true
		}
	case RoleDecimal:
		return calculator.DecimalToken(), true
	case RoleEquals:
		return calculator.EqualsToken(), true
	case RolePercent:
		return calculator.PercentToken(), true
	case RoleBackspace:
		return calculator.BackspaceToken(), true
	case RoleClear:
		return calculator.ClearToken(), true
	}
	return calculator.Token{}, false
}

// SuppressDefault reports whether a front end must swallow the platform's
// default handling of key (form submit on Enter, navigation on Backspace,
// quick-find on '/').
func SuppressDefault(key string) bool {
	switch key {
	case "Enter", "Backspace", "/":
		return true
	}
	return false
}
