package calculator

import "strings"

const negativeMarker = "-"

// operand is the text of one number as the user is typing it. It holds at
// most one decimal point, an optional leading minus and at most max bytes.
// Results projected into the slot via project are exempt from the length
// bound and are edited only as a whole: backspace erases them entirely and
// typing more digits or a decimal point onto them is refused.
type operand struct {
	text   string
	max    int
	result bool
}

func (o *operand) String() string { return o.text }

func (o *operand) empty() bool { return o.text == "" }

// pendingNegative reports the lone "-" typed before a negative number's digits.
func (o *operand) pendingNegative() bool { return o.text == negativeMarker }

// complete reports whether the slot holds something that parses as a number.
func (o *operand) complete() bool { return !o.empty() && !o.pendingNegative() }

func (o *operand) hasDecimal() bool { return strings.Contains(o.text, ".") }

func (o *operand) full() bool { return o.max > 0 && len(o.text) >= o.max }

func (o *operand) appendDigit(d byte) bool {
	if d < '0' || d > '9' || o.result || o.full() {
		return false
	}
	o.text += string(d)
	return true
}

func (o *operand) appendDecimal() bool {
	if o.result || o.hasDecimal() {
		return false
	}

	switch {
	case o.empty():
		o.text = "0."
	case o.pendingNegative():
		o.text = "-0."
	default:
		if o.full() {
			return false
		}
		o.text += "."
	}
	return true
}

func (o *operand) beginNegative() { o.set(negativeMarker) }

func (o *operand) backspace() bool {
	if o.empty() {
		return false
	}
	if o.result {
		o.clear()
		return true
	}
	o.text = o.text[:len(o.text)-1]
	return true
}

// set replaces the slot with typed text.
func (o *operand) set(text string) { o.text, o.result = text, false }

// project replaces the slot with a formatted result.
func (o *operand) project(text string) { o.text, o.result = text, true }

func (o *operand) clear() { o.text, o.result = "", false }
