package calculator

import (
	"errors"
	"fmt"
)

const (
	DefaultMaxInputLength        = 7
	DefaultDivisionByZeroMessage = "Don't divide by 0!"
	DefaultErrorMessage          = "Error"
)

// Phase is the stage of the expression currently being entered.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseEnteringFirst
	PhaseOperatorPending
	PhaseEnteringSecond
	PhaseResultShown
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseEnteringFirst:
		return "entering-first"
	case PhaseOperatorPending:
		return "operator-pending"
	case PhaseEnteringSecond:
		return "entering-second"
	case PhaseResultShown:
		return "result-shown"
	}
	return "unknown"
}

// Renderer receives display text after every transition that changes it.
type Renderer interface {
	Render(display string)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(display string)

func (f RendererFunc) Render(display string) { f(display) }

// Options configures a Machine. Zero fields fall back to defaults.
type Options struct {
	MaxInputLength        int
	Formatter             Formatter
	DivisionByZeroMessage string
	ErrorMessage          string
	Renderer              Renderer
}

func DefaultOptions() Options {
	return Options{
		MaxInputLength:        DefaultMaxInputLength,
		Formatter:             DefaultFormatter(),
		DivisionByZeroMessage: DefaultDivisionByZeroMessage,
		ErrorMessage:          DefaultErrorMessage,
	}
}

// Frame is the outcome of applying one token. Message carries the
// user-facing notice shown when an evaluation failed and the session was
// reset. Changed is false when the token did not apply to the current state.
type Frame struct {
	Display string
	Message string
	Changed bool
}

// State is a read-only copy of the machine's data.
type State struct {
	First    string
	Second   string
	Operator Operator
	Phase    Phase
	Display  string
}

// Machine interprets keypad tokens into a running two-operand computation.
// It is not safe for concurrent use; callers sharing a Machine must
// serialize Apply.
type Machine struct {
	opts    Options
	first   operand
	second  operand
	op      Operator
	phase   Phase
	display string
}

func NewMachine(opts Options) *Machine {
	def := DefaultOptions()
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = def.MaxInputLength
	}
	if opts.Formatter == (Formatter{}) {
		opts.Formatter = def.Formatter
	}
	if opts.DivisionByZeroMessage == "" {
		opts.DivisionByZeroMessage = def.DivisionByZeroMessage
	}
	if opts.ErrorMessage == "" {
		opts.ErrorMessage = def.ErrorMessage
	}

	m := &Machine{opts: opts}
	m.first.max = opts.MaxInputLength
	m.second.max = opts.MaxInputLength
	m.reset()
	return m
}

func (m *Machine) Display() string { return m.display }

func (m *Machine) Phase() Phase { return m.phase }

func (m *Machine) Snapshot() State {
	return State{
		First:    m.first.String(),
		Second:   m.second.String(),
		Operator: m.op,
		Phase:    m.phase,
		Display:  m.display,
	}
}

// Apply runs the transition for t. Inputs that do not apply to the current
// state leave it untouched and return a frame with Changed unset.
// An operator token carrying anything but + - * / panics.
func (m *Machine) Apply(t Token) Frame {
	switch t.Kind {
	case TokenDigit:
		return m.digit(t.Digit)
	case TokenOperator:
		return m.operator(t.Op)
	case TokenDecimal:
		return m.decimal()
	case TokenEquals:
		return m.equals()
	case TokenPercent:
		return m.percent()
	case TokenBackspace:
		return m.backspace()
	case TokenClear:
		return m.clear()
	}
	return m.ignore()
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

func (m *Machine) digit(d byte) Frame {
	if d < '0' || d > '9' {
		return m.ignore()
	}
	if m.phase == PhaseResultShown {
		m.reset()
	}

	if !m.active().appendDigit(d) {
		return m.ignore()
	}
	m.settleEntry()
	return m.show(m.expression())
}

func (m *Machine) operator(op Operator) Frame {
	if !op.Valid() {
		panic(fmt.Errorf("%w: %q", ErrInvalidOperator, op.String()))
	}

	if m.phase == PhaseResultShown {
		m.phase = PhaseEnteringFirst
	}

	if op == OpSubtract && m.first.empty() {
		m.first.beginNegative()
		m.phase = PhaseEnteringFirst
		return m.show(m.first.String())
	}

	if !m.first.complete() {
		return m.ignore()
	}

	if m.second.complete() {
		text, err := m.evaluate(m.op, m.first.String(), m.second.String())
		if err != nil {
			return m.fail(err)
		}
		m.first.project(text)
		m.second.clear()
	}

	m.op = op
	m.phase = PhaseOperatorPending
	return m.show(m.expression())
}

func (m *Machine) decimal() Frame {
	if m.phase == PhaseResultShown {
		m.reset()
		m.first.set("0.")
		m.phase = PhaseEnteringFirst
		return m.show(m.first.String())
	}

	if !m.active().appendDecimal() {
		return m.ignore()
	}
	m.settleEntry()
	return m.show(m.expression())
}

func (m *Machine) percent() Frame {
	if m.op == OpNone {
		if !m.first.complete() {
			return m.ignore()
		}
		text, err := m.evaluate(OpDivide, m.first.String(), "100")
		if err != nil {
			return m.fail(err)
		}
		m.first.project(text)
		return m.show(m.expression())
	}

	if !m.second.complete() {
		return m.ignore()
	}

	total, err := parseOperand(m.first.String())
	if err != nil {
		return m.fail(err)
	}
	pct, err := parseOperand(m.second.String())
	if err != nil {
		return m.fail(err)
	}
	text, err := m.opts.Formatter.Format(PercentOf(total, pct))
	if err != nil {
		return m.fail(err)
	}
	m.second.project(text)
	return m.show(m.expression())
}

func (m *Machine) equals() Frame {
	if !m.first.complete() || !m.second.complete() || m.op == OpNone {
		return m.ignore()
	}

	text, err := m.evaluate(m.op, m.first.String(), m.second.String())
	if err != nil {
		return m.fail(err)
	}

	m.first.project(text)
	m.second.clear()
	m.op = OpNone
	m.phase = PhaseResultShown
	return m.show(text)
}

func (m *Machine) backspace() Frame {
	switch m.phase {
	case PhaseResultShown:
		m.reset()
		return m.show(m.display)
	case PhaseOperatorPending:
		m.op = OpNone
		m.phase = PhaseEnteringFirst
		return m.show(m.expression())
	case PhaseEnteringFirst, PhaseEnteringSecond:
		if !m.active().backspace() {
			return m.ignore()
		}
		m.settleEntry()
		return m.show(m.expression())
	}
	return m.ignore()
}

func (m *Machine) clear() Frame {
	m.reset()
	return m.show(m.display)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (m *Machine) reset() {
	m.first.clear()
	m.second.clear()
	m.op = OpNone
	m.phase = PhaseEmpty
	m.display = "0"
}

func (m *Machine) active() *operand {
	if m.op == OpNone {
		return &m.first
	}
	return &m.second
}

// settleEntry recomputes the phase after an operand slot was edited.
func (m *Machine) settleEntry() {
	switch {
	case m.op != OpNone && m.second.empty():
		m.phase = PhaseOperatorPending
	case m.op != OpNone:
		m.phase = PhaseEnteringSecond
	case m.first.empty():
		m.phase = PhaseEmpty
	default:
		m.phase = PhaseEnteringFirst
	}
}

func (m *Machine) evaluate(op Operator, a, b string) (string, error) {
	v, err := Operate(op, a, b)
	if err != nil {
		return "", err
	}
	return m.opts.Formatter.Format(v)
}

// expression renders the slots as the display shows them; an empty slot
// being edited shows as 0.
func (m *Machine) expression() string {
	first := m.first.String()
	if first == "" {
		first = "0"
	}
	if m.op == OpNone {
		return first
	}
	if m.phase == PhaseOperatorPending {
		return first + " " + m.op.String()
	}
	return first + " " + m.op.String() + " " + m.second.String()
}

func (m *Machine) fail(err error) Frame {
	msg := m.opts.ErrorMessage
	if errors.Is(err, ErrDivisionByZero) {
		msg = m.opts.DivisionByZeroMessage
	}

	m.reset()
	if m.opts.Renderer != nil {
		m.opts.Renderer.Render(msg)
		m.opts.Renderer.Render(m.display)
	}
	return Frame{Display: m.display, Message: msg, Changed: true}
}

func (m *Machine) show(display string) Frame {
	m.display = display
	if m.opts.Renderer != nil {
		m.opts.Renderer.Render(display)
	}
	return Frame{Display: display, Changed: true}
}

func (m *Machine) ignore() Frame {
	return Frame{Display: m.display}
}

// PercentOf treats total as a whole and returns pct percent of it.
func PercentOf(total, pct float64) float64 {
	return total * pct / 100
}
