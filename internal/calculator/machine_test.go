package calculator

import (
	"errors"
	"testing"
)

// press converts a compact key script into tokens: digits, + - * /, '.',
// '=', '%', 'B' for backspace and 'C' for clear.
func press(t *testing.T, m *Machine, keys string) Frame {
	t.Helper()

	var last Frame
	for i := 0; i < len(keys); i++ {
		k := keys[i]
		var tok Token
		switch {
		case k >= '0' && k <= '9':
			tok = DigitToken(k)
		case k == '+' || k == '-' || k == '*' || k == '/':
			tok = OperatorToken(Operator(k))
		case k == '.':
			tok = DecimalToken()
		case k == '=':
			tok = EqualsToken()
		case k == '%':
			tok = PercentToken()
		case k == 'B':
			tok = BackspaceToken()
		case k == 'C':
			tok = ClearToken()
		default:
			t.Fatalf("unknown key %q in script", k)
		}
		last = m.Apply(tok)
	}
	return last
}

func assertState(t *testing.T, m *Machine, want State) {
	t.Helper()
	if got := m.Snapshot(); got != want {
		t.Fatalf("expected state %+v, got %+v", want, got)
	}
}

func TestMachineInitialState(t *testing.T) {
	m := NewMachine(DefaultOptions())
	assertState(t, m, State{Phase: PhaseEmpty, Display: "0"})
}

func TestMachineSimpleEquals(t *testing.T) {
	m := NewMachine(DefaultOptions())

	frame := press(t, m, "12+3=")
	if frame.Display != "15" {
		t.Fatalf("expected display %q, got %q", "15", frame.Display)
	}
	assertState(t, m, State{First: "15", Phase: PhaseResultShown, Display: "15"})
}

func TestMachineDisplaysExpressionWhileTyping(t *testing.T) {
	m := NewMachine(DefaultOptions())

	if got := press(t, m, "5").Display; got != "5" {
		t.Fatalf("expected %q, got %q", "5", got)
	}
	if got := press(t, m, "*").Display; got != "5 *" {
		t.Fatalf("expected %q, got %q", "5 *", got)
	}
	if got := press(t, m, "4").Display; got != "5 * 4" {
		t.Fatalf("expected %q, got %q", "5 * 4", got)
	}
}

func TestMachineClearIsIdempotent(t *testing.T) {
	once := NewMachine(DefaultOptions())
	press(t, once, "12+3C")

	twice := NewMachine(DefaultOptions())
	press(t, twice, "12+3CC")

	if once.Snapshot() != twice.Snapshot() {
		t.Fatalf("expected identical state, got %+v and %+v", once.Snapshot(), twice.Snapshot())
	}
	assertState(t, twice, State{Phase: PhaseEmpty, Display: "0"})
}

func TestMachineDigitLengthGuard(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "1111111111")
	if got := m.Snapshot().First; got != "1111111" {
		t.Fatalf("expected first slot %q, got %q", "1111111", got)
	}

	frame := press(t, m, "1")
	if frame.Changed {
		t.Fatal("expected digit past the limit to be ignored")
	}

	press(t, m, "+2222222222")
	if got := m.Snapshot().Second; got != "2222222" {
		t.Fatalf("expected second slot %q, got %q", "2222222", got)
	}
}

func TestMachineDigitLengthGuardIsConfigurable(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxInputLength = 3
	m := NewMachine(opts)

	press(t, m, "98765")
	if got := m.Snapshot().First; got != "987" {
		t.Fatalf("expected first slot %q, got %q", "987", got)
	}
}

func TestMachineDecimalGuard(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "..")
	if got := m.Snapshot().First; got != "0." {
		t.Fatalf("expected %q, got %q", "0.", got)
	}

	press(t, m, "5.")
	if got := m.Snapshot().First; got != "0.5" {
		t.Fatalf("expected %q, got %q", "0.5", got)
	}

	press(t, m, "+3..1")
	if got := m.Snapshot().Second; got != "3.1" {
		t.Fatalf("expected %q, got %q", "3.1", got)
	}
}

func TestMachineDecimalSeedsSecondSlot(t *testing.T) {
	m := NewMachine(DefaultOptions())

	frame := press(t, m, "4+.")
	if frame.Display != "4 + 0." {
		t.Fatalf("expected %q, got %q", "4 + 0.", frame.Display)
	}
	if got := m.Phase(); got != PhaseEnteringSecond {
		t.Fatalf("expected phase %s, got %s", PhaseEnteringSecond, got)
	}
}

func TestMachineChainedOperator(t *testing.T) {
	m := NewMachine(DefaultOptions())

	frame := press(t, m, "5+3-")
	if frame.Display != "8 -" {
		t.Fatalf("expected %q, got %q", "8 -", frame.Display)
	}
	assertState(t, m, State{First: "8", Operator: OpSubtract, Phase: PhaseOperatorPending, Display: "8 -"})

	if got := press(t, m, "2=").Display; got != "6" {
		t.Fatalf("expected %q, got %q", "6", got)
	}
}

func TestMachineChainedOperatorRoundsIntermediate(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "2/3*")
	if got := m.Snapshot().First; got != "0.667" {
		t.Fatalf("expected %q, got %q", "0.667", got)
	}
}

func TestMachineDivisionByZeroOnEquals(t *testing.T) {
	var rendered []string
	opts := DefaultOptions()
	opts.Renderer = RendererFunc(func(s string) { rendered = append(rendered, s) })
	m := NewMachine(opts)

	frame := press(t, m, "6/0=")
	if frame.Message != DefaultDivisionByZeroMessage {
		t.Fatalf("expected message %q, got %q", DefaultDivisionByZeroMessage, frame.Message)
	}
	if frame.Display != "0" {
		t.Fatalf("expected display %q, got %q", "0", frame.Display)
	}
	assertState(t, m, State{Phase: PhaseEmpty, Display: "0"})

	tail := rendered[len(rendered)-2:]
	if tail[0] != DefaultDivisionByZeroMessage || tail[1] != "0" {
		t.Fatalf("expected message then reset display, got %q", tail)
	}
}

func TestMachineDivisionByZeroWhileChaining(t *testing.T) {
	m := NewMachine(DefaultOptions())

	frame := press(t, m, "6/0+")
	if frame.Message != DefaultDivisionByZeroMessage {
		t.Fatalf("expected message %q, got %q", DefaultDivisionByZeroMessage, frame.Message)
	}
	assertState(t, m, State{Phase: PhaseEmpty, Display: "0"})
}

func TestMachineNegativeFirstOperand(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "-5")
	if got := m.Snapshot().First; got != "-5" {
		t.Fatalf("expected %q, got %q", "-5", got)
	}

	frame := press(t, m, "=")
	if frame.Changed {
		t.Fatal("expected equals without operator to be ignored")
	}
	assertState(t, m, State{First: "-5", Phase: PhaseEnteringFirst, Display: "-5"})

	if got := press(t, m, "*2=").Display; got != "-10" {
		t.Fatalf("expected %q, got %q", "-10", got)
	}
}

func TestMachineOperatorAfterLoneMinusIsIgnored(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "-")
	for _, k := range []string{"+", "-", "*", "/"} {
		if press(t, m, k).Changed {
			t.Fatalf("expected %s after lone minus to be ignored", k)
		}
	}
	if got := press(t, m, ".").Display; got != "-0." {
		t.Fatalf("expected %q, got %q", "-0.", got)
	}
}

func TestMachineOperatorBeforeDigitsIsIgnored(t *testing.T) {
	m := NewMachine(DefaultOptions())

	for _, k := range []string{"+", "*", "/"} {
		if press(t, m, k).Changed {
			t.Fatalf("expected %s on empty machine to be ignored", k)
		}
	}
	assertState(t, m, State{Phase: PhaseEmpty, Display: "0"})
}

func TestMachineOperatorReplacesPendingOperator(t *testing.T) {
	m := NewMachine(DefaultOptions())

	frame := press(t, m, "9+*")
	if frame.Display != "9 *" {
		t.Fatalf("expected %q, got %q", "9 *", frame.Display)
	}
	if got := m.Snapshot().Operator; got != OpMultiply {
		t.Fatalf("expected operator %q, got %q", OpMultiply, got)
	}
}

func TestMachineDigitAfterResultStartsFresh(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "2+2=")
	frame := press(t, m, "7")
	if frame.Display != "7" {
		t.Fatalf("expected %q, got %q", "7", frame.Display)
	}
	assertState(t, m, State{First: "7", Phase: PhaseEnteringFirst, Display: "7"})
}

func TestMachineDecimalAfterResultStartsFresh(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "2+2=")
	if got := press(t, m, ".").Display; got != "0." {
		t.Fatalf("expected %q, got %q", "0.", got)
	}
	assertState(t, m, State{First: "0.", Phase: PhaseEnteringFirst, Display: "0."})
}

func TestMachineOperatorAfterResultContinues(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "2+2=")
	if got := press(t, m, "*3=").Display; got != "12" {
		t.Fatalf("expected %q, got %q", "12", got)
	}
}

func TestMachineBackspaceAfterResultResets(t *testing.T) {
	m := NewMachine(DefaultOptions())

	press(t, m, "7+2=")
	frame := press(t, m, "B")
	if frame.Display != "0" {
		t.Fatalf("expected %q, got %q", "0", frame.Display)
	}
	assertState(t, m, State{Phase: PhaseEmpty, Display: "0"})
}

func TestMachineBackspaceEditsActiveSlot(t *testing.T) {
	m := NewMachine(DefaultOptions())

	if got := press(t, m, "123B").Display; got != "12" {
		t.Fatalf("expected %q, got %q", "12", got)
	}
	if got := press(t, m, "BB").Display; got != "0" {
		t.Fatalf("expected %q, got %q", "0", got)
	}
	if got := m.Phase(); got != PhaseEmpty {
		t.Fatalf("expected phase %s, got %s", PhaseEmpty, got)
	}
	if press(t, m, "B").Changed {
		t.Fatal("expected backspace on empty machine to be ignored")
	}

	if got := press(t, m, "4+56B").Display; got != "4 + 5" {
		t.Fatalf("expected %q, got %q", "4 + 5", got)
	}
	if got := press(t, m, "B").Display; got != "4 +" {
		t.Fatalf("expected %q, got %q", "4 +", got)
	}
	if got := press(t, m, "B").Display; got != "4" {
		t.Fatalf("expected %q, got %q", "4", got)
	}
	assertState(t, m, State{First: "4", Phase: PhaseEnteringFirst, Display: "4"})
}

func TestMachineBackspaceErasesProjectedResultWhole(t *testing.T) {
	m := NewMachine(DefaultOptions())

	if got := press(t, m, "9999999*9999999=").Display; got != "1.00e+14" {
		t.Fatalf("expected %q, got %q", "1.00e+14", got)
	}
	if got := press(t, m, "+B").Display; got != "1.00e+14" {
		t.Fatalf("expected operator withdrawn, got %q", got)
	}

	// Appending to a result would change its value, so it is refused.
	if press(t, m, "5").Changed || press(t, m, ".").Changed {
		t.Fatal("expected typing onto a result to be ignored")
	}

	frame := press(t, m, "B")
	if frame.Display != "0" || frame.Message != "" {
		t.Fatalf("expected result erased without message, got %+v", frame)
	}
	assertState(t, m, State{Phase: PhaseEmpty, Display: "0"})

	for _, k := range []string{"B", "%", "=", "+"} {
		if frame := press(t, m, k); frame.Message != "" {
			t.Fatalf("expected %q to be absorbed silently, got message %q", k, frame.Message)
		}
	}
}

func TestMachineBackspaceErasesPercentResultWhole(t *testing.T) {
	m := NewMachine(DefaultOptions())

	if got := press(t, m, "200+15%").Display; got != "200 + 30" {
		t.Fatalf("expected %q, got %q", "200 + 30", got)
	}
	if got := press(t, m, "B").Display; got != "200 +" {
		t.Fatalf("expected %q, got %q", "200 +", got)
	}
	if got := press(t, m, "4=").Display; got != "204" {
		t.Fatalf("expected %q, got %q", "204", got)
	}
}

func TestMachinePercentOfFirstOperand(t *testing.T) {
	m := NewMachine(DefaultOptions())

	if got := press(t, m, "50%").Display; got != "0.5" {
		t.Fatalf("expected %q, got %q", "0.5", got)
	}
	if got := m.Phase(); got != PhaseEnteringFirst {
		t.Fatalf("expected phase %s, got %s", PhaseEnteringFirst, got)
	}
}

func TestMachinePercentOfTotal(t *testing.T) {
	m := NewMachine(DefaultOptions())

	if got := press(t, m, "200+10%").Display; got != "200 + 20" {
		t.Fatalf("expected %q, got %q", "200 + 20", got)
	}
	if got := press(t, m, "=").Display; got != "220" {
		t.Fatalf("expected %q, got %q", "220", got)
	}
}

func TestMachinePercentIgnoredWithoutOperand(t *testing.T) {
	m := NewMachine(DefaultOptions())

	if press(t, m, "%").Changed {
		t.Fatal("expected percent on empty machine to be ignored")
	}
	if press(t, m, "8+%").Changed {
		t.Fatal("expected percent with empty second slot to be ignored")
	}
}

func TestMachineOverflowShowsErrorAndResets(t *testing.T) {
	opts := DefaultOptions()
	m := NewMachine(opts)

	// 9999999 squared repeatedly overflows to +Inf.
	press(t, m, "9999999*")
	var frame Frame
	for i := 0; i < 60 && frame.Message == ""; i++ {
		frame = press(t, m, "9999999*")
	}
	if frame.Message != DefaultErrorMessage {
		t.Fatalf("expected message %q, got %q", DefaultErrorMessage, frame.Message)
	}
	assertState(t, m, State{Phase: PhaseEmpty, Display: "0"})
}

func TestMachineIgnoresMalformedDigit(t *testing.T) {
	m := NewMachine(DefaultOptions())
	if m.Apply(DigitToken('x')).Changed {
		t.Fatal("expected non-digit to be ignored")
	}
	if m.Apply(Token{}).Changed {
		t.Fatal("expected zero token to be ignored")
	}
}

func TestMachineInvalidOperatorPanics(t *testing.T) {
	m := NewMachine(DefaultOptions())
	press(t, m, "1")

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvalidOperator) {
			t.Fatalf("expected ErrInvalidOperator panic, got %v", r)
		}
	}()
	m.Apply(OperatorToken(Operator('^')))
}

func TestMachineRendererSkipsIgnoredInputs(t *testing.T) {
	count := 0
	opts := DefaultOptions()
	opts.Renderer = RendererFunc(func(string) { count++ })
	m := NewMachine(opts)

	press(t, m, "+*")
	if count != 0 {
		t.Fatalf("expected no renders, got %d", count)
	}
	press(t, m, "1+")
	if count != 2 {
		t.Fatalf("expected 2 renders, got %d", count)
	}
}
