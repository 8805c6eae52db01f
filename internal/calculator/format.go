package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrNotFinite = errors.New("result is not a finite number")

// FormatMode selects how results are rounded before display.
type FormatMode string

const (
	// FormatDecimal rounds to a fixed number of fraction digits.
	FormatDecimal FormatMode = "decimal"
	// FormatSignificant rounds so that the fixed-point rendering fits the display width.
	FormatSignificant FormatMode = "significant"
)

func ParseFormatMode(s string) (FormatMode, error) {
	switch FormatMode(strings.ToLower(strings.TrimSpace(s))) {
	case FormatDecimal, "":
		return FormatDecimal, nil
	case FormatSignificant:
		return FormatSignificant, nil
	}
	return "", fmt.Errorf("unknown format mode %q", s)
}

// Formatter renders arithmetic results for the display. The zero value is
// not useful; use DefaultFormatter or fill every field.
type Formatter struct {
	Mode      FormatMode
	Precision int
	MaxLength int
}

func DefaultFormatter() Formatter {
	return Formatter{
		Mode:      FormatDecimal,
		Precision: 3,
		MaxLength: 10,
	}
}

// Format returns the display string for v. It fails with ErrNotFinite for
// NaN and infinities, which never reach the display as numbers.
func (f Formatter) Format(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w: %g", ErrNotFinite, v)
	}

	var out string
	switch f.Mode {
	case FormatSignificant:
		out = render(roundTo(v, f.significantDecimals(v)))
	default:
		out = render(roundTo(v, f.Precision))
	}

	if f.MaxLength > 0 && len(out) > f.MaxLength {
		out = strconv.FormatFloat(v, 'e', 2, 64)
	}
	return out, nil
}

// significantDecimals is the number of fraction digits left once the sign,
// integer digits and decimal point have taken their share of MaxLength.
func (f Formatter) significantDecimals(v float64) int {
	used := len(strconv.FormatFloat(math.Trunc(math.Abs(v)), 'f', 0, 64)) + 1
	if v < 0 {
		used++
	}
	decimals := f.MaxLength - used
	if decimals < 0 {
		return 0
	}
	return decimals
}

func roundTo(v float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	scaled := v * p
	if math.IsInf(scaled, 0) {
		return v
	}
	return math.Round(scaled) / p
}

func render(v float64) string {
	if v == 0 {
		// drops the sign of negative zero
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
