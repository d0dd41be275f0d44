package domain

import (
	"fmt"
	"math"
	"strings"
)

// PutCall identifies the side of a vanilla option.
type PutCall string

const (
	Call PutCall = "CALL"
	Put  PutCall = "PUT"
)

// ParsePutCall converts "call"/"c"/"put"/"p" (any case) to a PutCall.
func ParsePutCall(s string) (PutCall, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "C":
		return Call, nil
	case "PUT", "P":
		return Put, nil
	default:
		return "", fmt.Errorf("unknown option side %q: %w", s, ErrInvalidInput)
	}
}

// IsCall reports whether the side is Call.
func (pc PutCall) IsCall() bool {
	return pc == Call
}

// ExerciseStyle controls whether the option may be exercised before expiry.
type ExerciseStyle string

const (
	American ExerciseStyle = "AMERICAN"
	European ExerciseStyle = "EUROPEAN"
)

// ParseExerciseStyle converts "american"/"european" (any case) to an ExerciseStyle.
// An empty string yields American.
func ParseExerciseStyle(s string) (ExerciseStyle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AMERICAN", "A":
		return American, nil
	case "EUROPEAN", "E":
		return European, nil
	default:
		return "", fmt.Errorf("unknown exercise style %q: %w", s, ErrInvalidInput)
	}
}

// OptionTerms are the contractual terms of an exchange-traded option position.
// Values are immutable once built with NewOptionTerms.
type OptionTerms struct {
	quantity   float64 // signed: positive long, negative short
	multiplier float64 // contract size
	strike     float64
	expiry     float64 // time to expiry in years
	side       PutCall
	style      ExerciseStyle
}

// NewOptionTerms validates and builds option terms.
func NewOptionTerms(quantity, multiplier, strike, expiry float64, side PutCall, style ExerciseStyle) (OptionTerms, error) {
	var errs []string
	if !isFinite(quantity) {
		errs = append(errs, fmt.Sprintf("quantity %v is not finite", quantity))
	}
	if !isFinite(multiplier) || multiplier == 0 {
		errs = append(errs, fmt.Sprintf("multiplier %v must be finite and non-zero", multiplier))
	}
	if !isFinite(strike) || strike <= 0 {
		errs = append(errs, fmt.Sprintf("strike %v must be positive", strike))
	}
	if !isFinite(expiry) || expiry < 0 {
		errs = append(errs, fmt.Sprintf("expiry %v must be non-negative", expiry))
	}
	if side != Call && side != Put {
		errs = append(errs, fmt.Sprintf("side %q must be CALL or PUT", side))
	}
	if style == "" {
		style = American
	}
	if style != American && style != European {
		errs = append(errs, fmt.Sprintf("style %q must be AMERICAN or EUROPEAN", style))
	}
	if len(errs) > 0 {
		return OptionTerms{}, fmt.Errorf("%s: %w", strings.Join(errs, "; "), ErrInvalidInput)
	}
	return OptionTerms{
		quantity:   quantity,
		multiplier: multiplier,
		strike:     strike,
		expiry:     expiry,
		side:       side,
		style:      style,
	}, nil
}

func (t OptionTerms) Quantity() float64 { return t.quantity }
func (t OptionTerms) Multiplier() float64 { return t.multiplier }
func (t OptionTerms) Strike() float64 { return t.strike }
func (t OptionTerms) Expiry() float64 { return t.expiry }
func (t OptionTerms) Side() PutCall { return t.side }
func (t OptionTerms) Style() ExerciseStyle { return t.style }
func (t OptionTerms) IsAmerican() bool { return t.style == American }
func (t OptionTerms) Notional() float64 { return t.quantity * t.multiplier }

// WithStyle returns a copy of the terms with a different exercise style.
func (t OptionTerms) WithStyle(style ExerciseStyle) OptionTerms {
	t.style = style
	return t
}

// Intrinsic returns the immediate exercise value per unit at the given spot.
func (t OptionTerms) Intrinsic(spot float64) float64 {
	if t.side == Call {
		return math.Max(spot-t.strike, 0)
	}
	return math.Max(t.strike-spot, 0)
}

// IsZero reports whether the terms were never built.
func (t OptionTerms) IsZero() bool {
	return t.side == ""
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
