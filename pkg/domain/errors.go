package domain

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned when input text could not be recognized as math.
var ErrNoMatch = errors.New("unrecognized math")

// ErrProfileNotFound is returned when no preferences were persisted for a profile.
var ErrProfileNotFound = errors.New("profile not found")

// ErrUnknownPreference is returned for a key outside the fixed preference set.
var ErrUnknownPreference = errors.New("unknown preference")

// ErrInvalidPreferenceValue is returned for a value outside a preference's domain.
var ErrInvalidPreferenceValue = errors.New("invalid preference value")

// ErrMalformedEntry marks a persisted preference entry without a key=value shape.
var ErrMalformedEntry = errors.New("malformed preference entry")

// ErrNoMath is returned when navigation is attempted before any math was entered.
var ErrNoMath = errors.New("no math to navigate")

// UnrecognizedMathMessage is shown instead of typeset output when input does not normalize.
const UnrecognizedMathMessage = "Unrecognized Math -- use $...$ for TeX, `...` for ASCIIMath, or enter MathML"

// ConversionError is returned when the accessibility engine rejects a conversion
// or a markup registration.
type ConversionError struct {
	Stage string // "convert" or "register"
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// PreferenceError is returned when a preference change is rejected, either by
// validation or by the engine. The prior value is always retained.
type PreferenceError struct {
	Key   PreferenceKey
	Value string
	Err   error
}

func (e *PreferenceError) Error() string {
	return fmt.Sprintf("preference %s=%q rejected: %v", e.Key, e.Value, e.Err)
}

func (e *PreferenceError) Unwrap() error { return e.Err }

// NavError is returned when the engine refuses a navigation move.
type NavError struct {
	Key KeyEvent
	Err error
}

func (e *NavError) Error() string {
	return fmt.Sprintf("Error in navigation: %v", e.Err)
}

func (e *NavError) Unwrap() error { return e.Err }

// DisplayError is returned when the typesetter could not attach output to the
// display surface. Hosts treat it as fatal.
type DisplayError struct {
	Err error
}

func (e *DisplayError) Error() string {
	return fmt.Sprintf("display surface failure: %v", e.Err)
}

func (e *DisplayError) Unwrap() error { return e.Err }
