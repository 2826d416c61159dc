package model

import "fmt"

// InsufficientDataError means the series is shorter than the required warm-up.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d candles, need at least %d", e.Have, e.Need)
}

// InvalidParameterError is returned when a run parameter is out of range.
type InvalidParameterError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// MalformedCandleError locates a candle with a missing or non-finite field.
type MalformedCandleError struct {
	Index int
	Field string
	Value float64
}

func (e *MalformedCandleError) Error() string {
	return fmt.Sprintf("malformed candle at index %d: %s=%v", e.Index, e.Field, e.Value)
}
