// Package punch is the attendance core: the punch type state
// machine, the last-punch tracker, the working-day gate, and the
// decision engine that drives vendor clock-in writes.
package punch

import (
	"fmt"
)

// Type is a punch type. The numeric values are the vendor's
// originalPunchStatus encoding.
type Type int

const (
	In   Type = 0
	Out  Type = 1
	None Type = 2
)

// Unspecified asks the engine to derive the type as the opposite
// of the last recorded state.
const Unspecified Type = -1

// Message is the display string used in responses and state
// records.
func (t Type) Message() string {
	switch t {
	case In:
		return "Clocked In"
	case Out:
		return "Clocked Out"
	case None:
		return "No Punch"
	}
	return "Unknown"
}

// Opposite is total: a user who is clocked in clocks out, a user
// who is clocked out clocks in, and a user who has never punched
// clocks in.
func (t Type) Opposite() Type {
	switch t {
	case In:
		return Out
	case Out:
		return In
	}
	return In
}

// ParseType reads the wire encoding used in URLs: 0 for clock-in,
// 1 for clock-out.
func ParseType(s string) (Type, error) {
	switch s {
	case "0":
		return In, nil
	case "1":
		return Out, nil
	}
	return None, fmt.Errorf("invalid punch type %q", s)
}

// Result is the outcome of a punch decision. Rejections (already
// punched, holiday, leave) are results, not errors.
type Result struct {
	Status  int
	Message string
}
