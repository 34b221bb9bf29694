package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unit identifies how the distances of a level rule are expressed.
type Unit int

const (
	// UnitPercent expresses distances as a percentage of the entry price
	UnitPercent Unit = iota
	// UnitPips expresses distances in pips (forex pairs)
	UnitPips
	// UnitPoints expresses distances in index points
	UnitPoints
)

// String returns the wire form of the unit
func (u Unit) String() string {
	switch u {
	case UnitPercent:
		return "%"
	case UnitPips:
		return "pips"
	case UnitPoints:
		return "points"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Valid reports whether the unit is one of the known values
func (u Unit) Valid() bool {
	return u == UnitPercent || u == UnitPips || u == UnitPoints
}

// ParseUnit converts a wire form ("%", "pips", "points") into a Unit.
// Unknown forms are a configuration error.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "%", "percent":
		return UnitPercent, nil
	case "pips", "pip":
		return UnitPips, nil
	case "points", "point", "pts":
		return UnitPoints, nil
	}
	return UnitPercent, newConfigError("unit", "unknown unit %q (expected %%, pips or points)", s)
}

// MarshalJSON encodes the unit in its wire form
func (u Unit) MarshalJSON() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("cannot marshal unknown unit %d", int(u))
	}
	return json.Marshal(u.String())
}

// UnmarshalJSON decodes a unit from its wire form
func (u *Unit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUnit(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
