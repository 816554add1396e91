package model

import "fmt"

// Side is the half of the timeline an entry is drawn on.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// ParseSide validates a side name.
func ParseSide(s string) (Side, error) {
	switch v := Side(s); v {
	case SideLeft, SideRight:
		return v, nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// Pattern names a side alternation scheme.
type Pattern string

const (
	PatternDefault  Pattern = "default"
	PatternReverse  Pattern = "reverse"
	PatternAllLeft  Pattern = "all-left"
	PatternAllRight Pattern = "all-right"
	PatternCustom   Pattern = "custom"
)

// ParsePattern validates a pattern name. The empty string means PatternDefault.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(s); p {
	case "":
		return PatternDefault, nil
	case PatternDefault, PatternReverse, PatternAllLeft, PatternAllRight, PatternCustom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown pattern %q", s)
	}
}
