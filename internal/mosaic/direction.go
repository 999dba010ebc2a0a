package mosaic

import (
	"fmt"
	"strings"
)

// Direction is the axis children of a container are laid out along.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Toggle returns the other axis.
func (d Direction) Toggle() Direction {
	if d == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Extent returns the size of r along d.
func (d Direction) Extent(r Rect) int {
	if d == Vertical {
		return r.Height()
	}
	return r.Width()
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	default:
		return Horizontal, fmt.Errorf("invalid direction: %q", s)
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
