package physics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadColor indicates text that is not #rrggbb or #aarrggbb.
var ErrBadColor = errors.New("physics: malformed color")

// Color is a packed 0xAARRGGBB value. Physics never reads it.
type Color uint32

const (
	Black    Color = 0xFF000000
	White    Color = 0xFFFFFFFF
	Yellow   Color = 0xFFFFFF00
	DarkGray Color = 0xFF404040
	Red      Color = 0xFFFF0000
	Blue     Color = 0xFF0000FF
	Orange   Color = 0xFFFFC800
	Gray     Color = 0xFF808080
)

func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) Components() (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// Hex drops alpha.
func (c Color) Hex() string {
	r, g, b, _ := c.Components()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Int32 is the signed form used on disk.
func (c Color) Int32() int32 { return int32(c) }

func ColorFromInt32(v int32) Color { return Color(uint32(v)) }

// ParseColor reads #rrggbb (opaque) or #aarrggbb.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	if len(h) == 6 {
		v |= 0xFF000000
	}
	return Color(v), nil
}

// MarshalText writes #rrggbb for opaque colors and #aarrggbb otherwise.
func (c Color) MarshalText() ([]byte, error) {
	if c>>24 == 0xFF {
		return []byte(c.Hex()), nil
	}
	return []byte(fmt.Sprintf("#%08x", uint32(c))), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
