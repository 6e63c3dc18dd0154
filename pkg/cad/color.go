package cad

import (
	"strconv"
	"strings"
)

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading '#' is optional)
// into sRGB components in [0,1].
func ParseHexColor(s string) (r, g, b float64, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	r = float64((v>>16)&0xff) / 255
	g = float64((v>>8)&0xff) / 255
	b = float64(v&0xff) / 255
	return r, g, b, true
}

// NormalizeColor returns the canonical lowercase "#rrggbb" form of a hex
// color, or DefaultColor when s cannot be parsed.
func NormalizeColor(s string) string {
	r, g, b, ok := ParseHexColor(s)
	if !ok {
		return DefaultColor
	}
	to := func(c float64) uint64 { return uint64(c*255 + 0.5) }
	return "#" + hex2(to(r)) + hex2(to(g)) + hex2(to(b))
}

func hex2(v uint64) string {
	s := strconv.FormatUint(v, 16)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}
