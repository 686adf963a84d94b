package render

import (
	"fmt"
	"image/color"
)

// FontFamily is one of the fixed set of selectable families.
type FontFamily string

const (
	FontSansSerif FontFamily = "sans-serif"
	FontSerif     FontFamily = "serif"
	FontMonospace FontFamily = "monospace"
	FontCursive   FontFamily = "cursive"
)

// FontFamilies lists the selectable families in UI order.
var FontFamilies = []FontFamily{FontSansSerif, FontSerif, FontMonospace, FontCursive}

const (
	MinFontSizePt = 8
	MaxFontSizePt = 24
)

// StyleConfig is a pure value object: changing any field triggers a
// full re-render but never touches selection, markers, or the viewport
// transform.
type StyleConfig struct {
	CountryColor color.RGBA `json:"country_color"`
	CityColor    color.RGBA `json:"city_color"`
	TextColor    color.RGBA `json:"text_color"`
	FontFamily   FontFamily `json:"font_family"`
	FontSizePt   float64    `json:"font_size_pt"`
}

// DefaultStyle returns the initial styling.
func DefaultStyle() StyleConfig {
	return StyleConfig{
		CountryColor: color.RGBA{R: 0xE6, G: 0x39, B: 0x46, A: 0xFF},
		CityColor:    color.RGBA{R: 0x26, G: 0x46, B: 0x53, A: 0xFF},
		TextColor:    color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xFF},
		FontFamily:   FontSansSerif,
		FontSizePt:   12,
	}
}

// Normalized clamps the font size into its bounds and replaces an
// unknown family with the default.
func (s StyleConfig) Normalized() StyleConfig {
	if s.FontSizePt < MinFontSizePt {
		s.FontSizePt = MinFontSizePt
	}
	if s.FontSizePt > MaxFontSizePt {
		s.FontSizePt = MaxFontSizePt
	}
	switch s.FontFamily {
	case FontSansSerif, FontSerif, FontMonospace, FontCursive:
	default:
		s.FontFamily = FontSansSerif
	}
	return s
}

// HexColor formats a color as #RRGGBB for the style panel.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHexColor parses #RGB or #RRGGBB.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xFF}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("bad length %d", len(s))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
