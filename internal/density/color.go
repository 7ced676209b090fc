package density

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RGBA is a color with straight (non-premultiplied) components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

var _ color.Color = RGBA{}

// RGBA implements color.Color with alpha-premultiplied 16-bit channels.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	alpha := clamp01(c.A)
	r = uint32(clamp01(c.R)*alpha*0xffff + 0.5)
	g = uint32(clamp01(c.G)*alpha*0xffff + 0.5)
	b = uint32(clamp01(c.B)*alpha*0xffff + 0.5)
	a = uint32(alpha*0xffff + 0.5)
	return
}

// Hex formats the color as #rrggbbaa.
func (c RGBA) Hex() string {
	to8 := func(v float64) uint8 { return uint8(math.Round(clamp01(v) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

// ParseHexColor reads #rgb, #rgba, #rrggbb or #rrggbbaa. Alpha defaults
// to opaque.
func ParseHexColor(s string) (RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 || len(h) == 4 {
		short := h
		h = ""
		for i := 0; i < len(short); i++ {
			h += string([]byte{short[i], short[i]})
		}
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return RGBA{}, fmt.Errorf("invalid color %q: want #rgb, #rgba, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGBA{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// ColorKey pins an RGB color at Time in [0, 1]. Alpha is ignored.
type ColorKey struct {
	Color RGBA
	Time  float64
}

// AlphaKey pins an opacity at Time in [0, 1].
type AlphaKey struct {
	Alpha float64
	Time  float64
}

// Gradient blends color and alpha keys independently and linearly.
type Gradient struct {
	colors []ColorKey
	alphas []AlphaKey
}

// NewGradient returns the per-trajectory density gradient: base color
// throughout, alpha rising from fully transparent at 0 to opaque at 1.
func NewGradient(base RGBA) Gradient {
	return NewKeyedGradient(
		[]ColorKey{{Color: base, Time: 0}, {Color: base, Time: 1}},
		[]AlphaKey{{Alpha: 0, Time: 0}, {Alpha: 1, Time: 1}},
	)
}

// NewKeyedGradient builds a gradient from arbitrary keys. Keys are sorted
// by time; at least one key of each kind is required for a non-zero result.
func NewKeyedGradient(colors []ColorKey, alphas []AlphaKey) Gradient {
	g := Gradient{
		colors: append([]ColorKey(nil), colors...),
		alphas: append([]AlphaKey(nil), alphas...),
	}
	sort.SliceStable(g.colors, func(i, j int) bool { return g.colors[i].Time < g.colors[j].Time })
	sort.SliceStable(g.alphas, func(i, j int) bool { return g.alphas[i].Time < g.alphas[j].Time })
	return g
}

// Evaluate samples the gradient at t, clamped to [0, 1].
func (g Gradient) Evaluate(t float64) RGBA {
	t = clamp01(t)
	var out RGBA
	if n := len(g.colors); n > 0 {
		lo, hi, f := segment(n, func(i int) float64 { return g.colors[i].Time }, t)
		a, b := g.colors[lo].Color, g.colors[hi].Color
		out.R = lerp(a.R, b.R, f)
		out.G = lerp(a.G, b.G, f)
		out.B = lerp(a.B, b.B, f)
	}
	if n := len(g.alphas); n > 0 {
		lo, hi, f := segment(n, func(i int) float64 { return g.alphas[i].Time }, t)
		out.A = lerp(g.alphas[lo].Alpha, g.alphas[hi].Alpha, f)
	}
	return out
}

// segment finds the keys bracketing t and the blend fraction between them.
// Before the first key or after the last the nearest key is held.
func segment(n int, at func(int) float64, t float64) (lo, hi int, f float64) {
	if t <= at(0) {
		return 0, 0, 0
	}
	if t >= at(n-1) {
		return n - 1, n - 1, 0
	}
	hi = sort.Search(n, func(i int) bool { return at(i) >= t })
	lo = hi - 1
	span := at(hi) - at(lo)
	if span <= 0 {
		return hi, hi, 0
	}
	return lo, hi, (t - at(lo)) / span
}

func lerp(a, b, f float64) float64 { return a + (b-a)*f }

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
