package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// canvas bundles the drawing context with the pen position shared between
// capabilities and the final text draw. gg draws strings at explicit
// coordinates, so the moveto capability records the pen here instead of
// touching the context's path state.
type canvas struct {
	dc   *gg.Context
	penX float64
	penY float64
}

// applyFunc is a registered capability handler. args has already been
// expanded: a sequence value arrives as multiple arguments, a scalar as one.
type applyFunc func(c *canvas, args []any) error

// capabilities is the fixed table of pass-through options. Names map onto
// the drawing backend's context methods; anything not listed here is
// rejected with an UnknownCapabilityError rather than dispatched blindly.
var capabilities = map[string]applyFunc{
	"color":     applyColor,
	"bgcolor":   applyBgColor,
	"moveto":    applyMoveTo,
	"rotate":    applyRotate,
	"translate": applyTranslate,
	"scale":     applyScale,
	"linewidth": applyLineWidth,
	"line":      applyLine,
	"rectangle": applyRectangle,
	"circle":    applyCircle,
}

// CapabilityNames returns the accepted pass-through option names, sorted.
func CapabilityNames() []string {
	names := make([]string, 0, len(capabilities))
	for name := range capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyAll applies every pass-through option to the canvas in sorted key
// order, stopping at the first failure. Sorted order keeps output
// deterministic for identical option sets.
func applyAll(c *canvas, extra map[string]any) error {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := applyCapability(c, key, extra[key]); err != nil {
			return err
		}
	}
	return nil
}

func applyCapability(c *canvas, name string, value any) error {
	fn, ok := capabilities[strings.ToLower(name)]
	if !ok {
		return &UnknownCapabilityError{Name: name}
	}
	var args []any
	if seq, ok := value.([]any); ok {
		args = seq
	} else {
		args = []any{value}
	}
	return fn(c, args)
}

// --- handlers ----------------------------------------------------------------

func applyColor(c *canvas, args []any) error {
	col, err := parseColor("color", args)
	if err != nil {
		return err
	}
	c.dc.SetColor(col.Color())
	return nil
}

func applyBgColor(c *canvas, args []any) error {
	col, err := parseColor("bgcolor", args)
	if err != nil {
		return err
	}
	c.dc.ClearWithColor(col)
	return nil
}

func applyMoveTo(c *canvas, args []any) error {
	xy, err := floatArgs("moveto", args, 2)
	if err != nil {
		return err
	}
	c.penX, c.penY = xy[0], xy[1]
	return nil
}

// rotate takes degrees; the backend wants radians.
func applyRotate(c *canvas, args []any) error {
	deg, err := floatArgs("rotate", args, 1)
	if err != nil {
		return err
	}
	c.dc.Rotate(deg[0] * math.Pi / 180)
	return nil
}

func applyTranslate(c *canvas, args []any) error {
	xy, err := floatArgs("translate", args, 2)
	if err != nil {
		return err
	}
	c.dc.Translate(xy[0], xy[1])
	return nil
}

func applyScale(c *canvas, args []any) error {
	switch len(args) {
	case 1:
		s, err := floatArgs("scale", args, 1)
		if err != nil {
			return err
		}
		c.dc.Scale(s[0], s[0])
	case 2:
		xy, err := floatArgs("scale", args, 2)
		if err != nil {
			return err
		}
		c.dc.Scale(xy[0], xy[1])
	default:
		return &ArgumentError{Capability: "scale", Reason: fmt.Sprintf("want 1 or 2 arguments, got %d", len(args))}
	}
	return nil
}

func applyLineWidth(c *canvas, args []any) error {
	w, err := floatArgs("linewidth", args, 1)
	if err != nil {
		return err
	}
	if w[0] <= 0 {
		return &ArgumentError{Capability: "linewidth", Reason: "width must be positive"}
	}
	c.dc.SetLineWidth(w[0])
	return nil
}

func applyLine(c *canvas, args []any) error {
	p, err := floatArgs("line", args, 4)
	if err != nil {
		return err
	}
	c.dc.DrawLine(p[0], p[1], p[2], p[3])
	if err := c.dc.Stroke(); err != nil {
		return &ArgumentError{Capability: "line", Reason: err.Error()}
	}
	return nil
}

func applyRectangle(c *canvas, args []any) error {
	p, err := floatArgs("rectangle", args, 4)
	if err != nil {
		return err
	}
	c.dc.DrawRectangle(p[0], p[1], p[2], p[3])
	if err := c.dc.Stroke(); err != nil {
		return &ArgumentError{Capability: "rectangle", Reason: err.Error()}
	}
	return nil
}

func applyCircle(c *canvas, args []any) error {
	p, err := floatArgs("circle", args, 3)
	if err != nil {
		return err
	}
	c.dc.DrawCircle(p[0], p[1], p[2])
	if err := c.dc.Stroke(); err != nil {
		return &ArgumentError{Capability: "circle", Reason: err.Error()}
	}
	return nil
}

// --- argument helpers --------------------------------------------------------

// parseColor accepts either a single hex string ("#RGB", "#RRGGBB",
// "#RRGGBBAA") or a sequence of 3-4 components in [0, 1].
func parseColor(name string, args []any) (gg.RGBA, error) {
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			if !validHex(s) {
				return gg.RGBA{}, &ArgumentError{Capability: name, Reason: fmt.Sprintf("%q is not a hex color", s)}
			}
			return gg.Hex(s), nil
		}
	}
	switch len(args) {
	case 3:
		rgb, err := floatArgs(name, args, 3)
		if err != nil {
			return gg.RGBA{}, err
		}
		return gg.RGB(rgb[0], rgb[1], rgb[2]), nil
	case 4:
		rgba, err := floatArgs(name, args, 4)
		if err != nil {
			return gg.RGBA{}, err
		}
		return gg.RGBA2(rgba[0], rgba[1], rgba[2], rgba[3]), nil
	default:
		return gg.RGBA{}, &ArgumentError{Capability: name, Reason: "want a hex string or 3-4 color components"}
	}
}

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// floatArgs coerces exactly n numeric arguments.
func floatArgs(name string, args []any, n int) ([]float64, error) {
	if len(args) != n {
		return nil, &ArgumentError{Capability: name, Reason: fmt.Sprintf("want %d arguments, got %d", n, len(args))}
	}
	out := make([]float64, n)
	for i, arg := range args {
		f, err := coerceFloat(arg)
		if err != nil {
			return nil, &ArgumentError{Capability: name, Reason: fmt.Sprintf("argument %d: %v", i+1, err)}
		}
		out[i] = f
	}
	return out, nil
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot use %T as number", v)
	}
}
