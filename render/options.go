package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is the complete input to a synthesis call. It replaces the
// framework-managed option bag with an explicit struct: the transport layer
// (HTTP handler or CLI) is responsible for marshaling it from the request.
type Options struct {
	Width    int
	Height   int
	Text     string
	Font     string
	FontSize float64
	Morph    bool

	// Extra holds pass-through capabilities applied to the surface before
	// the text is drawn. Values are scalars or []any sequences.
	Extra map[string]any
}

// IsStructuralKey reports whether name is consumed by the synthesizer
// itself rather than forwarded as a capability. Transport layers use this to
// keep structural values as raw strings: the coercers here already parse
// digit strings, and eager numeric conversion would mangle text values like
// a string of digits.
func IsStructuralKey(name string) bool {
	switch strings.ToLower(name) {
	case "width", "x", "height", "y", "string", "text", "font", "fontsize", "morph":
		return true
	}
	return false
}

// ParseOptions splits a raw option map into structural fields and
// pass-through capabilities. Structural names are width (alias x), height
// (alias y), string (alias text), font, fontsize and morph; everything else
// is a pass-through capability. Raw maps typically come from a decoded JSON
// body or parsed query parameters, so numeric values may arrive as float64,
// int, or digit strings; all are coerced.
func ParseOptions(raw map[string]any) (Options, error) {
	var opts Options
	for key, value := range raw {
		var err error
		switch key {
		case "width", "x":
			opts.Width, err = toInt(value)
		case "height", "y":
			opts.Height, err = toInt(value)
		case "string", "text":
			opts.Text, err = toString(value)
		case "font":
			opts.Font, err = toString(value)
		case "fontsize":
			opts.FontSize, err = toFloat(value)
		case "morph":
			opts.Morph, err = toBool(value)
		default:
			if opts.Extra == nil {
				opts.Extra = map[string]any{}
			}
			opts.Extra[key] = value
		}
		if err != nil {
			return Options{}, &FieldError{Field: key, Reason: err.Error()}
		}
	}
	return opts, nil
}

// Validate checks the structural fields. The checks are the corrected,
// symmetric form: each failing field yields its own FieldError.
func (o Options) Validate() error {
	if o.Width <= 0 {
		return &FieldError{Field: "width", Reason: "must be a positive integer"}
	}
	if o.Height <= 0 {
		return &FieldError{Field: "height", Reason: "must be a positive integer"}
	}
	if o.Text == "" {
		return &FieldError{Field: "string", Reason: "must be non-empty"}
	}
	if o.Font == "" {
		return &FieldError{Field: "font", Reason: "must be non-empty"}
	}
	if o.FontSize <= 0 {
		return &FieldError{Field: "fontsize", Reason: "must be a positive number"}
	}
	return nil
}

// --- coercion helpers --------------------------------------------------------

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}

func toFloat(v any) (float64, error) {
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

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("cannot use %T as string", v)
	}
	return s, nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off", "":
			return false, nil
		}
		return false, fmt.Errorf("%q is not a boolean", b)
	case float64:
		return b != 0, nil
	case int:
		return b != 0, nil
	default:
		return false, fmt.Errorf("cannot use %T as boolean", v)
	}
}
