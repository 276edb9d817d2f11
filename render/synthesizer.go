// Package render builds single-line text rasters from an option set.
//
// The option set carries a handful of structural fields (dimensions, the
// text, font and size, the morph flag) plus an open set of pass-through
// capabilities that configure the drawing surface before the text is drawn.
// All actual rasterization is delegated to github.com/gogpu/gg.
package render

import (
	"log/slog"
	"math"

	"github.com/gogpu/gg"
)

// Synthesizer turns Options into drawn surfaces. It holds no per-request
// state; every synthesis is independent.
type Synthesizer struct {
	fonts *Library
	log   *slog.Logger
}

// NewSynthesizer creates a Synthesizer using fonts for identifier
// resolution. log may be nil.
func NewSynthesizer(fonts *Library, log *slog.Logger) *Synthesizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{fonts: fonts, log: log}
}

// Synthesize validates opts, builds a surface of (Width, Height), applies
// the font, optionally morphs the surface to fit the measured text width,
// applies all pass-through capabilities, and finally draws the text.
//
// Morph recreates the surface from scratch when the measured text width
// exceeds the canvas width; no drawing state survives the recreation. Any
// failure returns (nil, err) — callers never see a partially configured
// surface.
func (s *Synthesizer) Synthesize(opts Options) (*Surface, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	face, err := s.fonts.Face(opts.Font, opts.FontSize)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetFont(face)

	textWidth, _ := dc.MeasureString(opts.Text)
	if opts.Morph && textWidth > float64(opts.Width) {
		width := int(math.Ceil(textWidth))
		s.log.Debug("morphing surface to fit text",
			"requested_width", opts.Width, "text_width", width)
		dc = gg.NewContext(width, opts.Height)
		dc.SetFont(face)
	}

	// Default pen: left edge, first baseline. A moveto capability overrides it.
	c := &canvas{dc: dc, penX: 0, penY: face.Metrics().Ascent}
	if err := applyAll(c, opts.Extra); err != nil {
		return nil, err
	}

	dc.DrawString(opts.Text, c.penX, c.penY)
	return &Surface{dc: dc}, nil
}
