package render

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
)

// Surface is a finished raster with the text already drawn. Ownership
// transfers to the caller; it is never shared or reused across syntheses.
type Surface struct {
	dc *gg.Context
}

// Width returns the raster width in pixels.
func (s *Surface) Width() int { return s.dc.Width() }

// Height returns the raster height in pixels.
func (s *Surface) Height() int { return s.dc.Height() }

// Image exposes the underlying pixels for callers that want to composite
// further before encoding.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the surface as PNG to w.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// PNG returns the surface encoded as PNG bytes.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
