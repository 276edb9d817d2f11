package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/openclaw/text2image/render"
)

type renderRequest struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Text     string         `json:"string"`
	Font     string         `json:"font"`
	FontSize float64        `json:"fontsize"`
	Morph    bool           `json:"morph"`
	Options  map[string]any `json:"options"`
}

// handleRenderQuery renders from query parameters. Structural keys are
// width, height, string (or text), font, fontsize and morph; every other
// parameter is a pass-through capability. Capability values get the
// sequence/number treatment (comma-separated values become argument
// sequences, e.g. moveto=10,40); structural values stay raw strings so
// text like "42" or "Hello, world" survives intact.
func (s *Server) handleRenderQuery(w http.ResponseWriter, r *http.Request) {
	raw := map[string]any{}
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		key = strings.ToLower(key)
		if render.IsStructuralKey(key) {
			raw[key] = values[0]
		} else {
			raw[key] = parseQueryValue(values[0])
		}
	}

	opts, err := render.ParseOptions(raw)
	if err != nil {
		s.renderError(w, err)
		return
	}
	s.respondWithImage(w, opts)
}

// handleRenderJSON renders from a JSON body.
func (s *Server) handleRenderJSON(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := render.Options{
		Width:    req.Width,
		Height:   req.Height,
		Text:     req.Text,
		Font:     req.Font,
		FontSize: req.FontSize,
		Morph:    req.Morph,
		Extra:    req.Options,
	}
	s.respondWithImage(w, opts)
}

// respondWithImage applies defaults and guards, synthesizes, and writes the
// PNG response body.
func (s *Server) respondWithImage(w http.ResponseWriter, opts render.Options) {
	if opts.Font == "" {
		opts.Font = s.DefaultFont
	}
	if opts.FontSize == 0 {
		opts.FontSize = s.DefaultFontSize
	}
	if s.MaxWidth > 0 && opts.Width > s.MaxWidth {
		writeError(w, http.StatusBadRequest, "width exceeds maximum")
		return
	}
	if s.MaxHeight > 0 && opts.Height > s.MaxHeight {
		writeError(w, http.StatusBadRequest, "height exceeds maximum")
		return
	}

	surface, err := s.Synth.Synthesize(opts)
	if err != nil {
		s.renderError(w, err)
		return
	}

	png, err := surface.PNG()
	if err != nil {
		s.Log.Error("png encoding failed", "error", err)
		writeError(w, http.StatusInternalServerError, "encoding failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// renderError maps the render error taxonomy onto HTTP statuses: structural
// validation failures are 400s, capability failures 422s, anything else 500.
func (s *Server) renderError(w http.ResponseWriter, err error) {
	var fieldErr *render.FieldError
	if errors.As(err, &fieldErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fieldErr.Error(),
			"field": fieldErr.Field,
		})
		return
	}
	var unknownErr *render.UnknownCapabilityError
	var argErr *render.ArgumentError
	if errors.As(err, &unknownErr) || errors.As(err, &argErr) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.Log.Error("synthesis failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// parseQueryValue turns a query parameter into an option value: a
// comma-separated string becomes a sequence, numeric tokens become numbers,
// everything else stays a string.
func parseQueryValue(v string) any {
	if strings.Contains(v, ",") {
		parts := strings.Split(v, ",")
		seq := make([]any, len(parts))
		for i, part := range parts {
			seq[i] = parseQueryScalar(part)
		}
		return seq
	}
	return parseQueryScalar(v)
}

func parseQueryScalar(v string) any {
	v = strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
