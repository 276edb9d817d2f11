package api

import (
	"net/http"
	"time"

	"github.com/openclaw/text2image/render"
)

type statusResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
	Fonts   int    `json:"fonts"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
		Version: s.Version,
		Fonts:   len(s.Fonts.Names()),
	})
}

type fontsResponse struct {
	Fonts        []string `json:"fonts"`
	Capabilities []string `json:"capabilities"`
}

func (s *Server) handleFonts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fontsResponse{
		Fonts:        s.Fonts.Names(),
		Capabilities: render.CapabilityNames(),
	})
}
