package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/openclaw/text2image/render"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fonts, err := render.NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRouter(&Server{
		Synth:           render.NewSynthesizer(fonts, log),
		Fonts:           fonts,
		Log:             log,
		Version:         "test",
		MaxWidth:        2048,
		MaxHeight:       2048,
		DefaultFont:     "go-regular",
		DefaultFontSize: 12,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func getBody(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, body
}

func TestRenderQuery(t *testing.T) {
	ts := newTestServer(t)

	resp, body := getBody(t, ts, "/render?width=100&height=45&string=Hi&font=go-regular&fontsize=15")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(body, pngSignature) {
		t.Fatal("body does not start with the PNG signature")
	}

	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 45 {
		t.Errorf("image = %dx%d, want 100x45", b.Dx(), b.Dy())
	}
}

// Structural query values must stay raw strings: text that looks like a
// number or contains a comma is still a valid non-empty string.
func TestRenderQueryTextIsNotCoerced(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"numeric text", "/render?width=100&height=45&string=42"},
		{"text with comma", "/render?width=100&height=45&string=" + url.QueryEscape("Hello, world")},
		{"text alias with comma", "/render?width=100&height=45&text=" + url.QueryEscape("1,2,3")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := getBody(t, ts, tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
			}
			if !bytes.HasPrefix(body, pngSignature) {
				t.Fatal("body does not start with the PNG signature")
			}
		})
	}
}

func TestRenderQueryMorph(t *testing.T) {
	ts := newTestServer(t)

	text := url.QueryEscape("a string far wider than ten pixels")
	resp, body := getBody(t, ts, "/render?width=10&height=45&string="+text+"&fontsize=30&morph=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if b := img.Bounds(); b.Dx() <= 10 || b.Dy() != 45 {
		t.Errorf("image = %dx%d, want width > 10 and height 45", b.Dx(), b.Dy())
	}
}

func TestRenderQueryPassThrough(t *testing.T) {
	ts := newTestServer(t)

	resp, body := getBody(t, ts, "/render?width=100&height=45&string=Hi&color=%23ff0000&moveto=10,30")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if !bytes.HasPrefix(body, pngSignature) {
		t.Fatal("body does not start with the PNG signature")
	}
}

func TestRenderQueryErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"missing width", "/render?height=45&string=Hi", http.StatusBadRequest},
		{"zero height", "/render?width=100&height=0&string=Hi", http.StatusBadRequest},
		{"empty string", "/render?width=100&height=45", http.StatusBadRequest},
		{"width over limit", "/render?width=99999&height=45&string=Hi", http.StatusBadRequest},
		{"unknown font", "/render?width=100&height=45&string=Hi&font=wingdings", http.StatusBadRequest},
		{"unknown capability", "/render?width=100&height=45&string=Hi&blink=1", http.StatusUnprocessableEntity},
		{"bad capability arity", "/render?width=100&height=45&string=Hi&moveto=1,2,3", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := getBody(t, ts, tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
			var payload map[string]string
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if payload["error"] == "" {
				t.Error("error body has no error message")
			}
		})
	}
}

func TestRenderJSON(t *testing.T) {
	ts := newTestServer(t)

	req := `{"width":100,"height":45,"string":"Hi","font":"go-regular","fontsize":15,"options":{"color":"#3366ff","moveto":[10,30]}}`
	resp, err := http.Post(ts.URL+"/render", "application/json", strings.NewReader(req))
	if err != nil {
		t.Fatalf("POST /render: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 45 {
		t.Errorf("image = %dx%d, want 100x45", b.Dx(), b.Dy())
	}
}

func TestRenderJSONBadBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/render", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST /render: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRenderDefaultsApplied(t *testing.T) {
	ts := newTestServer(t)

	// No font or fontsize: server defaults fill them in.
	resp, body := getBody(t, ts, "/render?width=100&height=45&string=Hi")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if !bytes.HasPrefix(body, pngSignature) {
		t.Fatal("body does not start with the PNG signature")
	}
}

func TestFontsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := getBody(t, ts, "/fonts")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload struct {
		Fonts        []string `json:"fonts"`
		Capabilities []string `json:"capabilities"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !slices.Contains(payload.Fonts, "go-regular") {
		t.Errorf("fonts = %v, missing go-regular", payload.Fonts)
	}
	if !slices.Contains(payload.Capabilities, "moveto") {
		t.Errorf("capabilities = %v, missing moveto", payload.Capabilities)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := getBody(t, ts, "/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload statusResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if payload.Status != "ok" {
		t.Errorf("status = %q, want ok", payload.Status)
	}
	if payload.Fonts < 4 {
		t.Errorf("fonts = %d, want at least the 4 built-ins", payload.Fonts)
	}
}
