package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Library resolves font identifiers to parsed font sources. Sources are
// parsed once and shared; faces are cheap per-request values created from
// them. Safe for concurrent use.
type Library struct {
	mu      sync.RWMutex
	sources map[string]*text.FontSource
	aliases map[string]string
}

// NewLibrary returns a Library preloaded with the built-in Go fonts.
func NewLibrary() (*Library, error) {
	l := &Library{
		sources: map[string]*text.FontSource{},
		aliases: map[string]string{
			"regular": "go-regular",
			"bold":    "go-bold",
			"italic":  "go-italic",
			"mono":    "go-mono",
		},
	}
	builtins := map[string][]byte{
		"go-regular": goregular.TTF,
		"go-bold":    gobold.TTF,
		"go-italic":  goitalic.TTF,
		"go-mono":    gomono.TTF,
	}
	for name, data := range builtins {
		source, err := text.NewFontSource(data)
		if err != nil {
			return nil, fmt.Errorf("parsing built-in font %s: %w", name, err)
		}
		l.sources[name] = source
	}
	return l, nil
}

// LoadDir registers every .ttf and .otf file in dir under its base filename
// (lowercased, extension stripped). A missing directory is not an error so
// the font_dir config key can stay unset.
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading font dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		source, err := text.NewFontSourceFromFile(path)
		if err != nil {
			return fmt.Errorf("loading font %s: %w", path, err)
		}
		name := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		l.mu.Lock()
		l.sources[name] = source
		l.mu.Unlock()
	}
	return nil
}

// Face resolves a font identifier to a face at the given size in points.
func (l *Library) Face(name string, size float64) (text.Face, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	l.mu.RLock()
	defer l.mu.RUnlock()
	if canonical, ok := l.aliases[key]; ok {
		key = canonical
	}
	source, ok := l.sources[key]
	if !ok {
		return nil, &FieldError{Field: "font", Reason: fmt.Sprintf("unknown font %q", name)}
	}
	return source.Face(size), nil
}

// Names returns the canonical font names, sorted. Aliases are omitted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
