package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/text2image/api"
	"github.com/openclaw/text2image/config"
	"github.com/openclaw/text2image/render"
)

var version = "v0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "text2image",
		Short: "Render single-line text to PNG images",
	}

	// --- serve command -------------------------------------------------------
	var configPath string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP rendering service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	root.AddCommand(serveCmd)

	// --- render command ------------------------------------------------------
	var (
		renderOut      string
		renderWidth    int
		renderHeight   int
		renderFont     string
		renderFontSize float64
		renderMorph    bool
		renderExtras   []string
	)
	renderCmd := &cobra.Command{
		Use:   "render [text]",
		Short: "Render text to a PNG file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], renderOut, render.Options{
				Width:    renderWidth,
				Height:   renderHeight,
				Font:     renderFont,
				FontSize: renderFontSize,
				Morph:    renderMorph,
			}, renderExtras)
		},
	}
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output PNG path (stdout if omitted)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 200, "Canvas width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 50, "Canvas height in pixels")
	renderCmd.Flags().StringVar(&renderFont, "font", "go-regular", "Font identifier")
	renderCmd.Flags().Float64Var(&renderFontSize, "fontsize", 15, "Font size in points")
	renderCmd.Flags().BoolVar(&renderMorph, "morph", false, "Widen the canvas to fit the text")
	renderCmd.Flags().StringArrayVarP(&renderExtras, "option", "O", nil, "Pass-through option, e.g. -O color=#ff0000 -O moveto=10,40")
	root.AddCommand(renderCmd)

	// --- fonts command -------------------------------------------------------
	var fontDir string
	fontsCmd := &cobra.Command{
		Use:   "fonts",
		Short: "List available font identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFonts(fontDir)
		},
	}
	fontsCmd.Flags().StringVar(&fontDir, "font-dir", "", "Additional font directory to include")
	root.AddCommand(fontsCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("text2image %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runServe is the main service entrypoint that wires all components together.
func runServe(configPath string) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Setup logger
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	log.Info("starting text2image", "version", version, "port", cfg.Port)

	// 3. Build the font library
	fonts, err := render.NewLibrary()
	if err != nil {
		return fmt.Errorf("load built-in fonts: %w", err)
	}
	if cfg.FontDir != "" {
		if err := fonts.LoadDir(cfg.FontDir); err != nil {
			return fmt.Errorf("load font dir: %w", err)
		}
		log.Info("font directory loaded", "dir", cfg.FontDir, "fonts", len(fonts.Names()))
	}

	// 4. Create the synthesizer
	synth := render.NewSynthesizer(fonts, log)

	// 5. Start HTTP server
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(&api.Server{
			Synth:           synth,
			Fonts:           fonts,
			Log:             log,
			Version:         version,
			MaxWidth:        cfg.MaxWidth,
			MaxHeight:       cfg.MaxHeight,
			DefaultFont:     cfg.DefaultFont,
			DefaultFontSize: cfg.DefaultFontSize,
		}),
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// 6. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("goodbye")
	return nil
}

// runRender performs a one-shot render to a file or stdout.
func runRender(text, out string, opts render.Options, extras []string) error {
	fonts, err := render.NewLibrary()
	if err != nil {
		return fmt.Errorf("load built-in fonts: %w", err)
	}

	opts.Text = text
	for _, kv := range extras {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("option %q must be key=value", kv)
		}
		if opts.Extra == nil {
			opts.Extra = map[string]any{}
		}
		opts.Extra[strings.ToLower(key)] = parseOptionValue(value)
	}

	synth := render.NewSynthesizer(fonts, nil)
	surface, err := synth.Synthesize(opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if out == "" {
		return surface.EncodePNG(os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()
	if err := surface.EncodePNG(f); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("wrote %s (%dx%d)\n", out, surface.Width(), surface.Height())
	return nil
}

// runFonts prints the available font identifiers.
func runFonts(fontDir string) error {
	fonts, err := render.NewLibrary()
	if err != nil {
		return fmt.Errorf("load built-in fonts: %w", err)
	}
	if fontDir != "" {
		if err := fonts.LoadDir(fontDir); err != nil {
			return err
		}
	}
	for _, name := range fonts.Names() {
		fmt.Println(name)
	}
	return nil
}

// parseOptionValue mirrors the HTTP layer's query value parsing: commas make
// a sequence, numeric tokens become numbers.
func parseOptionValue(v string) any {
	if strings.Contains(v, ",") {
		parts := strings.Split(v, ",")
		seq := make([]any, len(parts))
		for i, part := range parts {
			seq[i] = parseScalar(part)
		}
		return seq
	}
	return parseScalar(v)
}

func parseScalar(v string) any {
	v = strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
