// Command inkdemo draws a few synthetic pen strokes with the ink engine
// and saves the composited canvas as PNG.
package main

import (
	"flag"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/gpu"
)

func main() {
	var (
		width   = flag.Int("width", 800, "canvas width (overrides config)")
		height  = flag.Int("height", 600, "canvas height (overrides config)")
		config  = flag.String("config", "", "YAML config file")
		backend = flag.String("backend", "", "auto, advanced, baseline or cpu (overrides config)")
		output  = flag.String("output", "ink.png", "output file")
		logFile = flag.String("log", "", "JSON log file, rotated")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := newLogger(*logFile, *verbose)
	ink.SetLogger(logger)

	cfg := ink.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = ink.LoadConfig(*config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	w, h := cfg.Width, cfg.Height
	if isSet("width") || w <= 0 {
		w = *width
	}
	if isSet("height") || h <= 0 {
		h = *height
	}

	opts := append(cfg.Options(),
		ink.WithLogger(logger),
		ink.WithProbes(cfg.Probes(gpu.Probes(gpu.WithRange(cfg.Range))...)...),
	)
	eng, err := ink.NewEngine(w, h, opts...)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	if err := draw(eng, float64(w), float64(h)); err != nil {
		log.Fatalf("Failed to draw: %v", err)
	}

	frame, err := eng.Frame()
	if err != nil {
		log.Fatalf("Failed to composite: %v", err)
	}
	if err := frame.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Saved %s (%dx%d, %s)\n", *output, w, h, eng.Backend().Name())
}

// newLogger writes text to stderr, or JSON to a rotated file when path
// is set.
func newLogger(path string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, hopts))
	}
	var w io.Writer = &lumberjack.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
	return slog.New(slog.NewJSONHandler(w, hopts))
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// draw paints three pressure waves on the base layer, a translucent
// multiply layer on top, and erases a diagonal through both.
func draw(eng *ink.Engine, w, h float64) error {
	brush := eng.Brush()
	colors := []ink.RGBA{ink.RGB(0.1, 0.1, 0.1), ink.RGB(0.8, 0.2, 0.2), ink.RGB(0.2, 0.3, 0.8)}
	for i, c := range colors {
		b := brush
		b.Color = c
		b.Size = 6 + 6*float64(i)
		b.TaperLength = 40
		eng.SetBrush(b)
		y := h * float64(i+1) / 4
		if err := wave(eng, 0.1*w, 0.9*w, y, h/12, ink.Pen); err != nil {
			return err
		}
	}

	l, err := eng.AddLayer("highlight")
	if err != nil {
		return err
	}
	if err := eng.SetLayerBlend(l.ID, ink.Multiply); err != nil {
		return err
	}
	if err := eng.SetLayerOpacity(l.ID, 0.6); err != nil {
		return err
	}
	hl := brush
	hl.Color = ink.RGB(1, 0.85, 0.1)
	hl.Size = h / 10
	hl.Hardness = 0.3
	eng.SetBrush(hl)
	if err := wave(eng, 0.15*w, 0.85*w, h/2, 0, ink.Mouse); err != nil {
		return err
	}

	if err := eng.SetActiveLayer(eng.Layers().At(0).ID); err != nil {
		return err
	}
	er := brush
	er.Eraser = true
	er.Size = 14
	eng.SetBrush(er)
	return line(eng, ink.Pt(0.2*w, 0.1*h), ink.Pt(0.8*w, 0.9*h))
}

// wave strokes a sine from x0 to x1 with pressure rising then falling.
func wave(eng *ink.Engine, x0, x1, y, amp float64, pointer ink.PointerType) error {
	const n = 120
	for i := 0; i <= n; i++ {
		t := float64(i) / n
		s := ink.Sample{
			X:        x0 + (x1-x0)*t,
			Y:        y + amp*math.Sin(t*4*math.Pi),
			Pressure: 0.2 + 0.8*math.Sin(t*math.Pi),
			Pointer:  pointer,
			Time:     time.Duration(i) * 8 * time.Millisecond,
		}
		var err error
		switch i {
		case 0:
			err = eng.PointerDown(s)
		case n:
			_, err = eng.PointerUp(s)
		default:
			err = eng.PointerMove(s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func line(eng *ink.Engine, a, b ink.Point) error {
	const n = 40
	for i := 0; i <= n; i++ {
		p := a.Lerp(b, float64(i)/n)
		s := ink.Sample{X: p.X, Y: p.Y, Pointer: ink.Mouse, Time: time.Duration(i) * 8 * time.Millisecond}
		var err error
		switch i {
		case 0:
			err = eng.PointerDown(s)
		case n:
			_, err = eng.PointerUp(s)
		default:
			err = eng.PointerMove(s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
