// Command paneshim opens a demo window on the platform backend and logs
// the events it receives. It exercises the full driver surface: window
// lifecycle, the event callbacks, background fills where the platform
// supports them, and clean shutdown on SIGINT/SIGTERM or window close.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/1broseidon/paneshim"
	"github.com/1broseidon/paneshim/internal/config"
	"github.com/1broseidon/paneshim/wsys"
)

// filler is implemented by backends with a native solid-fill path.
type filler interface {
	Fill(id wsys.WindowID, dr image.Rectangle, c wsys.Color, op wsys.FillMode) error
}

func main() {
	configPath := flag.String("config", "", "config file path (default ~/.config/paneshim/config.yaml)")
	title := flag.String("title", "", "override the window title")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *title != "" {
		cfg.Title = *title
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	var (
		width  atomic.Int32
		height atomic.Int32
	)
	width.Store(int32(cfg.Width))
	height.Store(int32(cfg.Height))

	r, g, b := cfg.BackgroundColor()
	background := wsys.Color(0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))

	var drv paneshim.Driver
	exposed := make(chan wsys.WindowID, 16)

	drv, err = paneshim.Start(wsys.Options{
		Title:  cfg.Title,
		Logger: logger,
		Callbacks: wsys.Callbacks{
			OnMouse: func(id wsys.WindowID, e wsys.MouseEvent) {
				logger.Debug("mouse", "window", id, "x", e.X, "y", e.Y,
					"button", e.Button, "direction", e.Direction)
			},
			OnKey: func(id wsys.WindowID, e wsys.KeyEvent) {
				logger.Debug("key", "window", id, "code", e.Code, "direction", e.Direction)
			},
			OnResize: func(id wsys.WindowID, w, h int32) {
				width.Store(w)
				height.Store(h)
				logger.Info("resize", "window", id, "width", w, "height", h)
			},
			OnExpose: func(id wsys.WindowID) {
				select {
				case exposed <- id:
				default:
				}
			},
			OnClose: func(id wsys.WindowID) {
				logger.Info("window closed", "window", id)
				drv.Stop()
			},
		},
	})
	if err != nil {
		log.Fatalf("Failed to start window backend: %v", err)
	}

	go func() {
		if err := runWindow(drv, logger, background, exposed, &width, &height); err != nil {
			log.Printf("Window error: %v", err)
			drv.Stop()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logger.Info("signal received, shutting down", "signal", s)
		drv.Stop()
	}()

	// Run owns the calling goroutine as the UI thread; on macOS this must
	// be the main goroutine.
	if err := drv.Run(); err != nil {
		log.Fatalf("Event loop failed: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// runWindow creates and shows the demo window once the UI thread is up,
// then answers expose bursts with a background fill or a buffer swap.
func runWindow(drv paneshim.Driver, logger *slog.Logger, background wsys.Color,
	exposed <-chan wsys.WindowID, width, height *atomic.Int32) error {

	if err := waitForUIThread(drv); err != nil {
		return err
	}

	id, err := drv.NewWindow(int(width.Load()), int(height.Load()))
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	surface, err := drv.ShowWindow(id)
	if err != nil {
		return fmt.Errorf("show window: %w", err)
	}
	logger.Info("window shown", "window", id, "surface", surface)

	for {
		select {
		case <-drv.Done():
			return nil
		case exposedID := <-exposed:
			if f, ok := drv.(filler); ok {
				dr := image.Rect(0, 0, int(width.Load()), int(height.Load()))
				if err := f.Fill(exposedID, dr, background, wsys.FillSrc); err != nil {
					logger.Warn("fill failed", "window", exposedID, "error", err)
				}
				continue
			}
			if err := drv.MakeCurrent(surface); err != nil {
				return fmt.Errorf("make current: %w", err)
			}
			if err := drv.SwapBuffers(surface); err != nil {
				return fmt.Errorf("swap buffers: %w", err)
			}
		}
	}
}

// waitForUIThread blocks until Run has bound the UI thread. Requests
// posted before that have no pump to answer them.
func waitForUIThread(drv paneshim.Driver) error {
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			return fmt.Errorf("event loop did not start")
		case <-drv.Done():
			return fmt.Errorf("event loop exited during startup")
		case <-tick.C:
			if drv.ThreadID() != 0 {
				return nil
			}
		}
	}
}
