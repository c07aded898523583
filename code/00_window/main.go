// Command 00_window opens a window and spins an empty event loop until it is
// closed.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"vulkan-bootstrap/config"
	"vulkan-bootstrap/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()
}

const (
	title = "Vulkan Bootstrap: Window"
)

func main() {
	cfg := config.Default()
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	app := &WindowApp{
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
	}
	if err := app.Run(); err != nil {
		slog.Error("ERROR", "error", err)
		os.Exit(1)
	}
}

// WindowApp only manages a native window.
type WindowApp struct {
	width  int
	height int

	window *glfw.Window
	exit   bool
}

// Run runs the program.
func (a *WindowApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.mainLoop(); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (a *WindowApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(a.width, a.height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}

	window.SetCloseCallback(func(*glfw.Window) {
		a.exit = true
	})

	a.window = window
	return nil
}

func (a *WindowApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *WindowApp) mainLoop() error {
	slog.Info("main loop!")

	for !a.exit {
		glfw.PollEvents()
	}

	return nil
}
