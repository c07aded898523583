package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"vulkan-bootstrap/config"
	"vulkan-bootstrap/logger"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		debug      bool
		configPath string
		logLevel   string
		logFormat  string
	)

	flag.BoolVar(&debug, "debug", false, "Enable Vulkan validation layers")
	flag.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flag.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Loading configuration failed", "error", err)
		os.Exit(1)
	}

	if debug {
		cfg.EnableDebug()
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	app := NewApp(cfg)
	if err := app.Run(); err != nil {
		slog.Error("ERROR", "error", err)
		os.Exit(1)
	}
}
