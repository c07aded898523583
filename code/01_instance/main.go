// Command 01_instance creates a Vulkan instance, optionally with the
// validation layers and a debug report callback.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"unsafe"

	"vulkan-bootstrap/config"
	"vulkan-bootstrap/layers"
	"vulkan-bootstrap/logger"
	"vulkan-bootstrap/vkquery"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()
}

const (
	title = "Vulkan Bootstrap: Instance"
)

func main() {
	debug := flag.Bool("debug", false, "Enable Vulkan validation layers")
	flag.Parse()

	cfg := config.Default()
	if *debug {
		cfg.EnableDebug()
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	app := &InstanceApp{
		cfg:      cfg,
		instance: vk.Instance(vk.NullHandle),
	}
	if err := app.Run(); err != nil {
		slog.Error("ERROR", "error", err)
		os.Exit(1)
	}
}

// InstanceApp opens a window and creates a Vulkan instance.
type InstanceApp struct {
	cfg *config.Config

	window *glfw.Window
	exit   bool

	instance    vk.Instance
	debugReport vk.DebugReportCallback
	hasReport   bool
}

// Run runs the program.
func (a *InstanceApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	defer a.cleanupVulkan()
	if err := a.initVulkan(); err != nil {
		return fmt.Errorf("initVulkan: %w", err)
	}

	if err := a.mainLoop(); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (a *InstanceApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(a.cfg.Window.Width, a.cfg.Window.Height, title, nil, nil)
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

func (a *InstanceApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *InstanceApp) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	if err := a.createInstance(); err != nil {
		return fmt.Errorf("createInstance: %w", err)
	}

	if err := a.setupDebugMessenger(); err != nil {
		return fmt.Errorf("setupDebugMessenger: %w", err)
	}

	return nil
}

func (a *InstanceApp) cleanupVulkan() {
	if a.hasReport {
		vk.DestroyDebugReportCallback(a.instance, a.debugReport, nil)
		a.hasReport = false
	}
	if a.instance != vk.Instance(vk.NullHandle) {
		vk.DestroyInstance(a.instance, nil)
		a.instance = vk.Instance(vk.NullHandle)
	}
}

func (a *InstanceApp) createInstance() error {
	requested := a.cfg.RequestedLayers()
	if len(requested) > 0 {
		available, err := vkquery.InstanceLayers()
		if err != nil {
			return err
		}
		slog.Debug("Available instance layers", "layers", available)

		if !layers.HasRequired(requested, available) {
			return fmt.Errorf("validation layers requested but not available: %v",
				layers.Missing(requested, available))
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   title + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "No Engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := a.window.GetRequiredInstanceExtensions()
	for i := range extensions {
		extensions[i] = layers.Trimmed(extensions[i])
	}
	if a.cfg.Validation.Enabled {
		extensions = append(extensions, "VK_EXT_debug_report")
	}
	extensions = layers.Terminated(extensions)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if len(requested) > 0 {
		enabledLayers := layers.Terminated(requested)
		createInfo.EnabledLayerCount = uint32(len(enabledLayers))
		createInfo.PpEnabledLayerNames = enabledLayers

		dbgCreateInfo := debugReportCreateInfo()
		createInfo.PNext = unsafe.Pointer(dbgCreateInfo.Ref())
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("failed to create Vulkan instance: %w", vk.Error(res))
	}

	a.instance = instance
	return nil
}

func (a *InstanceApp) setupDebugMessenger() error {
	if !a.cfg.Validation.Enabled {
		return nil
	}

	var dbg vk.DebugReportCallback
	if vk.CreateDebugReportCallback(a.instance, debugReportCreateInfo(), nil, &dbg) != vk.Success {
		return fmt.Errorf("failed to set up debug messenger")
	}

	a.debugReport = dbg
	a.hasReport = true
	return nil
}

func debugReportCreateInfo() *vk.DebugReportCallbackCreateInfo {
	return &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportPerformanceWarningBit |
				vk.DebugReportWarningBit |
				vk.DebugReportErrorBit,
		),
		PfnCallback: debugCallback,
	}
}

func debugCallback(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	layerPrefix string,
	message string,
	userData unsafe.Pointer,
) vk.Bool32 {
	slog.Warn("validation layer", "layer", layerPrefix, "message", message)
	return vk.False
}

func (a *InstanceApp) mainLoop() error {
	slog.Info("main loop!")

	for !a.exit {
		glfw.PollEvents()
	}

	return nil
}
