package main

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	"vulkan-bootstrap/config"
	"vulkan-bootstrap/devices"
	"vulkan-bootstrap/layers"
	"vulkan-bootstrap/queues"
	"vulkan-bootstrap/vkquery"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

const debugReportExtension = "VK_EXT_debug_report"

var nullDebugReport vk.DebugReportCallback

// App owns the window and every Vulkan object created by the program. All
// state lives here and is handed to the window callbacks by closure.
type App struct {
	cfg *config.Config
	log *slog.Logger

	window *glfw.Window

	// exit is set by the window close callback and ends the main loop.
	exit bool

	instance    vk.Instance
	debugReport vk.DebugReportCallback
	surface     vk.Surface

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice

	// indices are the queue families found on physicalDevice.
	indices queues.FamilyIndices

	// device is the logical device created for interfacing with the physical device.
	device vk.Device

	graphicsQueue vk.Queue
	presentQueue  vk.Queue
}

// NewApp returns an App configured by cfg. Nothing is created until Run.
func NewApp(cfg *config.Config) *App {
	return &App{
		cfg:            cfg,
		log:            slog.Default(),
		instance:       vk.Instance(vk.NullHandle),
		debugReport:    nullDebugReport,
		surface:        vk.NullSurface,
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),
	}
}

// Run runs the vulkan program.
func (a *App) Run() error {
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

func (a *App) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(
		a.cfg.Window.Width,
		a.cfg.Window.Height,
		a.cfg.Window.Title,
		nil,
		nil,
	)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}

	window.SetCloseCallback(func(w *glfw.Window) {
		a.log.Debug("Window close requested")
		a.exit = true
	})

	a.window = window
	return nil
}

func (a *App) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *App) initVulkan() error {
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

	if err := a.createSurface(); err != nil {
		return fmt.Errorf("createSurface: %w", err)
	}

	if err := a.pickPhysicalDevice(); err != nil {
		return fmt.Errorf("pickPhysicalDevice: %w", err)
	}

	if err := a.createLogicalDevice(); err != nil {
		return fmt.Errorf("createLogicalDevice: %w", err)
	}

	return nil
}

func (a *App) cleanupVulkan() {
	if a.device != vk.Device(vk.NullHandle) {
		vk.DestroyDevice(a.device, nil)
		a.device = vk.Device(vk.NullHandle)
	}
	if a.surface != vk.NullSurface {
		vk.DestroySurface(a.instance, a.surface, nil)
		a.surface = vk.NullSurface
	}
	if a.debugReport != nullDebugReport {
		vk.DestroyDebugReportCallback(a.instance, a.debugReport, nil)
		a.debugReport = nullDebugReport
	}
	if a.instance != vk.Instance(vk.NullHandle) {
		vk.DestroyInstance(a.instance, nil)
		a.instance = vk.Instance(vk.NullHandle)
	}
}

func (a *App) createInstance() error {
	requested := a.cfg.RequestedLayers()
	if len(requested) > 0 {
		available, err := vkquery.InstanceLayers()
		if err != nil {
			return err
		}

		if err := layers.Verify(requested, available); err != nil {
			return fmt.Errorf("validation layers requested but not available: %w", err)
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   a.cfg.Window.Title + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "No Engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := instanceExtensions(
		a.window.GetRequiredInstanceExtensions(),
		a.cfg.Validation.Enabled,
	)
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

		// Reports problems in CreateInstance and DestroyInstance themselves.
		dbgCreateInfo := a.debugReportCreateInfo()
		createInfo.PNext = unsafe.Pointer(dbgCreateInfo.Ref())
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return fmt.Errorf("failed to create Vulkan instance: %w", err)
	}

	a.instance = instance

	a.log.Debug("Created Vulkan instance",
		"extensions", len(extensions),
		"layers", requested,
	)
	return nil
}

func (a *App) setupDebugMessenger() error {
	if !a.cfg.Validation.Enabled {
		return nil
	}

	var dbg vk.DebugReportCallback
	err := vk.Error(
		vk.CreateDebugReportCallback(a.instance, a.debugReportCreateInfo(), nil, &dbg),
	)
	if err != nil {
		return fmt.Errorf("failed to set up debug messenger: %w", err)
	}

	a.debugReport = dbg
	return nil
}

func (a *App) debugReportCreateInfo() *vk.DebugReportCallbackCreateInfo {
	return &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportPerformanceWarningBit |
				vk.DebugReportWarningBit |
				vk.DebugReportErrorBit,
		),
		PfnCallback: a.onDebugReport,
	}
}

func (a *App) onDebugReport(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	layerPrefix string,
	message string,
	userData unsafe.Pointer,
) vk.Bool32 {
	a.log.Log(context.Background(), debugReportLevel(flags), "validation layer",
		"layer", layerPrefix,
		"code", messageCode,
		"message", message,
	)
	return vk.False
}

func (a *App) createSurface() error {
	surfacePtr, err := a.window.CreateWindowSurface(a.instance, nil)
	if err != nil {
		return fmt.Errorf("cannot create surface within GLFW window: %w", err)
	}

	a.surface = vk.SurfaceFromPointer(surfacePtr)
	return nil
}

func (a *App) pickPhysicalDevice() error {
	candidates, err := vkquery.PhysicalDevices(a.instance)
	if err != nil {
		return err
	}

	selected, err := devices.Pick(candidates, a.isDeviceSuitable)
	if err != nil {
		return err
	}

	info := vkquery.Describe(selected)
	a.log.Info("Selected physical device",
		"device", info.Name,
		"type", info.Type,
		"policy", a.cfg.Device.Policy,
	)

	a.physicalDevice = selected
	a.indices = a.findQueueFamilies(selected)
	return nil
}

func (a *App) isDeviceSuitable(device vk.PhysicalDevice) bool {
	indices := a.findQueueFamilies(device)
	suitable := a.cfg.Device.Policy.Accepts(indices) && a.checkDeviceExtensionSupport(device)

	info := vkquery.Describe(device)
	a.log.Debug("Available device",
		"device", info.Name,
		"type", info.Type,
		"graphics", indices.Graphics.HasValue(),
		"present", indices.Present.HasValue(),
		"suitable", suitable,
	)

	return suitable
}

// findQueueFamilies returns a FamilyIndices populated with Vulkan queue families
// needed by the program.
func (a *App) findQueueFamilies(device vk.PhysicalDevice) queues.FamilyIndices {
	var present queues.PresentFunc
	if a.surface != vk.NullSurface {
		present = vkquery.SurfaceSupport(device, a.surface)
	}

	return queues.Select(vkquery.QueueFamilies(device), present)
}

func (a *App) checkDeviceExtensionSupport(device vk.PhysicalDevice) bool {
	if len(a.cfg.Device.Extensions) == 0 {
		return true
	}

	available, err := vkquery.DeviceExtensions(device)
	if err != nil {
		a.log.Warn("Querying device extensions failed", "error", err)
		return false
	}

	return layers.HasRequired(a.cfg.Device.Extensions, available)
}

func (a *App) createLogicalDevice() error {
	if !a.cfg.Device.Policy.Accepts(a.indices) {
		return fmt.Errorf("createLogicalDevice called for physical device which does " +
			"not have all the queues required by the program")
	}

	queueCreateInfos := queueCreateInfos(a.indices)

	deviceFeatures := []vk.PhysicalDeviceFeatures{{}}

	extensions := layers.Terminated(a.cfg.Device.Extensions)
	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: deviceFeatures,

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if requested := a.cfg.RequestedLayers(); len(requested) > 0 {
		enabledLayers := layers.Terminated(requested)
		createInfo.PpEnabledLayerNames = enabledLayers
		createInfo.EnabledLayerCount = uint32(len(enabledLayers))
	}

	var device vk.Device
	err := vk.Error(vk.CreateDevice(a.physicalDevice, &createInfo, nil, &device))
	if err != nil {
		return fmt.Errorf("failed to create logical device: %w", err)
	}
	a.device = device

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(a.device, a.indices.Graphics.Get(), 0, &graphicsQueue)
	a.graphicsQueue = graphicsQueue

	if a.indices.Present.HasValue() {
		var presentQueue vk.Queue
		vk.GetDeviceQueue(a.device, a.indices.Present.Get(), 0, &presentQueue)
		a.presentQueue = presentQueue
	}

	a.log.Debug("Created logical device", "queue_families", a.indices.UniqueIndices())
	return nil
}

func (a *App) mainLoop() error {
	a.log.Info("main loop!")

	for !a.exit {
		glfw.PollEvents()

		if err := a.drawFrame(); err != nil {
			return fmt.Errorf("error drawing a frame: %w", err)
		}
	}

	if err := vk.Error(vk.DeviceWaitIdle(a.device)); err != nil {
		return fmt.Errorf("waiting for device to become idle: %w", err)
	}

	return nil
}

// drawFrame is the render step. Nothing is drawn yet.
func (a *App) drawFrame() error {
	return nil
}

// instanceExtensions returns the NUL-terminated instance extensions needed by
// the window system, plus the debug report extension when debug is set.
func instanceExtensions(required []string, debug bool) []string {
	names := make([]string, 0, len(required)+1)
	for _, name := range required {
		names = append(names, layers.Trimmed(name))
	}

	if debug {
		names = append(names, debugReportExtension)
	}

	return layers.Terminated(names)
}

// queueCreateInfos returns one queue create info for every distinct family
// in indices.
func queueCreateInfos(indices queues.FamilyIndices) []vk.DeviceQueueCreateInfo {
	queueCreateInfos := []vk.DeviceQueueCreateInfo{}

	for _, familyIndex := range indices.UniqueIndices() {
		queueCreateInfos = append(
			queueCreateInfos,
			vk.DeviceQueueCreateInfo{
				SType:            vk.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: familyIndex,
				QueueCount:       1,
				PQueuePriorities: []float32{1.0},
			},
		)
	}

	return queueCreateInfos
}

// debugReportLevel maps the flags of a debug report to a log level.
func debugReportLevel(flags vk.DebugReportFlags) slog.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vk.DebugReportFlags(
		vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit,
	) != 0:
		return slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
