// Command 02_device picks a physical device and creates a logical device with
// a graphics queue. There is no surface yet, so presentation support is only
// required when asked for with -policy.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"vulkan-bootstrap/config"
	"vulkan-bootstrap/devices"
	"vulkan-bootstrap/layers"
	"vulkan-bootstrap/logger"
	"vulkan-bootstrap/queues"
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
	title = "Vulkan Bootstrap: Logical device and queues"
)

func main() {
	debug := flag.Bool("debug", false, "Enable Vulkan validation layers")
	policy := flag.String("policy", devices.PolicyGraphicsOnly.String(),
		"Queue families a device must have: graphics or graphics+present")
	flag.Parse()

	cfg := config.Default()
	if *debug {
		cfg.EnableDebug()
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	p, err := devices.ParsePolicy(*policy)
	if err != nil {
		slog.Error("ERROR", "error", err)
		os.Exit(1)
	}
	cfg.Device.Policy = p

	app := &DeviceApp{
		cfg:            cfg,
		instance:       vk.Instance(vk.NullHandle),
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),
	}
	if err := app.Run(); err != nil {
		slog.Error("ERROR", "error", err)
		os.Exit(1)
	}
}

// DeviceApp creates an instance, a physical device and a logical device.
type DeviceApp struct {
	cfg *config.Config

	window *glfw.Window
	exit   bool

	instance vk.Instance

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice

	// device is the logical device created for interfacing with the physical device.
	device vk.Device

	graphicsQueue vk.Queue
}

// Run runs the program.
func (a *DeviceApp) Run() error {
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

func (a *DeviceApp) initWindow() error {
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

func (a *DeviceApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *DeviceApp) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	if err := a.createInstance(); err != nil {
		return fmt.Errorf("createInstance: %w", err)
	}

	if err := a.pickPhysicalDevice(); err != nil {
		return fmt.Errorf("pickPhysicalDevice: %w", err)
	}

	if err := a.createLogicalDevice(); err != nil {
		return fmt.Errorf("createLogicalDevice: %w", err)
	}

	return nil
}

func (a *DeviceApp) cleanupVulkan() {
	if a.device != vk.Device(vk.NullHandle) {
		vk.DestroyDevice(a.device, nil)
		a.device = vk.Device(vk.NullHandle)
	}
	if a.instance != vk.Instance(vk.NullHandle) {
		vk.DestroyInstance(a.instance, nil)
		a.instance = vk.Instance(vk.NullHandle)
	}
}

func (a *DeviceApp) createInstance() error {
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
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("failed to create Vulkan instance: %w", vk.Error(res))
	}

	a.instance = instance
	return nil
}

func (a *DeviceApp) pickPhysicalDevice() error {
	candidates, err := vkquery.PhysicalDevices(a.instance)
	if err != nil {
		return err
	}

	selected, err := devices.Pick(candidates, devices.Suitable(a.cfg.Device.Policy, findQueueFamilies))
	if err != nil {
		return err
	}

	slog.Info("Selected physical device",
		"device", vkquery.Describe(selected).Name,
		"policy", a.cfg.Device.Policy,
	)

	a.physicalDevice = selected
	return nil
}

func (a *DeviceApp) createLogicalDevice() error {
	indices := findQueueFamilies(a.physicalDevice)
	if !indices.HasGraphics() {
		return fmt.Errorf("createLogicalDevice called for physical device which does " +
			"not have a graphics queue family")
	}

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

	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{}},

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount: 0,
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
	vk.GetDeviceQueue(a.device, indices.Graphics.Get(), 0, &graphicsQueue)
	a.graphicsQueue = graphicsQueue

	return nil
}

// findQueueFamilies looks only for a graphics family, since there is no
// surface to present to.
func findQueueFamilies(device vk.PhysicalDevice) queues.FamilyIndices {
	return queues.Select(vkquery.QueueFamilies(device), nil)
}

func (a *DeviceApp) mainLoop() error {
	slog.Info("main loop!")

	for !a.exit {
		glfw.PollEvents()
	}

	return nil
}
