// Package vkquery wraps the Vulkan runtime queries used while choosing a
// device. Every function is a synchronous round trip to the driver.
package vkquery

import (
	"fmt"

	"vulkan-bootstrap/layers"
	"vulkan-bootstrap/queues"

	vk "github.com/vulkan-go/vulkan"
)

// InstanceLayers returns the names of the instance layers reported by the
// runtime.
func InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, fmt.Errorf("failed to get the number of instance layers: %w", err)
	}

	availableLayers := make([]vk.LayerProperties, count)
	err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, availableLayers))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate instance layers: %w", err)
	}

	names := make([]string, 0, count)
	for _, layer := range availableLayers[:count] {
		layer.Deref()
		names = append(names, layers.Trimmed(vk.ToString(layer.LayerName[:])))
	}

	return names, nil
}

// PhysicalDevices returns the devices of instance in the order the runtime
// enumerates them.
func PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to get the number of physical devices: %w", err)
	}
	if deviceCount == 0 {
		return nil, nil
	}

	pDevices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, pDevices))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate the physical devices: %w", err)
	}

	return pDevices[:deviceCount], nil
}

// QueueFamilies returns the queue families of device.
func QueueFamilies(device vk.PhysicalDevice) []queues.Family {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)

	properties := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, properties)

	families := make([]queues.Family, 0, queueFamilyCount)
	for i, family := range properties[:queueFamilyCount] {
		family.Deref()

		families = append(families, queues.Family{
			Index: uint32(i),
			Flags: family.QueueFlags,
			Count: family.QueueCount,
		})
	}

	return families
}

// SurfaceSupport returns a queues.PresentFunc which asks whether a queue
// family of device can present to surface.
func SurfaceSupport(device vk.PhysicalDevice, surface vk.Surface) queues.PresentFunc {
	return func(index uint32) (bool, error) {
		var hasPresent vk.Bool32
		err := vk.Error(
			vk.GetPhysicalDeviceSurfaceSupport(device, index, surface, &hasPresent),
		)
		if err != nil {
			return false, err
		}

		return hasPresent.B(), nil
	}
}

// DeviceExtensions returns the names of the extensions supported by device.
func DeviceExtensions(device vk.PhysicalDevice) ([]string, error) {
	var extensionsCount uint32
	res := vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("enumerating device extension properties count: %w", err)
	}

	availableExtensions := make([]vk.ExtensionProperties, extensionsCount)
	res = vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount,
		availableExtensions)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("getting device extension properties: %w", err)
	}

	names := make([]string, 0, extensionsCount)
	for _, extension := range availableExtensions[:extensionsCount] {
		extension.Deref()
		names = append(names, layers.Trimmed(vk.ToString(extension.ExtensionName[:])))
	}

	return names, nil
}

// DeviceInfo is the part of the device properties used for logging.
type DeviceInfo struct {
	Name string
	Type string
}

// Describe returns the name and type of device.
func Describe(device vk.PhysicalDevice) DeviceInfo {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()

	return DeviceInfo{
		Name: vk.ToString(properties.DeviceName[:]),
		Type: deviceTypeName(properties.DeviceType),
	}
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "other"
	}
}
