// Package queues finds the Vulkan queue families a program needs on a
// physical device.
package queues
