package main

import (
	"log/slog"
	"testing"

	"vulkan-bootstrap/queues"

	"github.com/onsi/gomega"
	vk "github.com/vulkan-go/vulkan"
)

func TestQueueCreateInfos(t *testing.T) {
	g := gomega.NewWithT(t)

	shared := queues.FamilyIndices{}
	shared.Graphics.Set(0)
	shared.Present.Set(0)

	infos := queueCreateInfos(shared)
	g.Expect(infos).To(gomega.HaveLen(1))
	g.Expect(infos[0].QueueFamilyIndex).To(gomega.Equal(uint32(0)))
	g.Expect(infos[0].QueueCount).To(gomega.Equal(uint32(1)))

	split := queues.FamilyIndices{}
	split.Graphics.Set(2)
	split.Present.Set(1)

	infos = queueCreateInfos(split)
	g.Expect(infos).To(gomega.HaveLen(2))
	g.Expect(infos[0].QueueFamilyIndex).To(gomega.Equal(uint32(1)))
	g.Expect(infos[1].QueueFamilyIndex).To(gomega.Equal(uint32(2)))

	graphicsOnly := queues.FamilyIndices{}
	graphicsOnly.Graphics.Set(3)
	g.Expect(queueCreateInfos(graphicsOnly)).To(gomega.HaveLen(1))
}

func TestInstanceExtensions(t *testing.T) {
	g := gomega.NewWithT(t)

	required := []string{"VK_KHR_surface", "VK_KHR_xcb_surface\x00"}

	g.Expect(instanceExtensions(required, false)).To(gomega.Equal([]string{
		"VK_KHR_surface\x00",
		"VK_KHR_xcb_surface\x00",
	}))
	g.Expect(instanceExtensions(required, true)).To(gomega.Equal([]string{
		"VK_KHR_surface\x00",
		"VK_KHR_xcb_surface\x00",
		"VK_EXT_debug_report\x00",
	}))
	g.Expect(instanceExtensions(nil, true)).To(gomega.Equal([]string{
		"VK_EXT_debug_report\x00",
	}))
}

func TestDebugReportLevel(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(debugReportLevel(vk.DebugReportFlags(vk.DebugReportErrorBit))).
		To(gomega.Equal(slog.LevelError))
	g.Expect(debugReportLevel(vk.DebugReportFlags(vk.DebugReportWarningBit))).
		To(gomega.Equal(slog.LevelWarn))
	g.Expect(debugReportLevel(vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit))).
		To(gomega.Equal(slog.LevelWarn))
	g.Expect(debugReportLevel(vk.DebugReportFlags(vk.DebugReportInformationBit))).
		To(gomega.Equal(slog.LevelInfo))
	g.Expect(debugReportLevel(vk.DebugReportFlags(vk.DebugReportDebugBit))).
		To(gomega.Equal(slog.LevelDebug))
	g.Expect(debugReportLevel(vk.DebugReportFlags(
		vk.DebugReportWarningBit | vk.DebugReportErrorBit,
	))).To(gomega.Equal(slog.LevelError))
}
