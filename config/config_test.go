package config

import (
	"os"
	"path/filepath"
	"testing"

	"vulkan-bootstrap/devices"
	"vulkan-bootstrap/layers"

	"github.com/onsi/gomega"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %s", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg, err := Load("")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(cfg).To(gomega.Equal(Default()))
	g.Expect(cfg.Validate()).To(gomega.Succeed())
}

func TestLoadOverridesDefaults(t *testing.T) {
	g := gomega.NewWithT(t)

	path := writeConfig(t, `
window:
  width: 800
  height: 600
validation:
  enabled: true
  layers:
    - VK_LAYER_KHRONOS_validation
    - VK_LAYER_LUNARG_api_dump
device:
  policy: graphics
log:
  format: json
`)

	cfg, err := Load(path)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(cfg.Window.Width).To(gomega.Equal(800))
	g.Expect(cfg.Window.Height).To(gomega.Equal(600))
	g.Expect(cfg.Window.Title).To(gomega.Equal("Vulkan Bootstrap"))
	g.Expect(cfg.Device.Policy).To(gomega.Equal(devices.PolicyGraphicsOnly))
	g.Expect(cfg.Log.Level).To(gomega.Equal("info"))
	g.Expect(cfg.Log.Format).To(gomega.Equal("json"))
	g.Expect(cfg.RequestedLayers()).To(gomega.Equal([]string{
		layers.Validation,
		"VK_LAYER_LUNARG_api_dump",
	}))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "window: [\n"},
		{name: "unknown policy", content: "device:\n  policy: fastest\n"},
		{name: "zero width", content: "window:\n  width: 0\n"},
		{name: "unknown log format", content: "log:\n  format: xml\n"},
		{name: "empty layer name", content: "validation:\n  layers: [\"\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)

			_, err := Load(writeConfig(t, tt.content))
			g.Expect(err).To(gomega.HaveOccurred())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	g := gomega.NewWithT(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to read config file")))
}

func TestEnableDebug(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Default()
	g.Expect(cfg.RequestedLayers()).To(gomega.BeEmpty())

	cfg.EnableDebug()
	g.Expect(cfg.Validation.Enabled).To(gomega.BeTrue())
	g.Expect(cfg.Log.Level).To(gomega.Equal("debug"))
	g.Expect(cfg.RequestedLayers()).To(gomega.Equal([]string{layers.Validation}))
}

func TestLoadExampleFile(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg, err := Load(filepath.Join("..", "config.example.yaml"))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(cfg).To(gomega.Equal(&Config{
		Window: WindowConfig{Width: 1024, Height: 768, Title: "Vulkan Bootstrap"},
		Validation: ValidationConfig{
			Layers: []string{layers.Validation},
		},
		Device: DeviceConfig{
			Policy:     devices.PolicyGraphicsAndPresent,
			Extensions: []string{},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}))
}
